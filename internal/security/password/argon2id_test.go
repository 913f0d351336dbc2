package password

import (
	"strings"
	"testing"
)

// params chicos para que la suite no queme CPU
var testParams = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashAndVerify(t *testing.T) {
	phc, err := Hash(testParams, "Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("phc = %q", phc)
	}
	if !Verify("Sup3r$ecret", phc) {
		t.Fatal("verify con el password correcto falló")
	}
	if Verify("otro-password", phc) {
		t.Fatal("verify aceptó un password incorrecto")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	a, err := Hash(testParams, "Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := Hash(testParams, "Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Fatal("dos hashes del mismo password son idénticos, falta salt")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(testParams, ""); err == nil {
		t.Fatal("hash de password vacío debe fallar")
	}
}

func TestVerify_MalformedPHC(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=1024,t=1,p=1$salt",          // faltan partes
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$ZGsx",    // variante incorrecta
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$ZGsx",      // params inválidos
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$ZGsx",      // salt no-base64
		"$argon2id$v=19$m=1024,t=1,x=1$c2FsdA$ZGsx",   // clave desconocida
	}
	for _, phc := range cases {
		if Verify("whatever", phc) {
			t.Fatalf("Verify aceptó PHC malformado: %q", phc)
		}
	}
}

func TestPolicy_Validate(t *testing.T) {
	p := Policy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true, RequireSymbol: true}

	if ok, _ := p.Validate("Sup3r$ecret"); !ok {
		t.Fatal("password válido rechazado")
	}

	cases := map[string]string{
		"Ab1$":        "too_short",
		"sup3r$ecret": "missing_upper",
		"SUP3R$ECRET": "missing_lower",
		"Superb$ecre": "missing_digit",
		"Sup3rSecret": "missing_symbol",
	}
	for pw, want := range cases {
		ok, reasons := p.Validate(pw)
		if ok {
			t.Fatalf("Validate(%q) aceptado, esperaba %s", pw, want)
		}
		found := false
		for _, r := range reasons {
			if r == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("Validate(%q) reasons = %v, falta %s", pw, reasons, want)
		}
	}
}
