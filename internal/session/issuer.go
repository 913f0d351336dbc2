// Package session emite y valida los session tokens firmados que prueban una
// autenticación previa. Firma simétrica (HS256) con secreto de proceso; no hay
// lista de revocación: un token vive hasta su expiración natural y el logout
// es descarte del lado del cliente.
package session

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken es el único error de validación expuesto. Firma mala,
// estructura malformada y expiración se reportan igual: el caller sólo debe
// saber "no autenticado".
var ErrInvalidToken = errors.New("invalid session token")

// Claims son los claims del session token.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwtv5.RegisteredClaims
}

// Issuer firma session tokens usando el secreto compartido del proceso.
type Issuer struct {
	Iss    string
	Secret []byte
	TTL    time.Duration // validez por defecto

	// now es inyectable para tests; nil = time.Now.
	now func() time.Time
}

func NewIssuer(iss string, secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{Iss: iss, Secret: secret, TTL: ttl}
}

func (i *Issuer) timeNow() time.Time {
	if i.now != nil {
		return i.now()
	}
	return time.Now()
}

// Issue emite un token compacto con sub=subject, iat=now y exp=now+TTL.
func (i *Issuer) Issue(subject string, roles []string) (string, error) {
	return i.IssueWithTTL(subject, roles, i.TTL)
}

// IssueWithTTL emite con una validez explícita.
func (i *Issuer) IssueWithTTL(subject string, roles []string, ttl time.Duration) (string, error) {
	now := i.timeNow()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   subject,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return tok.SignedString(i.Secret)
}

// Validate verifica firma y expiración y retorna el subject y los roles.
// Cualquier fallo retorna ErrInvalidToken, sin distinguir la causa.
func (i *Issuer) Validate(raw string) (subject string, roles []string, err error) {
	claims := &Claims{}
	tok, err := jwtv5.ParseWithClaims(raw, claims,
		func(t *jwtv5.Token) (any, error) { return i.Secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithTimeFunc(i.timeNow),
	)
	if err != nil || !tok.Valid {
		return "", nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", nil, ErrInvalidToken
	}
	return claims.Subject, claims.Roles, nil
}
