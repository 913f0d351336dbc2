package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "storage:\n  dsn: postgres://localhost/test\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Kind != "memory" {
		t.Fatalf("cache kind = %q", cfg.Cache.Kind)
	}
	if cfg.JWT.Issuer != "quicklendar" || cfg.AccessTTL() != 12*time.Hour {
		t.Fatalf("jwt = %q / %v", cfg.JWT.Issuer, cfg.AccessTTL())
	}
	if cfg.Auth.StateTTL != 5*time.Minute {
		t.Fatalf("state ttl = %v", cfg.Auth.StateTTL)
	}
	if cfg.Auth.RefreshProviderTokens || cfg.Auth.UnlinkKeepsLocal {
		t.Fatal("flags de auth deben arrancar apagados")
	}
	if cfg.Security.PasswordPolicy.MinLength != 8 || !cfg.Security.PasswordPolicy.RequireSymbol {
		t.Fatalf("password policy = %+v", cfg.Security.PasswordPolicy)
	}
	if len(cfg.Providers.Google.Scopes) == 0 {
		t.Fatal("scopes de google sin default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "storage:\n  dsn: postgres://from-yaml/db\njwt:\n  secret: yaml-secret\n")

	t.Setenv("STORAGE_DSN", "postgres://from-env/db")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("AUTH_UNLINK_KEEPS_LOCAL", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.DSN != "postgres://from-env/db" {
		t.Fatalf("dsn = %q", cfg.Storage.DSN)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("secret = %q", cfg.JWT.Secret)
	}
	if !cfg.Auth.UnlinkKeepsLocal {
		t.Fatal("AUTH_UNLINK_KEEPS_LOCAL no pisó el yaml")
	}
}

func TestLoad_ProdRequiresSecret(t *testing.T) {
	path := writeConfig(t, "app:\n  app_env: prod\n")

	if _, err := Load(path); err == nil {
		t.Fatal("prod sin jwt.secret debe fallar")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "jwt:\n  access_ttl: not-a-duration\n")

	if _, err := Load(path); err == nil {
		t.Fatal("duración inválida debe fallar")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("archivo inexistente debe fallar")
	}
}
