package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/quicklendar/internal/auth"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	mw "github.com/dropDatabas3/quicklendar/internal/http/middlewares"
	"github.com/dropDatabas3/quicklendar/internal/session"
)

// accountsStub resuelve cuentas por email, suficiente para el middleware.
type accountsStub struct {
	byEmail map[string]*repository.Account
}

func (s *accountsStub) Create(ctx context.Context, in repository.CreateAccountInput) (*repository.Account, error) {
	return nil, repository.ErrConflict
}
func (s *accountsStub) GetByID(ctx context.Context, id string) (*repository.Account, error) {
	return nil, repository.ErrNotFound
}
func (s *accountsStub) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	if a, ok := s.byEmail[email]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}
func (s *accountsStub) Update(ctx context.Context, id string, in repository.UpdateAccountInput) error {
	return nil
}
func (s *accountsStub) Delete(ctx context.Context, id string) error { return nil }
func (s *accountsStub) List(ctx context.Context, f repository.AccountFilter) ([]repository.Account, error) {
	return nil, nil
}

func setup(t *testing.T) (*session.Issuer, *accountsStub, http.Handler) {
	t.Helper()

	issuer := session.NewIssuer("quicklendar", []byte("test-secret"), time.Hour)
	accounts := &accountsStub{byEmail: map[string]*repository.Account{
		"alice@example.com": {
			ID: "acc-1", Email: "alice@example.com",
			Kind: repository.KindLocal, Enabled: true,
		},
	}}

	handler := mw.RequireAuth(issuer, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return issuer, accounts, handler
}

func TestRequireAuth_ValidToken(t *testing.T) {
	issuer := session.NewIssuer("quicklendar", []byte("test-secret"), time.Hour)
	accounts := &accountsStub{byEmail: map[string]*repository.Account{
		"alice@example.com": {
			ID: "acc-1", Email: "alice@example.com",
			Kind: repository.KindOAuth, Enabled: true,
		},
	}}

	var captured *auth.Principal
	handler := mw.RequireAuth(issuer, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = auth.PrincipalFrom(r.Context())
	}))

	tok, err := issuer.Issue("alice@example.com", []string{"USER"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	require.Equal(t, "acc-1", captured.AccountID)
	require.Equal(t, auth.PrincipalFederated, captured.Kind)
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	_, _, handler := setup(t)

	req := httptest.NewRequest("GET", "/v1/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestRequireAuth_BadToken(t *testing.T) {
	_, _, handler := setup(t)

	req := httptest.NewRequest("GET", "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_UnknownSubject(t *testing.T) {
	issuer, _, handler := setup(t)

	tok, err := issuer.Issue("ghost@example.com", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_DisabledAccount(t *testing.T) {
	issuer, accounts, handler := setup(t)
	accounts.byEmail["alice@example.com"].Enabled = false

	tok, err := issuer.Issue("alice@example.com", nil)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOptionalAuth_PassesThroughWithoutToken(t *testing.T) {
	issuer := session.NewIssuer("quicklendar", []byte("test-secret"), time.Hour)
	accounts := &accountsStub{byEmail: map[string]*repository.Account{}}

	handler := mw.OptionalAuth(issuer, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFrom(r.Context()); ok {
			t.Error("principal presente sin token")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/competitions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
