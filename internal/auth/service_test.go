package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/quicklendar/internal/auth"
	"github.com/dropDatabas3/quicklendar/internal/cache"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	"github.com/dropDatabas3/quicklendar/internal/oauth"
	"github.com/dropDatabas3/quicklendar/internal/security/password"
	"github.com/dropDatabas3/quicklendar/internal/session"
)

// ───────── fakes in-memory ─────────

type fakeAccounts struct {
	seq     int
	byID    map[string]*repository.Account
	deleted []string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[string]*repository.Account{}}
}

func (f *fakeAccounts) Create(ctx context.Context, in repository.CreateAccountInput) (*repository.Account, error) {
	for _, a := range f.byID {
		if a.Email == in.Email {
			return nil, repository.ErrConflict
		}
	}
	f.seq++
	acc := &repository.Account{
		ID:           fmt.Sprintf("acc-%d", f.seq),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Phone:        in.Phone,
		Kind:         in.Kind,
		Enabled:      in.Enabled,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.byID[acc.ID] = acc
	return acc, nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, id string) (*repository.Account, error) {
	if a, ok := f.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	for _, a := range f.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccounts) Update(ctx context.Context, id string, in repository.UpdateAccountInput) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.Phone != nil {
		a.Phone = in.Phone
	}
	if in.PasswordHash != nil {
		a.PasswordHash = in.PasswordHash
	}
	return nil
}

func (f *fakeAccounts) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAccounts) List(ctx context.Context, filter repository.AccountFilter) ([]repository.Account, error) {
	out := make([]repository.Account, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, nil
}

type fakeTokens struct {
	seq      int
	byID     map[string]*repository.ProviderToken
	createHk func(input repository.CreateProviderTokenInput) error
	updates  int
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{byID: map[string]*repository.ProviderToken{}}
}

func (f *fakeTokens) Create(ctx context.Context, in repository.CreateProviderTokenInput) (*repository.ProviderToken, error) {
	if f.createHk != nil {
		if err := f.createHk(in); err != nil {
			return nil, err
		}
	}
	for _, t := range f.byID {
		if t.Provider == in.Provider && t.ProviderID == in.ProviderID {
			return nil, repository.ErrConflict
		}
	}
	f.seq++
	tok := &repository.ProviderToken{
		ID:           fmt.Sprintf("tok-%d", f.seq),
		AccountID:    in.AccountID,
		Provider:     in.Provider,
		ProviderID:   in.ProviderID,
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
		ExpiresAt:    in.ExpiresAt,
	}
	f.byID[tok.ID] = tok
	return tok, nil
}

func (f *fakeTokens) GetByProvider(ctx context.Context, provider, providerID string) (*repository.ProviderToken, error) {
	for _, t := range f.byID {
		if t.Provider == provider && t.ProviderID == providerID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTokens) GetByAccountAndProvider(ctx context.Context, accountID, provider string) (*repository.ProviderToken, error) {
	for _, t := range f.byID {
		if t.AccountID == accountID && t.Provider == provider {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTokens) ListByAccount(ctx context.Context, accountID string) ([]repository.ProviderToken, error) {
	var out []repository.ProviderToken
	for _, t := range f.byID {
		if t.AccountID == accountID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTokens) UpdateValues(ctx context.Context, id string, v repository.UpdateProviderTokenValues) error {
	t, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.AccessToken = v.AccessToken
	t.RefreshToken = v.RefreshToken
	t.ExpiresAt = v.ExpiresAt
	f.updates++
	return nil
}

func (f *fakeTokens) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeProvider simula un proveedor federado determinístico.
type fakeProvider struct {
	name      string
	grant     oauth.Grant
	profile   map[string]any
	revokeErr error
	revoked   int
	lastState string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthorizeURL(state string) string {
	f.lastState = state
	return "https://provider.test/authorize?state=" + state
}

func (f *fakeProvider) ExchangeCode(ctx context.Context, code, state string) (*oauth.Grant, error) {
	if code == "" {
		return nil, oauth.ErrExchange
	}
	g := f.grant
	return &g, nil
}

func (f *fakeProvider) FetchProfile(ctx context.Context, accessToken string) (map[string]any, error) {
	return f.profile, nil
}

func (f *fakeProvider) Revoke(ctx context.Context, access, refresh string) error {
	f.revoked++
	return f.revokeErr
}

// ───────── armado ─────────

type fixture struct {
	svc      *auth.Service
	accounts *fakeAccounts
	tokens   *fakeTokens
	google   *fakeProvider
	naver    *fakeProvider
	issuer   *session.Issuer
}

func newFixture(t *testing.T, mutate func(*auth.Deps)) *fixture {
	t.Helper()

	f := &fixture{
		accounts: newFakeAccounts(),
		tokens:   newFakeTokens(),
		google: &fakeProvider{
			name:    "google",
			grant:   oauth.Grant{AccessToken: "g-at", RefreshToken: "g-rt"},
			profile: map[string]any{"sub": "g-sub-1", "email": "alice@example.com", "name": "Alice"},
		},
		naver: &fakeProvider{
			name:  "naver",
			grant: oauth.Grant{AccessToken: "n-at"},
			profile: map[string]any{"response": map[string]any{
				"id": "n-id-1", "email": "alice@example.com", "name": "Alice",
			}},
		},
		issuer: session.NewIssuer("quicklendar", []byte("test-secret"), time.Hour),
	}

	deps := auth.Deps{
		Accounts:  f.accounts,
		Tokens:    f.tokens,
		Providers: oauth.NewRegistry(f.google, f.naver),
		Issuer:    f.issuer,
		Cache:     cache.NewMemory(cache.Config{}),
		PasswordPolicy: password.Policy{
			MinLength:    8,
			RequireUpper: true, RequireLower: true,
			RequireDigit: true, RequireSymbol: true,
		},
		PasswordParams: password.Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32},
		StateTTL:       time.Minute,
	}
	if mutate != nil {
		mutate(&deps)
	}
	f.svc = auth.NewService(deps)
	return f
}

// socialLogin arranca el flujo y completa el callback con el state emitido.
func (f *fixture) socialLogin(t *testing.T, p *fakeProvider) (*auth.Session, error) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Start(ctx, p.name)
	require.NoError(t, err)
	return f.svc.SocialLogin(ctx, p.name, "good-code", p.lastState)
}

// ───────── registro y login local ─────────

func TestRegister_ThenLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	acc, err := f.svc.Register(ctx, auth.RegisterInput{
		Name: "Alice", Email: "  ALICE@Example.com ", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", acc.Email)
	require.Equal(t, repository.KindLocal, acc.Kind)

	sess, err := f.svc.Login(ctx, "alice@example.com", "Sup3r$ecret")
	require.NoError(t, err)
	require.Equal(t, auth.PrincipalLocal, sess.Principal.Kind)
	require.Equal(t, []string{auth.RoleUser}, sess.Principal.Roles)

	sub, _, err := f.issuer.Validate(sess.Token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", sub)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	in := auth.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "Sup3r$ecret"}
	_, err := f.svc.Register(ctx, in)
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, in)
	require.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestRegister_WeakPassword(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Register(context.Background(), auth.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "short",
	})
	require.ErrorIs(t, err, auth.ErrWeakPassword)
}

func TestLogin_UniformInvalidCredentials(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, auth.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)

	// email inexistente y password incorrecto fallan igual
	_, err = f.svc.Login(ctx, "nobody@example.com", "Sup3r$ecret")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "alice@example.com", "Wr0ng-pass!")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_FederatedOnlyAccountHasNoPassword(t *testing.T) {
	f := newFixture(t, nil)

	sess, err := f.socialLogin(t, f.google)
	require.NoError(t, err)

	// la cuenta existe pero no tiene credencial local
	_, err = f.svc.Login(context.Background(), sess.Principal.Email, "whatever1!A")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	acc, err := f.svc.Register(ctx, auth.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)
	f.accounts.byID[acc.ID].Enabled = false

	_, err = f.svc.Login(ctx, "alice@example.com", "Sup3r$ecret")
	require.ErrorIs(t, err, auth.ErrAccountDisabled)
}

// ───────── login federado ─────────

func TestSocialLogin_FirstLoginCreatesAccountAndToken(t *testing.T) {
	f := newFixture(t, nil)

	sess, err := f.socialLogin(t, f.google)
	require.NoError(t, err)
	require.Equal(t, auth.PrincipalFederated, sess.Principal.Kind)
	require.Equal(t, "google", sess.Principal.Provider)

	acc, err := f.accounts.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, repository.KindOAuth, acc.Kind)
	require.False(t, acc.HasLocalCredential())

	tok, err := f.tokens.GetByProvider(context.Background(), "google", "g-sub-1")
	require.NoError(t, err)
	require.Equal(t, acc.ID, tok.AccountID)
	require.Equal(t, "g-at", tok.AccessToken)
}

func TestSocialLogin_RepeatLoginReusesAccount(t *testing.T) {
	f := newFixture(t, nil)

	first, err := f.socialLogin(t, f.google)
	require.NoError(t, err)

	// segundo login: cambia el grant pero la federación es la misma
	f.google.grant = oauth.Grant{AccessToken: "g-at-2"}
	second, err := f.socialLogin(t, f.google)
	require.NoError(t, err)

	require.Equal(t, first.Principal.AccountID, second.Principal.AccountID)
	require.Len(t, f.tokens.byID, 1)

	// por defecto el grant guardado queda congelado en el del primer login
	tok, err := f.tokens.GetByProvider(context.Background(), "google", "g-sub-1")
	require.NoError(t, err)
	require.Equal(t, "g-at", tok.AccessToken)
	require.Zero(t, f.tokens.updates)
}

func TestSocialLogin_RefreshProviderTokens(t *testing.T) {
	f := newFixture(t, func(d *auth.Deps) { d.RefreshProviderTokens = true })

	_, err := f.socialLogin(t, f.google)
	require.NoError(t, err)

	f.google.grant = oauth.Grant{AccessToken: "g-at-2", RefreshToken: "g-rt-2"}
	_, err = f.socialLogin(t, f.google)
	require.NoError(t, err)

	tok, err := f.tokens.GetByProvider(context.Background(), "google", "g-sub-1")
	require.NoError(t, err)
	require.Equal(t, "g-at-2", tok.AccessToken)
	require.Equal(t, 1, f.tokens.updates)
}

func TestSocialLogin_TwoProvidersSameEmailOneAccount(t *testing.T) {
	f := newFixture(t, nil)

	g, err := f.socialLogin(t, f.google)
	require.NoError(t, err)
	n, err := f.socialLogin(t, f.naver)
	require.NoError(t, err)

	require.Equal(t, g.Principal.AccountID, n.Principal.AccountID)
	require.Len(t, f.accounts.byID, 1)
	require.Len(t, f.tokens.byID, 2)
}

func TestSocialLogin_LinksExistingLocalAccount(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	local, err := f.svc.Register(ctx, auth.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)

	sess, err := f.socialLogin(t, f.google)
	require.NoError(t, err)
	require.Equal(t, local.ID, sess.Principal.AccountID)

	// la cuenta sigue siendo LOCAL y conserva su password
	acc, err := f.accounts.GetByID(ctx, local.ID)
	require.NoError(t, err)
	require.Equal(t, repository.KindLocal, acc.Kind)
	require.True(t, acc.HasLocalCredential())
}

func TestSocialLogin_LinksLocalAccountWithDifferentEmailCase(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	local, err := f.svc.Register(ctx, auth.RegisterInput{
		Name: "Alice", Email: "Alice@Example.com", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)

	// el proveedor reporta el email con otra capitalización
	f.google.profile["email"] = "Alice@Example.com"

	sess, err := f.socialLogin(t, f.google)
	require.NoError(t, err)
	require.Equal(t, local.ID, sess.Principal.AccountID)
	require.Len(t, f.accounts.byID, 1)
}

func TestSocialLogin_StateIsSingleUse(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "google")
	require.NoError(t, err)
	state := f.google.lastState

	_, err = f.svc.SocialLogin(ctx, "google", "good-code", state)
	require.NoError(t, err)

	// reuso del mismo state
	_, err = f.svc.SocialLogin(ctx, "google", "good-code", state)
	require.ErrorIs(t, err, auth.ErrInvalidFederationState)
}

func TestSocialLogin_StateBoundToProvider(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	// state emitido para google, callback por naver
	_, err := f.svc.Start(ctx, "google")
	require.NoError(t, err)

	_, err = f.svc.SocialLogin(ctx, "naver", "good-code", f.google.lastState)
	require.ErrorIs(t, err, auth.ErrInvalidFederationState)
}

func TestSocialLogin_UnknownState(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.SocialLogin(context.Background(), "google", "good-code", "never-issued")
	require.ErrorIs(t, err, auth.ErrInvalidFederationState)

	_, err = f.svc.SocialLogin(context.Background(), "google", "good-code", "")
	require.ErrorIs(t, err, auth.ErrInvalidFederationState)
}

func TestSocialLogin_UnsupportedProvider(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Start(context.Background(), "kakao")
	require.ErrorIs(t, err, oauth.ErrUnsupportedProvider)
}

func TestSocialLogin_ConcurrentFirstLoginConflict(t *testing.T) {
	f := newFixture(t, nil)

	// simula que otro proceso ganó la carrera: el Create choca y la
	// federación ya existe al re-buscar
	f.tokens.createHk = func(in repository.CreateProviderTokenInput) error {
		f.tokens.createHk = nil
		f.tokens.byID["tok-race"] = &repository.ProviderToken{
			ID:          "tok-race",
			AccountID:   in.AccountID,
			Provider:    in.Provider,
			ProviderID:  in.ProviderID,
			AccessToken: "winner-at",
		}
		return repository.ErrConflict
	}

	sess, err := f.socialLogin(t, f.google)
	require.NoError(t, err)

	// resolvió contra la federación ganadora, sin duplicar
	require.Len(t, f.tokens.byID, 1)
	tok, err := f.tokens.GetByProvider(context.Background(), "google", "g-sub-1")
	require.NoError(t, err)
	require.Equal(t, tok.AccountID, sess.Principal.AccountID)
}

// ───────── unlink ─────────

func TestUnlink_DeletesTokenAndAccount(t *testing.T) {
	f := newFixture(t, nil)

	sess, err := f.socialLogin(t, f.google)
	require.NoError(t, err)

	err = f.svc.Unlink(context.Background(), sess.Principal.AccountID, "google")
	require.NoError(t, err)
	require.Equal(t, 1, f.google.revoked)
	require.Empty(t, f.tokens.byID)
	require.Empty(t, f.accounts.byID)
}

func TestUnlink_RevocationFailureKeepsLocalState(t *testing.T) {
	f := newFixture(t, nil)

	sess, err := f.socialLogin(t, f.google)
	require.NoError(t, err)

	f.google.revokeErr = oauth.ErrRevocation
	err = f.svc.Unlink(context.Background(), sess.Principal.AccountID, "google")
	require.ErrorIs(t, err, oauth.ErrRevocation)

	// nada se borró: la operación queda reintentable
	require.Len(t, f.tokens.byID, 1)
	require.Len(t, f.accounts.byID, 1)
}

func TestUnlink_KeepsLocalAccountWhenConfigured(t *testing.T) {
	f := newFixture(t, func(d *auth.Deps) { d.UnlinkKeepsLocal = true })
	ctx := context.Background()

	local, err := f.svc.Register(ctx, auth.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)

	_, err = f.socialLogin(t, f.google)
	require.NoError(t, err)

	err = f.svc.Unlink(ctx, local.ID, "google")
	require.NoError(t, err)

	// la federación se fue, la cuenta local queda
	require.Empty(t, f.tokens.byID)
	_, err = f.accounts.GetByID(ctx, local.ID)
	require.NoError(t, err)
}

func TestUnlink_NoFederation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	acc, err := f.svc.Register(ctx, auth.RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "Sup3r$ecret",
	})
	require.NoError(t, err)

	err = f.svc.Unlink(ctx, acc.ID, "google")
	require.ErrorIs(t, err, auth.ErrFederationNotFound)
}
