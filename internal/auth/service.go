package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/quicklendar/internal/cache"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	"github.com/dropDatabas3/quicklendar/internal/oauth"
	"github.com/dropDatabas3/quicklendar/internal/observability/logger"
	"github.com/dropDatabas3/quicklendar/internal/security/password"
	tokens "github.com/dropDatabas3/quicklendar/internal/security/token"
	"github.com/dropDatabas3/quicklendar/internal/session"
)

// Errores del servicio.
var (
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials es uniforme para email inexistente, cuenta sin
	// password y password incorrecto: no filtrar cuál falló.
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrWeakPassword           = errors.New("password does not meet policy")
	ErrInvalidFederationState = errors.New("invalid or expired federation state")
	ErrAccountDisabled        = errors.New("account disabled")
	ErrFederationNotFound     = errors.New("no federation with that provider")
)

// RoleUser es el rol por defecto de toda cuenta.
const RoleUser = "USER"

const statePrefix = "oauth:state"

// Deps contiene las dependencias del servicio de autenticación.
type Deps struct {
	Accounts  repository.AccountRepository
	Tokens    repository.ProviderTokenRepository
	Providers *oauth.Registry
	Issuer    *session.Issuer
	Cache     cache.Client

	PasswordPolicy password.Policy
	PasswordParams password.Params

	// StateTTL acota la validez del state emitido en Start.
	StateTTL time.Duration
	// RefreshProviderTokens y UnlinkKeepsLocal parametrizan el linker.
	RefreshProviderTokens bool
	UnlinkKeepsLocal      bool
}

// Service es la fachada de autenticación que consumen los controllers.
type Service struct {
	deps   Deps
	linker *Linker
}

// NewService crea el servicio de autenticación.
func NewService(deps Deps) *Service {
	return &Service{
		deps: deps,
		linker: &Linker{
			Accounts:           deps.Accounts,
			Tokens:             deps.Tokens,
			RefreshTokenValues: deps.RefreshProviderTokens,
		},
	}
}

// RegisterInput datos del registro local.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Session es el resultado de cualquier login exitoso.
type Session struct {
	Token     string
	Principal Principal
}

// Register crea una cuenta local. El password debe cumplir la política.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*repository.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Register"),
	)

	email := normalizeEmail(in.Email)
	if email == "" || in.Name == "" {
		return nil, repository.ErrInvalidInput
	}
	if ok, reasons := s.deps.PasswordPolicy.Validate(in.Password); !ok {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(reasons, ", "))
	}

	hash, err := password.Hash(s.deps.PasswordParams, in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc, err := s.deps.Accounts.Create(ctx, repository.CreateAccountInput{
		Name:         in.Name,
		Email:        email,
		PasswordHash: &hash,
		Phone:        nilIfEmpty(in.Phone),
		Kind:         repository.KindLocal,
		Enabled:      true,
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, err
	}

	log.Info("account registered", logger.UserID(acc.ID))
	return acc, nil
}

// Login autentica email+password y emite un token de sesión.
func (s *Service) Login(ctx context.Context, email, plain string) (*Session, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Login"),
	)

	acc, err := s.deps.Accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !acc.HasLocalCredential() || !password.Verify(plain, *acc.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !acc.Enabled {
		return nil, ErrAccountDisabled
	}

	sess, err := s.issue(acc, PrincipalLocal, "")
	if err != nil {
		return nil, err
	}
	log.Info("local login", logger.UserID(acc.ID))
	return sess, nil
}

// Start arranca un login federado: emite un state efímero y retorna la URL
// de autorización del proveedor.
func (s *Service) Start(ctx context.Context, provider string) (authorizeURL string, err error) {
	p, err := s.deps.Providers.Get(provider)
	if err != nil {
		return "", err
	}
	state, err := tokens.GenerateOpaqueToken(24)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	key := statePrefix + ":" + state
	if err := s.deps.Cache.Set(ctx, key, p.Name(), s.deps.StateTTL); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}
	return p.AuthorizeURL(state), nil
}

// SocialLogin completa el callback del proveedor: valida el state, canjea el
// code, normaliza el perfil, resuelve la cuenta local y emite el token.
func (s *Service) SocialLogin(ctx context.Context, provider, code, state string) (*Session, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("SocialLogin"),
		logger.Provider(provider),
	)

	p, err := s.deps.Providers.Get(provider)
	if err != nil {
		return nil, err
	}
	if err := s.consumeState(ctx, p.Name(), state); err != nil {
		return nil, err
	}

	grant, err := p.ExchangeCode(ctx, code, state)
	if err != nil {
		return nil, err
	}
	attrs, err := p.FetchProfile(ctx, grant.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	id, err := oauth.Normalize(p.Name(), attrs)
	if err != nil {
		return nil, err
	}

	acc, err := s.linker.Resolve(ctx, id, grant)
	if err != nil {
		return nil, err
	}
	if !acc.Enabled {
		return nil, ErrAccountDisabled
	}

	sess, err := s.issue(acc, PrincipalFederated, p.Name())
	if err != nil {
		return nil, err
	}
	log.Info("federated login", logger.UserID(acc.ID))
	return sess, nil
}

// consumeState valida y quema el state en un solo uso.
func (s *Service) consumeState(ctx context.Context, provider, state string) error {
	if state == "" {
		return ErrInvalidFederationState
	}
	key := statePrefix + ":" + state
	stored, err := s.deps.Cache.Get(ctx, key)
	if err != nil {
		if cache.IsNotFound(err) {
			return ErrInvalidFederationState
		}
		return err
	}
	_ = s.deps.Cache.Delete(ctx, key)
	if stored != provider {
		return ErrInvalidFederationState
	}
	return nil
}

// Unlink desvincula al principal del proveedor dado. Solo el dueño puede
// desvincular su propia federación. La revocación remota es condición
// previa al borrado local.
func (s *Service) Unlink(ctx context.Context, accountID, provider string) error {
	p, err := s.deps.Providers.Get(provider)
	if err != nil {
		return err
	}

	keepAccount := false
	if s.deps.UnlinkKeepsLocal {
		acc, err := s.deps.Accounts.GetByID(ctx, accountID)
		if err != nil {
			return err
		}
		keepAccount = acc.HasLocalCredential()
	}

	err = s.linker.Unlink(ctx, p, accountID, keepAccount)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrFederationNotFound
	}
	return err
}

// Ticket de sesión común a login local y federado.
func (s *Service) issue(acc *repository.Account, kind PrincipalKind, provider string) (*Session, error) {
	roles := []string{RoleUser}
	tok, err := s.deps.Issuer.Issue(acc.Email, roles)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	return &Session{
		Token: tok,
		Principal: Principal{
			AccountID: acc.ID,
			Email:     acc.Email,
			Roles:     roles,
			Kind:      kind,
			Provider:  provider,
		},
	}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
