package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/quicklendar/internal/auth"
	"github.com/dropDatabas3/quicklendar/internal/cache"
	"github.com/dropDatabas3/quicklendar/internal/competition"
	"github.com/dropDatabas3/quicklendar/internal/config"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	"github.com/dropDatabas3/quicklendar/internal/email"
	httpserver "github.com/dropDatabas3/quicklendar/internal/http"
	"github.com/dropDatabas3/quicklendar/internal/metrics"
	"github.com/dropDatabas3/quicklendar/internal/oauth"
	"github.com/dropDatabas3/quicklendar/internal/oauth/google"
	"github.com/dropDatabas3/quicklendar/internal/oauth/naver"
	"github.com/dropDatabas3/quicklendar/internal/observability/logger"
	"github.com/dropDatabas3/quicklendar/internal/rate"
	"github.com/dropDatabas3/quicklendar/internal/security/password"
	"github.com/dropDatabas3/quicklendar/internal/session"
	"github.com/dropDatabas3/quicklendar/internal/store/pg"
	pgmigrations "github.com/dropDatabas3/quicklendar/migrations/postgres"
)

var version = "dev"

func main() {
	// .env es opcional, los valores reales pisan por env
	_ = godotenv.Load(".env")

	var configPath string

	root := &cobra.Command{
		Use:   "quicklendar",
		Short: "Quicklendar: calendario de concursos con login local y federado",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "ruta al archivo de configuración")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes y termina",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(configPath)
		},
	}

	var (
		accEnabled string
		accKind    string
		accLimit   int
	)
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Lista cuentas por estado o tipo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccounts(configPath, accEnabled, accKind, accLimit)
		},
	}
	accountsCmd.Flags().StringVar(&accEnabled, "enabled", "", "filtrar por habilitadas: true|false")
	accountsCmd.Flags().StringVar(&accKind, "kind", "", "filtrar por tipo: LOCAL|OAUTH")
	accountsCmd.Flags().IntVar(&accLimit, "limit", 50, "máximo de filas")

	root.AddCommand(serveCmd)
	root.AddCommand(migrateCmd)
	root.AddCommand(accountsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func runMigrate(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := store.Migrate(ctx, pgmigrations.FS)
	if err != nil {
		return err
	}
	logger.L().Info("migrations done",
		logger.Int("applied", len(res.Applied)),
		logger.Int("skipped", len(res.Skipped)),
		logger.Duration(res.Duration),
	)
	return nil
}

func runAccounts(configPath, enabled, kind string, limit int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	filter := repository.AccountFilter{Limit: limit}
	if enabled != "" {
		v := enabled == "true"
		filter.Enabled = &v
	}
	if kind != "" {
		k := repository.AccountKind(strings.ToUpper(kind))
		filter.Kind = &k
	}

	accounts, err := store.Accounts().List(ctx, filter)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		fmt.Printf("%s\t%s\t%s\tenabled=%t\t%s\n", a.ID, a.Email, a.Kind, a.Enabled, a.CreatedAt.Format(time.RFC3339))
	}
	fmt.Printf("total: %d\n", len(accounts))
	return nil
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── storage ──
	store, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Migrate(ctx, pgmigrations.FS); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// ── cache ──
	cacheTTL, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cacheTTL,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cacheClient.Close()

	// ── providers ──
	var providers []oauth.Provider
	if cfg.Providers.Google.Enabled {
		providers = append(providers, google.New(
			cfg.Providers.Google.ClientID,
			cfg.Providers.Google.ClientSecret,
			cfg.Providers.Google.RedirectURL,
			cfg.Providers.Google.Scopes,
		))
	}
	if cfg.Providers.Naver.Enabled {
		providers = append(providers, naver.New(
			cfg.Providers.Naver.ClientID,
			cfg.Providers.Naver.ClientSecret,
			cfg.Providers.Naver.RedirectURL,
		))
	}
	registry := oauth.NewRegistry(providers...)

	// ── sesiones ──
	issuer := session.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret), cfg.AccessTTL())

	policy := password.Policy{
		MinLength:     cfg.Security.PasswordPolicy.MinLength,
		RequireUpper:  cfg.Security.PasswordPolicy.RequireUpper,
		RequireLower:  cfg.Security.PasswordPolicy.RequireLower,
		RequireDigit:  cfg.Security.PasswordPolicy.RequireDigit,
		RequireSymbol: cfg.Security.PasswordPolicy.RequireSymbol,
	}

	authService := auth.NewService(auth.Deps{
		Accounts:              store.Accounts(),
		Tokens:                store.Tokens(),
		Providers:             registry,
		Issuer:                issuer,
		Cache:                 cacheClient,
		PasswordPolicy:        policy,
		PasswordParams:        password.Default,
		StateTTL:              cfg.Auth.StateTTL,
		RefreshProviderTokens: cfg.Auth.RefreshProviderTokens,
		UnlinkKeepsLocal:      cfg.Auth.UnlinkKeepsLocal,
	})

	competitionService := competition.NewService(competition.Deps{
		Competitions: store.Competitions(),
		Likes:        store.Likes(),
		Cache:        cacheClient,
	})

	// ── email ──
	var welcome *email.WelcomeMailer
	if cfg.Email.WelcomeEnabled && cfg.SMTP.Host != "" {
		sender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		sender.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		welcome = &email.WelcomeMailer{Sender: sender, BaseURL: cfg.Email.BaseURL}
	}

	// ── rate limiting ──
	var loginLimiter, registerLimiter rate.Limiter = rate.NoopLimiter{}, rate.NoopLimiter{}
	if cfg.Rate.Enabled {
		loginWindow, _ := time.ParseDuration(cfg.Rate.Login.Window)
		registerWindow, _ := time.ParseDuration(cfg.Rate.Register.Window)
		loginLimiter = rate.NewWindowLimiter(cacheClient, "rl:login", cfg.Rate.Login.Limit, loginWindow)
		registerLimiter = rate.NewWindowLimiter(cacheClient, "rl:register", cfg.Rate.Register.Limit, registerWindow)
	}

	// ── metrics ──
	if err := metrics.RegisterAuth(nil); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	metricsHandler, err := httpserver.RegisterMetrics(httpserver.MetricsConfig{
		Pool: store.Pool,
	})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	handler := httpserver.NewRouter(httpserver.Deps{
		Auth:               authService,
		Competitions:       competitionService,
		Accounts:           store.Accounts(),
		Tokens:             store.Tokens(),
		Issuer:             issuer,
		Welcome:            welcome,
		PasswordPolicy:     policy,
		PasswordParams:     password.Default,
		LoginLimiter:       loginLimiter,
		RegisterLimiter:    registerLimiter,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MetricsHandler:     metricsHandler,
		HealthDB:           store,
		HealthCache:        cacheClient,
	})

	return httpserver.Serve(ctx, cfg.Server.Addr, handler)
}

func connectStore(ctx context.Context, cfg *config.Config) (*pg.Store, error) {
	var lifetime time.Duration
	if cfg.Storage.Postgres.ConnMaxLifetime != "" {
		lifetime, _ = time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
	}
	store, err := pg.Connect(ctx, pg.Options{
		DSN:             cfg.Storage.DSN,
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		ConnMaxLifetime: lifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return store, nil
}

func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "quicklendar",
		Version:     version,
	})
}
