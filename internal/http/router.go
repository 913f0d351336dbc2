// Package http arma el router y el servidor de la API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/dropDatabas3/quicklendar/internal/auth"
	"github.com/dropDatabas3/quicklendar/internal/competition"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	"github.com/dropDatabas3/quicklendar/internal/email"
	authctl "github.com/dropDatabas3/quicklendar/internal/http/controllers/auth"
	competitionsctl "github.com/dropDatabas3/quicklendar/internal/http/controllers/competitions"
	healthctl "github.com/dropDatabas3/quicklendar/internal/http/controllers/health"
	socialctl "github.com/dropDatabas3/quicklendar/internal/http/controllers/social"
	mw "github.com/dropDatabas3/quicklendar/internal/http/middlewares"
	"github.com/dropDatabas3/quicklendar/internal/rate"
	"github.com/dropDatabas3/quicklendar/internal/security/password"
	"github.com/dropDatabas3/quicklendar/internal/session"
)

// Deps agrupa todo lo que el router necesita.
type Deps struct {
	Auth         *authsvc.Service
	Competitions *competition.Service
	Accounts     repository.AccountRepository
	Tokens       repository.ProviderTokenRepository
	Issuer       *session.Issuer
	Welcome      *email.WelcomeMailer // nil si está apagado

	PasswordPolicy password.Policy
	PasswordParams password.Params

	LoginLimiter    rate.Limiter
	RegisterLimiter rate.Limiter

	CORSAllowedOrigins []string

	// MetricsHandler sirve /metrics. nil lo deshabilita.
	MetricsHandler http.Handler
	// HealthDB y HealthCache reportan liveness en /healthz.
	HealthDB    healthctl.Pinger
	HealthCache healthctl.Pinger
}

// NewRouter construye el router con todas las rutas y middlewares.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	requireAuth := mw.RequireAuth(d.Issuer, d.Accounts)

	register := authctl.NewRegisterController(d.Auth, d.Welcome)
	login := authctl.NewLoginController(d.Auth)
	me := authctl.NewMeController(d.Accounts, d.Tokens, d.PasswordPolicy, d.PasswordParams)
	social := socialctl.NewController(d.Auth)
	comps := competitionsctl.NewController(d.Competitions)
	health := healthctl.NewController(d.HealthDB, d.HealthCache)

	r.Get("/healthz", health.Health)
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.With(mw.WithRateLimit(d.RegisterLimiter, "register")).
				Post("/auth/register", register.Register)
			r.With(mw.WithRateLimit(d.LoginLimiter, "login")).
				Post("/auth/login", login.Login)

			r.Get("/auth/social/{provider}/start", social.Start)
			r.Get("/auth/social/{provider}/callback", social.Callback)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Delete("/auth/social/{provider}", social.Unlink)

			r.Get("/users/me", me.Get)
			r.Put("/users/me", me.Update)
			r.Delete("/users/me", me.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Get("/competitions", comps.List)
			r.Get("/competitions/hosts", comps.Hosts)
			r.Get("/competitions/{id}", comps.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/competitions", comps.Create)
			r.Put("/competitions/{id}", comps.Update)
			r.Delete("/competitions/{id}", comps.Delete)
			r.Post("/competitions/{id}/like", comps.Like)
			r.Delete("/competitions/{id}/like", comps.Unlike)
		})
	})

	// Middlewares externos: request id primero, luego logging y metrics.
	return mw.Chain(r,
		mw.WithRequestID(),
		mw.WithRecover(),
		mw.WithLogging(),
		WithMetrics,
		mw.WithCORS(d.CORSAllowedOrigins),
	)
}
