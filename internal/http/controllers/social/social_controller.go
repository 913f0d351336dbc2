// Package social contains the controllers for federated login.
package social

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/dropDatabas3/quicklendar/internal/auth"
	httperrors "github.com/dropDatabas3/quicklendar/internal/http/errors"
	"github.com/dropDatabas3/quicklendar/internal/http/helpers"
	"github.com/dropDatabas3/quicklendar/internal/metrics"
	"github.com/dropDatabas3/quicklendar/internal/oauth"
	"github.com/dropDatabas3/quicklendar/internal/observability/logger"
)

// Controller handles the social login flow:
//
//	GET    /v1/auth/social/{provider}/start     -> redirect to provider
//	GET    /v1/auth/social/{provider}/callback  -> code exchange + session token
//	DELETE /v1/auth/social/{provider}           -> unlink (authenticated)
type Controller struct {
	service *authsvc.Service
}

// NewController creates a new social controller.
func NewController(service *authsvc.Service) *Controller {
	return &Controller{service: service}
}

// Start issues a one-shot state and redirects to the provider consent page.
func (c *Controller) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")

	url, err := c.service.Start(ctx, provider)
	if err != nil {
		if errors.Is(err, oauth.ErrUnsupportedProvider) {
			httperrors.WriteError(w, httperrors.ErrUnsupportedProvider)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

type callbackResponse struct {
	Token    string   `json:"token"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Provider string   `json:"provider"`
}

// Callback completes the provider round-trip and issues the session token.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("social.Callback"),
		logger.Provider(provider),
	)

	q := r.URL.Query()
	code := q.Get("code")
	state := q.Get("state")
	if code == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("code is required"))
		return
	}

	sess, err := c.service.SocialLogin(ctx, provider, code, state)
	if err != nil {
		metrics.RecordLogin(provider, "failed")
		c.handleError(w, err, log)
		return
	}

	metrics.RecordLogin(provider, "ok")
	helpers.WriteJSON(w, http.StatusOK, callbackResponse{
		Token:    sess.Token,
		Email:    sess.Principal.Email,
		Roles:    sess.Principal.Roles,
		Provider: sess.Principal.Provider,
	})
}

// Unlink revokes the provider grant and removes the federation.
// Only the owner of the federation can unlink it.
func (c *Controller) Unlink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("social.Unlink"),
		logger.Provider(provider),
	)

	p, ok := authsvc.PrincipalFrom(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	if err := c.service.Unlink(ctx, p.AccountID, provider); err != nil {
		metrics.RecordUnlink(provider, "failed")
		switch {
		case errors.Is(err, oauth.ErrUnsupportedProvider):
			httperrors.WriteError(w, httperrors.ErrUnsupportedProvider)
		case errors.Is(err, authsvc.ErrFederationNotFound):
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("no federation with that provider"))
		case errors.Is(err, oauth.ErrRevocation):
			log.Warn("provider revocation failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrProviderUpstream.WithDetail("revocation failed, nothing was deleted"))
		default:
			log.Error("unlink failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	metrics.RecordUnlink(provider, "ok")
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, oauth.ErrUnsupportedProvider):
		httperrors.WriteError(w, httperrors.ErrUnsupportedProvider)
	case errors.Is(err, authsvc.ErrInvalidFederationState):
		httperrors.WriteError(w, httperrors.ErrInvalidState)
	case errors.Is(err, oauth.ErrExchange):
		httperrors.WriteError(w, httperrors.ErrProviderUpstream.WithDetail("code exchange failed"))
	case errors.Is(err, oauth.ErrMalformedProfile):
		httperrors.WriteError(w, httperrors.ErrProviderUpstream.WithDetail("malformed provider profile"))
	case errors.Is(err, authsvc.ErrAccountDisabled):
		httperrors.WriteError(w, httperrors.ErrAccountDisabled)
	default:
		log.Error("social login failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
