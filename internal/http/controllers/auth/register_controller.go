// Package auth contains the controllers for local authentication.
package auth

import (
	"errors"
	"net/http"

	authsvc "github.com/dropDatabas3/quicklendar/internal/auth"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	"github.com/dropDatabas3/quicklendar/internal/email"
	httperrors "github.com/dropDatabas3/quicklendar/internal/http/errors"
	"github.com/dropDatabas3/quicklendar/internal/http/helpers"
	"github.com/dropDatabas3/quicklendar/internal/metrics"
	"github.com/dropDatabas3/quicklendar/internal/observability/logger"
)

// RegisterController handles POST /v1/auth/register.
type RegisterController struct {
	service *authsvc.Service
	welcome *email.WelcomeMailer
}

// NewRegisterController creates a new register controller.
// welcome may be nil when the welcome mail is disabled.
func NewRegisterController(service *authsvc.Service, welcome *email.WelcomeMailer) *RegisterController {
	return &RegisterController{service: service, welcome: welcome}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type accountResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Kind    string `json:"kind"`
	Enabled bool   `json:"enabled"`
}

func toAccountResponse(a *repository.Account) accountResponse {
	resp := accountResponse{
		ID:      a.ID,
		Name:    a.Name,
		Email:   a.Email,
		Kind:    string(a.Kind),
		Enabled: a.Enabled,
	}
	if a.Phone != nil {
		resp.Phone = *a.Phone
	}
	return resp
}

// Register handles the local signup request.
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RegisterController.Register"))

	var req registerRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("name, email and password are required"))
		return
	}

	acc, err := c.service.Register(ctx, authsvc.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		c.handleError(w, err)
		return
	}

	metrics.RegistrationsTotal.Inc()

	// Welcome mail is best-effort, the signup does not wait on SMTP
	if c.welcome != nil {
		go func(to, name string) {
			if err := c.welcome.SendWelcome(to, name); err != nil {
				logger.L().Warn("welcome mail failed", logger.Email(to), logger.Err(err))
			}
		}(acc.Email, acc.Name)
	}

	log.Info("account registered", logger.UserID(acc.ID))
	helpers.WriteJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (c *RegisterController) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrDuplicateEmail):
		httperrors.WriteError(w, httperrors.ErrDuplicateEmail)
	case errors.Is(err, authsvc.ErrWeakPassword):
		httperrors.WriteError(w, httperrors.ErrWeakPassword.WithDetail(err.Error()))
	case errors.Is(err, repository.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrBadRequest)
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
