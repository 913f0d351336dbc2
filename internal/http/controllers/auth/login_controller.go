package auth

import (
	"errors"
	"net/http"

	authsvc "github.com/dropDatabas3/quicklendar/internal/auth"
	httperrors "github.com/dropDatabas3/quicklendar/internal/http/errors"
	"github.com/dropDatabas3/quicklendar/internal/http/helpers"
	"github.com/dropDatabas3/quicklendar/internal/metrics"
	"github.com/dropDatabas3/quicklendar/internal/observability/logger"
)

// LoginController handles POST /v1/auth/login.
type LoginController struct {
	service *authsvc.Service
}

// NewLoginController creates a new login controller.
func NewLoginController(service *authsvc.Service) *LoginController {
	return &LoginController{service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string   `json:"token"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Login authenticates email+password and returns a session token.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req loginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("email and password are required"))
		return
	}

	sess, err := c.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		metrics.RecordLogin("local", "failed")
		switch {
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		case errors.Is(err, authsvc.ErrAccountDisabled):
			httperrors.WriteError(w, httperrors.ErrAccountDisabled)
		default:
			log.Error("login failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		}
		return
	}

	metrics.RecordLogin("local", "ok")
	helpers.WriteJSON(w, http.StatusOK, sessionResponse{
		Token: sess.Token,
		Email: sess.Principal.Email,
		Roles: sess.Principal.Roles,
	})
}
