package auth

import (
	"errors"
	"net/http"

	authsvc "github.com/dropDatabas3/quicklendar/internal/auth"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	httperrors "github.com/dropDatabas3/quicklendar/internal/http/errors"
	"github.com/dropDatabas3/quicklendar/internal/http/helpers"
	"github.com/dropDatabas3/quicklendar/internal/observability/logger"
	"github.com/dropDatabas3/quicklendar/internal/security/password"
)

// MeController handles /v1/users/me.
type MeController struct {
	accounts       repository.AccountRepository
	tokens         repository.ProviderTokenRepository
	passwordPolicy password.Policy
	passwordParams password.Params
}

// NewMeController creates a new profile controller.
func NewMeController(accounts repository.AccountRepository, tokens repository.ProviderTokenRepository, policy password.Policy, params password.Params) *MeController {
	return &MeController{
		accounts:       accounts,
		tokens:         tokens,
		passwordPolicy: policy,
		passwordParams: params,
	}
}

type meResponse struct {
	accountResponse
	Federations []string `json:"federations"`
}

// Get returns the authenticated account and its linked providers.
func (c *MeController) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := authsvc.PrincipalFrom(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	acc, err := c.accounts.GetByID(ctx, p.AccountID)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrNotFound)
		return
	}

	toks, err := c.tokens.ListByAccount(ctx, p.AccountID)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	federations := make([]string, 0, len(toks))
	for _, t := range toks {
		federations = append(federations, t.Provider)
	}

	helpers.WriteJSON(w, http.StatusOK, meResponse{
		accountResponse: toAccountResponse(acc),
		Federations:     federations,
	})
}

type updateMeRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Update modifies name, phone or password of the authenticated account.
func (c *MeController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MeController.Update"))

	p, ok := authsvc.PrincipalFrom(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req updateMeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Name == nil && req.Phone == nil && req.Password == nil {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("nothing to update"))
		return
	}

	input := repository.UpdateAccountInput{Name: req.Name, Phone: req.Phone}
	if req.Password != nil {
		if ok, reasons := c.passwordPolicy.Validate(*req.Password); !ok {
			detail := "password policy"
			if len(reasons) > 0 {
				detail = reasons[0]
			}
			httperrors.WriteError(w, httperrors.ErrWeakPassword.WithDetail(detail))
			return
		}
		hash, err := password.Hash(c.passwordParams, *req.Password)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
			return
		}
		input.PasswordHash = &hash
	}

	if err := c.accounts.Update(ctx, p.AccountID, input); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	acc, err := c.accounts.GetByID(ctx, p.AccountID)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	log.Info("profile updated", logger.UserID(p.AccountID))
	helpers.WriteJSON(w, http.StatusOK, toAccountResponse(acc))
}

// Delete removes the authenticated account and its federations.
//
// No provider-side revocation happens here: federations are dropped by the
// FK cascade only. Unlink is the revoke-first path; deleting the whole
// account must not be blocked by an unreachable provider.
func (c *MeController) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("MeController.Delete"))

	p, ok := authsvc.PrincipalFrom(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	if err := c.accounts.Delete(ctx, p.AccountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	log.Info("account deleted", logger.UserID(p.AccountID))
	w.WriteHeader(http.StatusNoContent)
}
