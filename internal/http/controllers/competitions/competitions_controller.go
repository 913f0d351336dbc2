// Package competitions contains the controllers for the contest calendar.
package competitions

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	authsvc "github.com/dropDatabas3/quicklendar/internal/auth"
	"github.com/dropDatabas3/quicklendar/internal/competition"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	httperrors "github.com/dropDatabas3/quicklendar/internal/http/errors"
	"github.com/dropDatabas3/quicklendar/internal/http/helpers"
	"github.com/dropDatabas3/quicklendar/internal/observability/logger"
)

// Controller handles /v1/competitions.
type Controller struct {
	service *competition.Service
}

// NewController creates a new competitions controller.
func NewController(service *competition.Service) *Controller {
	return &Controller{service: service}
}

type competitionRequest struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Host             string    `json:"host"`
	Location         string    `json:"location"`
	Support          string    `json:"support"`
	RequestPath      string    `json:"request_path"`
	Category         string    `json:"category"`
	CompetitionType  string    `json:"competition_type"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	RequestStartDate time.Time `json:"request_start_date"`
	RequestEndDate   time.Time `json:"request_end_date"`
}

type competitionResponse struct {
	ID string `json:"id"`
	competitionRequest
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toResponse(c *repository.Competition) competitionResponse {
	return competitionResponse{
		ID: c.ID,
		competitionRequest: competitionRequest{
			Name:             c.Name,
			Description:      c.Description,
			Host:             c.Host,
			Location:         c.Location,
			Support:          c.Support,
			RequestPath:      c.RequestPath,
			Category:         string(c.Category),
			CompetitionType:  string(c.CompetitionType),
			StartDate:        c.StartDate,
			EndDate:          c.EndDate,
			RequestStartDate: c.RequestStartDate,
			RequestEndDate:   c.RequestEndDate,
		},
		Likes:     c.Likes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromRequest(req *competitionRequest) *repository.Competition {
	return &repository.Competition{
		Name:             req.Name,
		Description:      req.Description,
		Host:             req.Host,
		Location:         req.Location,
		Support:          req.Support,
		RequestPath:      req.RequestPath,
		Category:         repository.Category(req.Category),
		CompetitionType:  repository.CompetitionType(req.CompetitionType),
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		RequestStartDate: req.RequestStartDate,
		RequestEndDate:   req.RequestEndDate,
	}
}

// competitionID valida el {id} de la URL antes de tocar la base.
// Un id malformado se responde como 404 sin round-trip a postgres.
func competitionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "id")
	if _, err := uuid.Parse(raw); err != nil {
		httperrors.WriteError(w, httperrors.ErrNotFound)
		return "", false
	}
	return raw, true
}

// Create handles POST /v1/competitions.
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("competitions.Create"))

	var req competitionRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	out, err := c.service.Create(ctx, fromRequest(&req))
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, toResponse(out))
}

// Get handles GET /v1/competitions/{id}.
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := competitionID(w, r)
	if !ok {
		return
	}
	out, err := c.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(out))
}

// Update handles PUT /v1/competitions/{id}.
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("competitions.Update"))

	id, ok := competitionID(w, r)
	if !ok {
		return
	}
	var req competitionRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	comp := fromRequest(&req)
	comp.ID = id

	if err := c.service.Update(ctx, comp); err != nil {
		c.handleError(w, err, log)
		return
	}

	out, err := c.service.Get(ctx, comp.ID)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toResponse(out))
}

// Delete handles DELETE /v1/competitions/{id}.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := competitionID(w, r)
	if !ok {
		return
	}
	if err := c.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /v1/competitions with query filters.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.CompetitionFilter{
		Host:      q.Get("host"),
		SortBy:    q.Get("sort_by"),
		Ascending: q.Get("order") == "asc",
	}
	if v := q.Get("category"); v != "" {
		cat := repository.Category(v)
		filter.Category = &cat
	}
	if v := q.Get("type"); v != "" {
		typ := repository.CompetitionType(v)
		filter.CompetitionType = &typ
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	comps, err := c.service.List(r.Context(), filter)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	out := make([]competitionResponse, 0, len(comps))
	for i := range comps {
		out = append(out, toResponse(&comps[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"competitions": out})
}

// Hosts handles GET /v1/competitions/hosts.
func (c *Controller) Hosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := c.service.ListHosts(r.Context())
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	if hosts == nil {
		hosts = []string{}
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"hosts": hosts})
}

// Like handles POST /v1/competitions/{id}/like (authenticated).
func (c *Controller) Like(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := authsvc.PrincipalFrom(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	id, ok := competitionID(w, r)
	if !ok {
		return
	}
	if err := c.service.Like(ctx, id, p.AccountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unlike handles DELETE /v1/competitions/{id}/like (authenticated).
func (c *Controller) Unlike(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := authsvc.PrincipalFrom(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	id, ok := competitionID(w, r)
	if !ok {
		return
	}
	if err := c.service.Unlike(ctx, id, p.AccountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("like not found"))
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, competition.ErrDuplicateName):
		httperrors.WriteError(w, httperrors.ErrConflict.WithDetail("competition name already exists"))
	case errors.Is(err, competition.ErrInvalidDates):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("end date before start date"))
	case errors.Is(err, repository.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail(err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrNotFound)
	default:
		log.Error("competition operation failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
