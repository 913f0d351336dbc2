// Package competition implementa el calendario de concursos: CRUD, likes y
// listados cacheados.
package competition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/quicklendar/internal/cache"
	"github.com/dropDatabas3/quicklendar/internal/domain/repository"
	"github.com/dropDatabas3/quicklendar/internal/observability/logger"
)

// Errores del servicio.
var (
	ErrDuplicateName = errors.New("competition name already exists")
	ErrInvalidDates  = errors.New("end date before start date")
)

const listTTL = 30 * time.Second

// Deps contiene las dependencias del servicio de concursos.
type Deps struct {
	Competitions repository.CompetitionRepository
	Likes        repository.LikeRepository
	Cache        cache.Client
}

// Service es la fachada de concursos que consumen los controllers.
type Service struct {
	deps Deps
	sf   singleflight.Group
}

// NewService crea el servicio de concursos.
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Create valida y crea un concurso.
func (s *Service) Create(ctx context.Context, c *repository.Competition) (*repository.Competition, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	out, err := s.deps.Competitions.Create(ctx, c)
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("competition created",
		logger.Layer("service"),
		logger.Component("competition"),
		logger.CompetitionID(out.ID),
	)
	return out, nil
}

// Get busca un concurso por ID.
func (s *Service) Get(ctx context.Context, id string) (*repository.Competition, error) {
	return s.deps.Competitions.GetByID(ctx, id)
}

// Update valida y actualiza un concurso existente.
func (s *Service) Update(ctx context.Context, c *repository.Competition) error {
	if err := validate(c); err != nil {
		return err
	}
	err := s.deps.Competitions.Update(ctx, c)
	if errors.Is(err, repository.ErrConflict) {
		return ErrDuplicateName
	}
	return err
}

// Delete borra un concurso y sus likes.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.deps.Competitions.Delete(ctx, id)
}

// List lista concursos con un cache corto por combinación de filtros.
// singleflight colapsa misses concurrentes de la misma key en una sola
// consulta a la base.
func (s *Service) List(ctx context.Context, filter repository.CompetitionFilter) ([]repository.Competition, error) {
	key := listKey(filter)

	if raw, err := s.deps.Cache.Get(ctx, key); err == nil {
		var comps []repository.Competition
		if err := json.Unmarshal([]byte(raw), &comps); err == nil {
			return comps, nil
		}
		// entrada corrupta, seguir al origen
	}

	v, err, _ := s.sf.Do(key, func() (any, error) {
		comps, err := s.deps.Competitions.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(comps); err == nil {
			_ = s.deps.Cache.Set(ctx, key, string(raw), listTTL)
		}
		return comps, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]repository.Competition), nil
}

// ListHosts retorna los hosts distintos para el filtro del listado.
func (s *Service) ListHosts(ctx context.Context) ([]string, error) {
	return s.deps.Competitions.ListHosts(ctx)
}

// Like registra el like de una cuenta. Idempotente.
func (s *Service) Like(ctx context.Context, competitionID, accountID string) error {
	if _, err := s.deps.Competitions.GetByID(ctx, competitionID); err != nil {
		return err
	}
	return s.deps.Likes.Like(ctx, competitionID, accountID)
}

// Unlike quita el like de una cuenta.
func (s *Service) Unlike(ctx context.Context, competitionID, accountID string) error {
	return s.deps.Likes.Unlike(ctx, competitionID, accountID)
}

// Liked indica si la cuenta ya likeó el concurso.
func (s *Service) Liked(ctx context.Context, competitionID, accountID string) (bool, error) {
	return s.deps.Likes.Liked(ctx, competitionID, accountID)
}

func validate(c *repository.Competition) error {
	if c.Name == "" || c.Host == "" {
		return repository.ErrInvalidInput
	}
	switch c.Category {
	case repository.CategoryCreativeArtsAndDesign,
		repository.CategoryTechnologyAndEngineering,
		repository.CategoryBusinessAndAcademic:
	default:
		return fmt.Errorf("%w: unknown category %q", repository.ErrInvalidInput, c.Category)
	}
	switch c.CompetitionType {
	case repository.TypeCompetition, repository.TypeActivity:
	default:
		return fmt.Errorf("%w: unknown type %q", repository.ErrInvalidInput, c.CompetitionType)
	}
	if c.EndDate.Before(c.StartDate) || c.RequestEndDate.Before(c.RequestStartDate) {
		return ErrInvalidDates
	}
	return nil
}

func listKey(f repository.CompetitionFilter) string {
	cat, typ := "", ""
	if f.Category != nil {
		cat = string(*f.Category)
	}
	if f.CompetitionType != nil {
		typ = string(*f.CompetitionType)
	}
	return fmt.Sprintf("competitions:list:%s:%s:%s:%s:%t:%d:%d",
		cat, typ, f.Host, f.SortBy, f.Ascending, f.Limit, f.Offset)
}
