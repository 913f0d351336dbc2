package repository

import (
	"context"
	"time"
)

// Category clasifica un concurso.
type Category string

const (
	CategoryCreativeArtsAndDesign    Category = "CREATIVE_ARTS_AND_DESIGN"
	CategoryTechnologyAndEngineering Category = "TECHNOLOGY_AND_ENGINEERING"
	CategoryBusinessAndAcademic      Category = "BUSINESS_AND_ACADEMIC"
)

// CompetitionType distingue concursos de actividades.
type CompetitionType string

const (
	TypeCompetition CompetitionType = "COMPETITION"
	TypeActivity    CompetitionType = "ACTIVITY"
)

// Competition representa un concurso del calendario.
type Competition struct {
	ID               string
	Name             string
	Description      string
	Host             string
	Location         string
	Support          string
	RequestPath      string
	Category         Category
	CompetitionType  CompetitionType
	StartDate        time.Time
	EndDate          time.Time
	RequestStartDate time.Time
	RequestEndDate   time.Time
	Likes            int64 // contador derivado, sólo en lecturas
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CompetitionFilter opciones de listado.
type CompetitionFilter struct {
	Category        *Category
	CompetitionType *CompetitionType
	Host            string
	// SortBy: start_date | end_date | request_start_date | request_end_date |
	// likes | created_at. Vacío = created_at desc.
	SortBy    string
	Ascending bool
	Limit     int
	Offset    int
}

// CompetitionRepository define operaciones sobre concursos.
type CompetitionRepository interface {
	Create(ctx context.Context, c *Competition) (*Competition, error)
	GetByID(ctx context.Context, id string) (*Competition, error)
	Update(ctx context.Context, c *Competition) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter CompetitionFilter) ([]Competition, error)
	// ListHosts retorna los hosts distintos (para el filtro del listado).
	ListHosts(ctx context.Context) ([]string, error)
}

// LikeRepository define operaciones sobre likes de concursos.
// El par (competition, account) es único: un like por cuenta.
type LikeRepository interface {
	// Like registra un like. Idempotente: repetir no es error ni duplica.
	Like(ctx context.Context, competitionID, accountID string) error

	// Unlike elimina un like. Retorna ErrNotFound si no existía.
	Unlike(ctx context.Context, competitionID, accountID string) error

	// Count retorna la cantidad de likes de un concurso.
	Count(ctx context.Context, competitionID string) (int64, error)

	// Liked indica si la cuenta ya likeó el concurso.
	Liked(ctx context.Context, competitionID, accountID string) (bool, error)
}
