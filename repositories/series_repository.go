package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teamplay/scheduler/models"
)

var ErrSeriesNotFound = errors.New("series not found")

type SeriesRepository interface {
	GetByID(ctx context.Context, id int) (*models.Series, error)
}

type postgresSeriesRepository struct {
	db *sql.DB
}

func NewPostgresSeriesRepository(db *sql.DB) SeriesRepository {
	return &postgresSeriesRepository{db: db}
}

func (r *postgresSeriesRepository) GetByID(ctx context.Context, id int) (*models.Series, error) {
	query := `
		SELECT id, team_id, name, description, location, created_by, created_at
		FROM series WHERE id = $1`

	series := &models.Series{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&series.ID,
		&series.TeamID,
		&series.Name,
		&series.Description,
		&series.Location,
		&series.CreatedBy,
		&series.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to scan series by id %d: %w", id, err)
	}
	return series, nil
}
