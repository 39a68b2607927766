package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/teamplay/scheduler/models"
)

var (
	ErrPatternNotFound      = errors.New("recurring pattern not found")
	ErrPatternSeriesInvalid = errors.New("recurring pattern series conflict or invalid")
)

type PatternRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pattern *models.RecurringPattern) error
	GetByID(ctx context.Context, id int) (*models.RecurringPattern, error)
	ListBySeries(ctx context.Context, seriesID int) ([]*models.RecurringPattern, error)
	ListActive(ctx context.Context) ([]*models.RecurringPattern, error)
	SetActive(ctx context.Context, id int, active bool) error
}

type postgresPatternRepository struct {
	db *sql.DB
}

func NewPostgresPatternRepository(db *sql.DB) PatternRepository {
	return &postgresPatternRepository{db: db}
}

const patternColumns = `id, series_id, frequency, "interval", day_of_week, name, description,
	start_time, end_time, location, min_players, max_players,
	start_date, end_date, is_active, created_by, created_at`

func (r *postgresPatternRepository) Create(ctx context.Context, exec SQLExecutor, pattern *models.RecurringPattern) error {
	query := `
		INSERT INTO recurring_patterns
			(series_id, frequency, "interval", day_of_week, name, description,
			 start_time, end_time, location, min_players, max_players,
			 start_date, end_date, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		pattern.SeriesID,
		pattern.Frequency,
		pattern.Interval,
		pattern.DayOfWeek,
		pattern.Name,
		pattern.Description,
		pattern.StartTime,
		pattern.EndTime,
		pattern.Location,
		pattern.MinPlayers,
		pattern.MaxPlayers,
		pattern.StartDate,
		pattern.EndDate,
		pattern.IsActive,
		pattern.CreatedBy,
	).Scan(&pattern.ID, &pattern.CreatedAt)

	return r.handlePatternError(err)
}

func (r *postgresPatternRepository) GetByID(ctx context.Context, id int) (*models.RecurringPattern, error) {
	query := `SELECT ` + patternColumns + ` FROM recurring_patterns WHERE id = $1`

	pattern, err := scanPattern(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPatternNotFound
		}
		return nil, fmt.Errorf("failed to scan recurring pattern by id %d: %w", id, err)
	}
	return pattern, nil
}

func (r *postgresPatternRepository) ListBySeries(ctx context.Context, seriesID int) ([]*models.RecurringPattern, error) {
	query := `SELECT ` + patternColumns + ` FROM recurring_patterns WHERE series_id = $1 ORDER BY id ASC`
	return r.listPatterns(ctx, query, seriesID)
}

func (r *postgresPatternRepository) ListActive(ctx context.Context) ([]*models.RecurringPattern, error) {
	query := `SELECT ` + patternColumns + ` FROM recurring_patterns WHERE is_active = TRUE ORDER BY id ASC`
	return r.listPatterns(ctx, query)
}

func (r *postgresPatternRepository) listPatterns(ctx context.Context, query string, args ...interface{}) ([]*models.RecurringPattern, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring patterns: %w", err)
	}
	defer rows.Close()

	patterns := make([]*models.RecurringPattern, 0)
	for rows.Next() {
		pattern, scanErr := scanPattern(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan recurring pattern row: %w", scanErr)
		}
		patterns = append(patterns, pattern)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during recurring pattern rows iteration: %w", err)
	}
	return patterns, nil
}

func (r *postgresPatternRepository) SetActive(ctx context.Context, id int, active bool) error {
	query := `UPDATE recurring_patterns SET is_active = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPatternNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPattern(row rowScanner) (*models.RecurringPattern, error) {
	pattern := &models.RecurringPattern{}
	err := row.Scan(
		&pattern.ID,
		&pattern.SeriesID,
		&pattern.Frequency,
		&pattern.Interval,
		&pattern.DayOfWeek,
		&pattern.Name,
		&pattern.Description,
		&pattern.StartTime,
		&pattern.EndTime,
		&pattern.Location,
		&pattern.MinPlayers,
		&pattern.MaxPlayers,
		&pattern.StartDate,
		&pattern.EndDate,
		&pattern.IsActive,
		&pattern.CreatedBy,
		&pattern.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pattern, nil
}

func (r *postgresPatternRepository) handlePatternError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		switch pqErr.Constraint {
		case "recurring_patterns_series_id_fkey":
			return ErrPatternSeriesInvalid
		}
	}
	return err
}
