package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/teamplay/scheduler/models"
)

var ErrAvailabilityUserInvalid = errors.New("availability user conflict or invalid")

type AvailabilityRepository interface {
	// Upsert записывает ответ игрока; повторная запись по тому же
	// (user_id, date, time_slot) перезаписывает предыдущую.
	Upsert(ctx context.Context, record *models.PlayerAvailability) error
	ListByUsersAndDateRange(ctx context.Context, userIDs []int, from, to time.Time) ([]models.PlayerAvailability, error)
}

type postgresAvailabilityRepository struct {
	db *sql.DB
}

func NewPostgresAvailabilityRepository(db *sql.DB) AvailabilityRepository {
	return &postgresAvailabilityRepository{db: db}
}

func (r *postgresAvailabilityRepository) Upsert(ctx context.Context, record *models.PlayerAvailability) error {
	query := `
		INSERT INTO player_availability (user_id, date, time_slot, status, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, date, time_slot)
		DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = NOW()
		RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		record.UserID,
		record.Date,
		record.TimeSlot,
		record.Status,
		record.Notes,
	).Scan(&record.ID, &record.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "player_availability_user_id_fkey":
				return ErrAvailabilityUserInvalid
			}
		}
		return fmt.Errorf("failed to upsert availability for user %d: %w", record.UserID, err)
	}
	return nil
}

func (r *postgresAvailabilityRepository) ListByUsersAndDateRange(ctx context.Context, userIDs []int, from, to time.Time) ([]models.PlayerAvailability, error) {
	if len(userIDs) == 0 {
		return []models.PlayerAvailability{}, nil
	}

	query := `
		SELECT id, user_id, date, time_slot, status, notes, updated_at
		FROM player_availability
		WHERE user_id = ANY($1) AND date >= $2 AND date <= $3
		ORDER BY date ASC, time_slot ASC, user_id ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	records := make([]models.PlayerAvailability, 0)
	for rows.Next() {
		var rec models.PlayerAvailability
		if scanErr := rows.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.TimeSlot, &rec.Status, &rec.Notes, &rec.UpdatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan availability row: %w", scanErr)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during availability rows iteration: %w", err)
	}
	return records, nil
}
