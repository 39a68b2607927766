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

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrGameSeriesInvalid  = errors.New("game series conflict or invalid")
	ErrGamePatternInvalid = errors.New("game pattern conflict or invalid")

	// ErrGameDuplicateOccurrence — вставка нарушила уникальность
	// (pattern_id, date): одновременная генерация уже создала эту игру.
	// Сервис гасит эту ошибку, считая игру существующей.
	ErrGameDuplicateOccurrence = errors.New("game already generated for this pattern and date")
)

type GameRepository interface {
	// Create вставляет игру через ON CONFLICT DO NOTHING по (pattern_id, date);
	// проигранная гонка возвращает ErrGameDuplicateOccurrence.
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ExistsByPatternAndDate(ctx context.Context, patternID int, date time.Time) (bool, error)
	ListByDate(ctx context.Context, date time.Time) ([]*models.Game, error)
	ListBySeriesAndDateRange(ctx context.Context, seriesID int, from, to time.Time) ([]*models.Game, error)
	ListAttendance(ctx context.Context, gameID int) ([]models.GameAttendance, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `id, series_id, pattern_id, name, description, date, start_time, end_time,
	location, min_players, max_players, status, created_at`

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	query := `
		INSERT INTO games
			(series_id, pattern_id, name, description, date, start_time, end_time,
			 location, min_players, max_players, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (pattern_id, date) DO NOTHING
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		game.SeriesID,
		game.PatternID,
		game.Name,
		game.Description,
		game.Date,
		game.StartTime,
		game.EndTime,
		game.Location,
		game.MinPlayers,
		game.MaxPlayers,
		game.Status,
	).Scan(&game.ID, &game.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		// DO NOTHING сработал: строку успела вставить параллельная генерация.
		return ErrGameDuplicateOccurrence
	}
	return r.handleGameError(err)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game by id %d: %w", id, err)
	}
	return game, nil
}

func (r *postgresGameRepository) ExistsByPatternAndDate(ctx context.Context, patternID int, date time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM games WHERE pattern_id = $1 AND date = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, patternID, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check game existence for pattern %d: %w", patternID, err)
	}
	return exists, nil
}

func (r *postgresGameRepository) ListByDate(ctx context.Context, date time.Time) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE date = $1 ORDER BY start_time ASC, id ASC`
	return r.listGames(ctx, query, date)
}

func (r *postgresGameRepository) ListBySeriesAndDateRange(ctx context.Context, seriesID int, from, to time.Time) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games
		WHERE series_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC, start_time ASC, id ASC`
	return r.listGames(ctx, query, seriesID, from, to)
}

func (r *postgresGameRepository) listGames(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		game, scanErr := scanGame(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", scanErr)
		}
		games = append(games, game)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during game rows iteration: %w", err)
	}
	return games, nil
}

func (r *postgresGameRepository) ListAttendance(ctx context.Context, gameID int) ([]models.GameAttendance, error) {
	query := `SELECT id, game_id, user_id, status, created_at
		FROM game_attendance WHERE game_id = $1 ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance for game %d: %w", gameID, err)
	}
	defer rows.Close()

	attendance := make([]models.GameAttendance, 0)
	for rows.Next() {
		var att models.GameAttendance
		if scanErr := rows.Scan(&att.ID, &att.GameID, &att.UserID, &att.Status, &att.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", scanErr)
		}
		attendance = append(attendance, att)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during attendance rows iteration: %w", err)
	}
	return attendance, nil
}

func scanGame(row rowScanner) (*models.Game, error) {
	game := &models.Game{}
	err := row.Scan(
		&game.ID,
		&game.SeriesID,
		&game.PatternID,
		&game.Name,
		&game.Description,
		&game.Date,
		&game.StartTime,
		&game.EndTime,
		&game.Location,
		&game.MinPlayers,
		&game.MaxPlayers,
		&game.Status,
		&game.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		// "23505": unique_violation
		switch pqErr.Constraint {
		case "games_series_id_fkey":
			return ErrGameSeriesInvalid
		case "games_pattern_id_fkey":
			return ErrGamePatternInvalid
		case "games_pattern_id_date_key":
			return ErrGameDuplicateOccurrence
		}
	}
	return err
}
