package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/teamplay/scheduler/models"
	"github.com/teamplay/scheduler/repositories"
	"github.com/teamplay/scheduler/schedule"
)

// ScheduleBroadcaster рассылает события расписания подписчикам серии
// (реализуется websocket-хабом; в тестах может быть nil).
type ScheduleBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type SchedulingService interface {
	CreatePattern(ctx context.Context, pattern *models.RecurringPattern) (*models.RecurringPattern, error)
	GetPattern(ctx context.Context, id int) (*models.RecurringPattern, error)
	ListPatternsBySeries(ctx context.Context, seriesID int) ([]*models.RecurringPattern, error)
	SetPatternActive(ctx context.Context, id int, active bool) error

	GenerateGamesFromPattern(ctx context.Context, patternID int, from, to time.Time) ([]int, error)
	GenerateUpcomingGames(ctx context.Context, horizonDays int) (int, error)

	DetectConflicts(ctx context.Context, gameID int) (*models.ConflictReport, error)
	FindOptimalTimeSlot(ctx context.Context, seriesID int, date time.Time, durationMinutes, minPlayers, maxPlayers int) (*models.CandidateSlot, error)
}

type schedulingService struct {
	exec             repositories.SQLExecutor
	patternRepo      repositories.PatternRepository
	gameRepo         repositories.GameRepository
	seriesRepo       repositories.SeriesRepository
	teamRepo         repositories.TeamRepository
	availabilityRepo repositories.AvailabilityRepository
	catalog          models.SlotCatalog
	hub              ScheduleBroadcaster
	logger           *slog.Logger
}

func NewSchedulingService(
	exec repositories.SQLExecutor,
	patternRepo repositories.PatternRepository,
	gameRepo repositories.GameRepository,
	seriesRepo repositories.SeriesRepository,
	teamRepo repositories.TeamRepository,
	availabilityRepo repositories.AvailabilityRepository,
	catalog models.SlotCatalog,
	hub ScheduleBroadcaster,
	logger *slog.Logger,
) SchedulingService {
	return &schedulingService{
		exec:             exec,
		patternRepo:      patternRepo,
		gameRepo:         gameRepo,
		seriesRepo:       seriesRepo,
		teamRepo:         teamRepo,
		availabilityRepo: availabilityRepo,
		catalog:          catalog,
		hub:              hub,
		logger:           logger,
	}
}

func (s *schedulingService) CreatePattern(ctx context.Context, pattern *models.RecurringPattern) (*models.RecurringPattern, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}
	if _, err := s.seriesRepo.GetByID(ctx, pattern.SeriesID); err != nil {
		if errors.Is(err, repositories.ErrSeriesNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to load series %d: %w", pattern.SeriesID, err)
	}
	pattern.IsActive = true
	if err := s.patternRepo.Create(ctx, s.exec, pattern); err != nil {
		if errors.Is(err, repositories.ErrPatternSeriesInvalid) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to create recurring pattern: %w", err)
	}
	return pattern, nil
}

func (s *schedulingService) GetPattern(ctx context.Context, id int) (*models.RecurringPattern, error) {
	pattern, err := s.patternRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPatternNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, fmt.Errorf("failed to load pattern %d: %w", id, err)
	}
	return pattern, nil
}

func (s *schedulingService) ListPatternsBySeries(ctx context.Context, seriesID int) ([]*models.RecurringPattern, error) {
	patterns, err := s.patternRepo.ListBySeries(ctx, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patterns for series %d: %w", seriesID, err)
	}
	return patterns, nil
}

func (s *schedulingService) SetPatternActive(ctx context.Context, id int, active bool) error {
	if err := s.patternRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repositories.ErrPatternNotFound) {
			return ErrPatternNotFound
		}
		return fmt.Errorf("failed to toggle pattern %d: %w", id, err)
	}
	return nil
}

// GenerateGamesFromPattern разворачивает паттерн в окне [from, to] и
// сохраняет недостающие игры. Повторные вызовы по пересекающимся окнам
// не создают дубликатов: каждая дата проверяется на существование, а
// проигранная гонка на вставке (ON CONFLICT) гасится как "уже есть".
// Первая же другая ошибка хранилища прерывает генерацию.
func (s *schedulingService) GenerateGamesFromPattern(ctx context.Context, patternID int, from, to time.Time) ([]int, error) {
	pattern, err := s.GetPattern(ctx, patternID)
	if err != nil {
		return nil, err
	}
	if !pattern.IsActive {
		return nil, ErrPatternInactive
	}
	if err := validateForGeneration(pattern); err != nil {
		return nil, err
	}

	occurrences, err := schedule.ExpandPattern(pattern, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to expand pattern %d: %w", patternID, err)
	}

	createdIDs := make([]int, 0, len(occurrences))
	for _, occ := range occurrences {
		exists, err := s.gameRepo.ExistsByPatternAndDate(ctx, pattern.ID, occ.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to check occurrence %s of pattern %d: %w", occ.Date.Format("2006-01-02"), pattern.ID, err)
		}
		if exists {
			continue
		}

		game := gameFromOccurrence(pattern, occ)
		if err := s.gameRepo.Create(ctx, s.exec, game); err != nil {
			if errors.Is(err, repositories.ErrGameDuplicateOccurrence) {
				// Параллельная генерация успела первой — идемпотентность
				// важнее того, кто именно вставил строку.
				continue
			}
			return nil, fmt.Errorf("failed to persist occurrence %s of pattern %d: %w", occ.Date.Format("2006-01-02"), pattern.ID, err)
		}
		createdIDs = append(createdIDs, game.ID)
	}

	if len(createdIDs) > 0 && s.hub != nil {
		s.hub.BroadcastToRoom(fmt.Sprintf("series:%d", pattern.SeriesID), map[string]interface{}{
			"type":       "GAMES_GENERATED",
			"pattern_id": pattern.ID,
			"game_ids":   createdIDs,
		})
	}
	return createdIDs, nil
}

// GenerateUpcomingGames прогоняет генерацию для всех активных паттернов на
// horizonDays вперёд. Ошибка одного паттерна логируется и не останавливает
// остальные; возвращается число созданных игр.
func (s *schedulingService) GenerateUpcomingGames(ctx context.Context, horizonDays int) (int, error) {
	patterns, err := s.patternRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active patterns: %w", err)
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, horizonDays)

	created := 0
	for _, pattern := range patterns {
		ids, err := s.GenerateGamesFromPattern(ctx, pattern.ID, from, to)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("sweep: pattern generation failed",
					slog.Int("pattern_id", pattern.ID), slog.Any("error", err))
			}
			continue
		}
		created += len(ids)
	}
	return created, nil
}

// DetectConflicts собирает входы детектора (другие игры даты, заявки,
// ответы игроков) и возвращает классифицированный отчёт. Чтение без
// побочных эффектов.
func (s *schedulingService) DetectConflicts(ctx context.Context, gameID int) (*models.ConflictReport, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to load game %d: %w", gameID, err)
	}

	var (
		others     []*models.Game
		attendance []models.GameAttendance
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		others, err = s.gameRepo.ListByDate(gCtx, game.Date)
		return err
	})
	g.Go(func() error {
		var err error
		attendance, err = s.gameRepo.ListAttendance(gCtx, game.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load conflict inputs for game %d: %w", gameID, err)
	}

	userIDs := make([]int, 0, len(attendance))
	for _, att := range attendance {
		userIDs = append(userIDs, att.UserID)
	}
	records, err := s.availabilityRepo.ListByUsersAndDateRange(ctx, userIDs, game.Date, game.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability for game %d: %w", gameID, err)
	}

	detector := schedule.NewConflictDetector(s.catalog)
	return detector.Detect(game, others, attendance, schedule.NewAvailabilityIndex(records)), nil
}

// FindOptimalTimeSlot ищет лучший канонический слот даты для серии.
// Отсутствие подходящего слота — валидный пустой результат (nil, nil),
// внешний слой переводит его в 404.
func (s *schedulingService) FindOptimalTimeSlot(ctx context.Context, seriesID int, date time.Time, durationMinutes, minPlayers, maxPlayers int) (*models.CandidateSlot, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if minPlayers < 1 || minPlayers > maxPlayers {
		return nil, ErrInvalidPlayerBounds
	}

	series, err := s.seriesRepo.GetByID(ctx, seriesID)
	if err != nil {
		if errors.Is(err, repositories.ErrSeriesNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, fmt.Errorf("failed to load series %d: %w", seriesID, err)
	}

	var (
		members     []*models.User
		seriesGames []*models.Game
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.teamRepo.ListMembers(gCtx, series.TeamID)
		return err
	})
	g.Go(func() error {
		var err error
		seriesGames, err = s.gameRepo.ListBySeriesAndDateRange(gCtx, seriesID, date, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load slot search inputs for series %d: %w", seriesID, err)
	}

	roster := make([]int, 0, len(members))
	for _, m := range members {
		roster = append(roster, m.ID)
	}
	records, err := s.availabilityRepo.ListByUsersAndDateRange(ctx, roster, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability for series %d: %w", seriesID, err)
	}

	candidate, found := schedule.FindOptimalSlot(s.catalog, date, durationMinutes, minPlayers, maxPlayers, seriesGames, roster, schedule.NewAvailabilityIndex(records))
	if !found {
		return nil, nil
	}
	return candidate, nil
}

func gameFromOccurrence(pattern *models.RecurringPattern, occ schedule.Occurrence) *models.Game {
	patternID := pattern.ID
	return &models.Game{
		SeriesID:    pattern.SeriesID,
		PatternID:   &patternID,
		Name:        pattern.Name,
		Description: pattern.Description,
		Date:        occ.Date,
		StartTime:   occ.StartTime,
		EndTime:     occ.EndTime,
		Location:    occ.Location,
		MinPlayers:  occ.MinPlayers,
		MaxPlayers:  occ.MaxPlayers,
		Status:      models.GameStatusScheduled,
	}
}

// validateForGeneration отсекает правила, с которыми нельзя разворачивать:
// weekly без дня недели, неположительный interval, перепутанные границы
// игроков. Генерация с таким паттерном не начинается вовсе.
// Пустое окно дат сюда не входит: это валидный пустой результат.
func validateForGeneration(p *models.RecurringPattern) error {
	switch p.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
	default:
		return ErrInvalidFrequency
	}
	if p.Interval < 1 {
		return ErrInvalidInterval
	}
	if p.Frequency == models.FrequencyWeekly {
		if p.DayOfWeek == nil || *p.DayOfWeek < 0 || *p.DayOfWeek > 6 {
			return ErrWeeklyDayOfWeekRequired
		}
	}
	if p.MinPlayers < 1 || p.MinPlayers > p.MaxPlayers {
		return ErrInvalidPlayerBounds
	}
	return nil
}

// validatePattern — полная проверка при создании: сверх правил генерации
// паттерн обязан нести согласованные окно дат и окно времени.
func validatePattern(p *models.RecurringPattern) error {
	if err := validateForGeneration(p); err != nil {
		return err
	}
	if p.StartDate.After(p.EndDate) {
		return ErrInvalidDateRange
	}
	if p.StartTime >= p.EndTime {
		return ErrInvalidTimeWindow
	}
	return nil
}
