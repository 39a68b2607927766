package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teamplay/scheduler/models"
	"github.com/teamplay/scheduler/repositories"
	"github.com/teamplay/scheduler/schedule"
)

type AvailabilityService interface {
	// SetAvailability записывает ответ игрока по каноническому слоту;
	// повторная запись по тому же ключу перезаписывает предыдущую.
	SetAvailability(ctx context.Context, record *models.PlayerAvailability) error
	// TeamAvailabilitySummary — сводка по каждому слоту каталога на дату:
	// сколько участников команды available/unavailable/maybe/notSet.
	TeamAvailabilitySummary(ctx context.Context, teamID int, date time.Time) ([]models.SlotAvailabilitySummary, error)
}

type availabilityService struct {
	availabilityRepo repositories.AvailabilityRepository
	teamRepo         repositories.TeamRepository
	catalog          models.SlotCatalog
}

func NewAvailabilityService(
	availabilityRepo repositories.AvailabilityRepository,
	teamRepo repositories.TeamRepository,
	catalog models.SlotCatalog,
) AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		teamRepo:         teamRepo,
		catalog:          catalog,
	}
}

func (s *availabilityService) SetAvailability(ctx context.Context, record *models.PlayerAvailability) error {
	switch record.Status {
	case models.AvailabilityAvailable, models.AvailabilityUnavailable, models.AvailabilityMaybe:
	default:
		return ErrInvalidAvailabilityStatus
	}
	if !s.catalog.Contains(record.TimeSlot) {
		return ErrInvalidTimeSlot
	}
	if err := s.availabilityRepo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to save availability: %w", err)
	}
	return nil
}

func (s *availabilityService) TeamAvailabilitySummary(ctx context.Context, teamID int, date time.Time) ([]models.SlotAvailabilitySummary, error) {
	if _, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}

	memberIDs := make([]int, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}
	records, err := s.availabilityRepo.ListByUsersAndDateRange(ctx, memberIDs, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load availability for team %d: %w", teamID, err)
	}

	idx := schedule.NewAvailabilityIndex(records)
	summary := make([]models.SlotAvailabilitySummary, 0, len(s.catalog))
	for _, slot := range s.catalog {
		summary = append(summary, models.SlotAvailabilitySummary{
			TimeSlot: slot.Label,
			Counts:   idx.Counts(memberIDs, date, slot.Label),
		})
	}
	return summary, nil
}
