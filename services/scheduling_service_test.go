package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamplay/scheduler/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func testCatalog(t *testing.T) models.SlotCatalog {
	t.Helper()
	catalog, err := models.ParseSlotCatalog([]string{
		"09:00-11:00", "11:00-13:00", "14:00-16:00", "16:00-18:00", "18:00-20:00",
	})
	require.NoError(t, err)
	return catalog
}

type serviceFixture struct {
	patterns     *fakePatternRepo
	games        *fakeGameRepo
	series       *fakeSeriesRepo
	teams        *fakeTeamRepo
	availability *fakeAvailabilityRepo
	hub          *fakeHub
	svc          SchedulingService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		patterns:     newFakePatternRepo(),
		games:        newFakeGameRepo(),
		series:       newFakeSeriesRepo(&models.Series{ID: 1, TeamID: 1, Name: "Sunday league"}),
		teams:        newFakeTeamRepo(),
		availability: newFakeAvailabilityRepo(),
		hub:          &fakeHub{},
	}
	f.svc = NewSchedulingService(nil, f.patterns, f.games, f.series, f.teams, f.availability, testCatalog(t), f.hub, nil)
	return f
}

func weeklyPattern() *models.RecurringPattern {
	return &models.RecurringPattern{
		SeriesID:   1,
		Frequency:  models.FrequencyWeekly,
		Interval:   1,
		DayOfWeek:  intPtr(0), // Sunday
		Name:       "Sunday league",
		StartTime:  "18:00",
		EndTime:    "20:00",
		Location:   "Main Field",
		MinPlayers: 4,
		MaxPlayers: 10,
		StartDate:  date(2024, time.January, 1),
		EndDate:    date(2024, time.March, 31),
		CreatedBy:  1,
	}
}

func (f *serviceFixture) createPattern(t *testing.T, p *models.RecurringPattern) *models.RecurringPattern {
	t.Helper()
	created, err := f.svc.CreatePattern(context.Background(), p)
	require.NoError(t, err)
	return created
}

func TestGenerateGamesFromPattern(t *testing.T) {
	f := newServiceFixture(t)
	p := f.createPattern(t, weeklyPattern())

	ids, err := f.svc.GenerateGamesFromPattern(context.Background(), p.ID, date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Len(t, ids, 4) // the four Sundays of January 2024

	game, err := f.games.GetByID(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.January, 7), game.Date)
	assert.Equal(t, "18:00", game.StartTime)
	assert.Equal(t, "Main Field", game.Location)
	assert.Equal(t, models.GameStatusScheduled, game.Status)
	require.NotNil(t, game.PatternID)
	assert.Equal(t, p.ID, *game.PatternID)
}

func TestGenerateGamesIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	p := f.createPattern(t, weeklyPattern())
	ctx := context.Background()

	first, err := f.svc.GenerateGamesFromPattern(ctx, p.ID, date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, first, 4)

	// Same window again: nothing new.
	second, err := f.svc.GenerateGamesFromPattern(ctx, p.ID, date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Empty(t, second)

	// Overlapping window: only the dates outside the first window appear.
	third, err := f.svc.GenerateGamesFromPattern(ctx, p.ID, date(2024, time.January, 15), date(2024, time.February, 11))
	require.NoError(t, err)
	assert.Len(t, third, 2) // Feb 4 and Feb 11

	assert.Len(t, f.games.games, 6)
}

func TestGenerateGamesSwallowsLostInsertRace(t *testing.T) {
	f := newServiceFixture(t)
	p := f.createPattern(t, weeklyPattern())
	// The existence check passes but the insert loses the race on Jan 14.
	f.games.raceOn["2024-01-14"] = true

	ids, err := f.svc.GenerateGamesFromPattern(context.Background(), p.ID, date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestGenerateGamesStorageErrorAborts(t *testing.T) {
	f := newServiceFixture(t)
	p := f.createPattern(t, weeklyPattern())
	storageErr := errors.New("connection reset")
	f.games.failOn["2024-01-21"] = storageErr

	_, err := f.svc.GenerateGamesFromPattern(context.Background(), p.ID, date(2024, time.January, 1), date(2024, time.January, 31))
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	// Rows committed before the failure stay; later dates were not attempted.
	assert.Len(t, f.games.games, 2)
}

func TestGenerateGamesEmptyWindow(t *testing.T) {
	f := newServiceFixture(t)
	p := f.createPattern(t, weeklyPattern())

	ids, err := f.svc.GenerateGamesFromPattern(context.Background(), p.ID, date(2025, time.January, 1), date(2025, time.January, 31))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGenerateGamesPatternNotFound(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.GenerateGamesFromPattern(context.Background(), 42, date(2024, time.January, 1), date(2024, time.January, 31))
	assert.ErrorIs(t, err, ErrPatternNotFound)
}

func TestGenerateGamesInactivePattern(t *testing.T) {
	f := newServiceFixture(t)
	p := f.createPattern(t, weeklyPattern())
	require.NoError(t, f.svc.SetPatternActive(context.Background(), p.ID, false))

	_, err := f.svc.GenerateGamesFromPattern(context.Background(), p.ID, date(2024, time.January, 1), date(2024, time.January, 31))
	assert.ErrorIs(t, err, ErrPatternInactive)
}

func TestGenerateGamesBroadcastsToSeriesRoom(t *testing.T) {
	f := newServiceFixture(t)
	p := f.createPattern(t, weeklyPattern())

	_, err := f.svc.GenerateGamesFromPattern(context.Background(), p.ID, date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	require.Len(t, f.hub.rooms, 1)
	assert.Equal(t, "series:1", f.hub.rooms[0])

	// A no-op regeneration stays silent.
	_, err = f.svc.GenerateGamesFromPattern(context.Background(), p.ID, date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Len(t, f.hub.rooms, 1)
}

func TestCreatePatternValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		mutate  func(p *models.RecurringPattern)
		wantErr error
	}{
		{
			name:    "weekly without day_of_week",
			mutate:  func(p *models.RecurringPattern) { p.DayOfWeek = nil },
			wantErr: ErrWeeklyDayOfWeekRequired,
		},
		{
			name:    "min players above max",
			mutate:  func(p *models.RecurringPattern) { p.MinPlayers = 11 },
			wantErr: ErrInvalidPlayerBounds,
		},
		{
			name:    "zero min players",
			mutate:  func(p *models.RecurringPattern) { p.MinPlayers = 0 },
			wantErr: ErrInvalidPlayerBounds,
		},
		{
			name: "start date after end date",
			mutate: func(p *models.RecurringPattern) {
				p.StartDate = date(2024, time.June, 1)
				p.EndDate = date(2024, time.May, 1)
			},
			wantErr: ErrInvalidDateRange,
		},
		{
			name:    "zero interval",
			mutate:  func(p *models.RecurringPattern) { p.Interval = 0 },
			wantErr: ErrInvalidInterval,
		},
		{
			name:    "unknown frequency",
			mutate:  func(p *models.RecurringPattern) { p.Frequency = "hourly" },
			wantErr: ErrInvalidFrequency,
		},
		{
			name: "inverted time window",
			mutate: func(p *models.RecurringPattern) {
				p.StartTime = "20:00"
				p.EndTime = "18:00"
			},
			wantErr: ErrInvalidTimeWindow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := weeklyPattern()
			tc.mutate(p)
			_, err := f.svc.CreatePattern(ctx, p)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGenerateUpcomingGamesSweep(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	daily := weeklyPattern()
	daily.Frequency = models.FrequencyDaily
	daily.DayOfWeek = nil
	daily.StartDate = date(2020, time.January, 1)
	daily.EndDate = date(2100, time.January, 1)
	p := f.createPattern(t, daily)

	created, err := f.svc.GenerateUpcomingGames(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 8, created) // today through today+7 inclusive

	// The sweep is idempotent.
	created, err = f.svc.GenerateUpcomingGames(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, created)

	require.NoError(t, f.svc.SetPatternActive(ctx, p.ID, false))
	created, err = f.svc.GenerateUpcomingGames(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestDetectConflictsThroughService(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	day := date(2024, time.May, 4)

	target := &models.Game{SeriesID: 1, Name: "Target", Date: day, StartTime: "14:00", EndTime: "16:00",
		Location: "Main Field", MinPlayers: 3, MaxPlayers: 10, Status: models.GameStatusScheduled}
	require.NoError(t, f.games.Create(ctx, nil, target))
	other := &models.Game{SeriesID: 2, Name: "Other", Date: day, StartTime: "15:00", EndTime: "17:00",
		Location: "Main Field", MinPlayers: 2, MaxPlayers: 10, Status: models.GameStatusScheduled}
	require.NoError(t, f.games.Create(ctx, nil, other))

	f.games.attendance[target.ID] = []models.GameAttendance{
		{GameID: target.ID, UserID: 11, Status: models.AttendanceAttending},
		{GameID: target.ID, UserID: 12, Status: models.AttendanceAttending},
	}
	require.NoError(t, f.availability.Upsert(ctx, &models.PlayerAvailability{
		UserID: 11, Date: day, TimeSlot: "14:00-16:00", Status: models.AvailabilityUnavailable,
	}))

	report, err := f.svc.DetectConflicts(ctx, target.ID)
	require.NoError(t, err)

	kinds := make(map[models.ConflictKind]int)
	for _, c := range report.Conflicts {
		kinds[c.Kind]++
	}
	assert.Equal(t, 1, kinds[models.ConflictLocationDoubleBooking])
	assert.Equal(t, 1, kinds[models.ConflictPlayerUnavailable])
	assert.Equal(t, 1, kinds[models.ConflictCapacityUnmet]) // 1 expected < 3 required
}

func TestDetectConflictsGameNotFound(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.DetectConflicts(context.Background(), 99)
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestFindOptimalTimeSlotThroughService(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	day := date(2024, time.May, 4)

	f.teams.members[1] = []*models.User{{ID: 11}, {ID: 12}, {ID: 13}}
	for _, userID := range []int{11, 12, 13} {
		require.NoError(t, f.availability.Upsert(ctx, &models.PlayerAvailability{
			UserID: userID, Date: day, TimeSlot: "16:00-18:00", Status: models.AvailabilityAvailable,
		}))
	}

	slot, err := f.svc.FindOptimalTimeSlot(ctx, 1, day, 120, 2, 10)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, "16:00-18:00", slot.Slot.Label)
	assert.Equal(t, 3, slot.AvailableCount)
}

func TestFindOptimalTimeSlotNoneFound(t *testing.T) {
	f := newServiceFixture(t)
	f.teams.members[1] = []*models.User{{ID: 11}}

	slot, err := f.svc.FindOptimalTimeSlot(context.Background(), 1, date(2024, time.May, 4), 120, 2, 10)
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestFindOptimalTimeSlotValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	day := date(2024, time.May, 4)

	_, err := f.svc.FindOptimalTimeSlot(ctx, 1, day, 0, 2, 10)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = f.svc.FindOptimalTimeSlot(ctx, 1, day, 120, 5, 2)
	assert.ErrorIs(t, err, ErrInvalidPlayerBounds)

	_, err = f.svc.FindOptimalTimeSlot(ctx, 99, day, 120, 2, 10)
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}
