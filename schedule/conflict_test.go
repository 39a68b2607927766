package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamplay/scheduler/models"
)

func testCatalog(t *testing.T) models.SlotCatalog {
	t.Helper()
	catalog, err := models.ParseSlotCatalog([]string{
		"09:00-11:00", "11:00-13:00", "14:00-16:00", "16:00-18:00", "18:00-20:00",
	})
	require.NoError(t, err)
	return catalog
}

func testGame(id, seriesID int, day time.Time, start, end, location string) *models.Game {
	return &models.Game{
		ID:         id,
		SeriesID:   seriesID,
		Date:       day,
		StartTime:  start,
		EndTime:    end,
		Location:   location,
		MinPlayers: 2,
		MaxPlayers: 10,
		Status:     models.GameStatusScheduled,
	}
}

func attending(gameID int, userIDs ...int) []models.GameAttendance {
	atts := make([]models.GameAttendance, 0, len(userIDs))
	for _, id := range userIDs {
		atts = append(atts, models.GameAttendance{GameID: gameID, UserID: id, Status: models.AttendanceAttending})
	}
	return atts
}

func conflictsOfKind(report *models.ConflictReport, kind models.ConflictKind) []models.Conflict {
	var out []models.Conflict
	for _, c := range report.Conflicts {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func TestDetectLocationDoubleBooking(t *testing.T) {
	detector := NewConflictDetector(testCatalog(t))
	day := date(2024, time.May, 4)
	target := testGame(1, 1, day, "14:00", "16:00", "Main Field")

	testCases := []struct {
		name     string
		other    *models.Game
		conflict bool
	}{
		{
			name:     "overlapping interval at same location",
			other:    testGame(2, 2, day, "15:00", "17:00", "Main Field"),
			conflict: true,
		},
		{
			name:     "back to back games share only an endpoint",
			other:    testGame(2, 2, day, "16:00", "18:00", "Main Field"),
			conflict: false,
		},
		{
			name:     "overlap at a different location in another series",
			other:    testGame(2, 2, day, "15:00", "17:00", "North Field"),
			conflict: false,
		},
		{
			name:     "same location on another date",
			other:    testGame(2, 2, date(2024, time.May, 5), "14:00", "16:00", "Main Field"),
			conflict: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report := detector.Detect(target, []*models.Game{tc.other}, nil, NewAvailabilityIndex(nil))
			booked := conflictsOfKind(report, models.ConflictLocationDoubleBooking)
			if !tc.conflict {
				assert.Empty(t, booked)
				return
			}
			require.Len(t, booked, 1)
			require.NotNil(t, booked[0].OtherGameID)
			assert.Equal(t, tc.other.ID, *booked[0].OtherGameID)
			assert.Equal(t, target.ID, booked[0].GameID)
		})
	}
}

func TestDetectSameSeriesTimeOverlap(t *testing.T) {
	detector := NewConflictDetector(testCatalog(t))
	day := date(2024, time.May, 4)
	target := testGame(1, 1, day, "14:00", "16:00", "Main Field")
	other := testGame(2, 1, day, "15:00", "17:00", "North Field")

	report := detector.Detect(target, []*models.Game{other}, nil, NewAvailabilityIndex(nil))

	overlaps := conflictsOfKind(report, models.ConflictTimeOverlap)
	require.Len(t, overlaps, 1)
	assert.Equal(t, other.ID, *overlaps[0].OtherGameID)
	assert.Empty(t, conflictsOfKind(report, models.ConflictLocationDoubleBooking))
}

func TestDetectPlayerUnavailableAndCapacity(t *testing.T) {
	detector := NewConflictDetector(testCatalog(t))
	day := date(2024, time.May, 4)
	target := testGame(1, 1, day, "14:00", "16:00", "Main Field")
	target.MinPlayers = 5

	// 6 attendees, two of them unavailable for the 14:00-16:00 slot:
	// two player_unavailable conflicts plus one capacity_unmet (4 < 5).
	idx := NewAvailabilityIndex([]models.PlayerAvailability{
		{UserID: 11, Date: day, TimeSlot: "14:00-16:00", Status: models.AvailabilityUnavailable},
		{UserID: 12, Date: day, TimeSlot: "14:00-16:00", Status: models.AvailabilityUnavailable},
		{UserID: 13, Date: day, TimeSlot: "14:00-16:00", Status: models.AvailabilityAvailable},
	})

	report := detector.Detect(target, nil, attending(1, 11, 12, 13, 14, 15, 16), idx)

	unavailable := conflictsOfKind(report, models.ConflictPlayerUnavailable)
	require.Len(t, unavailable, 2)
	capacity := conflictsOfKind(report, models.ConflictCapacityUnmet)
	require.Len(t, capacity, 1)
	assert.Contains(t, capacity[0].Reason, "4 players expected")
	assert.Len(t, report.Conflicts, 3)
}

func TestDetectMaybeIsSoftWarning(t *testing.T) {
	detector := NewConflictDetector(testCatalog(t))
	day := date(2024, time.May, 4)
	target := testGame(1, 1, day, "14:00", "16:00", "Main Field")
	target.MinPlayers = 2

	idx := NewAvailabilityIndex([]models.PlayerAvailability{
		{UserID: 11, Date: day, TimeSlot: "14:00-16:00", Status: models.AvailabilityMaybe},
	})

	report := detector.Detect(target, nil, attending(1, 11, 12), idx)

	// maybe never lands in the blocking bucket and keeps its seat for capacity.
	assert.Empty(t, report.Conflicts)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, models.ConflictPlayerUnavailable, report.Warnings[0].Kind)
	assert.Equal(t, 11, *report.Warnings[0].UserID)
}

func TestDetectUnavailableInAnyOverlappingSlot(t *testing.T) {
	detector := NewConflictDetector(testCatalog(t))
	day := date(2024, time.May, 4)
	// 15:00-17:00 spans the 14:00-16:00 and 16:00-18:00 catalog slots.
	target := testGame(1, 1, day, "15:00", "17:00", "Main Field")
	target.MinPlayers = 1

	idx := NewAvailabilityIndex([]models.PlayerAvailability{
		{UserID: 11, Date: day, TimeSlot: "14:00-16:00", Status: models.AvailabilityAvailable},
		{UserID: 11, Date: day, TimeSlot: "16:00-18:00", Status: models.AvailabilityUnavailable},
	})

	report := detector.Detect(target, nil, attending(1, 11), idx)

	require.Len(t, conflictsOfKind(report, models.ConflictPlayerUnavailable), 1)
}

func TestDetectDeclinedPlayersIgnored(t *testing.T) {
	detector := NewConflictDetector(testCatalog(t))
	day := date(2024, time.May, 4)
	target := testGame(1, 1, day, "14:00", "16:00", "Main Field")
	target.MinPlayers = 1

	idx := NewAvailabilityIndex([]models.PlayerAvailability{
		{UserID: 11, Date: day, TimeSlot: "14:00-16:00", Status: models.AvailabilityUnavailable},
	})
	attendance := []models.GameAttendance{
		{GameID: 1, UserID: 11, Status: models.AttendanceDeclined},
		{GameID: 1, UserID: 12, Status: models.AttendanceAttending},
	}

	report := detector.Detect(target, nil, attendance, idx)

	assert.Empty(t, report.Conflicts)
	assert.Empty(t, report.Warnings)
}

func TestDetectAllChecksRun(t *testing.T) {
	detector := NewConflictDetector(testCatalog(t))
	day := date(2024, time.May, 4)
	target := testGame(1, 1, day, "14:00", "16:00", "Main Field")
	target.MinPlayers = 3

	other := testGame(2, 2, day, "15:00", "17:00", "Main Field")
	idx := NewAvailabilityIndex([]models.PlayerAvailability{
		{UserID: 11, Date: day, TimeSlot: "14:00-16:00", Status: models.AvailabilityUnavailable},
	})

	report := detector.Detect(target, []*models.Game{other}, attending(1, 11, 12), idx)

	assert.Len(t, conflictsOfKind(report, models.ConflictLocationDoubleBooking), 1)
	assert.Len(t, conflictsOfKind(report, models.ConflictPlayerUnavailable), 1)
	assert.Len(t, conflictsOfKind(report, models.ConflictCapacityUnmet), 1)
}
