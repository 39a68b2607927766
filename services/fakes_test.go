package services

import (
	"context"
	"fmt"
	"time"

	"github.com/teamplay/scheduler/models"
	"github.com/teamplay/scheduler/repositories"
)

// In-memory repository fakes. They emulate the same constraints the real
// Postgres schema enforces, including the (pattern_id, date) uniqueness the
// idempotence invariant rests on.

type fakePatternRepo struct {
	patterns map[int]*models.RecurringPattern
	nextID   int
}

func newFakePatternRepo() *fakePatternRepo {
	return &fakePatternRepo{patterns: make(map[int]*models.RecurringPattern), nextID: 1}
}

func (f *fakePatternRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.RecurringPattern) error {
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	f.nextID++
	stored := *p
	f.patterns[p.ID] = &stored
	return nil
}

func (f *fakePatternRepo) GetByID(_ context.Context, id int) (*models.RecurringPattern, error) {
	p, ok := f.patterns[id]
	if !ok {
		return nil, repositories.ErrPatternNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatternRepo) ListBySeries(_ context.Context, seriesID int) ([]*models.RecurringPattern, error) {
	out := make([]*models.RecurringPattern, 0)
	for id := 1; id < f.nextID; id++ {
		if p, ok := f.patterns[id]; ok && p.SeriesID == seriesID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePatternRepo) ListActive(_ context.Context) ([]*models.RecurringPattern, error) {
	out := make([]*models.RecurringPattern, 0)
	for id := 1; id < f.nextID; id++ {
		if p, ok := f.patterns[id]; ok && p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePatternRepo) SetActive(_ context.Context, id int, active bool) error {
	p, ok := f.patterns[id]
	if !ok {
		return repositories.ErrPatternNotFound
	}
	p.IsActive = active
	return nil
}

type occurrenceKey struct {
	patternID int
	date      string
}

type fakeGameRepo struct {
	games      map[int]*models.Game
	byPattern  map[occurrenceKey]int
	attendance map[int][]models.GameAttendance
	nextID     int

	// raceOn makes Create report a lost insert race for the given dates,
	// as if a concurrent generation slipped in between check and insert.
	raceOn map[string]bool
	// failOn makes Create return an opaque storage error for a date.
	failOn map[string]error
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{
		games:      make(map[int]*models.Game),
		byPattern:  make(map[occurrenceKey]int),
		attendance: make(map[int][]models.GameAttendance),
		nextID:     1,
		raceOn:     make(map[string]bool),
		failOn:     make(map[string]error),
	}
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

func (f *fakeGameRepo) Create(_ context.Context, _ repositories.SQLExecutor, game *models.Game) error {
	if err, ok := f.failOn[dateKey(game.Date)]; ok {
		return err
	}
	if f.raceOn[dateKey(game.Date)] {
		return repositories.ErrGameDuplicateOccurrence
	}
	if game.PatternID != nil {
		key := occurrenceKey{patternID: *game.PatternID, date: dateKey(game.Date)}
		if _, exists := f.byPattern[key]; exists {
			return repositories.ErrGameDuplicateOccurrence
		}
		f.byPattern[key] = f.nextID
	}
	game.ID = f.nextID
	game.CreatedAt = time.Now()
	f.nextID++
	stored := *game
	f.games[game.ID] = &stored
	return nil
}

func (f *fakeGameRepo) GetByID(_ context.Context, id int) (*models.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, repositories.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGameRepo) ExistsByPatternAndDate(_ context.Context, patternID int, date time.Time) (bool, error) {
	_, ok := f.byPattern[occurrenceKey{patternID: patternID, date: dateKey(date)}]
	return ok, nil
}

func (f *fakeGameRepo) ListByDate(_ context.Context, date time.Time) ([]*models.Game, error) {
	out := make([]*models.Game, 0)
	for id := 1; id < f.nextID; id++ {
		if g, ok := f.games[id]; ok && dateKey(g.Date) == dateKey(date) {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) ListBySeriesAndDateRange(_ context.Context, seriesID int, from, to time.Time) ([]*models.Game, error) {
	out := make([]*models.Game, 0)
	for id := 1; id < f.nextID; id++ {
		g, ok := f.games[id]
		if !ok || g.SeriesID != seriesID {
			continue
		}
		if g.Date.Before(from) || g.Date.After(to) {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeGameRepo) ListAttendance(_ context.Context, gameID int) ([]models.GameAttendance, error) {
	return f.attendance[gameID], nil
}

type fakeSeriesRepo struct {
	series map[int]*models.Series
}

func newFakeSeriesRepo(series ...*models.Series) *fakeSeriesRepo {
	f := &fakeSeriesRepo{series: make(map[int]*models.Series)}
	for _, s := range series {
		f.series[s.ID] = s
	}
	return f
}

func (f *fakeSeriesRepo) GetByID(_ context.Context, id int) (*models.Series, error) {
	s, ok := f.series[id]
	if !ok {
		return nil, repositories.ErrSeriesNotFound
	}
	cp := *s
	return &cp, nil
}

type fakeTeamRepo struct {
	members map[int][]*models.User
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{members: make(map[int][]*models.User)}
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	if _, ok := f.members[id]; !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &models.Team{ID: id, Name: fmt.Sprintf("team-%d", id)}, nil
}

func (f *fakeTeamRepo) ListMembers(_ context.Context, teamID int) ([]*models.User, error) {
	return f.members[teamID], nil
}

type availabilityRecordKey struct {
	userID int
	date   string
	slot   string
}

type fakeAvailabilityRepo struct {
	records map[availabilityRecordKey]models.PlayerAvailability
	nextID  int
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{records: make(map[availabilityRecordKey]models.PlayerAvailability), nextID: 1}
}

func (f *fakeAvailabilityRepo) Upsert(_ context.Context, rec *models.PlayerAvailability) error {
	key := availabilityRecordKey{userID: rec.UserID, date: dateKey(rec.Date), slot: rec.TimeSlot}
	if existing, ok := f.records[key]; ok {
		rec.ID = existing.ID
	} else {
		rec.ID = f.nextID
		f.nextID++
	}
	rec.UpdatedAt = time.Now()
	f.records[key] = *rec
	return nil
}

func (f *fakeAvailabilityRepo) ListByUsersAndDateRange(_ context.Context, userIDs []int, from, to time.Time) ([]models.PlayerAvailability, error) {
	wanted := make(map[int]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	out := make([]models.PlayerAvailability, 0)
	for _, rec := range f.records {
		if !wanted[rec.UserID] {
			continue
		}
		if rec.Date.Before(from) || rec.Date.After(to) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type fakeHub struct {
	rooms    []string
	messages []interface{}
}

func (f *fakeHub) BroadcastToRoom(roomID string, message interface{}) {
	f.rooms = append(f.rooms, roomID)
	f.messages = append(f.messages, message)
}
