package handlers

import (
	"net/http"
	"time"

	"github.com/teamplay/scheduler/models"
	"github.com/teamplay/scheduler/services"
)

type SchedulingHandler struct {
	schedulingService services.SchedulingService
}

func NewSchedulingHandler(ss services.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{
		schedulingService: ss,
	}
}

type createPatternInput struct {
	SeriesID    int     `json:"series_id"`
	Frequency   string  `json:"frequency"`
	Interval    int     `json:"interval"`
	DayOfWeek   *int    `json:"day_of_week"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Location    string  `json:"location"`
	MinPlayers  int     `json:"min_players"`
	MaxPlayers  int     `json:"max_players"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	CreatedBy   int     `json:"created_by"`
}

// CreatePatternHandler обрабатывает POST /patterns
func (h *SchedulingHandler) CreatePatternHandler(w http.ResponseWriter, r *http.Request) {
	var input createPatternInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	startDate, err := parseDate(input.StartDate, "start_date")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	endDate, err := parseDate(input.EndDate, "end_date")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pattern := &models.RecurringPattern{
		SeriesID:    input.SeriesID,
		Frequency:   models.Frequency(input.Frequency),
		Interval:    input.Interval,
		DayOfWeek:   input.DayOfWeek,
		Name:        input.Name,
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Location:    input.Location,
		MinPlayers:  input.MinPlayers,
		MaxPlayers:  input.MaxPlayers,
		StartDate:   startDate,
		EndDate:     endDate,
		CreatedBy:   input.CreatedBy,
	}

	created, err := h.schedulingService.CreatePattern(r.Context(), pattern)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"pattern": created}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetPatternHandler обрабатывает GET /patterns/{patternID}
func (h *SchedulingHandler) GetPatternHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "patternID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pattern, err := h.schedulingService.GetPattern(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"pattern": pattern}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListSeriesPatternsHandler обрабатывает GET /series/{seriesID}/patterns
func (h *SchedulingHandler) ListSeriesPatternsHandler(w http.ResponseWriter, r *http.Request) {
	seriesID, err := getIDFromURL(r, "seriesID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	patterns, err := h.schedulingService.ListPatternsBySeries(r.Context(), seriesID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"patterns": patterns}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetPatternActiveHandler обрабатывает PATCH /patterns/{patternID}/active
func (h *SchedulingHandler) SetPatternActiveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "patternID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		IsActive *bool `json:"is_active"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.IsActive == nil {
		badRequestResponse(w, r, errMissingField("is_active"))
		return
	}

	if err := h.schedulingService.SetPatternActive(r.Context(), id, *input.IsActive); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"id": id, "is_active": *input.IsActive}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateGamesHandler обрабатывает POST /patterns/{patternID}/generate
func (h *SchedulingHandler) GenerateGamesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "patternID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	from, err := parseDate(input.StartDate, "start_date")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	to, err := parseDate(input.EndDate, "end_date")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	gameIDs, err := h.schedulingService.GenerateGamesFromPattern(r.Context(), id, from, to)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"game_ids": gameIDs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DetectConflictsHandler обрабатывает GET /games/{gameID}/conflicts
func (h *SchedulingHandler) DetectConflictsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.schedulingService.DetectConflicts(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FindOptimalSlotHandler обрабатывает
// GET /series/{seriesID}/optimal-slot?date=&duration=&min_players=&max_players=
func (h *SchedulingHandler) FindOptimalSlotHandler(w http.ResponseWriter, r *http.Request) {
	seriesID, err := getIDFromURL(r, "seriesID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	date, err := parseDateParam(r, "date")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	duration, err := parseIntParam(r, "duration")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	minPlayers, err := parseIntParam(r, "min_players")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	maxPlayers, err := parseIntParam(r, "max_players")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slot, err := h.schedulingService.FindOptimalTimeSlot(r.Context(), seriesID, date, duration, minPlayers, maxPlayers)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if slot == nil {
		// Валидный пустой результат поиска, а не ошибка сервера.
		notFoundResponse(w, r)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"slot": slot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func parseDate(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errMissingField(field)
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, errInvalidField(field, "expected YYYY-MM-DD")
	}
	return date, nil
}
