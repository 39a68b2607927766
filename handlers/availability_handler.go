package handlers

import (
	"net/http"

	"github.com/teamplay/scheduler/models"
	"github.com/teamplay/scheduler/services"
)

type AvailabilityHandler struct {
	availabilityService services.AvailabilityService
}

func NewAvailabilityHandler(as services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityService: as,
	}
}

// SetAvailabilityHandler обрабатывает POST /availability
func (h *AvailabilityHandler) SetAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID   int     `json:"user_id"`
		Date     string  `json:"date"`
		TimeSlot string  `json:"time_slot"`
		Status   string  `json:"status"`
		Notes    *string `json:"notes"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	date, err := parseDate(input.Date, "date")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	record := &models.PlayerAvailability{
		UserID:   input.UserID,
		Date:     date,
		TimeSlot: input.TimeSlot,
		Status:   models.AvailabilityStatus(input.Status),
		Notes:    input.Notes,
	}

	if err := h.availabilityService.SetAvailability(r.Context(), record); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"availability": record}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TeamSummaryHandler обрабатывает GET /teams/{teamID}/availability-summary?date=
func (h *AvailabilityHandler) TeamSummaryHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	date, err := parseDateParam(r, "date")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.availabilityService.TeamAvailabilitySummary(r.Context(), teamID, date)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
