package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурсы
	ErrPatternNotFound = errors.New("recurring pattern not found")
	ErrSeriesNotFound  = errors.New("series not found")
	ErrGameNotFound    = errors.New("game not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrPatternInactive = errors.New("recurring pattern is not active")

	// Ошибки валидации правила повторения и запросов
	ErrInvalidFrequency          = errors.New("pattern frequency must be daily, weekly or monthly")
	ErrInvalidInterval           = errors.New("pattern interval must be positive")
	ErrWeeklyDayOfWeekRequired   = errors.New("weekly pattern requires day_of_week between 0 and 6")
	ErrInvalidPlayerBounds       = errors.New("min_players must be positive and not exceed max_players")
	ErrInvalidDateRange          = errors.New("pattern start_date must not be after end_date")
	ErrInvalidTimeWindow         = errors.New("start_time must be before end_time")
	ErrInvalidDuration           = errors.New("requested duration must be positive")
	ErrInvalidTimeSlot           = errors.New("time slot is not in the canonical catalog")
	ErrInvalidAvailabilityStatus = errors.New("availability status must be available, unavailable or maybe")
)
