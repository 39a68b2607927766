package models

import "time"

// Frequency представляет поддерживаемые частоты повторения, соответствующие ENUM в БД.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// RecurringPattern описывает генератор игр внутри серии.
// Движок никогда не изменяет паттерн структурно: внешний слой может
// переключать только IsActive.
type RecurringPattern struct {
	ID          int       `json:"id" db:"id"`
	SeriesID    int       `json:"series_id" db:"series_id"`
	Frequency   Frequency `json:"frequency" db:"frequency"`
	Interval    int       `json:"interval" db:"interval"`
	DayOfWeek   *int      `json:"day_of_week,omitempty" db:"day_of_week"` // 0 = Sunday; обязателен для weekly
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	StartTime   string    `json:"start_time" db:"start_time"` // "HH:MM"
	EndTime     string    `json:"end_time" db:"end_time"`
	Location    string    `json:"location" db:"location"`
	MinPlayers  int       `json:"min_players" db:"min_players"`
	MaxPlayers  int       `json:"max_players" db:"max_players"`
	StartDate   time.Time `json:"start_date" db:"start_date"`
	EndDate     time.Time `json:"end_date" db:"end_date"` // включительно
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedBy   int       `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
