package models

import "time"

type GameStatus string

const (
	GameStatusScheduled GameStatus = "scheduled"
	GameStatusCompleted GameStatus = "completed"
	GameStatusCanceled  GameStatus = "canceled"
)

// Game — одна конкретная игра. Игры, порождённые паттерном, несут PatternID;
// пара (pattern_id, date) уникальна в БД, это основа идемпотентности генерации.
type Game struct {
	ID          int        `json:"id" db:"id"`
	SeriesID    int        `json:"series_id" db:"series_id"`
	PatternID   *int       `json:"pattern_id,omitempty" db:"pattern_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	Date        time.Time  `json:"date" db:"date"`
	StartTime   string     `json:"start_time" db:"start_time"` // "HH:MM"
	EndTime     string     `json:"end_time" db:"end_time"`
	Location    string     `json:"location" db:"location"`
	MinPlayers  int        `json:"min_players" db:"min_players"`
	MaxPlayers  int        `json:"max_players" db:"max_players"`
	Status      GameStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

type AttendanceStatus string

const (
	AttendanceAttending AttendanceStatus = "attending"
	AttendanceDeclined  AttendanceStatus = "declined"
	AttendanceMaybe     AttendanceStatus = "maybe"
)

// GameAttendance — заявленное намерение игрока по конкретной игре.
type GameAttendance struct {
	ID        int              `json:"id" db:"id"`
	GameID    int              `json:"game_id" db:"game_id"`
	UserID    int              `json:"user_id" db:"user_id"`
	Status    AttendanceStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
