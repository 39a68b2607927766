package models

import "time"

// Series — серия игр, принадлежащая команде. Владеет паттернами и играми.
type Series struct {
	ID          int       `json:"id" db:"id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	Location    *string   `json:"location,omitempty" db:"location"`
	CreatedBy   int       `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Patterns []RecurringPattern `json:"patterns,omitempty" db:"-"`
	Games    []Game             `json:"games,omitempty" db:"-"`
}
