package models

import "time"

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
	AvailabilityMaybe       AvailabilityStatus = "maybe"
)

// PlayerAvailability — ответ игрока по каноническому слоту на дату.
// Уникальна по (user_id, date, time_slot); повторная запись перезаписывает
// предыдущую (upsert). Движок читает эти записи и никогда их не создаёт.
type PlayerAvailability struct {
	ID        int                `json:"id" db:"id"`
	UserID    int                `json:"user_id" db:"user_id"`
	Date      time.Time          `json:"date" db:"date"`
	TimeSlot  string             `json:"time_slot" db:"time_slot"` // "14:00-16:00" из каталога слотов
	Status    AvailabilityStatus `json:"status" db:"status"`
	Notes     *string            `json:"notes,omitempty" db:"notes"`
	UpdatedAt time.Time          `json:"updated_at" db:"updated_at"`
}

// SlotCounts — распределение ответов команды по одному слоту.
// Член команды без записи попадает в NotSet, а не теряется.
type SlotCounts struct {
	Available   int `json:"available"`
	Unavailable int `json:"unavailable"`
	Maybe       int `json:"maybe"`
	NotSet      int `json:"not_set"`
}

// SlotAvailabilitySummary — сводка по каноническому слоту для команды на дату.
type SlotAvailabilitySummary struct {
	TimeSlot string     `json:"time_slot"`
	Counts   SlotCounts `json:"counts"`
}
