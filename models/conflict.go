package models

type ConflictKind string

const (
	ConflictLocationDoubleBooking ConflictKind = "location_double_booking"
	ConflictTimeOverlap           ConflictKind = "time_overlap"
	ConflictPlayerUnavailable     ConflictKind = "player_unavailable"
	ConflictCapacityUnmet         ConflictKind = "capacity_unmet"
)

// Conflict — вычисляемая на лету запись о конфликте; в БД не сохраняется.
// OtherGameID заполнен для конфликтов игра-игра, UserID — для конфликтов
// игра-игрок.
type Conflict struct {
	Kind        ConflictKind `json:"kind"`
	GameID      int          `json:"game_id"`
	OtherGameID *int         `json:"other_game_id,omitempty"`
	UserID      *int         `json:"user_id,omitempty"`
	Reason      string       `json:"reason"`
}

// ConflictReport разделяет блокирующие конфликты и мягкие предупреждения
// (статус "maybe"). Эти корзины никогда не смешиваются.
type ConflictReport struct {
	Conflicts []Conflict `json:"conflicts"`
	Warnings  []Conflict `json:"warnings"`
}

func (r *ConflictReport) HasBlocking() bool {
	return len(r.Conflicts) > 0
}
