package schedule

import (
	"time"

	"github.com/teamplay/scheduler/models"
)

type availabilityKey struct {
	userID int
	date   string // "2006-01-02"
	slot   string
}

// AvailabilityIndex — построенный в памяти индекс ответов игроков по слотам.
// Строится заново на каждый запрос из записей, относящихся к запросу;
// после постройки только читается, поэтому безопасен для любых
// конкурентных обращений.
type AvailabilityIndex struct {
	entries map[availabilityKey]models.AvailabilityStatus
}

func NewAvailabilityIndex(records []models.PlayerAvailability) *AvailabilityIndex {
	entries := make(map[availabilityKey]models.AvailabilityStatus, len(records))
	for _, rec := range records {
		entries[availabilityKey{
			userID: rec.UserID,
			date:   dateKey(rec.Date),
			slot:   rec.TimeSlot,
		}] = rec.Status
	}
	return &AvailabilityIndex{entries: entries}
}

// StatusOf возвращает статус игрока по слоту на дату. Второе значение false
// означает "ответа нет" — это не то же самое, что unavailable: отсутствие
// ответа не блокирует по вместимости, но в сводке считается отдельно.
func (idx *AvailabilityIndex) StatusOf(userID int, date time.Time, timeSlot string) (models.AvailabilityStatus, bool) {
	status, ok := idx.entries[availabilityKey{userID: userID, date: dateKey(date), slot: timeSlot}]
	return status, ok
}

// Counts раскладывает ответы участников по корзинам для одного слота.
// Участник без записи попадает в NotSet.
func (idx *AvailabilityIndex) Counts(memberIDs []int, date time.Time, timeSlot string) models.SlotCounts {
	var counts models.SlotCounts
	for _, userID := range memberIDs {
		status, ok := idx.StatusOf(userID, date, timeSlot)
		if !ok {
			counts.NotSet++
			continue
		}
		switch status {
		case models.AvailabilityAvailable:
			counts.Available++
		case models.AvailabilityUnavailable:
			counts.Unavailable++
		case models.AvailabilityMaybe:
			counts.Maybe++
		}
	}
	return counts
}

// AvailableCount — количество участников со статусом available по слоту.
func (idx *AvailabilityIndex) AvailableCount(memberIDs []int, date time.Time, timeSlot string) int {
	return idx.Counts(memberIDs, date, timeSlot).Available
}

func dateKey(t time.Time) string {
	return dateOnly(t).Format("2006-01-02")
}
