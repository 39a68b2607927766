package schedule

import (
	"time"

	"github.com/teamplay/scheduler/models"
)

// FindOptimalSlot перебирает канонические слоты даты и возвращает лучший по
// числу ответивших available. Слот проходит отбор, если:
//   - его длина покрывает запрошенную длительность,
//   - он не пересекается ни с одной игрой серии на эту дату,
//   - количество available игроков ростера лежит в [minPlayers, maxPlayers].
//
// При равном счёте побеждает более ранний слот (каталог упорядочен по началу,
// замена только при строгом превышении). Отсутствие подходящего слота —
// нормальный пустой результат: второй возврат false, ошибок нет.
func FindOptimalSlot(
	catalog models.SlotCatalog,
	date time.Time,
	durationMinutes int,
	minPlayers, maxPlayers int,
	seriesGames []*models.Game,
	roster []int,
	idx *AvailabilityIndex,
) (*models.CandidateSlot, bool) {
	var best *models.CandidateSlot
	for _, slot := range catalog {
		if slot.DurationMinutes() < durationMinutes {
			continue
		}
		if slotBookedBySeries(slot, date, seriesGames) {
			continue
		}
		available := idx.AvailableCount(roster, date, slot.Label)
		if available < minPlayers || available > maxPlayers {
			continue
		}
		if best == nil || available > best.AvailableCount {
			best = &models.CandidateSlot{Slot: slot, AvailableCount: available}
		}
	}
	return best, best != nil
}

// slotBookedBySeries сообщает, занят ли слот существующей игрой серии на дату.
// Сравнение интервалов полуоткрытое, игра "впритык" слот не блокирует.
func slotBookedBySeries(slot models.TimeSlot, date time.Time, seriesGames []*models.Game) bool {
	for _, g := range seriesGames {
		if g.Status == models.GameStatusCanceled {
			continue
		}
		if !sameDate(g.Date, date) {
			continue
		}
		if slot.Overlaps(g.StartTime, g.EndTime) {
			return true
		}
	}
	return false
}
