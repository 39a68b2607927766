package schedule

import (
	"fmt"

	"github.com/teamplay/scheduler/models"
)

// ConflictDetector классифицирует конфликты игры против других игр и
// ответов игроков. Все проверки независимы и выполняются всегда:
// результат — объединение сработавших, а не первая найденная.
type ConflictDetector struct {
	catalog models.SlotCatalog
}

func NewConflictDetector(catalog models.SlotCatalog) *ConflictDetector {
	return &ConflictDetector{catalog: catalog}
}

// Detect возвращает отчёт о конфликтах целевой игры. others — игры на ту же
// дату (любой серии), attendance — заявки игроков на целевую игру, idx —
// индекс ответов ростера на дату игры. Чистая функция без побочных эффектов.
func (d *ConflictDetector) Detect(target *models.Game, others []*models.Game, attendance []models.GameAttendance, idx *AvailabilityIndex) *models.ConflictReport {
	report := &models.ConflictReport{
		Conflicts: []models.Conflict{},
		Warnings:  []models.Conflict{},
	}

	d.detectGameOverlaps(target, others, report)
	unavailable := d.detectPlayerConflicts(target, attendance, idx, report)
	d.detectCapacity(target, attendance, unavailable, report)

	return report
}

// detectGameOverlaps находит двойные бронирования площадки (любая серия)
// и пересечения по времени внутри одной серии. Интервалы полуоткрытые:
// игры "впритык", делящие только граничную точку, не конфликтуют.
func (d *ConflictDetector) detectGameOverlaps(target *models.Game, others []*models.Game, report *models.ConflictReport) {
	for _, other := range others {
		if other.ID == target.ID {
			continue
		}
		if !sameDate(other.Date, target.Date) {
			continue
		}
		if !intervalsOverlap(target.StartTime, target.EndTime, other.StartTime, other.EndTime) {
			continue
		}
		otherID := other.ID
		switch {
		case other.Location == target.Location:
			report.Conflicts = append(report.Conflicts, models.Conflict{
				Kind:        models.ConflictLocationDoubleBooking,
				GameID:      target.ID,
				OtherGameID: &otherID,
				Reason: fmt.Sprintf("location %q is already booked by game %d from %s to %s",
					target.Location, other.ID, other.StartTime, other.EndTime),
			})
		case other.SeriesID == target.SeriesID:
			report.Conflicts = append(report.Conflicts, models.Conflict{
				Kind:        models.ConflictTimeOverlap,
				GameID:      target.ID,
				OtherGameID: &otherID,
				Reason: fmt.Sprintf("game %d in the same series overlaps from %s to %s at %q",
					other.ID, other.StartTime, other.EndTime, other.Location),
			})
		}
	}
}

// detectPlayerConflicts сверяет заявившихся игроков с их ответами по слотам,
// пересекающим окно игры. unavailable блокирует, maybe — только предупреждение
// в отдельной корзине. Возвращает множество заблокированных игроков для
// последующей проверки вместимости.
func (d *ConflictDetector) detectPlayerConflicts(target *models.Game, attendance []models.GameAttendance, idx *AvailabilityIndex, report *models.ConflictReport) map[int]bool {
	unavailable := make(map[int]bool)
	for _, att := range attendance {
		if att.Status == models.AttendanceDeclined {
			continue
		}
		status, ok := d.worstStatus(att.UserID, target, idx)
		if !ok {
			continue
		}
		userID := att.UserID
		switch status {
		case models.AvailabilityUnavailable:
			unavailable[att.UserID] = true
			report.Conflicts = append(report.Conflicts, models.Conflict{
				Kind:   models.ConflictPlayerUnavailable,
				GameID: target.ID,
				UserID: &userID,
				Reason: fmt.Sprintf("player %d is marked unavailable during the game window %s-%s",
					att.UserID, target.StartTime, target.EndTime),
			})
		case models.AvailabilityMaybe:
			report.Warnings = append(report.Warnings, models.Conflict{
				Kind:   models.ConflictPlayerUnavailable,
				GameID: target.ID,
				UserID: &userID,
				Reason: fmt.Sprintf("player %d answered \"maybe\" for the game window %s-%s",
					att.UserID, target.StartTime, target.EndTime),
			})
		}
	}
	return unavailable
}

// worstStatus сводит ответы игрока по всем слотам каталога, пересекающим окно
// игры, к одному статусу: unavailable перевешивает maybe, maybe перевешивает
// available. Игрок без ответов даёт ok=false.
func (d *ConflictDetector) worstStatus(userID int, target *models.Game, idx *AvailabilityIndex) (models.AvailabilityStatus, bool) {
	var worst models.AvailabilityStatus
	found := false
	for _, slot := range d.catalog {
		if !slot.Overlaps(target.StartTime, target.EndTime) {
			continue
		}
		status, ok := idx.StatusOf(userID, target.Date, slot.Label)
		if !ok {
			continue
		}
		if !found || statusSeverity(status) > statusSeverity(worst) {
			worst = status
			found = true
		}
	}
	return worst, found
}

// detectCapacity выполняется последней: она зависит от исхода проверки
// ответов игроков. Считаются заявившиеся, не помеченные unavailable;
// maybe и отсутствие ответа места не отнимают.
func (d *ConflictDetector) detectCapacity(target *models.Game, attendance []models.GameAttendance, unavailable map[int]bool, report *models.ConflictReport) {
	expected := 0
	for _, att := range attendance {
		if att.Status == models.AttendanceDeclined {
			continue
		}
		if unavailable[att.UserID] {
			continue
		}
		expected++
	}
	if expected < target.MinPlayers {
		report.Conflicts = append(report.Conflicts, models.Conflict{
			Kind:   models.ConflictCapacityUnmet,
			GameID: target.ID,
			Reason: fmt.Sprintf("only %d players expected, %d required", expected, target.MinPlayers),
		})
	}
}

func statusSeverity(s models.AvailabilityStatus) int {
	switch s {
	case models.AvailabilityUnavailable:
		return 2
	case models.AvailabilityMaybe:
		return 1
	default:
		return 0
	}
}

// intervalsOverlap сравнивает полуоткрытые интервалы [aStart, aEnd) и
// [bStart, bEnd). Времена — строки "HH:MM", лексикографический порядок
// совпадает с временным.
func intervalsOverlap(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && bStart < aEnd
}
