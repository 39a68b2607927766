package schedule

import (
	"errors"
	"time"

	"github.com/teamplay/scheduler/models"
)

var (
	ErrInvalidFrequency  = errors.New("schedule: unsupported recurrence frequency")
	ErrInvalidInterval   = errors.New("schedule: recurrence interval must be positive")
	ErrDayOfWeekRequired = errors.New("schedule: weekly pattern requires day_of_week")
)

// Occurrence — одна конкретная дата, порождённая паттерном, вместе с формой
// будущей игры.
type Occurrence struct {
	Date       time.Time
	StartTime  string
	EndTime    string
	Location   string
	MinPlayers int
	MaxPlayers int
}

// ExpandPattern разворачивает паттерн в упорядоченный список дат внутри окна
// [windowStart, windowEnd] (обе границы включительно). Эффективное окно —
// пересечение запрошенного окна с окном самого паттерна; пустое пересечение
// даёт пустой список, а не ошибку.
//
// Функция чистая и детерминированная: одинаковые входы всегда дают одинаковую
// последовательность. На этом держится идемпотентная перегенерация игр.
func ExpandPattern(p *models.RecurringPattern, windowStart, windowEnd time.Time) ([]Occurrence, error) {
	if p.Interval < 1 {
		return nil, ErrInvalidInterval
	}

	effStart := dateOnly(p.StartDate)
	if ws := dateOnly(windowStart); ws.After(effStart) {
		effStart = ws
	}
	effEnd := dateOnly(p.EndDate)
	if we := dateOnly(windowEnd); we.Before(effEnd) {
		effEnd = we
	}
	if effStart.After(effEnd) {
		return []Occurrence{}, nil
	}

	var dates []time.Time
	switch p.Frequency {
	case models.FrequencyDaily:
		dates = expandDaily(dateOnly(p.StartDate), effStart, effEnd, p.Interval)
	case models.FrequencyWeekly:
		if p.DayOfWeek == nil {
			return nil, ErrDayOfWeekRequired
		}
		dates = expandWeekly(effStart, effEnd, time.Weekday(*p.DayOfWeek), p.Interval)
	case models.FrequencyMonthly:
		dates = expandMonthly(dateOnly(p.StartDate), effStart, effEnd, p.Interval)
	default:
		return nil, ErrInvalidFrequency
	}

	occurrences := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		occurrences = append(occurrences, Occurrence{
			Date:       d,
			StartTime:  p.StartTime,
			EndTime:    p.EndTime,
			Location:   p.Location,
			MinPlayers: p.MinPlayers,
			MaxPlayers: p.MaxPlayers,
		})
	}
	return occurrences, nil
}

// expandDaily шагает по interval дней, якорь — start_date паттерна,
// а не начало окна: окно лишь фильтрует уже заданную сетку дат.
func expandDaily(anchor, effStart, effEnd time.Time, interval int) []time.Time {
	d := anchor
	if effStart.After(anchor) {
		elapsed := daysBetween(anchor, effStart)
		steps := (elapsed + interval - 1) / interval
		d = anchor.AddDate(0, 0, steps*interval)
	}

	var dates []time.Time
	for !d.After(effEnd) {
		dates = append(dates, d)
		d = d.AddDate(0, 0, interval)
	}
	return dates
}

// expandWeekly начинает с первой даты >= начала эффективного окна, попадающей
// на нужный день недели, и шагает по 7*interval дней.
func expandWeekly(effStart, effEnd time.Time, day time.Weekday, interval int) []time.Time {
	offset := (int(day) - int(effStart.Weekday()) + 7) % 7
	d := effStart.AddDate(0, 0, offset)

	var dates []time.Time
	for !d.After(effEnd) {
		dates = append(dates, d)
		d = d.AddDate(0, 0, 7*interval)
	}
	return dates
}

// expandMonthly порождает даты в тот же день месяца, что и start_date,
// каждые interval месяцев. Если в месяце меньше дней, дата прижимается
// к последнему дню месяца (31-е в 30-дневном месяце даёт 30-е).
func expandMonthly(anchor, effStart, effEnd time.Time, interval int) []time.Time {
	year, month, day := anchor.Date()

	var dates []time.Time
	for step := 0; ; step += interval {
		firstOfMonth := time.Date(year, month+time.Month(step), 1, 0, 0, 0, 0, time.UTC)
		d := clampToMonth(firstOfMonth, day)
		if d.After(effEnd) {
			break
		}
		if !d.Before(effStart) {
			dates = append(dates, d)
		}
	}
	return dates
}

func clampToMonth(firstOfMonth time.Time, day int) time.Time {
	if last := daysInMonth(firstOfMonth); day > last {
		day = last
	}
	return time.Date(firstOfMonth.Year(), firstOfMonth.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b time.Time) bool {
	return dateOnly(a).Equal(dateOnly(b))
}
