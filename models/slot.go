package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeSlot — один бронируемый интервал из канонического каталога.
// Start и End хранятся как "HH:MM"; сравнение строк даёт корректный
// порядок времени, пока часы дополнены нулями.
type TimeSlot struct {
	Label string `json:"label"` // "14:00-16:00"
	Start string `json:"start"`
	End   string `json:"end"`
}

// DurationMinutes возвращает длину слота в минутах.
func (s TimeSlot) DurationMinutes() int {
	start, _ := time.Parse("15:04", s.Start)
	end, _ := time.Parse("15:04", s.End)
	return int(end.Sub(start).Minutes())
}

// Overlaps сообщает, пересекается ли слот с полуоткрытым интервалом [start, end).
func (s TimeSlot) Overlaps(start, end string) bool {
	return s.Start < end && start < s.End
}

// ParseTimeSlot разбирает метку вида "14:00-16:00".
func ParseTimeSlot(label string) (TimeSlot, error) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return TimeSlot{}, fmt.Errorf("time slot %q: expected format \"HH:MM-HH:MM\"", label)
	}
	start, end := parts[0], parts[1]
	if _, err := time.Parse("15:04", start); err != nil {
		return TimeSlot{}, fmt.Errorf("time slot %q: invalid start time: %w", label, err)
	}
	if _, err := time.Parse("15:04", end); err != nil {
		return TimeSlot{}, fmt.Errorf("time slot %q: invalid end time: %w", label, err)
	}
	if start >= end {
		return TimeSlot{}, fmt.Errorf("time slot %q: start must be before end", label)
	}
	return TimeSlot{Label: label, Start: start, End: end}, nil
}

// SlotCatalog — упорядоченный список канонических слотов. Каталог приходит
// из конфигурации; движок не содержит зашитых слотов.
type SlotCatalog []TimeSlot

// ParseSlotCatalog строит каталог из меток, сохраняя порядок по времени начала.
func ParseSlotCatalog(labels []string) (SlotCatalog, error) {
	catalog := make(SlotCatalog, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		slot, err := ParseTimeSlot(strings.TrimSpace(label))
		if err != nil {
			return nil, err
		}
		if _, dup := seen[slot.Label]; dup {
			return nil, fmt.Errorf("time slot %q: duplicate catalog entry", slot.Label)
		}
		seen[slot.Label] = struct{}{}
		catalog = append(catalog, slot)
	}
	for i := 1; i < len(catalog); i++ {
		if catalog[i].Start < catalog[i-1].Start {
			return nil, fmt.Errorf("slot catalog must be ordered by start time, %q before %q", catalog[i-1].Label, catalog[i].Label)
		}
	}
	return catalog, nil
}

// Contains проверяет, что метка принадлежит каталогу.
func (c SlotCatalog) Contains(label string) bool {
	for _, s := range c {
		if s.Label == label {
			return true
		}
	}
	return false
}

// CandidateSlot — результат поиска оптимального слота.
type CandidateSlot struct {
	Slot           TimeSlot `json:"slot"`
	AvailableCount int      `json:"available_count"`
}
