package service

import (
	"sort"
	"time"

	"github.com/noah-isme/studyplanner-api/internal/models"
)

// FindFreeSlots sweeps busy events and returns the gaps inside [windowStart, windowEnd)
// that last at least minHours. Events may be unsorted and may overlap.
func FindFreeSlots(events []models.CalendarEvent, windowStart, windowEnd time.Time, minHours float64) []models.FreeSlot {
	if !windowStart.Before(windowEnd) {
		return []models.FreeSlot{}
	}

	sorted := make([]models.CalendarEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	slots := []models.FreeSlot{}
	emit := func(start, end time.Time) {
		if end.After(windowEnd) {
			end = windowEnd
		}
		if !start.Before(end) {
			return
		}
		hours := end.Sub(start).Hours()
		if hours < minHours {
			return
		}
		slots = append(slots, models.FreeSlot{Start: start, End: end, DurationHours: hours})
	}

	cursor := windowStart
	for _, event := range sorted {
		if !cursor.Before(windowEnd) {
			break
		}
		if cursor.Before(event.StartTime) {
			emit(cursor, event.StartTime)
		}
		if event.EndTime.After(cursor) {
			cursor = event.EndTime
		}
	}
	if cursor.Before(windowEnd) {
		emit(cursor, windowEnd)
	}
	return slots
}
