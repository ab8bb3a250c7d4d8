// Package queue holds the ordering rules and the entry lifecycle. It performs no I/O and is safe
// for concurrent use.
package queue

import (
	"sort"

	"clinic_queue/internal/apperr"
	"clinic_queue/internal/models"
)

const (
	weightUrgent   = 0
	weightPriority = 1
	weightNormal   = 2
)

// Weight ranks a priority level; lower is served first. Unknown levels rank as normal.
func Weight(p models.PriorityLevel) int {
	switch p {
	case models.PriorityUrgent:
		return weightUrgent
	case models.PriorityPriority:
		return weightPriority
	case models.PriorityNormal:
		return weightNormal
	default:
		return weightNormal
	}
}

// Compare orders entries by priority weight, then by TimeAdded. It returns a negative number when
// a is served before b, positive when after, and 0 for an exact tie.
func Compare(a, b *models.QueueEntry) int {
	if wa, wb := Weight(a.PriorityLevel), Weight(b.PriorityLevel); wa != wb {
		return wa - wb
	}
	switch {
	case a.TimeAdded.Before(b.TimeAdded):
		return -1
	case a.TimeAdded.After(b.TimeAdded):
		return 1
	}
	return 0
}

// Sort orders entries in place. Ties keep their incoming order.
func Sort(entries []models.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Compare(&entries[i], &entries[j]) < 0
	})
}

// Sorted returns an ordered copy and leaves entries untouched.
func Sorted(entries []models.QueueEntry) []models.QueueEntry {
	out := make([]models.QueueEntry, len(entries))
	copy(out, entries)
	Sort(out)
	return out
}

// PositionOf returns the 1-based position of id among entries, which must already be filtered to
// waiting entries.
func PositionOf(entries []models.QueueEntry, id uint) (int, error) {
	for i, e := range Sorted(entries) {
		if e.ID == id {
			return i + 1, nil
		}
	}
	return 0, apperr.NotFound("queue entry", id)
}

// HeadOf returns the entry served next, or false when entries is empty.
func HeadOf(entries []models.QueueEntry) (*models.QueueEntry, bool) {
	if len(entries) == 0 {
		return nil, false
	}
	head := 0
	for i := 1; i < len(entries); i++ {
		if Compare(&entries[i], &entries[head]) < 0 {
			head = i
		}
	}
	e := entries[head]
	return &e, true
}
