package queue

import (
	"clinic_queue/internal/apperr"
	"clinic_queue/internal/models"
)

var transitions = map[models.Status][]models.Status{
	models.StatusWaiting:    {models.StatusInProgress, models.StatusCancelled, models.StatusNoShow},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether an entry may move from one status to another.
func CanTransition(from, to models.Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func ValidateTransition(entryID uint, from, to models.Status) error {
	if !CanTransition(from, to) {
		return &apperr.InvalidTransitionError{EntryID: entryID, From: from, To: to}
	}
	return nil
}

// IsTerminal reports whether no further transition is possible from s.
func IsTerminal(s models.Status) bool {
	return len(transitions[s]) == 0
}
