// Package workflow holds the work status rules shared by the API and the staff
// client: the transition decision, the list ordering and the finish pipeline.
package workflow

import (
	"mk3hierros/internal/models"
)

// Decision is the outcome of AttemptTransition. It is one of Unchanged,
// Allowed or RedirectToFinish.
type Decision interface {
	decision()
}

// Unchanged means the requested status equals the current one.
type Unchanged struct{}

// Allowed means the caller may write To directly.
type Allowed struct {
	To models.Status
}

// RedirectToFinish means the status cannot be written on its own: the caller
// must collect marketing data and images and run the finish pipeline.
type RedirectToFinish struct{}

func (Unchanged) decision()        {}
func (Allowed) decision()          {}
func (RedirectToFinish) decision() {}

// AttemptTransition decides how a status change requested by staff is applied.
// Only moving into Finalizado is guarded; every other move, including leaving
// Finalizado or Cancelado, is allowed.
func AttemptTransition(current, requested models.Status) (Decision, error) {
	if _, err := models.ParseStatus(string(requested)); err != nil {
		return nil, err
	}
	if requested == current {
		return Unchanged{}, nil
	}
	if requested == models.StatusFinished {
		return RedirectToFinish{}, nil
	}
	return Allowed{To: requested}, nil
}
