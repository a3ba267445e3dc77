// Package wizard implements the guided part-selection flow: the state
// machine, the back/cancel navigation policy and the engine that
// orchestrates session storage and catalog queries.
package wizard

import (
	"github.com/oshaghisina/partswizard/internal/domain"
)

// forward maps each state to the events that advance it. State/event
// pairs absent from this table (and from the back/cancel policy) are
// invalid transitions.
var forward = map[domain.State]map[domain.EventKind]domain.State{
	domain.StateBrandSelection: {
		domain.EventSelect: domain.StateModelSelection,
	},
	domain.StateModelSelection: {
		domain.EventSelect: domain.StateCategorySelection,
	},
	domain.StateCategorySelection: {
		domain.EventSelect: domain.StatePartSelection,
	},
	domain.StatePartSelection: {
		domain.EventSelect: domain.StateConfirmation,
	},
	domain.StateConfirmation: {
		domain.EventConfirm: domain.StateContactCapture,
	},
	domain.StateContactCapture: {
		domain.EventSubmitContact: domain.StateCompleted,
	},
}

// Next computes the target state for an event in the given state.
// Guards (catalog checks, payload validation) are the engine's concern;
// Next only decides legality of the state/event pair. Unmatched pairs
// return ErrInvalidTransition.
func Next(state domain.State, kind domain.EventKind) (domain.State, error) {
	switch kind {
	case domain.EventStart:
		// Starting is legal from anywhere: it replaces the session.
		return domain.StateBrandSelection, nil
	case domain.EventCancel:
		if state.Terminal() {
			return "", ErrInvalidTransition
		}
		return domain.StateCancelled, nil
	case domain.EventBack:
		prev, ok := Predecessor(state)
		if !ok {
			return "", ErrInvalidTransition
		}
		return prev, nil
	default:
		next, ok := forward[state][kind]
		if !ok {
			return "", ErrInvalidTransition
		}
		return next, nil
	}
}
