package wizard

import (
	"errors"
	"testing"

	"github.com/oshaghisina/partswizard/internal/domain"
)

func TestNext_ForwardPath(t *testing.T) {
	tests := []struct {
		state domain.State
		kind  domain.EventKind
		want  domain.State
	}{
		{domain.StateBrandSelection, domain.EventSelect, domain.StateModelSelection},
		{domain.StateModelSelection, domain.EventSelect, domain.StateCategorySelection},
		{domain.StateCategorySelection, domain.EventSelect, domain.StatePartSelection},
		{domain.StatePartSelection, domain.EventSelect, domain.StateConfirmation},
		{domain.StateConfirmation, domain.EventConfirm, domain.StateContactCapture},
		{domain.StateContactCapture, domain.EventSubmitContact, domain.StateCompleted},
	}

	for _, tt := range tests {
		got, err := Next(tt.state, tt.kind)
		if err != nil {
			t.Errorf("Next(%s, %s) failed: %v", tt.state, tt.kind, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Next(%s, %s) = %s, want %s", tt.state, tt.kind, got, tt.want)
		}
	}
}

func TestNext_StartIsLegalEverywhere(t *testing.T) {
	for _, state := range domain.States {
		got, err := Next(state, domain.EventStart)
		if err != nil {
			t.Errorf("Next(%s, start) failed: %v", state, err)
			continue
		}
		if got != domain.StateBrandSelection {
			t.Errorf("Next(%s, start) = %s, want %s", state, got, domain.StateBrandSelection)
		}
	}
}

func TestNext_CancelPolicy(t *testing.T) {
	for _, state := range domain.States {
		got, err := Next(state, domain.EventCancel)
		if state.Terminal() {
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Next(%s, cancel) = %v, want ErrInvalidTransition", state, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Next(%s, cancel) failed: %v", state, err)
			continue
		}
		if got != domain.StateCancelled {
			t.Errorf("Next(%s, cancel) = %s, want %s", state, got, domain.StateCancelled)
		}
	}
}

func TestNext_BackPolicy(t *testing.T) {
	wantPrev := map[domain.State]domain.State{
		domain.StateModelSelection:    domain.StateBrandSelection,
		domain.StateCategorySelection: domain.StateModelSelection,
		domain.StatePartSelection:     domain.StateCategorySelection,
		domain.StateConfirmation:      domain.StatePartSelection,
		domain.StateContactCapture:    domain.StateConfirmation,
	}

	for _, state := range domain.States {
		got, err := Next(state, domain.EventBack)
		prev, ok := wantPrev[state]
		if !ok {
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Next(%s, back) = %v, want ErrInvalidTransition", state, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Next(%s, back) failed: %v", state, err)
			continue
		}
		if got != prev {
			t.Errorf("Next(%s, back) = %s, want %s", state, got, prev)
		}
	}
}

func TestNext_RejectsMismatchedPairs(t *testing.T) {
	tests := []struct {
		state domain.State
		kind  domain.EventKind
	}{
		{domain.StateStart, domain.EventSelect},
		{domain.StateStart, domain.EventConfirm},
		{domain.StateBrandSelection, domain.EventConfirm},
		{domain.StateBrandSelection, domain.EventSubmitContact},
		{domain.StateModelSelection, domain.EventConfirm},
		{domain.StateCategorySelection, domain.EventSubmitContact},
		{domain.StatePartSelection, domain.EventConfirm},
		{domain.StateConfirmation, domain.EventSelect},
		{domain.StateConfirmation, domain.EventSubmitContact},
		{domain.StateContactCapture, domain.EventSelect},
		{domain.StateContactCapture, domain.EventConfirm},
		{domain.StateCompleted, domain.EventSelect},
		{domain.StateCompleted, domain.EventSubmitContact},
		{domain.StateBrandSelection, domain.EventKind("poke")},
	}

	for _, tt := range tests {
		if _, err := Next(tt.state, tt.kind); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Next(%s, %s) = %v, want ErrInvalidTransition", tt.state, tt.kind, err)
		}
	}
}

// Every event kind resolves, for every state, to either a defined state
// or ErrInvalidTransition; nothing falls outside the machine.
func TestNext_TotalOverStates(t *testing.T) {
	kinds := []domain.EventKind{
		domain.EventStart, domain.EventSelect, domain.EventConfirm,
		domain.EventSubmitContact, domain.EventBack, domain.EventCancel,
	}

	known := map[domain.State]bool{domain.StateCancelled: true}
	for _, s := range domain.States {
		known[s] = true
	}

	for _, state := range domain.States {
		for _, kind := range kinds {
			next, err := Next(state, kind)
			if err != nil {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Next(%s, %s) returned unexpected error: %v", state, kind, err)
				}
				continue
			}
			if !known[next] {
				t.Errorf("Next(%s, %s) = %q, not a defined state", state, kind, next)
			}
		}
	}
}
