// Package domain contains core domain types for the parts wizard.
package domain

import (
	"time"
)

// State identifies a wizard step.
type State string

const (
	StateStart             State = "start"
	StateBrandSelection    State = "brand_selection"
	StateModelSelection    State = "model_selection"
	StateCategorySelection State = "category_selection"
	StatePartSelection     State = "part_selection"
	StateConfirmation      State = "confirmation"
	StateContactCapture    State = "contact_capture"
	StateCompleted         State = "completed"

	// StateCancelled is a pseudo-terminal used only in render intents.
	// It is never persisted: cancellation deletes the session outright.
	StateCancelled State = "cancelled"
)

// States lists every storable wizard state in flow order.
var States = []State{
	StateStart,
	StateBrandSelection,
	StateModelSelection,
	StateCategorySelection,
	StatePartSelection,
	StateConfirmation,
	StateContactCapture,
	StateCompleted,
}

// Storable reports whether s may be persisted as a session state.
func (s State) Storable() bool {
	for _, st := range States {
		if s == st {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the flow.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// VehicleData accumulates the user's vehicle selections.
// YearTrim is reserved for a future step and is not populated yet.
type VehicleData struct {
	Brand    string `json:"brand,omitempty"`
	Model    string `json:"model,omitempty"`
	YearTrim string `json:"year_trim,omitempty"`
}

// PartData accumulates the user's part selections.
type PartData struct {
	Category       string `json:"category,omitempty"`
	SelectedPartID string `json:"selected_part_id,omitempty"`
}

// ContactData holds the lead contact captured at the end of the flow.
type ContactData struct {
	Phone     string `json:"phone"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// WizardSession is the per-user wizard progress record.
// There is at most one live session per user; creating a new one
// replaces any existing session wholesale.
type WizardSession struct {
	UserID    string       `json:"user_id"`
	State     State        `json:"state"`
	Vehicle   VehicleData  `json:"vehicle_data"`
	Part      PartData     `json:"part_data"`
	Contact   *ContactData `json:"contact_data,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the session.
func (s *WizardSession) Clone() *WizardSession {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Contact != nil {
		contact := *s.Contact
		clone.Contact = &contact
	}
	return &clone
}

// PartSummary is a catalog search hit offered as a selectable option.
type PartSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
}
