package domain

// EventKind classifies an incoming wizard event.
type EventKind string

const (
	// EventStart begins (or restarts) the wizard for a user.
	EventStart EventKind = "start"
	// EventSelect picks one of the offered options by its token.
	EventSelect EventKind = "select"
	// EventConfirm approves the confirmation summary.
	EventConfirm EventKind = "confirm"
	// EventSubmitContact delivers the lead contact details.
	EventSubmitContact EventKind = "submit_contact"
	// EventBack steps to the previous wizard state.
	EventBack EventKind = "back"
	// EventCancel abandons the flow and deletes the session.
	EventCancel EventKind = "cancel"
)

// Event is a typed wizard event, decoded exactly once at the
// presentation-adapter boundary. The core never sees raw transport
// strings.
type Event struct {
	Kind EventKind `json:"kind"`

	// Token references an offered option for select events. Adapters
	// must round-trip it unchanged.
	Token string `json:"token,omitempty"`

	// Contact carries the payload of submit_contact events.
	Contact *ContactData `json:"contact,omitempty"`
}

// Option is a selectable choice offered to the user. The token is
// opaque to adapters; labels and position are display hints only.
type Option struct {
	Token    string `json:"token"`
	Label    string `json:"label"`
	Position string `json:"position,omitempty"`
}

// RenderIntent tells the presentation adapter what to display next.
type RenderIntent struct {
	Step        State          `json:"step"`
	Options     []Option       `json:"options,omitempty"`
	Note        string         `json:"note,omitempty"`
	Session     *WizardSession `json:"session,omitempty"`
	Ref         string         `json:"ref,omitempty"`
	AllowBack   bool           `json:"allow_back"`
	AllowCancel bool           `json:"allow_cancel"`
}
