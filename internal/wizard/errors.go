package wizard

import "errors"

// Error taxonomy. All of these are per-user, per-event recoverable
// conditions; none is fatal to the process.
var (
	// ErrSessionNotFound means an event arrived for a user with no
	// active session. The adapter should ask the user to restart.
	ErrSessionNotFound = errors.New("wizard session not found")

	// ErrEmptyOptionSet means the catalog returned zero options for the
	// current step. The session is left unchanged.
	ErrEmptyOptionSet = errors.New("no options for current step")

	// ErrStaleSelection means the user picked an option that is no
	// longer present in the latest catalog query.
	ErrStaleSelection = errors.New("selection no longer available")

	// ErrGatewayUnavailable means a catalog or store call failed or
	// timed out. The in-flight transition is abandoned without
	// mutating the session.
	ErrGatewayUnavailable = errors.New("gateway unavailable")

	// ErrInvalidTransition means the event is not legal for the
	// current state. Rejected with no mutation.
	ErrInvalidTransition = errors.New("event not valid for current state")
)

// Render notes are machine-readable hints attached to a render intent.
// Adapters translate them into user-facing copy.
const (
	NoteNoResults      = "no_results"
	NoteTryAgain       = "try_again"
	NoteStaleSelection = "selection_unavailable"
	NoteUseOptions     = "use_provided_options"
	NotePhoneRequired  = "phone_required"
)

// noteFor maps a recoverable failure to the render note adapters show
// for it.
func noteFor(err error) string {
	switch {
	case errors.Is(err, ErrEmptyOptionSet):
		return NoteNoResults
	case errors.Is(err, ErrStaleSelection):
		return NoteStaleSelection
	case errors.Is(err, ErrInvalidTransition):
		return NoteUseOptions
	default:
		return NoteTryAgain
	}
}
