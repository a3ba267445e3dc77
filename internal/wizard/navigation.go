package wizard

import (
	"context"

	"github.com/oshaghisina/partswizard/internal/domain"
)

// predecessors declares, for each state reachable by "back", which
// state it reconstructs. Back retains all accumulated data: the next
// forward transition overwrites whatever the user changes, which makes
// back-then-forward idempotent for an unchanged choice.
var predecessors = map[domain.State]domain.State{
	domain.StateModelSelection:    domain.StateBrandSelection,
	domain.StateCategorySelection: domain.StateModelSelection,
	domain.StatePartSelection:     domain.StateCategorySelection,
	domain.StateConfirmation:      domain.StatePartSelection,
	domain.StateContactCapture:    domain.StateConfirmation,
}

// Predecessor returns the state "back" steps into from s.
func Predecessor(s domain.State) (domain.State, bool) {
	prev, ok := predecessors[s]
	return prev, ok
}

// ConfirmToken is the option token offered at the confirmation step.
const ConfirmToken = "confirm"

// optionsFor re-queries the catalog for the options of a step, given
// the session's accumulated selections. Options are always fetched
// live, never cached: catalog contents may change between visits.
//
// For the confirmation step, stale reports that the previously
// selected part is no longer present in the catalog.
func (e *Engine) optionsFor(ctx context.Context, sess *domain.WizardSession, step domain.State) (opts []domain.Option, stale bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, e.catalogTimeout)
	defer cancel()

	switch step {
	case domain.StateBrandSelection:
		brands, err := e.gateway.Brands(ctx)
		if err != nil {
			return nil, false, err
		}
		return labelOptions(brands), false, nil

	case domain.StateModelSelection:
		models, err := e.gateway.Models(ctx, sess.Vehicle.Brand)
		if err != nil {
			return nil, false, err
		}
		return labelOptions(models), false, nil

	case domain.StateCategorySelection:
		categories, err := e.gateway.Categories(ctx, sess.Vehicle.Brand, sess.Vehicle.Model)
		if err != nil {
			return nil, false, err
		}
		return labelOptions(categories), false, nil

	case domain.StatePartSelection:
		parts, err := e.gateway.Search(ctx, sess.Vehicle, sess.Part)
		if err != nil {
			return nil, false, err
		}
		return partOptions(parts), false, nil

	case domain.StateConfirmation:
		// Re-validate the selected part on every visit, including
		// back-navigation from contact capture.
		parts, err := e.gateway.Search(ctx, sess.Vehicle, sess.Part)
		if err != nil {
			return nil, false, err
		}
		missing := true
		for _, p := range parts {
			if p.ID == sess.Part.SelectedPartID {
				missing = false
				break
			}
		}
		return []domain.Option{{Token: ConfirmToken, Label: "Confirm"}}, missing, nil

	default:
		// start, contact capture and the terminals render without
		// catalog options.
		return nil, false, nil
	}
}

func labelOptions(labels []string) []domain.Option {
	opts := make([]domain.Option, 0, len(labels))
	for _, label := range labels {
		opts = append(opts, domain.Option{Token: label, Label: label})
	}
	return opts
}

func partOptions(parts []domain.PartSummary) []domain.Option {
	opts := make([]domain.Option, 0, len(parts))
	for _, p := range parts {
		opts = append(opts, domain.Option{Token: p.ID, Label: p.Name, Position: p.Position})
	}
	return opts
}

func findOption(opts []domain.Option, token string) (domain.Option, bool) {
	for _, opt := range opts {
		if opt.Token == token {
			return opt, true
		}
	}
	return domain.Option{}, false
}
