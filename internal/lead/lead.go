// Package lead delivers the one-shot completion signal to the
// order/lead collaborator.
package lead

import (
	"context"
	"log/slog"

	"github.com/oshaghisina/partswizard/internal/domain"
)

// Notifier receives the fully assembled session exactly once when a
// wizard flow completes. Order creation itself belongs to the
// collaborator, not to the wizard.
type Notifier interface {
	LeadCompleted(ctx context.Context, ref string, session *domain.WizardSession) error
}

// LogNotifier logs completed leads. It is used when no lead backend is
// configured.
type LogNotifier struct{}

// LeadCompleted logs the completed lead.
func (LogNotifier) LeadCompleted(_ context.Context, ref string, session *domain.WizardSession) error {
	slog.Info("Lead completed",
		"ref", ref,
		"user_id", session.UserID,
		"brand", session.Vehicle.Brand,
		"model", session.Vehicle.Model,
		"category", session.Part.Category,
		"part_id", session.Part.SelectedPartID,
	)
	return nil
}
