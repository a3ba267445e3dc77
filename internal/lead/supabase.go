package lead

import (
	"context"
	"fmt"
	"time"

	"github.com/oshaghisina/partswizard/internal/domain"
	"github.com/supabase-community/supabase-go"
)

// SupabaseNotifier records completed leads in a Supabase leads table.
type SupabaseNotifier struct {
	client *supabase.Client
}

// NewSupabase creates a lead notifier backed by Supabase.
func NewSupabase(url, key string) (*SupabaseNotifier, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}

	return &SupabaseNotifier{client: client}, nil
}

type leadRow struct {
	Ref       string    `json:"ref"`
	UserID    string    `json:"user_id"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
	Category  string    `json:"category"`
	PartID    string    `json:"part_id"`
	Phone     string    `json:"phone"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadCompleted inserts a lead row assembled from the completed session.
func (n *SupabaseNotifier) LeadCompleted(ctx context.Context, ref string, session *domain.WizardSession) error {
	row := leadRow{
		Ref:       ref,
		UserID:    session.UserID,
		Brand:     session.Vehicle.Brand,
		Model:     session.Vehicle.Model,
		Category:  session.Part.Category,
		PartID:    session.Part.SelectedPartID,
		CreatedAt: time.Now(),
	}
	if session.Contact != nil {
		row.Phone = session.Contact.Phone
		row.FirstName = session.Contact.FirstName
		row.LastName = session.Contact.LastName
	}

	_, _, err := n.client.From("leads").Insert(row, false, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}
