package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/oshaghisina/partswizard/internal/domain"
)

func newTestSQLite(t *testing.T) Repository {
	t.Helper()

	repo, err := NewSQLite(filepath.Join(t.TempDir(), "wizard.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return repo
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	if _, err := repo.CreateSession(ctx, "u1", domain.StateStart); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	state := domain.StateContactCapture
	vehicle := domain.VehicleData{Brand: "Chery", Model: "Tiggo8"}
	part := domain.PartData{Category: "Brakes", SelectedPartID: "PAD-001"}
	contact := domain.ContactData{Phone: "+989123456789", FirstName: "Ali"}

	updated, err := repo.UpdateSession(ctx, "u1", SessionPatch{
		State:   &state,
		Vehicle: &vehicle,
		Part:    &part,
		Contact: &contact,
	})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	if updated == nil {
		t.Fatal("Expected updated session, got nil")
	}

	sess, err := repo.GetSession(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.State != domain.StateContactCapture {
		t.Errorf("Expected state %q, got %q", domain.StateContactCapture, sess.State)
	}
	if sess.Vehicle != vehicle {
		t.Errorf("Vehicle data mismatch: %+v", sess.Vehicle)
	}
	if sess.Part != part {
		t.Errorf("Part data mismatch: %+v", sess.Part)
	}
	if sess.Contact == nil || sess.Contact.Phone != "+989123456789" {
		t.Errorf("Contact data mismatch: %+v", sess.Contact)
	}
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	repo := newTestSQLite(t)

	sess, err := repo.GetSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess != nil {
		t.Errorf("Expected nil session, got %+v", sess)
	}
}

func TestSQLiteStore_CreateReplacesExisting(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	if _, err := repo.CreateSession(ctx, "u1", domain.StateStart); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	state := domain.StateModelSelection
	vehicle := domain.VehicleData{Brand: "Chery"}
	if _, err := repo.UpdateSession(ctx, "u1", SessionPatch{State: &state, Vehicle: &vehicle}); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	if _, err := repo.CreateSession(ctx, "u1", domain.StateStart); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sess, err := repo.GetSession(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.State != domain.StateStart {
		t.Errorf("Expected state reset to %q, got %q", domain.StateStart, sess.State)
	}
	if sess.Vehicle.Brand != "" {
		t.Errorf("Expected vehicle data reset, got brand %q", sess.Vehicle.Brand)
	}
	if sess.Contact != nil {
		t.Errorf("Expected contact data reset, got %+v", sess.Contact)
	}
}

func TestSQLiteStore_UpdateNotFound(t *testing.T) {
	repo := newTestSQLite(t)

	state := domain.StateConfirmation
	sess, err := repo.UpdateSession(context.Background(), "missing", SessionPatch{State: &state})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	if sess != nil {
		t.Errorf("Expected nil session for missing user, got %+v", sess)
	}
}

func TestSQLiteStore_DeleteIdempotent(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	if _, err := repo.CreateSession(ctx, "u1", domain.StateStart); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	existed, err := repo.DeleteSession(ctx, "u1")
	if err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if !existed {
		t.Error("Expected delete to report an existing session")
	}

	existed, err = repo.DeleteSession(ctx, "u1")
	if err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if existed {
		t.Error("Expected second delete to report no session")
	}
}

func TestSQLiteStore_RejectsInvalidState(t *testing.T) {
	repo := newTestSQLite(t)
	ctx := context.Background()

	if _, err := repo.CreateSession(ctx, "u1", domain.State("bogus")); err == nil {
		t.Error("Expected error creating session with invalid state")
	}

	if _, err := repo.CreateSession(ctx, "u1", domain.StateStart); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	bad := domain.StateCancelled
	if _, err := repo.UpdateSession(ctx, "u1", SessionPatch{State: &bad}); err == nil {
		t.Error("Expected error updating session to cancelled pseudo-state")
	}
}
