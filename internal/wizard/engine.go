package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oshaghisina/partswizard/internal/catalog"
	"github.com/oshaghisina/partswizard/internal/domain"
	"github.com/oshaghisina/partswizard/internal/lead"
	"github.com/oshaghisina/partswizard/internal/store"
)

const defaultTimeout = 5 * time.Second

// Config holds engine tuning knobs.
type Config struct {
	// CatalogTimeout bounds every catalog query. Zero means a default
	// of five seconds.
	CatalogTimeout time.Duration
	// StoreTimeout bounds every session store round trip. Zero means a
	// default of five seconds.
	StoreTimeout time.Duration
}

// Engine drives the wizard. It owns no mutable state of its own beyond
// handles to the session store and catalog gateway; all progress lives
// in the store.
//
// Events for the same user are serialized; different users proceed in
// parallel. Every mutation is all-or-nothing: on any catalog or store
// failure the session is left exactly as it was and the caller is told
// to retry the same step.
type Engine struct {
	repo           store.Repository
	gateway        catalog.Gateway
	leads          lead.Notifier
	catalogTimeout time.Duration
	storeTimeout   time.Duration
	locks          sync.Map // userID -> *sync.Mutex
}

// New creates a wizard engine. A nil notifier falls back to logging
// completed leads.
func New(repo store.Repository, gateway catalog.Gateway, leads lead.Notifier, cfg Config) *Engine {
	if leads == nil {
		leads = lead.LogNotifier{}
	}
	if cfg.CatalogTimeout <= 0 {
		cfg.CatalogTimeout = defaultTimeout
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultTimeout
	}
	return &Engine{
		repo:           repo,
		gateway:        gateway,
		leads:          leads,
		catalogTimeout: cfg.CatalogTimeout,
		storeTimeout:   cfg.StoreTimeout,
	}
}

// Handle processes one wizard event for a user and returns the render
// intent for the presentation adapter. Recoverable conditions (empty
// catalogs, stale selections, gateway timeouts) come back as re-render
// intents with a note; ErrSessionNotFound and ErrGatewayUnavailable are
// returned as errors when there is no step left to render.
func (e *Engine) Handle(ctx context.Context, userID string, ev domain.Event) (*domain.RenderIntent, error) {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	switch ev.Kind {
	case domain.EventStart:
		return e.handleStart(ctx, userID)
	case domain.EventCancel:
		return e.handleCancel(ctx, userID)
	case domain.EventSelect, domain.EventConfirm, domain.EventSubmitContact, domain.EventBack:
	default:
		return nil, ErrInvalidTransition
	}

	sess, err := e.getSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}

	switch ev.Kind {
	case domain.EventSelect:
		return e.handleSelect(ctx, sess, ev.Token)
	case domain.EventConfirm:
		return e.handleConfirm(ctx, sess)
	case domain.EventSubmitContact:
		return e.handleContact(ctx, sess, ev.Contact)
	default:
		return e.handleBack(ctx, sess)
	}
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	v, _ := e.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// handleStart creates a fresh session, replacing any prior one, and
// advances into brand selection if the catalog has at least one brand.
func (e *Engine) handleStart(ctx context.Context, userID string) (*domain.RenderIntent, error) {
	sess, err := e.createSession(ctx, userID)
	if err != nil {
		slog.Error("Failed to create wizard session", "error", err, "user_id", userID)
		return &domain.RenderIntent{Step: domain.StateStart, Note: NoteTryAgain, AllowCancel: true}, nil
	}

	opts, _, err := e.optionsFor(ctx, sess, domain.StateBrandSelection)
	if err != nil {
		slog.Warn("Catalog unavailable on wizard start", "error", err, "user_id", userID)
		return e.unavailable(sess), nil
	}
	if len(opts) == 0 {
		return e.hold(sess, nil, noteFor(ErrEmptyOptionSet)), nil
	}

	state := domain.StateBrandSelection
	updated, err := e.updateSession(ctx, userID, store.SessionPatch{State: &state})
	if err != nil {
		return e.unavailable(sess), nil
	}
	if updated == nil {
		return nil, ErrSessionNotFound
	}

	return e.intent(domain.StateBrandSelection, opts, updated, ""), nil
}

// handleCancel deletes the session immediately and unconditionally.
func (e *Engine) handleCancel(ctx context.Context, userID string) (*domain.RenderIntent, error) {
	existed, err := e.deleteSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if !existed {
		return nil, ErrSessionNotFound
	}

	slog.Info("Wizard cancelled", "user_id", userID)
	return &domain.RenderIntent{Step: domain.StateCancelled}, nil
}

// handleSelect validates the chosen token against fresh options for
// the current step, checks the next step is reachable, then persists
// the selection and the state advance in one update.
func (e *Engine) handleSelect(ctx context.Context, sess *domain.WizardSession, token string) (*domain.RenderIntent, error) {
	// The confirmation step offers exactly one token; selecting it is
	// a confirmation. Every offered token must round-trip.
	if sess.State == domain.StateConfirmation && token == ConfirmToken {
		return e.handleConfirm(ctx, sess)
	}

	next, err := Next(sess.State, domain.EventSelect)
	if err != nil {
		slog.Warn("Select event rejected", "user_id", sess.UserID, "state", sess.State)
		return e.rerender(ctx, sess, noteFor(err))
	}

	current, _, err := e.optionsFor(ctx, sess, sess.State)
	if err != nil {
		return e.unavailable(sess), nil
	}
	if len(current) == 0 {
		return e.hold(sess, nil, noteFor(ErrEmptyOptionSet)), nil
	}

	chosen, ok := findOption(current, token)
	if !ok {
		slog.Info("Stale selection", "user_id", sess.UserID, "state", sess.State, "token", token)
		return e.hold(sess, current, noteFor(ErrStaleSelection)), nil
	}

	staged := sess.Clone()
	staged.State = next
	applySelection(staged, sess.State, chosen)

	// Fetch the next step's options before persisting anything, so a
	// selection that leads to a dead end never builds up an invalid
	// partial session.
	nextOpts, _, err := e.optionsFor(ctx, staged, next)
	if err != nil {
		return e.unavailable(sess), nil
	}
	if len(nextOpts) == 0 && next != domain.StateConfirmation {
		return e.hold(sess, current, noteFor(ErrEmptyOptionSet)), nil
	}

	if intent, err := e.ensureCurrent(ctx, sess); intent != nil || err != nil {
		return intent, err
	}

	updated, err := e.updateSession(ctx, sess.UserID, selectionPatch(sess.State, staged))
	if err != nil {
		return e.unavailable(sess), nil
	}
	if updated == nil {
		return nil, ErrSessionNotFound
	}

	return e.intent(next, nextOpts, updated, ""), nil
}

// handleConfirm re-validates the selected part and moves into contact
// capture.
func (e *Engine) handleConfirm(ctx context.Context, sess *domain.WizardSession) (*domain.RenderIntent, error) {
	next, err := Next(sess.State, domain.EventConfirm)
	if err != nil {
		slog.Warn("Confirm event rejected", "user_id", sess.UserID, "state", sess.State)
		return e.rerender(ctx, sess, noteFor(err))
	}

	opts, stale, err := e.optionsFor(ctx, sess, sess.State)
	if err != nil {
		return e.unavailable(sess), nil
	}
	if stale {
		slog.Info("Selected part vanished before confirmation", "user_id", sess.UserID, "part_id", sess.Part.SelectedPartID)
		return e.hold(sess, opts, noteFor(ErrStaleSelection)), nil
	}

	if intent, err := e.ensureCurrent(ctx, sess); intent != nil || err != nil {
		return intent, err
	}

	updated, err := e.updateSession(ctx, sess.UserID, store.SessionPatch{State: &next})
	if err != nil {
		return e.unavailable(sess), nil
	}
	if updated == nil {
		return nil, ErrSessionNotFound
	}

	return e.intent(next, nil, updated, ""), nil
}

// handleContact captures the lead contact, marks the session completed,
// signals the lead collaborator once and removes the session.
func (e *Engine) handleContact(ctx context.Context, sess *domain.WizardSession, contact *domain.ContactData) (*domain.RenderIntent, error) {
	next, err := Next(sess.State, domain.EventSubmitContact)
	if err != nil {
		slog.Warn("Contact event rejected", "user_id", sess.UserID, "state", sess.State)
		return e.rerender(ctx, sess, noteFor(err))
	}

	if contact == nil || strings.TrimSpace(contact.Phone) == "" {
		return e.hold(sess, nil, NotePhoneRequired), nil
	}

	updated, err := e.updateSession(ctx, sess.UserID, store.SessionPatch{State: &next, Contact: contact})
	if err != nil {
		return e.unavailable(sess), nil
	}
	if updated == nil {
		return nil, ErrSessionNotFound
	}

	ref := uuid.New().String()
	if err := e.leads.LeadCompleted(ctx, ref, updated); err != nil {
		// The wizard's job ends at exposing the assembled session;
		// lead delivery failures must not roll the completion back.
		slog.Error("Failed to deliver completed lead", "error", err, "user_id", sess.UserID, "ref", ref)
	}

	if _, err := e.deleteSession(ctx, sess.UserID); err != nil {
		slog.Warn("Failed to remove completed session", "error", err, "user_id", sess.UserID)
	}

	slog.Info("Wizard completed", "user_id", sess.UserID, "ref", ref)

	intent := e.intent(domain.StateCompleted, nil, updated, "")
	intent.Ref = ref
	return intent, nil
}

// handleBack reconstructs the predecessor step. Accumulated data is
// retained; the target step's options are re-queried live.
func (e *Engine) handleBack(ctx context.Context, sess *domain.WizardSession) (*domain.RenderIntent, error) {
	prev, err := Next(sess.State, domain.EventBack)
	if err != nil {
		slog.Warn("Back event rejected", "user_id", sess.UserID, "state", sess.State)
		return e.rerender(ctx, sess, noteFor(err))
	}

	opts, stale, err := e.optionsFor(ctx, sess, prev)
	if err != nil {
		return e.unavailable(sess), nil
	}
	if len(opts) == 0 {
		return e.hold(sess, nil, noteFor(ErrEmptyOptionSet)), nil
	}

	if intent, err := e.ensureCurrent(ctx, sess); intent != nil || err != nil {
		return intent, err
	}

	updated, err := e.updateSession(ctx, sess.UserID, store.SessionPatch{State: &prev})
	if err != nil {
		return e.unavailable(sess), nil
	}
	if updated == nil {
		return nil, ErrSessionNotFound
	}

	note := ""
	if stale {
		note = NoteStaleSelection
	}
	return e.intent(prev, opts, updated, note), nil
}

// ensureCurrent re-reads the session after catalog round trips and
// discards the in-flight result if the session was cancelled or moved
// on meanwhile, so a cancelled flow is never resurrected.
func (e *Engine) ensureCurrent(ctx context.Context, sess *domain.WizardSession) (*domain.RenderIntent, error) {
	cur, err := e.getSession(ctx, sess.UserID)
	if err != nil {
		return e.unavailable(sess), nil
	}
	if cur == nil {
		return nil, ErrSessionNotFound
	}
	if cur.State != sess.State {
		slog.Warn("Discarding result for superseded state",
			"user_id", sess.UserID, "was", sess.State, "now", cur.State)
		return e.rerender(ctx, cur, noteFor(ErrInvalidTransition))
	}
	return nil, nil
}

// rerender rebuilds the intent for the session's current step with
// freshly queried options.
func (e *Engine) rerender(ctx context.Context, sess *domain.WizardSession, note string) (*domain.RenderIntent, error) {
	opts, stale, err := e.optionsFor(ctx, sess, sess.State)
	if err != nil {
		return e.unavailable(sess), nil
	}
	if stale && note == "" {
		note = NoteStaleSelection
	}
	return e.hold(sess, opts, note), nil
}

// hold renders the session's current step without mutating anything.
func (e *Engine) hold(sess *domain.WizardSession, opts []domain.Option, note string) *domain.RenderIntent {
	return e.intent(sess.State, opts, sess, note)
}

// unavailable signals a transient gateway failure for the current step.
func (e *Engine) unavailable(sess *domain.WizardSession) *domain.RenderIntent {
	return e.intent(sess.State, nil, sess, NoteTryAgain)
}

func (e *Engine) intent(step domain.State, opts []domain.Option, sess *domain.WizardSession, note string) *domain.RenderIntent {
	_, hasPrev := Predecessor(step)
	intent := &domain.RenderIntent{
		Step:        step,
		Options:     opts,
		Note:        note,
		AllowBack:   hasPrev,
		AllowCancel: !step.Terminal(),
	}
	if step == domain.StateConfirmation || step == domain.StateCompleted {
		intent.Session = sess.Clone()
	}
	return intent
}

// applySelection writes the chosen option into the staged session.
// Only the field owned by the originating step changes; data for later
// steps is overwritten by later forward transitions, never cleared.
func applySelection(staged *domain.WizardSession, from domain.State, chosen domain.Option) {
	switch from {
	case domain.StateBrandSelection:
		staged.Vehicle.Brand = chosen.Token
	case domain.StateModelSelection:
		staged.Vehicle.Model = chosen.Token
	case domain.StateCategorySelection:
		staged.Part.Category = chosen.Token
	case domain.StatePartSelection:
		staged.Part.SelectedPartID = chosen.Token
	}
}

// selectionPatch builds the minimal whole-object patch for a selection
// made in the given step.
func selectionPatch(from domain.State, staged *domain.WizardSession) store.SessionPatch {
	patch := store.SessionPatch{State: &staged.State}
	switch from {
	case domain.StateBrandSelection, domain.StateModelSelection:
		patch.Vehicle = &staged.Vehicle
	case domain.StateCategorySelection, domain.StatePartSelection:
		patch.Part = &staged.Part
	}
	return patch
}

func (e *Engine) createSession(ctx context.Context, userID string) (*domain.WizardSession, error) {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	return e.repo.CreateSession(ctx, userID, domain.StateStart)
}

func (e *Engine) getSession(ctx context.Context, userID string) (*domain.WizardSession, error) {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	return e.repo.GetSession(ctx, userID)
}

func (e *Engine) updateSession(ctx context.Context, userID string, patch store.SessionPatch) (*domain.WizardSession, error) {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	return e.repo.UpdateSession(ctx, userID, patch)
}

func (e *Engine) deleteSession(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	return e.repo.DeleteSession(ctx, userID)
}
