package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oshaghisina/partswizard/internal/domain"
)

func TestCallbackRoundTrip(t *testing.T) {
	events := []domain.Event{
		{Kind: domain.EventSelect, Token: "Chery"},
		{Kind: domain.EventSelect, Token: "PAD-001"},
		{Kind: domain.EventConfirm},
		{Kind: domain.EventBack},
		{Kind: domain.EventCancel},
	}

	for _, ev := range events {
		data := encodeCallback(ev)
		if data == "" {
			t.Errorf("encodeCallback(%s) returned empty data", ev.Kind)
			continue
		}
		got, err := decodeCallback(data)
		if err != nil {
			t.Errorf("decodeCallback(%q) failed: %v", data, err)
			continue
		}
		if got != ev {
			t.Errorf("Round trip changed event: %+v -> %+v", ev, got)
		}
	}
}

func TestDecodeCallback_RejectsUnknownData(t *testing.T) {
	for _, data := range []string{"", "w:", "x:sel:Chery", "start"} {
		if _, err := decodeCallback(data); err == nil {
			t.Errorf("decodeCallback(%q) expected error", data)
		}
	}
}

func TestHandleCallback_IgnoresMessagelessCallbacks(t *testing.T) {
	b := &Bot{}

	callback := &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: 42},
		Data: "w:back",
	}

	// No originating message: the callback is dropped without touching
	// the API client or the engine.
	if err := b.handleCallback(context.Background(), callback); err != nil {
		t.Errorf("handleCallback returned error: %v", err)
	}
}

func TestEncodeCallback_TokensRideVerbatim(t *testing.T) {
	ev := domain.Event{Kind: domain.EventSelect, Token: "Tiggo8"}
	if got := encodeCallback(ev); got != "w:sel:Tiggo8" {
		t.Errorf("encodeCallback = %q, want w:sel:Tiggo8", got)
	}
}
