// Package bot binds the parts wizard to Telegram: commands and inline
// keyboard callbacks become wizard events, render intents become
// messages with keyboards.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oshaghisina/partswizard/internal/domain"
	"github.com/oshaghisina/partswizard/internal/wizard"
)

// Bot runs the wizard over the Telegram Bot API.
type Bot struct {
	api    *tgbotapi.BotAPI
	engine *wizard.Engine
}

// New creates a Telegram bot bound to the wizard engine.
func New(token string, engine *wizard.Engine) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{api: api, engine: engine}, nil
}

// Start runs the bot in long-polling mode until the context is done.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	slog.Info("Telegram bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("Telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.handleUpdate(ctx, update); err != nil {
				slog.Error("Failed to handle update", "error", err)
			}
		}
	}
}

// HandleWebhook processes a single webhook update body. It is the
// entry point for serverless deployments.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return err
	}

	return b.handleUpdate(ctx, update)
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}

	if update.Message != nil && update.Message.IsCommand() {
		return b.handleCommand(ctx, update.Message)
	}

	if update.CallbackQuery != nil {
		return b.handleCallback(ctx, update.CallbackQuery)
	}

	return b.handleMessage(ctx, update.Message)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.dispatch(ctx, message.Chat.ID, message.From.ID, domain.Event{Kind: domain.EventStart})
	case "cancel":
		return b.dispatch(ctx, message.Chat.ID, message.From.ID, domain.Event{Kind: domain.EventCancel})
	default:
		return b.send(message.Chat.ID, "Unknown command. Send /start to begin.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// Callbacks from inline-mode or expired messages carry no
	// originating message; there is no chat to respond to.
	if callback.Message == nil {
		slog.Warn("Callback without originating message", "user_id", callback.From.ID, "data", callback.Data)
		return nil
	}

	// Acknowledge the button press so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		slog.Debug("Failed to answer callback", "error", err)
	}

	ev, err := decodeCallback(callback.Data)
	if err != nil {
		slog.Warn("Undecodable callback data", "data", callback.Data, "user_id", callback.From.ID)
		return b.send(callback.Message.Chat.ID, "Please use the buttons below the latest message.")
	}

	return b.dispatch(ctx, callback.Message.Chat.ID, callback.From.ID, ev)
}

// handleMessage treats free-form messages as contact input: a shared
// Telegram contact card or a typed phone number.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	contact := &domain.ContactData{
		FirstName: message.From.FirstName,
		LastName:  message.From.LastName,
	}
	if message.Contact != nil {
		contact.Phone = message.Contact.PhoneNumber
		if message.Contact.FirstName != "" {
			contact.FirstName = message.Contact.FirstName
		}
		if message.Contact.LastName != "" {
			contact.LastName = message.Contact.LastName
		}
	} else {
		contact.Phone = strings.TrimSpace(message.Text)
	}

	return b.dispatch(ctx, message.Chat.ID, message.From.ID, domain.Event{
		Kind:    domain.EventSubmitContact,
		Contact: contact,
	})
}

// dispatch feeds one event through the engine and renders the result.
func (b *Bot) dispatch(ctx context.Context, chatID int64, userID int64, ev domain.Event) error {
	intent, err := b.engine.Handle(ctx, strconv.FormatInt(userID, 10), ev)
	if err != nil {
		switch {
		case errors.Is(err, wizard.ErrSessionNotFound):
			return b.send(chatID, "You have no active request. Send /start to begin.")
		case errors.Is(err, wizard.ErrInvalidTransition):
			return b.send(chatID, "Please use the buttons below the latest message.")
		default:
			slog.Error("Wizard event failed", "error", err, "user_id", userID, "kind", ev.Kind)
			return b.send(chatID, "Something went wrong. Please try again in a moment.")
		}
	}

	return b.render(chatID, intent)
}

func (b *Bot) send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}
