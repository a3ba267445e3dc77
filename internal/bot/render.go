package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oshaghisina/partswizard/internal/domain"
	"github.com/oshaghisina/partswizard/internal/wizard"
)

// render translates a render intent into a Telegram message with the
// appropriate keyboard.
func (b *Bot) render(chatID int64, intent *domain.RenderIntent) error {
	text := stepText(intent)
	if note := noteText(intent.Note); note != "" {
		text = note + "\n\n" + text
	}

	msg := tgbotapi.NewMessage(chatID, text)

	switch intent.Step {
	case domain.StateContactCapture:
		// Offer the native contact-sharing button; typing a number
		// also works.
		msg.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButtonContact("Share my phone number"),
			),
		)
	case domain.StateCompleted, domain.StateCancelled:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	default:
		if kb := buildKeyboard(intent); len(kb.InlineKeyboard) > 0 {
			msg.ReplyMarkup = kb
		}
	}

	_, err := b.api.Send(msg)
	return err
}

// buildKeyboard lays out one option per row plus a navigation row.
func buildKeyboard(intent *domain.RenderIntent) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if intent.Step == domain.StateConfirmation {
		// The single offered token here is the confirmation itself;
		// render it as one labeled confirm button.
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", encodeCallback(domain.Event{Kind: domain.EventConfirm})),
		))
	} else {
		for _, opt := range intent.Options {
			label := opt.Label
			if opt.Position != "" {
				label = fmt.Sprintf("%s (%s)", opt.Label, opt.Position)
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, encodeCallback(domain.Event{Kind: domain.EventSelect, Token: opt.Token})),
			))
		}
	}

	var nav []tgbotapi.InlineKeyboardButton
	if intent.AllowBack {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", encodeCallback(domain.Event{Kind: domain.EventBack})))
	}
	if intent.AllowCancel {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", encodeCallback(domain.Event{Kind: domain.EventCancel})))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func stepText(intent *domain.RenderIntent) string {
	switch intent.Step {
	case domain.StateBrandSelection:
		return "Which brand is your car?"
	case domain.StateModelSelection:
		return "Which model?"
	case domain.StateCategorySelection:
		return "What kind of part are you looking for?"
	case domain.StatePartSelection:
		return "Pick the part you need:"
	case domain.StateConfirmation:
		return confirmationText(intent.Session)
	case domain.StateContactCapture:
		return "Almost done. Share your phone number so we can reach you with availability and pricing."
	case domain.StateCompleted:
		text := "Thank you! Our team will contact you shortly."
		if intent.Ref != "" {
			text += "\nYour request reference: " + intent.Ref
		}
		return text
	case domain.StateCancelled:
		return "Request cancelled. Send /start whenever you need a part."
	default:
		return "Send /start to begin."
	}
}

func confirmationText(sess *domain.WizardSession) string {
	if sess == nil {
		return "Please confirm your request."
	}

	var sb strings.Builder
	sb.WriteString("Please confirm your request:\n")
	fmt.Fprintf(&sb, "• Car: %s %s\n", sess.Vehicle.Brand, sess.Vehicle.Model)
	fmt.Fprintf(&sb, "• Category: %s\n", sess.Part.Category)
	fmt.Fprintf(&sb, "• Part: %s", sess.Part.SelectedPartID)
	return sb.String()
}

// noteText maps machine-readable render notes to user-facing copy.
func noteText(note string) string {
	switch note {
	case wizard.NoteNoResults:
		return "No options are available for that choice right now."
	case wizard.NoteTryAgain:
		return "That didn't go through. Please try again."
	case wizard.NoteStaleSelection:
		return "That option is no longer available. Here is the current list."
	case wizard.NoteUseOptions:
		return "Please use the buttons below."
	case wizard.NotePhoneRequired:
		return "A phone number is required to finish your request."
	default:
		return ""
	}
}
