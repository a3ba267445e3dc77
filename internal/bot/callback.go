package bot

import (
	"fmt"
	"strings"

	"github.com/oshaghisina/partswizard/internal/domain"
)

// Callback data encoding. Telegram limits callback payloads to 64
// bytes, so the prefix is kept short and option tokens ride verbatim.
const (
	cbSelect  = "w:sel:"
	cbConfirm = "w:confirm"
	cbBack    = "w:back"
	cbCancel  = "w:cancel"
)

// encodeCallback turns a wizard event into callback data for an
// inline keyboard button.
func encodeCallback(ev domain.Event) string {
	switch ev.Kind {
	case domain.EventSelect:
		return cbSelect + ev.Token
	case domain.EventConfirm:
		return cbConfirm
	case domain.EventBack:
		return cbBack
	case domain.EventCancel:
		return cbCancel
	default:
		return ""
	}
}

// decodeCallback parses callback data back into a wizard event.
func decodeCallback(data string) (domain.Event, error) {
	switch {
	case strings.HasPrefix(data, cbSelect):
		return domain.Event{Kind: domain.EventSelect, Token: strings.TrimPrefix(data, cbSelect)}, nil
	case data == cbConfirm:
		return domain.Event{Kind: domain.EventConfirm}, nil
	case data == cbBack:
		return domain.Event{Kind: domain.EventBack}, nil
	case data == cbCancel:
		return domain.Event{Kind: domain.EventCancel}, nil
	default:
		return domain.Event{}, fmt.Errorf("unknown callback data %q", data)
	}
}
