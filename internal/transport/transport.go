// Package transport defines the messaging boundary: the inbound event
// model consumed by the flow layer and the outbound Messenger contract.
package transport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// CallbackAction tags inline button payloads.
type CallbackAction string

const (
	ActionResolveYes CallbackAction = "resolve_yes"
	ActionResolveNo  CallbackAction = "resolve_no"
)

// Callback is a button-press event: an action tag plus the ticket id the
// button was bound to.
type Callback struct {
	ID        string // callback query id, used for the acknowledgement
	Action    CallbackAction
	TicketID  int64
	MessageID int // message that carried the buttons
}

// Event is an inbound update normalized for the flow layer. Either Text
// (optionally a Command with Args) or Callback is set.
type Event struct {
	ChatID    int64
	UserID    int64
	Username  string
	FirstName string
	Text      string
	Command   string // command name without the leading slash, "" otherwise
	Args      string
	Callback  *Callback
}

// InlineButton is an outbound choice button carrying a ticket id payload.
type InlineButton struct {
	Label    string
	Action   CallbackAction
	TicketID int64
}

// Messenger sends outbound messages. Implementations must be safe for
// concurrent use; callers treat send failures as log-only.
type Messenger interface {
	// SendText sends a plain text message.
	SendText(ctx context.Context, chatID int64, text string) error
	// SendKeyboard sends text with a one-time reply keyboard of options.
	SendKeyboard(ctx context.Context, chatID int64, text string, options []string) error
	// SendInline sends text with inline buttons.
	SendInline(ctx context.Context, chatID int64, text string, buttons []InlineButton) error
	// EditMessageText rewrites a previously sent message.
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	// AnswerCallback acknowledges a button press.
	AnswerCallback(ctx context.Context, callbackID string) error
}

// EncodeCallbackData packs an action and ticket id into button payload form.
func EncodeCallbackData(action CallbackAction, ticketID int64) string {
	return fmt.Sprintf("%s:%d", action, ticketID)
}

// ParseCallbackData unpacks a button payload. Unknown or malformed
// payloads return ok=false and are dropped by the event mapper.
func ParseCallbackData(data string) (CallbackAction, int64, bool) {
	action, rawID, found := strings.Cut(data, ":")
	if !found {
		return "", 0, false
	}
	switch CallbackAction(action) {
	case ActionResolveYes, ActionResolveNo:
	default:
		return "", 0, false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return CallbackAction(action), id, true
}
