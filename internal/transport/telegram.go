package transport

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

// Telegram implements Messenger over the Bot API and feeds inbound
// updates to a handler.
type Telegram struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

// NewTelegram connects to the Bot API.
func NewTelegram(token string, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Info("telegram connected", zap.String("username", api.Self.UserName))
	return &Telegram{api: api, logger: logger}, nil
}

// Run long-polls for updates and invokes handle for each mapped event,
// one at a time, until ctx is cancelled. Per-user ordering is enforced
// downstream by the router.
func (t *Telegram) Run(ctx context.Context, pollTimeoutSeconds int, handle func(context.Context, Event)) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := t.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if event, ok := EventFromUpdate(update); ok {
				handle(ctx, event)
			}
		}
	}
}

// EventFromUpdate maps a raw update onto the flow layer's event model.
// Updates that carry neither usable text nor a known callback payload are
// dropped.
func EventFromUpdate(update tgbotapi.Update) (Event, bool) {
	if update.CallbackQuery != nil {
		cq := update.CallbackQuery
		action, ticketID, ok := ParseCallbackData(cq.Data)
		if !ok || cq.Message == nil {
			return Event{}, false
		}
		return Event{
			ChatID:    cq.Message.Chat.ID,
			UserID:    cq.From.ID,
			Username:  cq.From.UserName,
			FirstName: cq.From.FirstName,
			Callback: &Callback{
				ID:        cq.ID,
				Action:    action,
				TicketID:  ticketID,
				MessageID: cq.Message.MessageID,
			},
		}, true
	}

	if update.Message == nil || update.Message.From == nil {
		return Event{}, false
	}
	msg := update.Message
	event := Event{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		Text:      msg.Text,
	}
	if msg.IsCommand() {
		event.Command = msg.Command()
		event.Args = msg.CommandArguments()
	}
	if event.Text == "" {
		return Event{}, false
	}
	return event, true
}

func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	return t.send(msg)
}

func (t *Telegram) SendKeyboard(ctx context.Context, chatID int64, text string, options []string) error {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, option := range options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(option)))
	}
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return t.send(msg)
}

func (t *Telegram) SendInline(ctx context.Context, chatID int64, text string, buttons []InlineButton) error {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
	for _, button := range buttons {
		data := EncodeCallbackData(button.Action, button.TicketID)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(button.Label, data))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	return t.send(msg)
}

func (t *Telegram) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := t.api.Request(edit); err != nil {
		return apperrors.NewTransportError(err)
	}
	return nil
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID string) error {
	callback := tgbotapi.NewCallback(callbackID, "")
	if _, err := t.api.Request(callback); err != nil {
		return apperrors.NewTransportError(err)
	}
	return nil
}

func (t *Telegram) send(msg tgbotapi.MessageConfig) error {
	if _, err := t.api.Send(msg); err != nil {
		return apperrors.NewTransportError(err)
	}
	return nil
}
