package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/transport"
)

// NotificationService forwards ticket lifecycle events to the
// administrator's chat. Send failures are logged and never fail the
// action that emitted the event.
type NotificationService struct {
	dispatcher  events.Dispatcher
	messenger   transport.Messenger
	logger      *zap.Logger
	adminChatID int64
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, messenger transport.Messenger, logger *zap.Logger, adminChatID int64) *NotificationService {
	return &NotificationService{
		dispatcher:  dispatcher,
		messenger:   messenger,
		logger:      logger,
		adminChatID: adminChatID,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketResolved, n.handleTicketResolved)
	n.dispatcher.Subscribe(events.EventTicketReopened, n.handleTicketReopened)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	ticket := event.Ticket
	text := fmt.Sprintf(
		"🆕 Новая заявка №%d\n"+
			"👤 От: %s (@%s | ID: %d)\n"+
			"🏙 Город: %s\n"+
			"📌 Тема: %s\n"+
			"📝 Описание: %s\n"+
			"🕒 Дата: %s\n"+
			"📊 Статус: %s",
		ticket.ID,
		event.Requester.FirstName,
		event.Requester.Username,
		event.Requester.ChatID,
		ticket.City,
		ticket.Topic,
		ticket.Description,
		FormatReportDate(ticket.CreatedAt),
		ticket.Status.Label(),
	)
	return n.notifyAdmin(ctx, event, text)
}

func (n *NotificationService) handleTicketResolved(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket resolved",
		zap.Int64("ticket_id", event.Ticket.ID),
		zap.Int64("requester", event.Ticket.RequesterID))
	return nil
}

func (n *NotificationService) handleTicketReopened(ctx context.Context, event events.Event) error {
	text := fmt.Sprintf(
		"Пользователь по заявке #%d пишет:\n\n%s\n\nОтветьте /reply %d",
		event.Ticket.ID, event.Reason, event.Ticket.ID,
	)
	return n.notifyAdmin(ctx, event, text)
}

func (n *NotificationService) notifyAdmin(ctx context.Context, event events.Event, text string) error {
	if err := n.messenger.SendText(ctx, n.adminChatID, text); err != nil {
		n.logger.Error("failed to notify admin",
			zap.String("event_type", string(event.Type)),
			zap.Int64("ticket_id", event.Ticket.ID),
			zap.Error(err))
		return err
	}
	return nil
}
