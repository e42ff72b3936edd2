package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/repository"
)

// TicketService coordinates the ticket lifecycle: creation through the
// intake flow, resolution confirmation, reopening, and reporting.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{tickets: tickets, dispatcher: dispatcher}
}

// CreateTicket files a new ticket for the requester, dated today, status
// Unresolved. Publishes ticket_created for the admin notification.
func (s *TicketService) CreateTicket(ctx context.Context, requester events.Requester, city, topic, description string) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		CreatedAt:   DateOnly(time.Now()),
		City:        strings.TrimSpace(city),
		Topic:       strings.TrimSpace(topic),
		Description: strings.TrimSpace(description),
		Status:      domain.TicketStatusUnresolved,
		RequesterID: requester.ChatID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		Ticket:    *ticket,
		Requester: requester,
	})
	return ticket, nil
}

// GetTicket fetches one ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// ListTickets returns all tickets ordered by id ascending.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	return s.tickets.List(ctx)
}

// Resolve marks a ticket Resolved. Only the user's affirmative
// confirmation reaches this path.
func (s *TicketService) Resolve(ctx context.Context, id int64) error {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusResolved); err != nil {
		return err
	}
	ticket.Status = domain.TicketStatusResolved
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketResolved,
		Ticket:    *ticket,
		Requester: events.Requester{ChatID: ticket.RequesterID},
	})
	return nil
}

// Reopen forces a ticket back to Unresolved with the user's reason and
// publishes ticket_reopened so the administrator is notified. Idempotent
// when the ticket is already Unresolved: the status write and the
// notification both still happen.
func (s *TicketService) Reopen(ctx context.Context, id int64, reason string) error {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusUnresolved); err != nil {
		return err
	}
	ticket.Status = domain.TicketStatusUnresolved
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketReopened,
		Ticket:    *ticket,
		Requester: events.Requester{ChatID: ticket.RequesterID},
		Reason:    reason,
	})
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
