package events

import (
	"time"

	"github.com/spec-kit/support-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketResolved EventType = "ticket_resolved"
	EventTicketReopened EventType = "ticket_reopened"
)

// Requester carries the chat identity of the user behind an event, used
// when notifying the administrator.
type Requester struct {
	ChatID    int64  `json:"chat_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// Event represents a ticket lifecycle event emitted by services.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Ticket    domain.Ticket `json:"ticket"`
	Requester Requester     `json:"requester"`
	Reason    string        `json:"reason,omitempty"` // reopen reason text
	Timestamp time.Time     `json:"timestamp"`
}
