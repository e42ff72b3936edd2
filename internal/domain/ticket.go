package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusUnresolved TicketStatus = "UNRESOLVED"
	TicketStatusResolved   TicketStatus = "RESOLVED"
)

// Label returns the chat-facing rendering of a status.
func (s TicketStatus) Label() string {
	if s == TicketStatusResolved {
		return "Решена"
	}
	return "Не решена"
}

// Ticket is the aggregate for support requests filed through the bot.
// CreatedAt carries day granularity; RequesterID is the chat id of the
// user who filed the ticket and is never reassigned.
type Ticket struct {
	ID          int64
	CreatedAt   time.Time
	City        string
	Topic       string
	Description string
	Status      TicketStatus
	RequesterID int64
}
