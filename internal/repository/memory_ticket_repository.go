package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/support-bot/internal/domain"
)

// memoryTicketRepository keeps tickets in process memory. Used when no
// Postgres DSN is configured, and by tests. Ids are assigned in strictly
// increasing order and never reused.
type memoryTicketRepository struct {
	mu      sync.Mutex
	nextID  int64
	tickets []domain.Ticket
}

// NewMemoryTicketRepository instantiates the in-memory repository.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{nextID: 1}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			ticket := r.tickets[i]
			return &ticket, nil
		}
	}
	return nil, ErrTicketNotFound
}

func (r *memoryTicketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets[i].Status = status
			return nil
		}
	}
	return ErrTicketNotFound
}

func (r *memoryTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.ListWithFilter(ctx, TicketFilter{})
}

func (r *memoryTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		if filter.City != nil && ticket.City != *filter.City {
			continue
		}
		if filter.Topic != nil && ticket.Topic != *filter.Topic {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}
