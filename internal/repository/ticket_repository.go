package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-bot/internal/domain"
)

// ErrTicketNotFound is returned when no ticket exists with the given id.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketFilter captures the statistics query parameters. Nil fields mean
// no constraint. Date bounds are inclusive on both ends and compared at
// day granularity.
type TicketFilter struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	City        *string
	Topic       *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
	List(ctx context.Context) ([]domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (created_at, city, topic, description, status, requester_chat_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		ticket.CreatedAt,
		ticket.City,
		ticket.Topic,
		ticket.Description,
		ticket.Status,
		ticket.RequesterID,
	).Scan(&ticket.ID)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, created_at, city, topic, description, status, requester_chat_id
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.CreatedAt,
		&ticket.City,
		&ticket.Topic,
		&ticket.Description,
		&ticket.Status,
		&ticket.RequesterID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// UpdateStatus performs a single-statement status write so concurrent
// flips on the same ticket cannot interleave partially.
func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1 WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	return r.ListWithFilter(ctx, TicketFilter{})
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, created_at, city, topic, description, status, requester_chat_id
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.City != nil {
		args = append(args, *filter.City)
		clauses = append(clauses, fmt.Sprintf("city = $%d", len(args)))
	}
	if filter.Topic != nil {
		args = append(args, *filter.Topic)
		clauses = append(clauses, fmt.Sprintf("topic = $%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY id ASC`, base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.CreatedAt,
			&ticket.City,
			&ticket.Topic,
			&ticket.Description,
			&ticket.Status,
			&ticket.RequesterID,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
