package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/repository"
	"github.com/spec-kit/support-bot/internal/service"
	"github.com/spec-kit/support-bot/internal/transport"
	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

// adminList renders all tickets ordered by id.
func (r *Router) adminList(ctx context.Context, event transport.Event) error {
	if err := r.requireAdmin(event); err != nil {
		return err
	}

	tickets, err := r.tickets.ListTickets(ctx)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		return r.messenger.SendText(ctx, event.ChatID, msgNoTickets)
	}

	var b strings.Builder
	b.WriteString(msgTicketListHeader)
	for _, ticket := range tickets {
		fmt.Fprintf(&b, msgTicketListEntry,
			ticket.ID,
			ticket.Status.Label(),
			service.FormatReportDate(ticket.CreatedAt),
			ticket.City,
			ticket.Topic,
			ticket.Description,
		)
	}
	b.WriteString(msgTicketListFooter)
	return r.messenger.SendText(ctx, event.ChatID, b.String())
}

// replyStart parses the ticket id argument and enters the reply flow.
func (r *Router) replyStart(ctx context.Context, event transport.Event) error {
	if err := r.requireAdmin(event); err != nil {
		return err
	}

	args := strings.Fields(event.Args)
	if len(args) != 1 {
		return apperrors.NewValidationError("reply: missing ticket id argument", msgReplyUsage)
	}
	ticketID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || ticketID < 0 {
		return apperrors.NewValidationError("reply: non-numeric ticket id", msgReplyUsage)
	}

	if _, err := r.tickets.GetTicket(ctx, ticketID); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return apperrors.NewNotFound("ticket", msgTicketNotFound)
		}
		return err
	}

	conv := domain.Conversation{Flow: domain.FlowAdminReply}.
		WithField(fieldTicketID, strconv.FormatInt(ticketID, 10))
	if err := r.sessions.Set(ctx, event.UserID, conv); err != nil {
		return err
	}
	return r.messenger.SendText(ctx, event.ChatID, fmt.Sprintf(msgAskReplyText, ticketID))
}

// handleAdminReplyStep forwards the admin's text to the requester,
// confirms, clears admin state, and arms a deferred resolution check for
// the ticket. A failed forward is logged; the reply is still confirmed
// and the check still armed.
func (r *Router) handleAdminReplyStep(ctx context.Context, event transport.Event, conv domain.Conversation) error {
	ticketID, err := strconv.ParseInt(conv.Field(fieldTicketID), 10, 64)
	if err != nil {
		_ = r.sessions.Clear(ctx, event.UserID)
		return apperrors.NewInternalError(fmt.Errorf("admin reply state lost ticket id: %w", err))
	}

	ticket, err := r.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		_ = r.sessions.Clear(ctx, event.UserID)
		if errors.Is(err, repository.ErrTicketNotFound) {
			return apperrors.NewNotFound("ticket requester", msgRequesterMissing)
		}
		return err
	}

	reply := fmt.Sprintf(msgAdminReply, ticketID, event.Text)
	if err := r.messenger.SendText(ctx, ticket.RequesterID, reply); err != nil {
		r.logger.Error("failed to deliver admin reply",
			zap.Int64("ticket_id", ticketID),
			zap.Int64("requester", ticket.RequesterID),
			zap.Error(err))
	}

	confirm := fmt.Sprintf(msgReplySent, int(r.cfg.CheckDelay.Minutes()))
	if err := r.messenger.SendText(ctx, event.ChatID, confirm); err != nil {
		r.logger.Error("failed to confirm reply to admin", zap.Error(err))
	}

	if err := r.sessions.Clear(ctx, event.UserID); err != nil {
		return err
	}
	r.scheduler.Arm(ticket.RequesterID, ticketID)
	return nil
}
