package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/repository"
	"github.com/spec-kit/support-bot/internal/transport"
	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

// handleCallback interprets the yes/no answer to a resolution prompt.
func (r *Router) handleCallback(ctx context.Context, event transport.Event) error {
	callback := event.Callback
	switch callback.Action {
	case transport.ActionResolveYes:
		return r.resolveYes(ctx, event, callback)
	case transport.ActionResolveNo:
		return r.resolveNo(ctx, event, callback)
	default:
		return nil
	}
}

// resolveYes marks the ticket Resolved and rewrites the prompt into a
// confirmation. A vanished ticket still gets the acknowledgement; there
// is nothing left to update.
func (r *Router) resolveYes(ctx context.Context, event transport.Event, callback *transport.Callback) error {
	if err := r.tickets.Resolve(ctx, callback.TicketID); err != nil && !errors.Is(err, repository.ErrTicketNotFound) {
		return err
	}

	confirmation := fmt.Sprintf(msgResolvedThanks, callback.TicketID)
	if err := r.messenger.EditMessageText(ctx, event.ChatID, callback.MessageID, confirmation); err != nil {
		r.logger.Error("failed to edit resolution prompt",
			zap.Int64("ticket_id", callback.TicketID), zap.Error(err))
	}
	return r.messenger.AnswerCallback(ctx, callback.ID)
}

// resolveNo stores the ticket id in the user's conversation state and
// asks what is wrong.
func (r *Router) resolveNo(ctx context.Context, event transport.Event, callback *transport.Callback) error {
	conv := domain.Conversation{Flow: domain.FlowProblemReason}.
		WithField(fieldTicketID, strconv.FormatInt(callback.TicketID, 10))
	if err := r.sessions.Set(ctx, event.UserID, conv); err != nil {
		return err
	}

	if err := r.messenger.EditMessageText(ctx, event.ChatID, callback.MessageID, msgAskProblem); err != nil {
		r.logger.Error("failed to edit resolution prompt",
			zap.Int64("ticket_id", callback.TicketID), zap.Error(err))
	}
	return r.messenger.AnswerCallback(ctx, callback.ID)
}

// handleProblemReason forwards the user's reason to the administrator
// (via the ticket_reopened event), forces the ticket back to Unresolved,
// acknowledges, and clears state. Reopening an already Unresolved ticket
// behaves the same, admin notification included. A new resolution check
// is armed only by the next admin reply.
func (r *Router) handleProblemReason(ctx context.Context, event transport.Event, conv domain.Conversation) error {
	ticketID, err := strconv.ParseInt(conv.Field(fieldTicketID), 10, 64)
	if err != nil {
		_ = r.sessions.Clear(ctx, event.UserID)
		return apperrors.NewInternalError(fmt.Errorf("problem reason state lost ticket id: %w", err))
	}

	if err := r.tickets.Reopen(ctx, ticketID, event.Text); err != nil {
		_ = r.sessions.Clear(ctx, event.UserID)
		if errors.Is(err, repository.ErrTicketNotFound) {
			return apperrors.NewNotFound("ticket", msgTicketNotFound)
		}
		return err
	}

	ack := fmt.Sprintf(msgReasonForwarded, int(r.cfg.CheckDelay.Minutes()))
	if err := r.messenger.SendText(ctx, event.ChatID, ack); err != nil {
		r.logger.Error("failed to acknowledge problem reason",
			zap.Int64("ticket_id", ticketID), zap.Error(err))
	}
	return r.sessions.Clear(ctx, event.UserID)
}
