// Package bot routes inbound chat events to the conversational flows:
// ticket intake, administrator replies, resolution confirmation, and the
// statistics report.
package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/service"
	"github.com/spec-kit/support-bot/internal/session"
	"github.com/spec-kit/support-bot/internal/transport"
	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

// Collected field keys within a conversation.
const (
	fieldCity      = "city"
	fieldTopic     = "topic"
	fieldTicketID  = "ticket_id"
	fieldStartDate = "start_date"
	fieldEndDate   = "end_date"
)

// Scheduler arms a deferred resolution check after an admin reply.
type Scheduler interface {
	Arm(requesterID, ticketID int64)
}

// Config carries the router's fixed parameters.
type Config struct {
	AdminChatID int64
	Cities      []string
	CheckDelay  time.Duration
}

// Router dispatches inbound events to the step handler matching the
// user's current conversation state.
type Router struct {
	cfg       Config
	sessions  session.Store
	tickets   *service.TicketService
	scheduler Scheduler
	messenger transport.Messenger
	logger    *zap.Logger
	metrics   *observability.Metrics
	locks     *session.KeyedMutex
}

// NewRouter wires the flow layer.
func NewRouter(cfg Config, sessions session.Store, tickets *service.TicketService, scheduler Scheduler, messenger transport.Messenger, logger *zap.Logger, metrics *observability.Metrics) *Router {
	return &Router{
		cfg:       cfg,
		sessions:  sessions,
		tickets:   tickets,
		scheduler: scheduler,
		messenger: messenger,
		logger:    logger,
		metrics:   metrics,
		locks:     session.NewKeyedMutex(),
	}
}

// HandleEvent processes one inbound event. Events for the same user are
// serialized; different users interleave freely. Errors carrying a chat
// message are reported in-band; everything else is logged only.
func (r *Router) HandleEvent(ctx context.Context, event transport.Event) {
	r.locks.Lock(event.UserID)
	defer r.locks.Unlock(event.UserID)

	if err := r.dispatch(ctx, event); err != nil {
		r.reportError(ctx, event, err)
	}
}

func (r *Router) dispatch(ctx context.Context, event transport.Event) error {
	if event.Callback != nil {
		r.metrics.RecordUpdate("resolution")
		return r.handleCallback(ctx, event)
	}

	if event.Command != "" {
		switch event.Command {
		case "start":
			r.metrics.RecordUpdate("intake")
			return r.startIntake(ctx, event)
		case "admin":
			r.metrics.RecordUpdate("admin")
			return r.adminList(ctx, event)
		case "reply":
			r.metrics.RecordUpdate("admin")
			return r.replyStart(ctx, event)
		case "stats":
			r.metrics.RecordUpdate("stats")
			return r.statsStart(ctx, event)
		default:
			return nil // unknown commands are ignored
		}
	}

	conv, err := r.sessions.Get(ctx, event.UserID)
	if err != nil {
		return err
	}
	switch conv.Flow {
	case domain.FlowIntake:
		r.metrics.RecordUpdate("intake")
		return r.handleIntakeStep(ctx, event, conv)
	case domain.FlowAdminReply:
		r.metrics.RecordUpdate("admin")
		return r.handleAdminReplyStep(ctx, event, conv)
	case domain.FlowProblemReason:
		r.metrics.RecordUpdate("resolution")
		return r.handleProblemReason(ctx, event, conv)
	case domain.FlowStats:
		r.metrics.RecordUpdate("stats")
		return r.handleStatsStep(ctx, event, conv)
	default:
		return nil // free text outside any flow is ignored
	}
}

// requireAdmin gates admin-only entry points. Mismatches are silent: no
// reply, no state change, so privileged commands do not leak.
func (r *Router) requireAdmin(event transport.Event) error {
	if event.UserID != r.cfg.AdminChatID {
		return apperrors.NewUnauthorized("caller is not the administrator")
	}
	return nil
}

func (r *Router) reportError(ctx context.Context, event transport.Event, err error) {
	domainErr := apperrors.ToDomainError(err)
	r.metrics.RecordError("bot", domainErr.Code)

	if domainErr.Code == "UNAUTHORIZED" {
		r.logger.Debug("admin entry point ignored", zap.Int64("user_id", event.UserID))
		return
	}
	if domainErr.HTTPStatus >= 500 {
		r.logger.Error("event handling failed", zap.Int64("user_id", event.UserID), zap.Error(domainErr))
	} else {
		r.logger.Info("event rejected",
			zap.Int64("user_id", event.UserID),
			zap.String("code", domainErr.Code))
	}
	if domainErr.ChatMessage != "" {
		if sendErr := r.messenger.SendText(ctx, event.ChatID, domainErr.ChatMessage); sendErr != nil {
			r.logger.Error("failed to send error reply", zap.Int64("chat_id", event.ChatID), zap.Error(sendErr))
		}
	}
}
