// Package scheduler runs the deferred resolution check: a one-shot
// delayed prompt asking a user whether their ticket is resolved.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/repository"
	"github.com/spec-kit/support-bot/internal/transport"
)

const fireTimeout = 10 * time.Second

// ResolutionScheduler arms one-shot checks keyed by (requester, ticket).
// A check fires once after the configured delay, on its own goroutine so
// it never blocks ingestion of new events. At fire time it re-reads the
// ticket from the store: a vanished or already Resolved ticket produces
// no prompt. Checks are not persisted across restarts.
type ResolutionScheduler struct {
	tickets   repository.TicketRepository
	messenger transport.Messenger
	logger    *zap.Logger
	delay     time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

// New creates a scheduler with the given check delay.
func New(tickets repository.TicketRepository, messenger transport.Messenger, logger *zap.Logger, delay time.Duration) *ResolutionScheduler {
	return &ResolutionScheduler{
		tickets:   tickets,
		messenger: messenger,
		logger:    logger,
		delay:     delay,
		timers:    make(map[string]*time.Timer),
	}
}

// Arm schedules a resolution check for the requester and ticket. Arming
// an already armed key restarts its delay; each admin reply yields one
// pending prompt per ticket.
func (s *ResolutionScheduler) Arm(requesterID, ticketID int64) {
	key := checkKey(requesterID, ticketID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if timer, ok := s.timers[key]; ok {
		if timer.Stop() {
			s.wg.Done()
		}
	}
	s.wg.Add(1)
	s.timers[key] = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		s.forget(key)
		s.fire(requesterID, ticketID)
	})
	s.logger.Debug("resolution check armed",
		zap.Int64("requester", requesterID),
		zap.Int64("ticket_id", ticketID),
		zap.Duration("delay", s.delay))
}

// Stop cancels pending timers and waits for in-flight checks.
func (s *ResolutionScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for key, timer := range s.timers {
		if timer.Stop() {
			s.wg.Done()
		}
		delete(s.timers, key)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *ResolutionScheduler) fire(requesterID, ticketID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
	defer cancel()

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, repository.ErrTicketNotFound) {
		return
	}
	if err != nil {
		s.logger.Error("resolution check: ticket lookup failed",
			zap.Int64("ticket_id", ticketID), zap.Error(err))
		return
	}
	if ticket.Status == domain.TicketStatusResolved {
		return
	}

	text := fmt.Sprintf("Заявка #%d решена?", ticketID)
	buttons := []transport.InlineButton{
		{Label: "Да", Action: transport.ActionResolveYes, TicketID: ticketID},
		{Label: "Нет", Action: transport.ActionResolveNo, TicketID: ticketID},
	}
	if err := s.messenger.SendInline(ctx, requesterID, text, buttons); err != nil {
		s.logger.Error("resolution check: prompt send failed",
			zap.Int64("requester", requesterID),
			zap.Int64("ticket_id", ticketID),
			zap.Error(err))
	}
}

func (s *ResolutionScheduler) forget(key string) {
	s.mu.Lock()
	delete(s.timers, key)
	s.mu.Unlock()
}

func checkKey(requesterID, ticketID int64) string {
	return fmt.Sprintf("%d:%d", requesterID, ticketID)
}
