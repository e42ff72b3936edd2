package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/service"
	"github.com/spec-kit/support-bot/internal/transport"
	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

// Stats flow steps, in order. Each accepts "-" meaning "no filter".
const (
	stepStatsStartDate = iota
	stepStatsEndDate
	stepStatsCity
	stepStatsTopic
)

const skipFilter = "-"

// statsStart begins the admin-only statistics dialogue.
func (r *Router) statsStart(ctx context.Context, event transport.Event) error {
	if err := r.requireAdmin(event); err != nil {
		return err
	}
	conv := domain.Conversation{Flow: domain.FlowStats, Step: stepStatsStartDate}
	if err := r.sessions.Set(ctx, event.UserID, conv); err != nil {
		return err
	}
	return r.messenger.SendText(ctx, event.ChatID, msgAskStartDate)
}

func (r *Router) handleStatsStep(ctx context.Context, event transport.Event, conv domain.Conversation) error {
	input := strings.TrimSpace(event.Text)

	switch conv.Step {
	case stepStatsStartDate:
		return r.statsCollectDate(ctx, event, conv, input, fieldStartDate, stepStatsEndDate, msgAskEndDate, msgBadStartDate)
	case stepStatsEndDate:
		return r.statsCollectDate(ctx, event, conv, input, fieldEndDate, stepStatsCity, msgAskStatsCity, msgBadEndDate)
	case stepStatsCity:
		conv = conv.WithField(fieldCity, input)
		conv.Step = stepStatsTopic
		if err := r.sessions.Set(ctx, event.UserID, conv); err != nil {
			return err
		}
		return r.messenger.SendText(ctx, event.ChatID, msgAskStatsTopic)
	case stepStatsTopic:
		return r.statsReport(ctx, event, conv, input)
	default:
		return nil
	}
}

// statsCollectDate validates a date input at the boundary. Malformed
// dates abort the whole flow rather than being skipped as a filter.
func (r *Router) statsCollectDate(ctx context.Context, event transport.Event, conv domain.Conversation, input, field string, nextStep int, nextPrompt, badDateMsg string) error {
	if input != skipFilter {
		if _, err := service.ParseReportDate(input); err != nil {
			_ = r.sessions.Clear(ctx, event.UserID)
			return apperrors.NewValidationError("stats: malformed date "+input, badDateMsg)
		}
	}
	conv = conv.WithField(field, input)
	conv.Step = nextStep
	if err := r.sessions.Set(ctx, event.UserID, conv); err != nil {
		return err
	}
	return r.messenger.SendText(ctx, event.ChatID, nextPrompt)
}

func (r *Router) statsReport(ctx context.Context, event transport.Event, conv domain.Conversation, topic string) error {
	filter, err := buildStatsFilter(conv, topic)
	if err != nil {
		// dates were validated on entry; a parse failure here means state corruption
		_ = r.sessions.Clear(ctx, event.UserID)
		return apperrors.NewInternalError(err)
	}

	report, err := r.tickets.Stats(ctx, filter)
	if err != nil {
		return err
	}
	if err := r.sessions.Clear(ctx, event.UserID); err != nil {
		return err
	}
	return r.messenger.SendText(ctx, event.ChatID, renderStatsReport(report))
}

func buildStatsFilter(conv domain.Conversation, topic string) (service.StatsFilter, error) {
	var filter service.StatsFilter

	if raw := conv.Field(fieldStartDate); raw != skipFilter {
		from, err := service.ParseReportDate(raw)
		if err != nil {
			return service.StatsFilter{}, err
		}
		filter.From = &from
	}
	if raw := conv.Field(fieldEndDate); raw != skipFilter {
		to, err := service.ParseReportDate(raw)
		if err != nil {
			return service.StatsFilter{}, err
		}
		filter.To = &to
	}
	if city := conv.Field(fieldCity); city != skipFilter {
		filter.City = &city
	}
	if topic != skipFilter {
		filter.Topic = &topic
	}
	return filter, nil
}

func renderStatsReport(report *service.StatsReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, msgStatsHeader, report.Total, report.Resolved, report.Unresolved)

	if len(report.ByCity) > 0 {
		b.WriteString(msgStatsByCity)
		for _, city := range sortedKeys(report.ByCity) {
			fmt.Fprintf(&b, " - %s: %d\n", city, report.ByCity[city])
		}
	}
	if len(report.ByTopic) > 0 {
		b.WriteString(msgStatsByTopic)
		for _, topic := range sortedKeys(report.ByTopic) {
			fmt.Fprintf(&b, " - %s: %d\n", topic, report.ByTopic[topic])
		}
	}
	return b.String()
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
