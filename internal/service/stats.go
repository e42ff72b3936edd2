package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/repository"
)

// reportDateLayout is the user-entered date form, DD.MM.YYYY.
const reportDateLayout = "02.01.2006"

// StatsFilter selects tickets for the statistics report. Nil fields mean
// no constraint; date bounds are inclusive on both ends.
type StatsFilter struct {
	From  *time.Time
	To    *time.Time
	City  *string
	Topic *string
}

// StatsReport aggregates counts over the filtered tickets. ByCity is
// populated only when no city filter was given, symmetrically for ByTopic.
type StatsReport struct {
	Total      int
	Resolved   int
	Unresolved int
	ByCity     map[string]int
	ByTopic    map[string]int
}

// Stats builds the aggregate report over tickets matching the filter.
func (s *TicketService) Stats(ctx context.Context, filter StatsFilter) (*StatsReport, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		CreatedFrom: filter.From,
		CreatedTo:   filter.To,
		City:        filter.City,
		Topic:       filter.Topic,
	})
	if err != nil {
		return nil, err
	}

	report := &StatsReport{Total: len(tickets)}
	if filter.City == nil {
		report.ByCity = make(map[string]int)
	}
	if filter.Topic == nil {
		report.ByTopic = make(map[string]int)
	}

	for _, ticket := range tickets {
		if ticket.Status == domain.TicketStatusResolved {
			report.Resolved++
		}
		if report.ByCity != nil {
			report.ByCity[ticket.City]++
		}
		if report.ByTopic != nil {
			report.ByTopic[ticket.Topic]++
		}
	}
	report.Unresolved = report.Total - report.Resolved
	return report, nil
}

// ParseReportDate parses user-entered DD.MM.YYYY text into a
// day-granularity date. Impossible dates ("13.13.2024") fail.
func ParseReportDate(raw string) (time.Time, error) {
	parsed, err := time.Parse(reportDateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(parsed), nil
}

// FormatReportDate renders a date in the user-facing DD.MM.YYYY form.
func FormatReportDate(t time.Time) string {
	return t.Format(reportDateLayout)
}

// DateOnly truncates a timestamp to day granularity in UTC. Tickets and
// report bounds compare at this granularity.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
