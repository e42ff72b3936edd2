package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/repository"
)

type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func newService() (*TicketService, *recordingDispatcher) {
	dispatcher := &recordingDispatcher{}
	return NewTicketService(repository.NewMemoryTicketRepository(), dispatcher), dispatcher
}

func TestCreateTicketAssignsSequentialIDs(t *testing.T) {
	svc, dispatcher := newService()
	ctx := context.Background()
	requester := events.Requester{ChatID: 100, Username: "ivan", FirstName: "Иван"}

	first, err := svc.CreateTicket(ctx, requester, "Москва", "Интернет", "не работает wifi")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.CreateTicket(ctx, requester, "Казань", "Телефония", "нет гудка")
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("ids not sequential: %d, %d", first.ID, second.ID)
	}
	if first.Status != domain.TicketStatusUnresolved {
		t.Errorf("new ticket status = %q", first.Status)
	}
	if first.CreatedAt != DateOnly(time.Now()) {
		t.Errorf("created_at not day-truncated: %v", first.CreatedAt)
	}
	if first.RequesterID != 100 {
		t.Errorf("requester id = %d", first.RequesterID)
	}

	if len(dispatcher.published) != 2 {
		t.Fatalf("published %d events, want 2", len(dispatcher.published))
	}
	event := dispatcher.published[0]
	if event.Type != events.EventTicketCreated {
		t.Errorf("event type = %q", event.Type)
	}
	if event.ID == "" || event.Timestamp.IsZero() {
		t.Errorf("event envelope incomplete: %+v", event)
	}
	if event.Requester.Username != "ivan" {
		t.Errorf("requester not carried on event: %+v", event.Requester)
	}
}

func TestCreateTicketTrimsFields(t *testing.T) {
	svc, _ := newService()
	ticket, err := svc.CreateTicket(context.Background(), events.Requester{ChatID: 1}, "  Москва ", " Интернет", "описание  ")
	if err != nil {
		t.Fatal(err)
	}
	if ticket.City != "Москва" || ticket.Topic != "Интернет" || ticket.Description != "описание" {
		t.Errorf("fields not trimmed: %+v", ticket)
	}
}

func TestResolvePublishesResolvedEvent(t *testing.T) {
	svc, dispatcher := newService()
	ctx := context.Background()
	ticket, _ := svc.CreateTicket(ctx, events.Requester{ChatID: 7}, "Москва", "Интернет", "медленно")

	if err := svc.Resolve(ctx, ticket.ID); err != nil {
		t.Fatal(err)
	}

	stored, err := svc.GetTicket(ctx, ticket.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.TicketStatusResolved {
		t.Errorf("status after resolve = %q", stored.Status)
	}

	last := dispatcher.published[len(dispatcher.published)-1]
	if last.Type != events.EventTicketResolved {
		t.Errorf("event type = %q", last.Type)
	}
	if last.Ticket.Status != domain.TicketStatusResolved {
		t.Errorf("event carries stale status %q", last.Ticket.Status)
	}
	if last.Requester.ChatID != 7 {
		t.Errorf("event requester = %d", last.Requester.ChatID)
	}
}

func TestResolveUnknownTicket(t *testing.T) {
	svc, dispatcher := newService()
	if err := svc.Resolve(context.Background(), 42); err != repository.ErrTicketNotFound {
		t.Fatalf("err = %v, want ErrTicketNotFound", err)
	}
	if len(dispatcher.published) != 0 {
		t.Errorf("event published for missing ticket")
	}
}

func TestReopenCarriesReasonAndIsIdempotent(t *testing.T) {
	svc, dispatcher := newService()
	ctx := context.Background()
	ticket, _ := svc.CreateTicket(ctx, events.Requester{ChatID: 7}, "Москва", "Интернет", "медленно")
	if err := svc.Resolve(ctx, ticket.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.Reopen(ctx, ticket.ID, "снова отвалилось"); err != nil {
		t.Fatal(err)
	}
	stored, _ := svc.GetTicket(ctx, ticket.ID)
	if stored.Status != domain.TicketStatusUnresolved {
		t.Errorf("status after reopen = %q", stored.Status)
	}
	last := dispatcher.published[len(dispatcher.published)-1]
	if last.Type != events.EventTicketReopened || last.Reason != "снова отвалилось" {
		t.Errorf("reopened event = %+v", last)
	}

	// reopening an already unresolved ticket still notifies
	before := len(dispatcher.published)
	if err := svc.Reopen(ctx, ticket.ID, "всё ещё не работает"); err != nil {
		t.Fatal(err)
	}
	if len(dispatcher.published) != before+1 {
		t.Errorf("idempotent reopen did not publish")
	}
}

func TestStatsAggregation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	seed := []struct {
		city, topic string
		resolved    bool
	}{
		{"Москва", "Интернет", true},
		{"Москва", "Телефония", false},
		{"Казань", "Интернет", false},
	}
	for _, s := range seed {
		ticket, err := svc.CreateTicket(ctx, events.Requester{ChatID: 1}, s.city, s.topic, "x")
		if err != nil {
			t.Fatal(err)
		}
		if s.resolved {
			if err := svc.Resolve(ctx, ticket.ID); err != nil {
				t.Fatal(err)
			}
		}
	}

	report, err := svc.Stats(ctx, StatsFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 3 || report.Resolved != 1 || report.Unresolved != 2 {
		t.Errorf("totals = %d/%d/%d", report.Total, report.Resolved, report.Unresolved)
	}
	if report.ByCity["Москва"] != 2 || report.ByCity["Казань"] != 1 {
		t.Errorf("by city = %v", report.ByCity)
	}
	if report.ByTopic["Интернет"] != 2 || report.ByTopic["Телефония"] != 1 {
		t.Errorf("by topic = %v", report.ByTopic)
	}
}

func TestStatsFilterSuppressesMatchingBreakdown(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, _ = svc.CreateTicket(ctx, events.Requester{ChatID: 1}, "Москва", "Интернет", "x")
	_, _ = svc.CreateTicket(ctx, events.Requester{ChatID: 1}, "Казань", "Интернет", "x")

	city := "Москва"
	report, err := svc.Stats(ctx, StatsFilter{City: &city})
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 1 {
		t.Errorf("total = %d, want 1", report.Total)
	}
	if report.ByCity != nil {
		t.Errorf("city breakdown present despite city filter: %v", report.ByCity)
	}
	if report.ByTopic == nil {
		t.Errorf("topic breakdown missing")
	}
}

func TestStatsDateRangeInclusive(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	ticket, _ := svc.CreateTicket(ctx, events.Requester{ChatID: 1}, "Москва", "Интернет", "x")

	day := ticket.CreatedAt
	report, err := svc.Stats(ctx, StatsFilter{From: &day, To: &day})
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 1 {
		t.Errorf("same-day range excluded ticket, total = %d", report.Total)
	}

	yesterday := day.AddDate(0, 0, -1)
	report, err = svc.Stats(ctx, StatsFilter{To: &yesterday})
	if err != nil {
		t.Fatal(err)
	}
	if report.Total != 0 {
		t.Errorf("past-only range matched today's ticket")
	}
}

func TestParseReportDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "01.03.2024", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{input: " 15.07.2025 ", want: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)},
		{input: "13.13.2024", wantErr: true},
		{input: "32.01.2024", wantErr: true},
		{input: "2024-01-01", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseReportDate(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseReportDate(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseReportDate(%q): %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseReportDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatReportDate(t *testing.T) {
	if got := FormatReportDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)); got != "01.03.2024" {
		t.Errorf("FormatReportDate = %q", got)
	}
}
