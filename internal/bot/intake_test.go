package bot

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/spec-kit/support-bot/internal/domain"
)

func TestMatchCities(t *testing.T) {
	cities := []string{"Москва", "Новосибирск", "Нижний Новгород", "Омск"}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "exact", input: "Москва", want: []string{"Москва"}},
		{name: "exact lowercase", input: "москва", want: []string{"Москва"}},
		{name: "ambiguous prefix", input: "Н", want: []string{"Новосибирск", "Нижний Новгород"}},
		{name: "single prefix not exact", input: "Моск", want: []string{"Москва"}},
		{name: "no match", input: "Токио", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchCities(cities, tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("matchCities(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIntakeExactCityAdvances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.router.HandleEvent(ctx, commandEvent(testUserID, "start", ""))
	env.router.HandleEvent(ctx, textEvent(testUserID, "москва"))

	last := env.messenger.lastTo(t, testUserID)
	if !strings.Contains(last.text, "Город выбран: Москва") {
		t.Fatalf("expected city confirmation, got %q", last.text)
	}

	conv, _ := env.sessions.Get(ctx, testUserID)
	if conv.Flow != domain.FlowIntake || conv.Step != stepIntakeTopic {
		t.Fatalf("expected intake flow at topic step, got %+v", conv)
	}
	if conv.Field(fieldCity) != "Москва" {
		t.Fatalf("expected canonical city bound, got %q", conv.Field(fieldCity))
	}
}

func TestIntakeAmbiguousPrefixRepromptsWithChoices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.router.HandleEvent(ctx, commandEvent(testUserID, "start", ""))
	env.router.HandleEvent(ctx, textEvent(testUserID, "Но"))

	last := env.messenger.lastTo(t, testUserID)
	if last.kind != "keyboard" {
		t.Fatalf("expected choice keyboard, got %q message %q", last.kind, last.text)
	}
	want := []string{"Новосибирск"}
	if !reflect.DeepEqual(last.options, want) {
		// "Но" is a prefix of exactly one city in the default list
		t.Fatalf("options = %v, want %v", last.options, want)
	}

	conv, _ := env.sessions.Get(ctx, testUserID)
	if conv.Step != stepIntakeCity {
		t.Fatalf("state advanced on ambiguous input: %+v", conv)
	}
	if tickets, _ := env.tickets.List(ctx); len(tickets) != 0 {
		t.Fatalf("ticket created on ambiguous input")
	}
}

func TestIntakeMultiplePrefixMatches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.router.HandleEvent(ctx, commandEvent(testUserID, "start", ""))
	env.router.HandleEvent(ctx, textEvent(testUserID, "Н"))

	last := env.messenger.lastTo(t, testUserID)
	want := []string{"Новосибирск", "Нижний Новгород"}
	if !reflect.DeepEqual(last.options, want) {
		t.Fatalf("options = %v, want %v", last.options, want)
	}
}

func TestIntakeSinglePrefixNotExactIsNotAccepted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.router.HandleEvent(ctx, commandEvent(testUserID, "start", ""))
	env.router.HandleEvent(ctx, textEvent(testUserID, "Моск"))

	last := env.messenger.lastTo(t, testUserID)
	if last.kind != "keyboard" {
		t.Fatalf("a non-exact prefix must re-prompt, got %q %q", last.kind, last.text)
	}
	conv, _ := env.sessions.Get(ctx, testUserID)
	if conv.Field(fieldCity) != "" {
		t.Fatalf("city bound from a non-exact prefix: %q", conv.Field(fieldCity))
	}
}

func TestIntakeUnknownCityReprompts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.router.HandleEvent(ctx, commandEvent(testUserID, "start", ""))
	env.router.HandleEvent(ctx, textEvent(testUserID, "Токио"))

	last := env.messenger.lastTo(t, testUserID)
	if last.text != msgCityNotFound {
		t.Fatalf("expected %q, got %q", msgCityNotFound, last.text)
	}
	if tickets, _ := env.tickets.List(ctx); len(tickets) != 0 {
		t.Fatalf("ticket created for unknown city")
	}
}

func TestIntakeFullScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fileTicket(t, testUserID, "Москва", "Интернет", "не работает wifi")

	tickets, _ := env.tickets.List(ctx)
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}
	ticket := tickets[0]
	if ticket.ID != 1 {
		t.Errorf("ticket id = %d, want 1", ticket.ID)
	}
	if ticket.Status != domain.TicketStatusUnresolved {
		t.Errorf("status = %s, want unresolved", ticket.Status)
	}
	if ticket.City != "Москва" || ticket.Topic != "Интернет" || ticket.Description != "не работает wifi" {
		t.Errorf("unexpected fields: %+v", ticket)
	}
	if ticket.RequesterID != testUserID {
		t.Errorf("requester = %d, want %d", ticket.RequesterID, testUserID)
	}

	last := env.messenger.lastTo(t, testUserID)
	want := fmt.Sprintf(msgTicketAccepted, 1, "Не решена")
	if last.text != want {
		t.Errorf("acceptance = %q, want %q", last.text, want)
	}

	conv, _ := env.sessions.Get(ctx, testUserID)
	if conv.Active() {
		t.Errorf("state not cleared after intake: %+v", conv)
	}

	adminMsgs := env.messenger.sentTo(testAdminID)
	if len(adminMsgs) != 1 {
		t.Fatalf("expected 1 admin notification, got %d", len(adminMsgs))
	}
	notification := adminMsgs[0].text
	for _, field := range []string{"№1", "Москва", "Интернет", "не работает wifi", "Не решена", "@ivan"} {
		if !strings.Contains(notification, field) {
			t.Errorf("admin notification missing %q:\n%s", field, notification)
		}
	}
}

func TestStartReplacesPriorFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.router.HandleEvent(ctx, commandEvent(testUserID, "start", ""))
	env.router.HandleEvent(ctx, textEvent(testUserID, "Москва"))
	env.router.HandleEvent(ctx, commandEvent(testUserID, "start", ""))

	conv, _ := env.sessions.Get(ctx, testUserID)
	if conv.Step != stepIntakeCity || conv.Field(fieldCity) != "" {
		t.Fatalf("restart did not reset collected fields: %+v", conv)
	}
}
