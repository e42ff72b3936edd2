package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/support-bot/internal/domain"
	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/transport"
)

// Intake flow steps, in order.
const (
	stepIntakeCity = iota
	stepIntakeTopic
	stepIntakeDescription
)

// startIntake begins the ticket intake dialogue, replacing any flow the
// user was in.
func (r *Router) startIntake(ctx context.Context, event transport.Event) error {
	conv := domain.Conversation{Flow: domain.FlowIntake, Step: stepIntakeCity}
	if err := r.sessions.Set(ctx, event.UserID, conv); err != nil {
		return err
	}
	return r.messenger.SendText(ctx, event.ChatID, msgAskCity)
}

func (r *Router) handleIntakeStep(ctx context.Context, event transport.Event, conv domain.Conversation) error {
	switch conv.Step {
	case stepIntakeCity:
		return r.intakeCity(ctx, event, conv)
	case stepIntakeTopic:
		return r.intakeTopic(ctx, event, conv)
	case stepIntakeDescription:
		return r.intakeDescription(ctx, event, conv)
	default:
		return nil
	}
}

// intakeCity matches the input against the city list. A single exact
// match (case-insensitive) advances; prefix matches re-prompt with the
// matching cities as choices, so a typo never silently picks a city;
// no match re-prompts with an error. State stays on this step until a
// city is bound.
func (r *Router) intakeCity(ctx context.Context, event transport.Event, conv domain.Conversation) error {
	input := strings.TrimSpace(event.Text)
	matches := matchCities(r.cfg.Cities, input)

	switch {
	case len(matches) == 1 && strings.EqualFold(matches[0], input):
		conv = conv.WithField(fieldCity, matches[0])
		conv.Step = stepIntakeTopic
		if err := r.sessions.Set(ctx, event.UserID, conv); err != nil {
			return err
		}
		return r.messenger.SendText(ctx, event.ChatID, fmt.Sprintf(msgCityChosen, matches[0]))
	case len(matches) > 0:
		return r.messenger.SendKeyboard(ctx, event.ChatID, msgCityPick, matches)
	default:
		return r.messenger.SendText(ctx, event.ChatID, msgCityNotFound)
	}
}

func (r *Router) intakeTopic(ctx context.Context, event transport.Event, conv domain.Conversation) error {
	topic := strings.TrimSpace(event.Text)
	if topic == "" {
		return r.messenger.SendText(ctx, event.ChatID, msgAskTopic)
	}
	conv = conv.WithField(fieldTopic, topic)
	conv.Step = stepIntakeDescription
	if err := r.sessions.Set(ctx, event.UserID, conv); err != nil {
		return err
	}
	return r.messenger.SendText(ctx, event.ChatID, msgAskDescription)
}

// intakeDescription creates the ticket and finishes the flow. The admin
// notification rides on the ticket_created event; its failure never
// fails ticket creation.
func (r *Router) intakeDescription(ctx context.Context, event transport.Event, conv domain.Conversation) error {
	description := strings.TrimSpace(event.Text)
	if description == "" {
		return r.messenger.SendText(ctx, event.ChatID, msgAskDescription)
	}

	requester := events.Requester{
		ChatID:    event.UserID,
		Username:  event.Username,
		FirstName: event.FirstName,
	}
	ticket, err := r.tickets.CreateTicket(ctx, requester, conv.Field(fieldCity), conv.Field(fieldTopic), description)
	if err != nil {
		return err
	}
	if err := r.sessions.Clear(ctx, event.UserID); err != nil {
		return err
	}
	return r.messenger.SendText(ctx, event.ChatID,
		fmt.Sprintf(msgTicketAccepted, ticket.ID, ticket.Status.Label()))
}

// matchCities returns cities whose names start with the input,
// case-insensitively.
func matchCities(cities []string, input string) []string {
	lowered := strings.ToLower(input)
	var matches []string
	for _, city := range cities {
		if strings.HasPrefix(strings.ToLower(city), lowered) {
			matches = append(matches, city)
		}
	}
	return matches
}
