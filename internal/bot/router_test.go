package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/events"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/repository"
	"github.com/spec-kit/support-bot/internal/service"
	"github.com/spec-kit/support-bot/internal/session"
	"github.com/spec-kit/support-bot/internal/transport"
)

const (
	testAdminID = int64(9000)
	testUserID  = int64(1001)
)

type sentMessage struct {
	chatID    int64
	text      string
	options   []string
	buttons   []transport.InlineButton
	kind      string // text, keyboard, inline, edit
	messageID int
}

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []sentMessage
	answered []string
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	f.record(sentMessage{chatID: chatID, text: text, kind: "text"})
	return nil
}

func (f *fakeMessenger) SendKeyboard(ctx context.Context, chatID int64, text string, options []string) error {
	f.record(sentMessage{chatID: chatID, text: text, options: options, kind: "keyboard"})
	return nil
}

func (f *fakeMessenger) SendInline(ctx context.Context, chatID int64, text string, buttons []transport.InlineButton) error {
	f.record(sentMessage{chatID: chatID, text: text, buttons: buttons, kind: "inline"})
	return nil
}

func (f *fakeMessenger) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	f.record(sentMessage{chatID: chatID, text: text, messageID: messageID, kind: "edit"})
	return nil
}

func (f *fakeMessenger) AnswerCallback(ctx context.Context, callbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID)
	return nil
}

func (f *fakeMessenger) record(msg sentMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

func (f *fakeMessenger) sentTo(chatID int64) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []sentMessage
	for _, msg := range f.sent {
		if msg.chatID == chatID {
			result = append(result, msg)
		}
	}
	return result
}

func (f *fakeMessenger) lastTo(t *testing.T, chatID int64) sentMessage {
	t.Helper()
	msgs := f.sentTo(chatID)
	if len(msgs) == 0 {
		t.Fatalf("no messages sent to chat %d", chatID)
	}
	return msgs[len(msgs)-1]
}

type armedCheck struct {
	requesterID int64
	ticketID    int64
}

type fakeScheduler struct {
	mu    sync.Mutex
	armed []armedCheck
}

func (f *fakeScheduler) Arm(requesterID, ticketID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = append(f.armed, armedCheck{requesterID: requesterID, ticketID: ticketID})
}

type testEnv struct {
	router    *Router
	messenger *fakeMessenger
	scheduler *fakeScheduler
	tickets   repository.TicketRepository
	sessions  session.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	messenger := &fakeMessenger{}
	sched := &fakeScheduler{}
	tickets := repository.NewMemoryTicketRepository()
	sessions := session.NewMemoryStore()
	logger := zap.NewNop()

	dispatcher := events.NewInMemoryDispatcher()
	ticketService := service.NewTicketService(tickets, dispatcher)
	service.NewNotificationService(dispatcher, messenger, logger, testAdminID).RegisterHandlers()

	router := NewRouter(Config{
		AdminChatID: testAdminID,
		Cities: []string{
			"Москва", "Санкт-Петербург", "Новосибирск", "Екатеринбург",
			"Казань", "Нижний Новгород", "Челябинск", "Омск",
			"Самара", "Ростов-на-Дону", "Уфа", "Красноярск",
		},
		CheckDelay: 10 * time.Minute,
	}, sessions, ticketService, sched, messenger, logger, observability.NewMetrics())

	return &testEnv{
		router:    router,
		messenger: messenger,
		scheduler: sched,
		tickets:   tickets,
		sessions:  sessions,
	}
}

func textEvent(userID int64, text string) transport.Event {
	return transport.Event{ChatID: userID, UserID: userID, Text: text, FirstName: "Иван", Username: "ivan"}
}

func commandEvent(userID int64, command, args string) transport.Event {
	event := textEvent(userID, "/"+command)
	event.Command = command
	event.Args = args
	return event
}

func callbackEvent(userID int64, action transport.CallbackAction, ticketID int64, messageID int) transport.Event {
	return transport.Event{
		ChatID: userID,
		UserID: userID,
		Callback: &transport.Callback{
			ID:        "cb-1",
			Action:    action,
			TicketID:  ticketID,
			MessageID: messageID,
		},
	}
}

// fileTicket drives the whole intake flow for the user.
func (e *testEnv) fileTicket(t *testing.T, userID int64, city, topic, description string) {
	t.Helper()
	ctx := context.Background()
	e.router.HandleEvent(ctx, commandEvent(userID, "start", ""))
	e.router.HandleEvent(ctx, textEvent(userID, city))
	e.router.HandleEvent(ctx, textEvent(userID, topic))
	e.router.HandleEvent(ctx, textEvent(userID, description))
}

func containsText(msgs []sentMessage, needle string) bool {
	for _, msg := range msgs {
		if strings.Contains(msg.text, needle) {
			return true
		}
	}
	return false
}

func TestUnknownCommandIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.router.HandleEvent(context.Background(), commandEvent(testUserID, "help", ""))

	if len(env.messenger.sent) != 0 {
		t.Fatalf("expected no reply to unknown command, got %v", env.messenger.sent)
	}
}

func TestFreeTextOutsideFlowIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.router.HandleEvent(context.Background(), textEvent(testUserID, "привет"))

	if len(env.messenger.sent) != 0 {
		t.Fatalf("expected no reply to free text, got %v", env.messenger.sent)
	}
}
