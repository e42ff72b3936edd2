package handlers

import (
	"context"
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-bot/internal/transport"
	apperrors "github.com/spec-kit/support-bot/pkg/util"
)

// WebhookHandler receives Bot API updates pushed over HTTPS, the
// alternative to long polling.
type WebhookHandler struct {
	handle func(ctx context.Context, event transport.Event)
}

// NewWebhookHandler constructs the handler around the event consumer.
func NewWebhookHandler(handle func(ctx context.Context, event transport.Event)) *WebhookHandler {
	return &WebhookHandler{handle: handle}
}

// Receive POST /telegram/webhook.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		return apperrors.NewValidationError("invalid update payload", "")
	}
	if event, ok := transport.EventFromUpdate(update); ok {
		h.handle(c.UserContext(), event)
	}
	return c.SendStatus(fiber.StatusOK)
}
