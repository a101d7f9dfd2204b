package handlers

import (
	"context"

	"github.com/domestiq/domestiq_api/payments"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

type WebhookProcessor interface {
	Authenticate(rawBody []byte, signature string) bool
	Process(ctx context.Context, rawBody []byte) error
}

// Webhook acknowledges every authenticated callback. Processing failures are logged and the
// processor is not asked to retry; the stale-transaction job reconciles missed charges.
func (h *PaymentHandler) Webhook(c *fiber.Ctx) error {
	raw := c.Body()
	if !h.webhooks.Authenticate(raw, c.Get(payments.SignatureHeader)) {
		log.WithField("ip", c.IP()).Warn("rejected webhook with invalid signature")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid signature"})
	}
	// fasthttp reuses the body buffer after the handler returns
	body := append([]byte(nil), raw...)
	if err := h.webhooks.Process(c.UserContext(), body); err != nil {
		log.WithError(err).Error("webhook processing failed")
	}
	return c.JSON(fiber.Map{"received": true})
}
