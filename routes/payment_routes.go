package routes

import (
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/ratelimit"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	// Paystack calls this without a token; the signature is the authentication.
	api.Post("/payments/webhook", d.Payments.Webhook)

	payments := api.Group("/payments", protected)
	payments.Post("/initialize",
		middleware.RequireRole(models.RoleClient),
		ratelimit.New(d.PaymentLimiter, "payments", middleware.UserKey),
		d.Payments.Initialize)
	payments.Get("/verify", d.Payments.Verify)
	payments.Get("/banks", d.Payments.Banks)
}
