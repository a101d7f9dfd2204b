package routes

import (
	"github.com/domestiq/domestiq_api/handlers"
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/ratelimit"
	"github.com/gofiber/fiber/v2"
)

// Deps carries everything the route tables need.
type Deps struct {
	JWTSecret   string
	PartnerKeys []string

	TranslateLimiter ratelimit.Limiter
	PaymentLimiter   ratelimit.Limiter

	Auth          *handlers.AuthHandler
	Payments      *handlers.PaymentHandler
	Bookings      *handlers.BookingHandler
	Workers       *handlers.WorkerHandler
	Notifications *handlers.NotificationHandler
	Income        *handlers.IncomeHandler
	Verification  *handlers.VerificationHandler
	Translation   *handlers.TranslationHandler
	Admin         *handlers.AdminHandler
	Live          *handlers.LiveHandler
}

// Setup mounts every route group under /api/v1.
func Setup(app *fiber.App, d Deps) {
	api := app.Group("/api/v1")
	protected := middleware.Protected(d.JWTSecret)

	PublicRoutes(api, d)
	AuthRoutes(api, d, protected)
	PaymentRoutes(api, d, protected)
	BookingRoutes(api, d, protected)
	WorkerRoutes(api, d, protected)
	NotificationRoutes(api, d, protected)
	IncomeRoutes(api, d, protected)
	VerificationRoutes(api, d, protected)
	AdminRoutes(api, d, protected)
	LiveRoutes(api, d)
}
