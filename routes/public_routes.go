package routes

import (
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/ratelimit"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(api fiber.Router, d Deps) {
	api.Get("/workers/search", d.Workers.Search)
	api.Get("/workers/:id", d.Workers.Profile)
	api.Get("/workers/:id/reviews", d.Bookings.WorkerReviews)

	partners := api.Group("/partners", middleware.PartnerKey(d.PartnerKeys))
	partners.Post("/statements/verify", d.Income.PartnerVerify)

	translate := api.Group("/translate", middleware.Protected(d.JWTSecret))
	translate.Post("", ratelimit.New(d.TranslateLimiter, "translate", middleware.UserKey), d.Translation.Translate)
}
