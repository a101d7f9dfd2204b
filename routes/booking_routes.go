package routes

import (
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/models"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	booking := api.Group("/bookings", protected)
	booking.Get("", d.Bookings.List)
	booking.Post("", middleware.RequireRole(models.RoleClient), d.Bookings.Create)
	booking.Get("/:id", d.Bookings.Get)
	booking.Post("/:id/transition", d.Bookings.Transition)
	booking.Post("/:id/review", middleware.RequireRole(models.RoleClient), d.Bookings.Review)
}
