package routes

import (
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/models"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	admin := api.Group("/admin", protected, middleware.RequireRole(models.RoleAdmin))

	admin.Get("/users", d.Admin.Users)
	admin.Patch("/users/:id/active", d.Admin.ToggleUser)
	admin.Get("/bookings", d.Admin.Bookings)
	admin.Get("/transactions", d.Admin.Transactions)

	admin.Get("/payouts", d.Admin.Payouts)
	admin.Post("/payouts/:id/approve", d.Admin.ApprovePayout)
	admin.Post("/payouts/:id/reject", d.Admin.RejectPayout)

	admin.Get("/verification/pending", d.Verification.Pending)
	admin.Put("/verification/:id", d.Verification.Review)

	reports := admin.Group("/reports")
	reports.Get("/revenue", d.Admin.Revenue)
	reports.Get("/revenue.csv", d.Admin.RevenueReport)
}
