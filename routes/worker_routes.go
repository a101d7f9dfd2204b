package routes

import (
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/models"
	"github.com/gofiber/fiber/v2"
)

func WorkerRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	worker := api.Group("/worker", protected, middleware.RequireRole(models.RoleWorker))
	worker.Put("/profile", d.Workers.UpdateProfile)
	worker.Put("/bank-account", d.Workers.SetBankAccount)
	worker.Get("/balance", d.Workers.Balance)
	worker.Get("/payouts", d.Workers.Payouts)
	worker.Post("/payouts", d.Workers.RequestPayout)
}
