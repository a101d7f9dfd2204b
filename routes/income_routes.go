package routes

import (
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/models"
	"github.com/gofiber/fiber/v2"
)

func IncomeRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	consents := api.Group("/consents", protected)
	consents.Get("", d.Income.ListConsents)
	consents.Post("", d.Income.GrantConsent)
	consents.Delete("/:type", d.Income.RevokeConsent)

	income := api.Group("/income/statements", protected, middleware.RequireRole(models.RoleWorker))
	income.Get("", d.Income.List)
	income.Post("", d.Income.Generate)
	income.Get("/:id", d.Income.Get)
}
