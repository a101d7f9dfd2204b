package routes

import (
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/models"
	"github.com/gofiber/fiber/v2"
)

func VerificationRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	docs := api.Group("/verification", protected, middleware.RequireRole(models.RoleWorker))
	docs.Get("/upload-signature", d.Verification.UploadSignature)
	docs.Get("/documents", d.Verification.Mine)
	docs.Post("/documents", d.Verification.Submit)
}
