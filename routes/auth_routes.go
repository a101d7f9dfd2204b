package routes

import "github.com/gofiber/fiber/v2"

func AuthRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	auth := api.Group("/auth")
	auth.Post("/register", d.Auth.Register)
	auth.Post("/login", d.Auth.Login)

	api.Get("/me", protected, d.Auth.Me)
}
