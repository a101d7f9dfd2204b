package routes

import "github.com/gofiber/fiber/v2"

func LiveRoutes(api fiber.Router, d Deps) {
	api.Use("/ws", d.Live.Upgrade)
	api.Get("/ws", d.Live.Serve())
}
