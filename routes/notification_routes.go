package routes

import "github.com/gofiber/fiber/v2"

func NotificationRoutes(api fiber.Router, d Deps, protected fiber.Handler) {
	api.Get("/push/vapid-public-key", d.Notifications.VAPIDKey)

	push := api.Group("/push", protected)
	push.Post("/subscriptions", d.Notifications.Subscribe)
	push.Delete("/subscriptions", d.Notifications.Unsubscribe)

	notifs := api.Group("/notifications", protected)
	notifs.Get("", d.Notifications.List)
	notifs.Get("/unread-count", d.Notifications.UnreadCount)
	notifs.Post("/read-all", d.Notifications.MarkAllRead)
	notifs.Post("/:id/read", d.Notifications.MarkRead)
}
