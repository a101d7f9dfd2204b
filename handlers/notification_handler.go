package handlers

import (
	"context"

	"github.com/domestiq/domestiq_api/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NotificationInbox interface {
	ListForUser(ctx context.Context, userID uuid.UUID, page, limit int, unreadOnly bool) ([]models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type PushSubscriptions interface {
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	DeleteForUser(ctx context.Context, userID uuid.UUID, endpoint string) error
}

type NotificationHandler struct {
	inbox          NotificationInbox
	subscriptions  PushSubscriptions
	vapidPublicKey string
}

func NewNotificationHandler(inbox NotificationInbox, subs PushSubscriptions, vapidPublicKey string) *NotificationHandler {
	return &NotificationHandler{inbox: inbox, subscriptions: subs, vapidPublicKey: vapidPublicKey}
}

type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required"`
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	page, limit := pageQuery(c)
	notifs, total, err := h.inbox.ListForUser(c.UserContext(), id.UserID, page, limit, c.QueryBool("unread"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": notifs, "total": total, "page": page})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	n, err := h.inbox.UnreadCount(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	notifID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	if err := h.inbox.MarkRead(c.UserContext(), id.UserID, notifID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	n, err := h.inbox.MarkAllRead(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": n})
}

func (h *NotificationHandler) VAPIDKey(c *fiber.Ctx) error {
	if h.vapidPublicKey == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Push notifications are not configured"})
	}
	return c.JSON(fiber.Map{"public_key": h.vapidPublicKey})
}

func (h *NotificationHandler) Subscribe(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req SubscribeRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	sub := &models.PushSubscription{
		UserID:   id.UserID,
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	}
	if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
		if len(ua) > 255 {
			ua = ua[:255]
		}
		sub.UserAgent = &ua
	}
	if err := h.subscriptions.Upsert(c.UserContext(), sub); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Subscribed"})
}

func (h *NotificationHandler) Unsubscribe(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req UnsubscribeRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := h.subscriptions.DeleteForUser(c.UserContext(), id.UserID, req.Endpoint); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
