package notifications

import (
	"context"
	"fmt"
	"html"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type NotificationReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Notification, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Pusher interface {
	SendPushToUser(ctx context.Context, userID uuid.UUID, payload PushPayload) PushResult
}

type Emailer interface {
	Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error
}

// LiveFeed pushes a value to every open socket of a user and returns how many got it.
type LiveFeed interface {
	SendToUser(userID uuid.UUID, v any) int
}

// emailed lists the notification types that are also sent by email.
var emailed = map[models.NotificationType]bool{
	models.NotifPaymentReceived:      true,
	models.NotifPaymentConfirmed:     true,
	models.NotifPayoutCompleted:      true,
	models.NotifVerificationApproved: true,
	models.NotifVerificationRejected: true,
}

// Deliverer fans stored notifications out to the live feed, web push and email.
type Deliverer struct {
	notifications NotificationReader
	users         UserReader
	push          Pusher
	email         Emailer
	live          LiveFeed
}

func NewDeliverer(notifications NotificationReader, users UserReader, push Pusher, email Emailer, live LiveFeed) *Deliverer {
	return &Deliverer{notifications: notifications, users: users, push: push, email: email, live: live}
}

// Deliver is best effort per channel. It only fails when the notifications cannot be loaded.
func (d *Deliverer) Deliver(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	notifs, err := d.notifications.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}

	for _, n := range notifs {
		if d.live != nil {
			d.live.SendToUser(n.UserID, liveMessage{Type: "notification", Notification: n})
		}
		if d.push != nil {
			payload := PushPayload{Title: n.Title, Body: n.Body, Tag: string(n.Type)}
			if n.URL != nil {
				payload.URL = *n.URL
			}
			res := d.push.SendPushToUser(ctx, n.UserID, payload)
			log.WithFields(log.Fields{"notification_id": n.ID, "sent": res.Sent, "failed": res.Failed}).Debug("push fan-out finished")
		}
		if d.email != nil && emailed[n.Type] {
			d.sendEmail(ctx, n)
		}
	}
	return nil
}

func (d *Deliverer) sendEmail(ctx context.Context, n models.Notification) {
	user, err := d.users.GetByID(ctx, n.UserID)
	if err != nil {
		log.WithError(err).WithField("user_id", n.UserID).Warn("cannot email notification, user lookup failed")
		return
	}
	content := fmt.Sprintf("<h2>%s</h2><p>%s</p>", html.EscapeString(n.Title), html.EscapeString(n.Body))
	if err := d.email.Send(ctx, user.FullName, user.Email, n.Title, content); err != nil {
		log.WithError(err).WithField("notification_id", n.ID).Warn("🔥 Failed to send notification email")
	}
}

type liveMessage struct {
	Type         string              `json:"type"`
	Notification models.Notification `json:"notification"`
}
