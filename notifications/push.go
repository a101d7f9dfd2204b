package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

type PushResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type SubscriptionStore interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.PushSubscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PushSender delivers one encrypted message and reports the push service's status code.
type PushSender interface {
	Send(ctx context.Context, sub models.PushSubscription, message []byte) (int, error)
}

type VAPIDConfig struct {
	PublicKey  string
	PrivateKey string
	Subject    string
}

func (c VAPIDConfig) Configured() bool {
	return c.PublicKey != "" && c.PrivateKey != ""
}

type webPushSender struct {
	cfg VAPIDConfig
}

// NewWebPushSender signs deliveries with the VAPID key pair.
func NewWebPushSender(cfg VAPIDConfig) PushSender {
	return &webPushSender{cfg: cfg}
}

func (s *webPushSender) Send(ctx context.Context, sub models.PushSubscription, message []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, message, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{Auth: sub.Auth, P256dh: sub.P256dh},
	}, &webpush.Options{
		Subscriber:      s.cfg.Subject,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             60 * 60 * 24,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

type PushDispatcher struct {
	store      SubscriptionStore
	sender     PushSender
	configured bool
}

func NewPushDispatcher(store SubscriptionStore, sender PushSender, cfg VAPIDConfig) *PushDispatcher {
	return &PushDispatcher{store: store, sender: sender, configured: cfg.Configured() && sender != nil}
}

// SendPushToUser delivers to every subscription of the user concurrently and waits for all
// of them. Subscriptions the push service reports as gone are deleted. It never fails; an
// unconfigured dispatcher returns zero counts.
func (d *PushDispatcher) SendPushToUser(ctx context.Context, userID uuid.UUID, payload PushPayload) PushResult {
	if !d.configured {
		return PushResult{}
	}

	subs, err := d.store.ListForUser(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("failed to load push subscriptions")
		return PushResult{}
	}
	if len(subs) == 0 {
		return PushResult{}
	}

	message, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("failed to encode push payload")
		return PushResult{Failed: len(subs)}
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result PushResult
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(sub models.PushSubscription) {
			defer wg.Done()
			ok := d.deliver(ctx, sub, message)
			mu.Lock()
			if ok {
				result.Sent++
			} else {
				result.Failed++
			}
			mu.Unlock()
		}(sub)
	}
	wg.Wait()
	return result
}

func (d *PushDispatcher) deliver(ctx context.Context, sub models.PushSubscription, message []byte) bool {
	fields := log.Fields{"user_id": sub.UserID, "subscription_id": sub.ID}
	status, err := d.sender.Send(ctx, sub, message)
	if err != nil {
		log.WithError(err).WithFields(fields).Warn("push delivery failed")
		return false
	}
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		if err := d.store.Delete(ctx, sub.ID); err != nil {
			log.WithError(err).WithFields(fields).Warn("failed to delete expired push subscription")
		} else {
			log.WithFields(fields).Info("removed expired push subscription")
		}
		return false
	case status < 200 || status > 299:
		log.WithFields(fields).WithField("status", status).Warn("push service rejected delivery")
		return false
	}
	return true
}
