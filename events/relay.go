package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 10
	DefaultBatchSize   = 50
)

type OutboxStore interface {
	ListUnpublished(ctx context.Context, maxAttempts, limit int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type NotificationDeliverer interface {
	Deliver(ctx context.Context, ids []uuid.UUID) error
}

// Relay drains the outbox. The broker is optional; a nil publisher only delivers locally.
type Relay struct {
	outbox      OutboxStore
	publisher   Publisher
	deliverer   NotificationDeliverer
	maxAttempts int
	batchSize   int
	now         func() time.Time
}

func NewRelay(outbox OutboxStore, publisher Publisher, deliverer NotificationDeliverer) *Relay {
	return &Relay{
		outbox:      outbox,
		publisher:   publisher,
		deliverer:   deliverer,
		maxAttempts: DefaultMaxAttempts,
		batchSize:   DefaultBatchSize,
		now:         time.Now,
	}
}

// RunOnce relays one batch and reports how many events were marked published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.outbox.ListUnpublished(ctx, r.maxAttempts, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list outbox: %w", err)
	}

	published := 0
	for _, ev := range pending {
		fields := log.Fields{"event_id": ev.ID, "event_type": ev.EventType, "attempt": ev.Attempts + 1}
		if err := r.relay(ctx, ev); err != nil {
			log.WithError(err).WithFields(fields).Warn("outbox relay failed")
			if markErr := r.outbox.MarkFailed(ctx, ev.ID, err.Error()); markErr != nil {
				log.WithError(markErr).WithFields(fields).Error("failed to record outbox failure")
			}
			continue
		}
		if err := r.outbox.MarkPublished(ctx, ev.ID, r.now()); err != nil {
			log.WithError(err).WithFields(fields).Error("failed to mark outbox event published")
			continue
		}
		published++
	}
	return published, nil
}

func (r *Relay) relay(ctx context.Context, ev models.OutboxEvent) error {
	var payload models.OutboxPayload
	if len(ev.Payload) > 0 {
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}

	if r.publisher != nil {
		body, err := json.Marshal(message{
			ID:          ev.ID,
			Type:        ev.EventType,
			AggregateID: ev.AggregateID,
			OccurredAt:  ev.CreatedAt,
			Data:        payload,
		})
		if err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
		if err := r.publisher.Publish(ctx, ev.EventType, ev.ID.String(), body); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}

	if r.deliverer != nil && len(payload.NotificationIDs) > 0 {
		if err := r.deliverer.Deliver(ctx, payload.NotificationIDs); err != nil {
			return fmt.Errorf("deliver notifications: %w", err)
		}
	}
	return nil
}

type message struct {
	ID          uuid.UUID            `json:"id"`
	Type        string               `json:"type"`
	AggregateID uuid.UUID            `json:"aggregate_id"`
	OccurredAt  time.Time            `json:"occurred_at"`
	Data        models.OutboxPayload `json:"data"`
}
