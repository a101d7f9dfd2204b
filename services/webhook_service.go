package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	EventChargeSuccess   = "charge.success"
	EventChargeFailed    = "charge.failed"
	EventTransferSuccess = "transfer.success"
	EventTransferFailed  = "transfer.failed"
)

type webhookEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type webhookData struct {
	Reference    string `json:"reference"`
	Status       string `json:"status"`
	TransferCode string `json:"transfer_code"`
}

type ChargeSettler interface {
	ConfirmCharge(ctx context.Context, reference string) (bool, error)
	FailCharge(ctx context.Context, reference, gatewayStatus string) (bool, error)
}

type TransferSettler interface {
	CompleteTransfer(ctx context.Context, reference, transferCode string, success bool, reason string) (bool, error)
}

type WebhookService struct {
	gateway   Gateway
	charges   ChargeSettler
	transfers TransferSettler
	audit     WebhookAuditor
}

func NewWebhookService(gateway Gateway, charges ChargeSettler, transfers TransferSettler, audit WebhookAuditor) *WebhookService {
	return &WebhookService{gateway: gateway, charges: charges, transfers: transfers, audit: audit}
}

// Authenticate checks the signature against the body bytes exactly as received.
func (s *WebhookService) Authenticate(rawBody []byte, signature string) bool {
	return s.gateway.VerifyWebhookSignature(rawBody, signature)
}

// Process applies an authenticated event. The returned error is for logging only; the
// processor is acknowledged either way.
func (s *WebhookService) Process(ctx context.Context, rawBody []byte) error {
	var env webhookEnvelope
	if err := json.Unmarshal(rawBody, &env); err != nil {
		return fmt.Errorf("decode webhook: %w", err)
	}
	var data webhookData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return fmt.Errorf("decode webhook data: %w", err)
		}
	}

	auditID := s.record(ctx, env.Event, data.Reference, rawBody)

	err := s.dispatch(ctx, env.Event, data)
	if err != nil && auditID != uuid.Nil {
		if auditErr := s.audit.SetError(ctx, auditID, err.Error()); auditErr != nil {
			log.WithError(auditErr).Warn("failed to annotate webhook audit row")
		}
	}
	return err
}

func (s *WebhookService) dispatch(ctx context.Context, event string, data webhookData) error {
	fields := log.Fields{"event": event, "reference": data.Reference}
	if data.Reference == "" && isKnownEvent(event) {
		return errors.New("webhook event has no reference")
	}

	switch event {
	case EventChargeSuccess:
		settled, err := s.charges.ConfirmCharge(ctx, data.Reference)
		if err != nil {
			return err
		}
		log.WithFields(fields).WithField("settled", settled).Info("processed charge.success")
	case EventChargeFailed:
		status := data.Status
		if status == "" {
			status = "failed"
		}
		changed, err := s.charges.FailCharge(ctx, data.Reference, status)
		if err != nil {
			return err
		}
		log.WithFields(fields).WithField("changed", changed).Info("processed charge.failed")
	case EventTransferSuccess, EventTransferFailed:
		success := event == EventTransferSuccess
		reason := ""
		if !success {
			reason = "transfer " + data.Status
			if data.Status == "" {
				reason = "transfer failed"
			}
		}
		changed, err := s.transfers.CompleteTransfer(ctx, data.Reference, data.TransferCode, success, reason)
		if err != nil {
			return err
		}
		log.WithFields(fields).WithField("changed", changed).Infof("processed %s", event)
	default:
		log.WithFields(fields).Debug("ignoring unhandled webhook event")
	}
	return nil
}

func (s *WebhookService) record(ctx context.Context, event, reference string, rawBody []byte) uuid.UUID {
	if s.audit == nil {
		return uuid.Nil
	}
	row := models.WebhookEvent{
		ID:        uuid.New(),
		Provider:  "paystack",
		Event:     event,
		Reference: reference,
		Payload:   datatypes.JSON(rawBody),
	}
	if err := s.audit.Record(ctx, &row); err != nil {
		log.WithError(err).WithField("event", event).Warn("failed to record webhook event")
		return uuid.Nil
	}
	return row.ID
}

func isKnownEvent(event string) bool {
	switch event {
	case EventChargeSuccess, EventChargeFailed, EventTransferSuccess, EventTransferFailed:
		return true
	}
	return false
}
