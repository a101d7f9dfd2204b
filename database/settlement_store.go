package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SettlementStore struct {
	db *gorm.DB
}

type ChargeSettlement struct {
	Reference     string
	PaidAt        time.Time
	GatewayStatus string
	Notifications []models.Notification
}

type TransferSettlement struct {
	Reference    string
	TransferCode string
	Success      bool
	Reason       string
	ProcessedAt  time.Time
	Notification *models.Notification
}

// SettleCharge completes a pending transaction and applies every side effect in one
// database transaction: booking confirmation, ledger entry, notifications and the
// payment.settled outbox event. It reports false when the transaction was no longer
// pending, which makes duplicate deliveries a no-op.
func (s *SettlementStore) SettleCharge(ctx context.Context, in ChargeSettlement) (bool, error) {
	settled := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("reference = ? AND status IN ?", in.Reference, []models.TransactionStatus{models.TransactionPending, models.TransactionProcessing}).
			Updates(map[string]any{
				"status":         models.TransactionCompleted,
				"paid_at":        in.PaidAt,
				"gateway_status": in.GatewayStatus,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var txn models.Transaction
		if err := tx.First(&txn, "reference = ?", in.Reference).Error; err != nil {
			return err
		}

		booking := tx.Model(&models.Booking{}).
			Where("id = ? AND status IN ?", txn.BookingID, []models.BookingStatus{models.BookingPending, models.BookingAccepted}).
			Update("status", models.BookingConfirmed)
		if booking.Error != nil {
			return booking.Error
		}
		if booking.RowsAffected == 0 {
			log.WithFields(log.Fields{"booking_id": txn.BookingID, "reference": in.Reference}).
				Warn("booking was not awaiting payment when the charge settled")
		}

		entry := models.RevenueLedgerEntry{
			ID:            uuid.New(),
			TransactionID: txn.ID,
			BookingID:     txn.BookingID,
			Amount:        txn.PlatformFee,
			Currency:      txn.Currency,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		ids, err := insertNotifications(tx, in.Notifications)
		if err != nil {
			return err
		}
		if err := insertOutbox(tx, models.EventPaymentSettled, txn.ID, ids, map[string]any{
			"transaction_id": txn.ID,
			"booking_id":     txn.BookingID,
			"reference":      txn.Reference,
			"total_amount":   txn.TotalAmount.StringFixed(2),
		}); err != nil {
			return err
		}

		settled = true
		return nil
	})
	return settled, translate(err)
}

// SettleTransfer moves a pending payout to completed or failed.
func (s *SettlementStore) SettleTransfer(ctx context.Context, in TransferSettlement) (bool, error) {
	settled := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		status := models.PayoutFailed
		updates := map[string]any{"processed_at": in.ProcessedAt}
		if in.Success {
			status = models.PayoutCompleted
		} else if in.Reason != "" {
			updates["failure_reason"] = in.Reason
		}
		updates["status"] = status
		if in.TransferCode != "" {
			updates["transfer_code"] = in.TransferCode
		}

		res := tx.Model(&models.WorkerPayout{}).
			Where("reference = ? AND status = ?", in.Reference, models.PayoutPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		settled = true

		if !in.Success || in.Notification == nil {
			return nil
		}
		var payout models.WorkerPayout
		if err := tx.First(&payout, "reference = ?", in.Reference).Error; err != nil {
			return err
		}
		ids, err := insertNotifications(tx, []models.Notification{*in.Notification})
		if err != nil {
			return err
		}
		return insertOutbox(tx, models.EventPayoutSettled, payout.ID, ids, map[string]any{
			"payout_id": payout.ID,
			"reference": payout.Reference,
			"amount":    payout.Amount.StringFixed(2),
		})
	})
	return settled, translate(err)
}

func insertNotifications(tx *gorm.DB, notifs []models.Notification) ([]uuid.UUID, error) {
	if len(notifs) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, len(notifs))
	for i := range notifs {
		if notifs[i].ID == uuid.Nil {
			notifs[i].ID = uuid.New()
		}
		ids[i] = notifs[i].ID
	}
	if err := tx.Create(&notifs).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func insertOutbox(tx *gorm.DB, eventType string, aggregateID uuid.UUID, notificationIDs []uuid.UUID, attrs map[string]any) error {
	payload, err := json.Marshal(models.OutboxPayload{NotificationIDs: notificationIDs, Attributes: attrs})
	if err != nil {
		return err
	}
	event := models.OutboxEvent{
		ID:          uuid.New(),
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     datatypes.JSON(payload),
	}
	return tx.Create(&event).Error
}
