package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/payments"
	"github.com/domestiq/domestiq_api/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const referencePrefix = "DIQ"

type PaymentConfig struct {
	FeePercent  decimal.Decimal
	Currency    string
	CallbackURL string
	BankCountry string
}

type PaymentService struct {
	gateway      Gateway
	bookings     BookingRepository
	transactions TransactionRepository
	settler      Settler
	cfg          PaymentConfig
	now          func() time.Time
}

func NewPaymentService(gateway Gateway, bookings BookingRepository, transactions TransactionRepository, settler Settler, cfg PaymentConfig) *PaymentService {
	return &PaymentService{
		gateway:      gateway,
		bookings:     bookings,
		transactions: transactions,
		settler:      settler,
		cfg:          cfg,
		now:          time.Now,
	}
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
	Breakdown        payments.FeeBreakdown
}

// Initialize opens a pending transaction for a booking owned by clientID. A booking that
// belongs to someone else is reported as not found.
func (s *PaymentService) Initialize(ctx context.Context, clientID, bookingID uuid.UUID) (*InitializeResult, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != clientID {
		return nil, database.ErrNotFound
	}
	if !booking.Status.Payable() {
		return nil, ErrBookingNotPayable
	}
	if !booking.TotalAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	active, err := s.transactions.HasActiveForBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrPaymentAlreadyInitiated
	}

	breakdown := payments.CalculateFees(booking.TotalAmount, s.cfg.FeePercent)
	reference := utils.NewReference(referencePrefix)

	email := ""
	if booking.Client != nil {
		email = booking.Client.Email
	}
	res := s.gateway.InitializeTransaction(ctx, payments.InitializeRequest{
		Email:       email,
		Amount:      payments.ToMinorUnits(breakdown.TotalAmount),
		Currency:    s.cfg.Currency,
		Reference:   reference,
		CallbackURL: s.cfg.CallbackURL,
		Metadata: map[string]any{
			"booking_id": booking.ID.String(),
			"client_id":  booking.ClientID.String(),
			"worker_id":  booking.WorkerID.String(),
		},
	})
	if !res.Status {
		log.WithFields(log.Fields{"booking_id": booking.ID, "status": res.HTTPStatus}).
			Warnf("payment initialization rejected: %s", res.Message)
		return nil, gatewayError(res.HTTPStatus, res.Message)
	}

	txn := models.Transaction{
		ID:                 uuid.New(),
		BookingID:          booking.ID,
		ClientID:           booking.ClientID,
		WorkerID:           booking.WorkerID,
		WorkerAmount:       breakdown.WorkerAmount,
		PlatformFee:        breakdown.PlatformFee,
		PlatformFeePercent: breakdown.FeePercent,
		TotalAmount:        breakdown.TotalAmount,
		Currency:           s.cfg.Currency,
		Status:             models.TransactionPending,
		Reference:          reference,
		AccessCode:         &res.Data.AccessCode,
		AuthorizationURL:   &res.Data.AuthorizationURL,
	}
	if err := s.transactions.Create(ctx, &txn); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, ErrPaymentAlreadyInitiated
		}
		return nil, err
	}

	log.WithFields(log.Fields{"booking_id": booking.ID, "reference": reference}).Info("payment initialized")
	return &InitializeResult{
		AuthorizationURL: res.Data.AuthorizationURL,
		AccessCode:       res.Data.AccessCode,
		Reference:        reference,
		Breakdown:        breakdown,
	}, nil
}

// Verify returns the caller's transaction, reconciling a pending one with the gateway first.
func (s *PaymentService) Verify(ctx context.Context, userID uuid.UUID, role, reference string) (*models.Transaction, error) {
	txn, err := s.transactions.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && txn.ClientID != userID && txn.WorkerID != userID {
		return nil, database.ErrNotFound
	}
	if txn.Status != models.TransactionPending && txn.Status != models.TransactionProcessing {
		return txn, nil
	}

	if err := s.reconcile(ctx, txn); err != nil {
		return nil, err
	}
	return s.transactions.GetByReference(ctx, reference)
}

// ConfirmCharge settles a charge the webhook reported as successful, after re-verifying it
// with the gateway. It reports whether this call performed the settlement.
func (s *PaymentService) ConfirmCharge(ctx context.Context, reference string) (bool, error) {
	txn, err := s.transactions.GetByReference(ctx, reference)
	if err != nil {
		return false, err
	}
	if txn.Status == models.TransactionCompleted || txn.Status == models.TransactionFailed {
		return false, nil
	}

	res := s.gateway.VerifyTransaction(ctx, reference)
	if !res.Status {
		return false, gatewayError(res.HTTPStatus, res.Message)
	}
	if res.Data.Status != "success" {
		log.WithFields(log.Fields{"reference": reference, "gateway_status": res.Data.Status}).
			Warn("charge.success not confirmed by gateway")
		return false, nil
	}
	return s.settle(ctx, txn, res.Data)
}

// FailCharge marks a pending transaction failed. The booking is left untouched.
func (s *PaymentService) FailCharge(ctx context.Context, reference, gatewayStatus string) (bool, error) {
	if gatewayStatus == "" {
		gatewayStatus = "failed"
	}
	return s.transactions.MarkFailed(ctx, reference, gatewayStatus)
}

// ExpireStale reconciles pending transactions older than maxAge. Charges the gateway reports
// as paid are settled, anything else is marked abandoned.
func (s *PaymentService) ExpireStale(ctx context.Context, maxAge time.Duration, limit int) (int, error) {
	stale, err := s.transactions.ListStalePending(ctx, s.now().Add(-maxAge), limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range stale {
		txn := &stale[i]
		res := s.gateway.VerifyTransaction(ctx, txn.Reference)
		if !res.Status {
			log.WithField("reference", txn.Reference).Warnf("skipping stale transaction: %s", res.Message)
			continue
		}
		switch res.Data.Status {
		case "success":
			if _, err := s.settle(ctx, txn, res.Data); err != nil {
				log.WithError(err).WithField("reference", txn.Reference).Error("failed to settle stale transaction")
			}
		case "ongoing", "pending", "processing", "queued":
		default:
			ok, err := s.transactions.MarkFailed(ctx, txn.Reference, "abandoned")
			if err != nil {
				log.WithError(err).WithField("reference", txn.Reference).Error("failed to expire transaction")
				continue
			}
			if ok {
				expired++
			}
		}
	}
	return expired, nil
}

// Banks lists the gateway's active banks for the configured country.
func (s *PaymentService) Banks(ctx context.Context) ([]payments.Bank, error) {
	res := s.gateway.ListBanks(ctx, s.cfg.BankCountry)
	if !res.Status {
		return nil, gatewayError(res.HTTPStatus, res.Message)
	}
	return payments.ActiveBanks(res.Data), nil
}

func (s *PaymentService) reconcile(ctx context.Context, txn *models.Transaction) error {
	res := s.gateway.VerifyTransaction(ctx, txn.Reference)
	if !res.Status {
		return gatewayError(res.HTTPStatus, res.Message)
	}
	switch res.Data.Status {
	case "success":
		_, err := s.settle(ctx, txn, res.Data)
		return err
	case "failed", "abandoned", "reversed":
		_, err := s.transactions.MarkFailed(ctx, txn.Reference, res.Data.Status)
		return err
	}
	return nil
}

func (s *PaymentService) settle(ctx context.Context, txn *models.Transaction, verified payments.VerifyData) (bool, error) {
	paid := payments.FromMinorUnits(verified.Amount)
	if !paid.Equal(txn.TotalAmount) {
		log.WithFields(log.Fields{
			"reference": txn.Reference,
			"expected":  txn.TotalAmount.StringFixed(2),
			"verified":  paid.StringFixed(2),
		}).Error("verified amount does not match transaction")
		return false, ErrAmountMismatch
	}

	paidAt := verified.PaidAtTime()
	if paidAt.IsZero() {
		paidAt = s.now()
	}

	settled, err := s.settler.SettleCharge(ctx, database.ChargeSettlement{
		Reference:     txn.Reference,
		PaidAt:        paidAt,
		GatewayStatus: verified.Status,
		Notifications: paymentNotifications(txn),
	})
	if err != nil {
		return false, err
	}
	if settled {
		log.WithFields(log.Fields{"reference": txn.Reference, "booking_id": txn.BookingID}).Info("payment settled")
	}
	return settled, nil
}

func paymentNotifications(txn *models.Transaction) []models.Notification {
	data, _ := json.Marshal(map[string]any{
		"booking_id":     txn.BookingID,
		"transaction_id": txn.ID,
		"reference":      txn.Reference,
	})
	url := "/bookings/" + txn.BookingID.String()
	return []models.Notification{
		{
			UserID: txn.WorkerID,
			Type:   models.NotifPaymentReceived,
			Title:  "Payment received",
			Body:   fmt.Sprintf("A client paid R%s for your booking.", txn.WorkerAmount.StringFixed(2)),
			URL:    &url,
			Data:   datatypes.JSON(data),
		},
		{
			UserID: txn.ClientID,
			Type:   models.NotifPaymentConfirmed,
			Title:  "Payment confirmed",
			Body:   fmt.Sprintf("Your payment of R%s was successful and your booking is confirmed.", txn.TotalAmount.StringFixed(2)),
			URL:    &url,
			Data:   datatypes.JSON(data),
		},
	}
}
