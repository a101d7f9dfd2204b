package services

import (
	"context"
	"encoding/json"
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

const payoutPrefix = "PO"

type PayoutService struct {
	gateway      Gateway
	workers      WorkerRepository
	transactions TransactionRepository
	payouts      PayoutRepository
	settler      Settler
	currency     string
	bankCountry  string
	now          func() time.Time
}

func NewPayoutService(gateway Gateway, workers WorkerRepository, transactions TransactionRepository, payouts PayoutRepository, settler Settler, currency, bankCountry string) *PayoutService {
	return &PayoutService{
		gateway:      gateway,
		workers:      workers,
		transactions: transactions,
		payouts:      payouts,
		settler:      settler,
		currency:     currency,
		bankCountry:  bankCountry,
		now:          time.Now,
	}
}

type Balance struct {
	Earned    decimal.Decimal
	Reserved  decimal.Decimal
	Available decimal.Decimal
}

// Balance is lifetime completed earnings minus payouts that are pending or completed.
func (s *PayoutService) Balance(ctx context.Context, workerID uuid.UUID) (Balance, error) {
	earned, err := s.transactions.LifetimeEarnings(ctx, workerID)
	if err != nil {
		return Balance{}, err
	}
	reserved, err := s.payouts.ReservedTotal(ctx, workerID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Earned: earned, Reserved: reserved, Available: earned.Sub(reserved)}, nil
}

// SetBankAccount stores the worker's account once the bank code is confirmed active.
func (s *PayoutService) SetBankAccount(ctx context.Context, workerID uuid.UUID, bankCode, accountNumber, accountName string) error {
	res := s.gateway.ListBanks(ctx, s.bankCountry)
	if !res.Status {
		return gatewayError(res.HTTPStatus, res.Message)
	}
	known := false
	for _, b := range payments.ActiveBanks(res.Data) {
		if b.Code == bankCode {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownBank
	}
	return s.workers.SetBankAccount(ctx, workerID, bankCode, accountNumber, accountName)
}

func (s *PayoutService) Request(ctx context.Context, workerID uuid.UUID, amount decimal.Decimal) (*models.WorkerPayout, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	profile, err := s.workers.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !profile.HasBankAccount() {
		return nil, ErrNoBankAccount
	}
	balance, err := s.Balance(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(balance.Available) {
		return nil, ErrInsufficientBalance
	}

	payout := models.WorkerPayout{
		ID:          uuid.New(),
		WorkerID:    workerID,
		Amount:      amount,
		Currency:    s.currency,
		Status:      models.PayoutPending,
		Reference:   utils.NewReference(payoutPrefix),
		RequestedAt: s.now(),
	}
	if err := s.payouts.Create(ctx, &payout); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"worker_id": workerID, "payout_id": payout.ID, "amount": amount.StringFixed(2)}).Info("payout requested")
	return &payout, nil
}

func (s *PayoutService) ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.WorkerPayout, error) {
	return s.payouts.ListForWorker(ctx, workerID)
}

// Approve queues the transfer with the gateway. The payout stays pending until the
// transfer webhook reports the outcome.
func (s *PayoutService) Approve(ctx context.Context, adminID, payoutID uuid.UUID) (*models.WorkerPayout, error) {
	payout, err := s.payouts.Get(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if payout.Status != models.PayoutPending || payout.TransferCode != nil {
		return nil, ErrInvalidTransition
	}
	profile, err := s.workers.Get(ctx, payout.WorkerID)
	if err != nil {
		return nil, err
	}
	if !profile.HasBankAccount() {
		return nil, ErrNoBankAccount
	}
	// concurrent requests can each pass the check in Request; the reserved total includes this payout
	balance, err := s.Balance(ctx, payout.WorkerID)
	if err != nil {
		return nil, err
	}
	if balance.Available.IsNegative() {
		return nil, ErrInsufficientBalance
	}

	recipient := ""
	if profile.RecipientCode != nil {
		recipient = *profile.RecipientCode
	}
	if recipient == "" {
		name := ""
		if profile.AccountName != nil {
			name = *profile.AccountName
		} else if profile.User != nil {
			name = profile.User.FullName
		}
		rcp := s.gateway.CreateTransferRecipient(ctx, payments.RecipientRequest{
			Name:          name,
			AccountNumber: *profile.AccountNumber,
			BankCode:      *profile.BankCode,
			Currency:      payout.Currency,
		})
		if !rcp.Status {
			return nil, gatewayError(rcp.HTTPStatus, rcp.Message)
		}
		recipient = rcp.Data.RecipientCode
		if err := s.workers.SetRecipientCode(ctx, payout.WorkerID, recipient); err != nil {
			log.WithError(err).WithField("worker_id", payout.WorkerID).Warn("failed to cache transfer recipient")
		}
	}

	trf := s.gateway.InitiateTransfer(ctx, payments.TransferRequest{
		Amount:    payments.ToMinorUnits(payout.Amount),
		Recipient: recipient,
		Reference: payout.Reference,
		Reason:    "DomestIQ earnings payout",
		Currency:  payout.Currency,
	})
	if !trf.Status {
		if err := s.payouts.MarkFailed(ctx, payout.ID, trf.Message, s.now()); err != nil {
			log.WithError(err).WithField("payout_id", payout.ID).Error("failed to mark payout failed")
		}
		return nil, gatewayError(trf.HTTPStatus, trf.Message)
	}

	if err := s.payouts.SetTransfer(ctx, payout.ID, trf.Data.TransferCode, recipient, adminID); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"payout_id": payout.ID, "transfer_code": trf.Data.TransferCode}).Info("payout transfer queued")
	return s.payouts.Get(ctx, payout.ID)
}

func (s *PayoutService) Reject(ctx context.Context, payoutID uuid.UUID, reason string) error {
	payout, err := s.payouts.Get(ctx, payoutID)
	if err != nil {
		return err
	}
	if !payout.Status.CanTransition(models.PayoutFailed) || payout.TransferCode != nil {
		return ErrInvalidTransition
	}
	return s.payouts.MarkFailed(ctx, payoutID, reason, s.now())
}

// CompleteTransfer applies a transfer webhook to the payout with the given reference. A
// payout that already left pending is ignored.
func (s *PayoutService) CompleteTransfer(ctx context.Context, reference, transferCode string, success bool, reason string) (bool, error) {
	payout, err := s.payouts.GetByReference(ctx, reference)
	if err != nil {
		return false, err
	}
	if payout.Status != models.PayoutPending {
		return false, nil
	}

	in := database.TransferSettlement{
		Reference:    reference,
		TransferCode: transferCode,
		Success:      success,
		Reason:       reason,
		ProcessedAt:  s.now(),
	}
	if success {
		data, _ := json.Marshal(map[string]any{"payout_id": payout.ID, "reference": payout.Reference})
		url := "/earnings"
		in.Notification = &models.Notification{
			UserID: payout.WorkerID,
			Type:   models.NotifPayoutCompleted,
			Title:  "Payout sent",
			Body:   fmt.Sprintf("R%s has been paid into your bank account.", payout.Amount.StringFixed(2)),
			URL:    &url,
			Data:   datatypes.JSON(data),
		}
	}
	return s.settler.SettleTransfer(ctx, in)
}
