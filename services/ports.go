package services

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/payments"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway is the subset of payments.PaystackClient the services call.
type Gateway interface {
	InitializeTransaction(ctx context.Context, req payments.InitializeRequest) payments.Result[payments.InitializeData]
	VerifyTransaction(ctx context.Context, reference string) payments.Result[payments.VerifyData]
	ListBanks(ctx context.Context, country string) payments.Result[[]payments.Bank]
	CreateTransferRecipient(ctx context.Context, req payments.RecipientRequest) payments.Result[payments.RecipientData]
	InitiateTransfer(ctx context.Context, req payments.TransferRequest) payments.Result[payments.TransferData]
	VerifyWebhookSignature(rawBody []byte, signature string) bool
}

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListForUser(ctx context.Context, userID uuid.UUID, role string, status models.BookingStatus) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.BookingStatus, reason *string) error
	ListStartingBetween(ctx context.Context, status models.BookingStatus, from, to time.Time) ([]models.Booking, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	HasActiveForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, reference, gatewayStatus string) (bool, error)
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]models.Transaction, error)
	CompletedTotals(ctx context.Context, workerID uuid.UUID, from, to time.Time) (database.EarningsTotals, error)
	LifetimeEarnings(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error)
}

type Settler interface {
	SettleCharge(ctx context.Context, in database.ChargeSettlement) (bool, error)
	SettleTransfer(ctx context.Context, in database.TransferSettlement) (bool, error)
}

type WorkerRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.WorkerProfile, error)
	SearchInBox(ctx context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.WorkerProfile, error)
	SetBankAccount(ctx context.Context, workerID uuid.UUID, bankCode, accountNumber, accountName string) error
	SetRecipientCode(ctx context.Context, workerID uuid.UUID, code string) error
	SetVerified(ctx context.Context, workerID uuid.UUID, verified bool) error
}

type PayoutRepository interface {
	Create(ctx context.Context, p *models.WorkerPayout) error
	Get(ctx context.Context, id uuid.UUID) (*models.WorkerPayout, error)
	GetByReference(ctx context.Context, reference string) (*models.WorkerPayout, error)
	ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.WorkerPayout, error)
	ReservedTotal(ctx context.Context, workerID uuid.UUID) (decimal.Decimal, error)
	SetTransfer(ctx context.Context, id uuid.UUID, transferCode, recipientCode string, approvedBy uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
}

// Notifier persists in-app notifications; delivery happens from the outbox.
type Notifier interface {
	CreateWithEvent(ctx context.Context, notifs []models.Notification) error
}

type ReviewRepository interface {
	CreateAndRate(ctx context.Context, r *models.Review) error
	ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.Review, error)
}

type ConsentRepository interface {
	Create(ctx context.Context, c *models.ConsentRecord) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.ConsentRecord, error)
	RevokeActive(ctx context.Context, userID uuid.UUID, consentType string, at time.Time) (int64, error)
	Active(ctx context.Context, userID uuid.UUID, consentType string, now time.Time) (*models.ConsentRecord, error)
	UsersWithActive(ctx context.Context, consentType string, now time.Time) ([]uuid.UUID, error)
}

type StatementRepository interface {
	FindByPeriod(ctx context.Context, workerID uuid.UUID, period string) (*models.IncomeStatement, error)
	Save(ctx context.Context, st *models.IncomeStatement) error
	Get(ctx context.Context, id uuid.UUID) (*models.IncomeStatement, error)
	ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.IncomeStatement, error)
	SetPDFURL(ctx context.Context, id uuid.UUID, url string) error
}

type DocumentRepository interface {
	Create(ctx context.Context, d *models.VerificationDocument) error
	Get(ctx context.Context, id uuid.UUID) (*models.VerificationDocument, error)
	ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.VerificationDocument, error)
	ListByStatus(ctx context.Context, status models.DocumentStatus) ([]models.VerificationDocument, error)
	Review(ctx context.Context, id uuid.UUID, status models.DocumentStatus, reviewer uuid.UUID, notes *string, at time.Time) error
}

type WebhookAuditor interface {
	Record(ctx context.Context, e *models.WebhookEvent) error
	SetError(ctx context.Context, id uuid.UUID, reason string) error
}
