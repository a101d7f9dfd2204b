package services

import (
	"context"
	"testing"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/payments"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayoutFixture(t *testing.T) (*memDB, *fakeGateway, *PayoutService, uuid.UUID) {
	t.Helper()
	db, gw := newMemDB(), newFakeGateway()
	worker := uuid.New()
	db.workers[worker] = &models.WorkerProfile{UserID: worker, Status: models.WorkerApproved, User: &models.User{ID: worker, FullName: "Sipho Dlamini"}}

	paidAt := time.Now()
	for i, amount := range []string{"300.00", "200.00"} {
		ref := "DIQ-" + string(rune('A'+i))
		db.txns[ref] = &models.Transaction{
			ID: uuid.New(), BookingID: uuid.New(), WorkerID: worker, Reference: ref,
			WorkerAmount: decimal.RequireFromString(amount), Status: models.TransactionCompleted, PaidAt: &paidAt,
		}
	}
	db.txns["DIQ-pending"] = &models.Transaction{
		ID: uuid.New(), BookingID: uuid.New(), WorkerID: worker, Reference: "DIQ-pending",
		WorkerAmount: decimal.RequireFromString("999.00"), Status: models.TransactionPending,
	}

	gw.banks = payments.Result[[]payments.Bank]{Status: true, Data: []payments.Bank{
		{Name: "Capitec Bank", Code: "470010", Active: true},
		{Name: "Gone Bank", Code: "111111", Active: false},
	}}
	svc := NewPayoutService(gw, fakeWorkers{db}, fakeTransactions{db}, fakePayouts{db}, fakeSettler{db}, "ZAR", "south africa")
	return db, gw, svc, worker
}

func TestBalance(t *testing.T) {
	db, _, svc, worker := newPayoutFixture(t)
	db.payouts[uuid.New()] = &models.WorkerPayout{WorkerID: worker, Amount: decimal.NewFromInt(100), Status: models.PayoutCompleted}
	db.payouts[uuid.New()] = &models.WorkerPayout{WorkerID: worker, Amount: decimal.NewFromInt(50), Status: models.PayoutFailed}

	b, err := svc.Balance(context.Background(), worker)

	require.NoError(t, err)
	assert.Equal(t, "500.00", b.Earned.StringFixed(2))
	assert.Equal(t, "100.00", b.Reserved.StringFixed(2))
	assert.Equal(t, "400.00", b.Available.StringFixed(2))
}

func TestSetBankAccount_RequiresActiveBank(t *testing.T) {
	db, _, svc, worker := newPayoutFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetBankAccount(ctx, worker, "111111", "123456789", "S Dlamini"), ErrUnknownBank)
	require.NoError(t, svc.SetBankAccount(ctx, worker, "470010", "123456789", "S Dlamini"))
	assert.True(t, db.workers[worker].HasBankAccount())
}

func TestRequestPayout(t *testing.T) {
	_, _, svc, worker := newPayoutFixture(t)
	ctx := context.Background()

	_, err := svc.Request(ctx, worker, decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrNoBankAccount)

	require.NoError(t, svc.SetBankAccount(ctx, worker, "470010", "123456789", "S Dlamini"))

	_, err = svc.Request(ctx, worker, decimal.NewFromInt(501))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = svc.Request(ctx, worker, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	p, err := svc.Request(ctx, worker, decimal.RequireFromString("350"))
	require.NoError(t, err)
	assert.Equal(t, models.PayoutPending, p.Status)
	assert.Contains(t, p.Reference, "PO-")

	_, err = svc.Request(ctx, worker, decimal.RequireFromString("200"))
	assert.ErrorIs(t, err, ErrInsufficientBalance, "pending payouts reserve the balance")
}

func TestApprovePayout(t *testing.T) {
	db, gw, svc, worker := newPayoutFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.SetBankAccount(ctx, worker, "470010", "123456789", "S Dlamini"))
	p, err := svc.Request(ctx, worker, decimal.NewFromInt(200))
	require.NoError(t, err)

	gw.recipient = payments.Result[payments.RecipientData]{Status: true, Data: payments.RecipientData{RecipientCode: "RCP_9"}}
	gw.transfer = payments.Result[payments.TransferData]{Status: true, Data: payments.TransferData{TransferCode: "TRF_9", Status: "pending"}}
	admin := uuid.New()

	approved, err := svc.Approve(ctx, admin, p.ID)

	require.NoError(t, err)
	assert.Equal(t, models.PayoutPending, approved.Status, "stays pending until the transfer webhook")
	assert.Equal(t, "TRF_9", *approved.TransferCode)
	assert.Equal(t, admin, *approved.ApprovedBy)
	assert.Equal(t, "RCP_9", *db.workers[worker].RecipientCode)
	require.Len(t, gw.transfers, 1)
	assert.Equal(t, int64(20000), gw.transfers[0].Amount)
	assert.Equal(t, p.Reference, gw.transfers[0].Reference)

	_, err = svc.Approve(ctx, admin, p.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	changed, err := svc.CompleteTransfer(ctx, p.Reference, "TRF_9", true, "")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.PayoutCompleted, db.payouts[p.ID].Status)
}

func TestApprovePayout_TransferRejected(t *testing.T) {
	db, gw, svc, worker := newPayoutFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.SetBankAccount(ctx, worker, "470010", "123456789", "S Dlamini"))
	p, err := svc.Request(ctx, worker, decimal.NewFromInt(200))
	require.NoError(t, err)
	gw.recipient = payments.Result[payments.RecipientData]{Status: true, Data: payments.RecipientData{RecipientCode: "RCP_9"}}
	gw.transfer = payments.Result[payments.TransferData]{Message: "Your balance is not enough to fulfil this request"}

	_, err = svc.Approve(ctx, uuid.New(), p.ID)

	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, models.PayoutFailed, db.payouts[p.ID].Status)
}

func TestApprovePayout_RechecksBalance(t *testing.T) {
	db, gw, svc, worker := newPayoutFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.SetBankAccount(ctx, worker, "470010", "123456789", "S Dlamini"))
	p, err := svc.Request(ctx, worker, decimal.NewFromInt(400))
	require.NoError(t, err)
	// a second request that raced past the balance check
	db.payouts[uuid.New()] = &models.WorkerPayout{WorkerID: worker, Amount: decimal.NewFromInt(400), Status: models.PayoutPending}

	_, err = svc.Approve(ctx, uuid.New(), p.ID)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, gw.transfers)
	assert.Equal(t, models.PayoutPending, db.payouts[p.ID].Status)
}

func TestRejectPayout(t *testing.T) {
	db, _, svc, worker := newPayoutFixture(t)
	ctx := context.Background()
	require.NoError(t, svc.SetBankAccount(ctx, worker, "470010", "123456789", "S Dlamini"))
	p, err := svc.Request(ctx, worker, decimal.NewFromInt(100))
	require.NoError(t, err)

	require.NoError(t, svc.Reject(ctx, p.ID, "account name mismatch"))
	assert.Equal(t, models.PayoutFailed, db.payouts[p.ID].Status)
	assert.ErrorIs(t, svc.Reject(ctx, p.ID, "again"), ErrInvalidTransition)
}
