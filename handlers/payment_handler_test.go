package handlers

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"testing"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/middleware"
	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/payments"
	"github.com/domestiq/domestiq_api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayments struct {
	initErr    error
	gotClient  uuid.UUID
	gotBooking uuid.UUID
	txn        *models.Transaction
	banks      []payments.Bank
}

func (f *fakePayments) Initialize(_ context.Context, clientID, bookingID uuid.UUID) (*services.InitializeResult, error) {
	f.gotClient, f.gotBooking = clientID, bookingID
	if f.initErr != nil {
		return nil, f.initErr
	}
	return &services.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.com/abc",
		AccessCode:       "abc",
		Reference:        "DIQ-REF",
		Breakdown:        payments.CalculateFees(decimal.NewFromInt(500), decimal.RequireFromString("0.1")),
	}, nil
}

func (f *fakePayments) Verify(_ context.Context, _ uuid.UUID, _, reference string) (*models.Transaction, error) {
	if f.txn == nil || f.txn.Reference != reference {
		return nil, database.ErrNotFound
	}
	return f.txn, nil
}

func (f *fakePayments) Banks(context.Context) ([]payments.Bank, error) {
	return f.banks, nil
}

type fakeWebhooks struct {
	secret     string
	processErr error
	processed  [][]byte
}

func (f *fakeWebhooks) Authenticate(raw []byte, sig string) bool {
	return payments.VerifySignature(f.secret, raw, sig)
}

func (f *fakeWebhooks) Process(_ context.Context, raw []byte) error {
	f.processed = append(f.processed, raw)
	return f.processErr
}

func paymentApp(p Payments, w WebhookProcessor) *fiber.App {
	h := NewPaymentHandler(p, w)
	app := fiber.New()
	app.Post("/payments/webhook", h.Webhook)
	g := app.Group("/payments", middleware.Protected(testSecret))
	g.Post("/initialize", h.Initialize)
	g.Get("/verify", h.Verify)
	g.Get("/banks", h.Banks)
	return app
}

func TestInitializeReturnsBreakdown(t *testing.T) {
	p := &fakePayments{}
	app := paymentApp(p, &fakeWebhooks{})
	client, booking := uuid.New(), uuid.New()

	res := call(t, app, http.MethodPost, "/payments/initialize", bearer(t, client, models.RoleClient),
		map[string]string{"booking_id": booking.String()})

	require.Equal(t, http.StatusOK, res.status, string(res.raw))
	assert.Equal(t, client, p.gotClient)
	assert.Equal(t, booking, p.gotBooking)
	assert.Equal(t, "DIQ-REF", res.body["reference"])
	assert.Equal(t, "https://checkout.paystack.com/abc", res.body["authorization_url"])

	breakdown := res.body["breakdown"].(map[string]any)
	assert.EqualValues(t, 500, breakdown["worker_amount"])
	assert.EqualValues(t, 50, breakdown["platform_fee"])
	assert.EqualValues(t, 550, breakdown["total_amount"])
	assert.EqualValues(t, 0.1, breakdown["fee_percent"])
}

func TestInitializeValidation(t *testing.T) {
	app := paymentApp(&fakePayments{}, &fakeWebhooks{})
	auth := bearer(t, uuid.New(), models.RoleClient)

	res := call(t, app, http.MethodPost, "/payments/initialize", auth, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "booking_id is required", res.body["error"])

	res = call(t, app, http.MethodPost, "/payments/initialize", auth, map[string]string{"booking_id": "42"})
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = call(t, app, http.MethodPost, "/payments/initialize", auth, []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Cannot parse JSON", res.body["error"])
}

func TestInitializeErrors(t *testing.T) {
	auth := bearer(t, uuid.New(), models.RoleClient)
	body := map[string]string{"booking_id": uuid.NewString()}

	app := paymentApp(&fakePayments{initErr: services.ErrPaymentAlreadyInitiated}, &fakeWebhooks{})
	res := call(t, app, http.MethodPost, "/payments/initialize", auth, body)
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, services.ErrPaymentAlreadyInitiated.Error(), res.body["error"])

	app = paymentApp(&fakePayments{initErr: &services.GatewayError{HTTPStatus: http.StatusBadRequest, Message: "Invalid Email Address Passed"}}, &fakeWebhooks{})
	res = call(t, app, http.MethodPost, "/payments/initialize", auth, body)
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "Invalid Email Address Passed", res.body["error"])

	app = paymentApp(&fakePayments{initErr: &services.GatewayError{HTTPStatus: http.StatusServiceUnavailable, Message: "try again"}}, &fakeWebhooks{})
	res = call(t, app, http.MethodPost, "/payments/initialize", auth, body)
	assert.Equal(t, http.StatusBadGateway, res.status)

	res = call(t, app, http.MethodPost, "/payments/initialize", "", body)
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestVerifyRequiresReference(t *testing.T) {
	txn := &models.Transaction{ID: uuid.New(), Reference: "DIQ-1", Status: models.TransactionCompleted}
	app := paymentApp(&fakePayments{txn: txn}, &fakeWebhooks{})
	auth := bearer(t, uuid.New(), models.RoleClient)

	res := call(t, app, http.MethodGet, "/payments/verify", auth, nil)
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = call(t, app, http.MethodGet, "/payments/verify?reference=DIQ-1", auth, nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, string(models.TransactionCompleted), res.body["status"])
}

func TestBanksShape(t *testing.T) {
	app := paymentApp(&fakePayments{banks: []payments.Bank{{Name: "Capitec Bank", Code: "470010", Slug: "capitec-bank", Active: true}}}, &fakeWebhooks{})
	res := call(t, app, http.MethodGet, "/payments/banks", bearer(t, uuid.New(), models.RoleWorker), nil)
	require.Equal(t, http.StatusOK, res.status)

	banks := res.body["banks"].([]any)
	require.Len(t, banks, 1)
	assert.Equal(t, map[string]any{"name": "Capitec Bank", "code": "470010", "slug": "capitec-bank"}, banks[0])
}

func TestWebhookSignature(t *testing.T) {
	const secret = "sk_test_webhook"
	body := []byte(`{"event":"charge.success","data":{"reference":"DIQ-1"}}`)

	t.Run("bad signature is rejected", func(t *testing.T) {
		w := &fakeWebhooks{secret: secret}
		res := call(t, paymentApp(&fakePayments{}, w), http.MethodPost, "/payments/webhook", "", body,
			payments.SignatureHeader, "deadbeef")
		assert.Equal(t, http.StatusUnauthorized, res.status)
		assert.Equal(t, "Invalid signature", res.body["error"])
		assert.Empty(t, w.processed)
	})

	t.Run("good signature is acknowledged", func(t *testing.T) {
		w := &fakeWebhooks{secret: secret}
		res := call(t, paymentApp(&fakePayments{}, w), http.MethodPost, "/payments/webhook", "", body,
			payments.SignatureHeader, hex.EncodeToString(payments.Sign(secret, body)))
		assert.Equal(t, http.StatusOK, res.status)
		assert.Equal(t, true, res.body["received"])
		require.Len(t, w.processed, 1)
		assert.Equal(t, body, w.processed[0])
	})

	t.Run("processing errors are still acknowledged", func(t *testing.T) {
		w := &fakeWebhooks{secret: secret, processErr: errors.New("db down")}
		res := call(t, paymentApp(&fakePayments{}, w), http.MethodPost, "/payments/webhook", "", body,
			payments.SignatureHeader, hex.EncodeToString(payments.Sign(secret, body)))
		assert.Equal(t, http.StatusOK, res.status)
		assert.Equal(t, true, res.body["received"])
	})
}
