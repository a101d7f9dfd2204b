package payments

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *PaystackClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewPaystackClient("sk_test_123", "", srv.URL)
}

func TestInitializeTransaction_Success(t *testing.T) {
	var got InitializeRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"DIQ-1"}}`))
	})

	res := c.InitializeTransaction(context.Background(), InitializeRequest{
		Email: "client@example.com", Amount: 55000, Currency: "ZAR", Reference: "DIQ-1",
	})

	require.True(t, res.Status, res.Message)
	assert.Equal(t, "abc", res.Data.AccessCode)
	assert.Equal(t, "https://checkout.paystack.com/abc", res.Data.AuthorizationURL)
	assert.Equal(t, int64(55000), got.Amount)
	assert.Equal(t, "ZAR", got.Currency)
}

func TestInitializeTransaction_Non2xxIsStatusFalse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Duplicate Transaction Reference"}`))
	})

	res := c.InitializeTransaction(context.Background(), InitializeRequest{Reference: "dup"})

	assert.False(t, res.Status)
	assert.Equal(t, "Duplicate Transaction Reference", res.Message)
	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus)
}

func TestInitializeTransaction_ServerErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	res := c.InitializeTransaction(context.Background(), InitializeRequest{})

	assert.False(t, res.Status)
	assert.Contains(t, res.Message, "502")
}

func TestCall_NetworkFailureIsStatusFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewPaystackClient("sk", "", srv.URL)

	res := c.VerifyTransaction(context.Background(), "ref")

	assert.False(t, res.Status)
	assert.Contains(t, res.Message, "unreachable")
}

func TestCall_Unconfigured(t *testing.T) {
	c := NewPaystackClient("", "", "http://127.0.0.1:1")
	res := c.ListBanks(context.Background(), "")
	assert.False(t, res.Status)
}

func TestVerifyTransaction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/DIQ-9", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","reference":"DIQ-9","amount":55000,"currency":"ZAR","paid_at":"2026-10-01T10:00:00Z"}}`))
	})

	res := c.VerifyTransaction(context.Background(), "DIQ-9")

	require.True(t, res.Status)
	assert.Equal(t, "success", res.Data.Status)
	assert.Equal(t, int64(55000), res.Data.Amount)
	assert.Equal(t, 2026, res.Data.PaidAtTime().Year())
}

func TestListBanks_ActiveFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "south africa", r.URL.Query().Get("country"))
		_, _ = w.Write([]byte(`{"status":true,"message":"Banks retrieved","data":[
			{"name":"Absa Bank","slug":"absa","code":"632005","active":true},
			{"name":"Old Bank","slug":"old","code":"000000","active":false},
			{"name":"Capitec Bank","slug":"capitec","code":"470010","active":true}]}`))
	})

	res := c.ListBanks(context.Background(), "south africa")
	require.True(t, res.Status)
	require.Len(t, res.Data, 3)

	active := ActiveBanks(res.Data)
	require.Len(t, active, 2)
	for _, b := range active {
		assert.True(t, b.Active)
		assert.NotEqual(t, "old", b.Slug)
	}
}

func TestTransfers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/transferrecipient":
			assert.Equal(t, "basa", body["type"])
			_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"recipient_code":"RCP_1","active":true}}`))
		case "/transfer":
			assert.Equal(t, "balance", body["source"])
			_, _ = w.Write([]byte(`{"status":true,"message":"Transfer has been queued","data":{"transfer_code":"TRF_1","reference":"PO-1","status":"pending"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	rcp := c.CreateTransferRecipient(context.Background(), RecipientRequest{Name: "Thandi", AccountNumber: "123", BankCode: "632005", Currency: "ZAR"})
	require.True(t, rcp.Status)
	assert.Equal(t, "RCP_1", rcp.Data.RecipientCode)

	trf := c.InitiateTransfer(context.Background(), TransferRequest{Amount: 10000, Recipient: "RCP_1", Reference: "PO-1"})
	require.True(t, trf.Status)
	assert.Equal(t, "TRF_1", trf.Data.TransferCode)
}

func TestVerifyWebhookSignature(t *testing.T) {
	c := NewPaystackClient("sk_test_123", "whsec", "")
	body := []byte(`{"event":"charge.success","data":{"reference":"DIQ-1"}}`)
	sig := hex.EncodeToString(Sign("whsec", body))

	assert.True(t, c.VerifyWebhookSignature(body, sig))
	assert.False(t, c.VerifyWebhookSignature(body, ""))
	assert.False(t, c.VerifyWebhookSignature(body, "not-hex"))
	assert.False(t, c.VerifyWebhookSignature(body, hex.EncodeToString(Sign("sk_test_123", body))))

	// a re-serialised body with different whitespace must not validate
	reformatted := []byte(`{"event": "charge.success", "data": {"reference": "DIQ-1"}}`)
	assert.False(t, c.VerifyWebhookSignature(reformatted, sig))
}
