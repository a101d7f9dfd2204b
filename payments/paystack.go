package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultPaystackBaseURL = "https://api.paystack.co"

// SignatureHeader carries the HMAC-SHA512 of the raw webhook body.
const SignatureHeader = "X-Paystack-Signature"

// Result is what every gateway call returns. Network failures and non-2xx responses
// surface as Status=false with a message; callers check the flag.
type Result[T any] struct {
	Status     bool
	Message    string
	HTTPStatus int
	Data       T
}

type PaystackClient struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

func NewPaystackClient(secretKey, webhookSecret, baseURL string) *PaystackClient {
	if baseURL == "" {
		baseURL = DefaultPaystackBaseURL
	}
	if webhookSecret == "" {
		webhookSecret = secretKey
	}
	return &PaystackClient{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

type InitializeRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Currency    string         `json:"currency,omitempty"`
	Reference   string         `json:"reference"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type VerifyData struct {
	ID              int64  `json:"id"`
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	PaidAt          string `json:"paid_at"`
	GatewayResponse string `json:"gateway_response"`
}

// PaidAtTime parses the processor timestamp, falling back to the zero time.
func (v VerifyData) PaidAtTime() time.Time {
	t, err := time.Parse(time.RFC3339, v.PaidAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

type Bank struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Code     string `json:"code"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
	Type     string `json:"type"`
	Active   bool   `json:"active"`
}

type RecipientRequest struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankCode      string `json:"bank_code"`
	Currency      string `json:"currency"`
}

type RecipientData struct {
	RecipientCode string `json:"recipient_code"`
	Active        bool   `json:"active"`
}

type TransferRequest struct {
	Source    string `json:"source"`
	Amount    int64  `json:"amount"`
	Recipient string `json:"recipient"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

type TransferData struct {
	TransferCode string `json:"transfer_code"`
	Reference    string `json:"reference"`
	Status       string `json:"status"`
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (c *PaystackClient) InitializeTransaction(ctx context.Context, req InitializeRequest) Result[InitializeData] {
	return call[InitializeData](ctx, c, http.MethodPost, "/transaction/initialize", req)
}

func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) Result[VerifyData] {
	return call[VerifyData](ctx, c, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
}

func (c *PaystackClient) ListBanks(ctx context.Context, country string) Result[[]Bank] {
	path := "/bank"
	if country != "" {
		path += "?country=" + url.QueryEscape(country)
	}
	return call[[]Bank](ctx, c, http.MethodGet, path, nil)
}

func (c *PaystackClient) CreateTransferRecipient(ctx context.Context, req RecipientRequest) Result[RecipientData] {
	if req.Type == "" {
		req.Type = "basa"
	}
	return call[RecipientData](ctx, c, http.MethodPost, "/transferrecipient", req)
}

func (c *PaystackClient) InitiateTransfer(ctx context.Context, req TransferRequest) Result[TransferData] {
	if req.Source == "" {
		req.Source = "balance"
	}
	return call[TransferData](ctx, c, http.MethodPost, "/transfer", req)
}

// VerifyWebhookSignature must be given the raw body exactly as received.
func (c *PaystackClient) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return VerifySignature(c.webhookSecret, rawBody, signature)
}

func VerifySignature(secret string, rawBody []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(got, Sign(secret, rawBody))
}

func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// ActiveBanks drops entries whose active flag is false.
func ActiveBanks(banks []Bank) []Bank {
	out := make([]Bank, 0, len(banks))
	for _, b := range banks {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

func call[T any](ctx context.Context, c *PaystackClient, method, path string, payload any) Result[T] {
	var res Result[T]
	if c.secretKey == "" {
		res.Message = "payment gateway is not configured"
		return res
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			res.Message = fmt.Sprintf("failed to marshal request: %v", err)
			return res
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		res.Message = fmt.Sprintf("failed to create request: %v", err)
		return res
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("paystack request failed")
		res.Message = fmt.Sprintf("payment gateway unreachable: %v", err)
		return res
	}
	defer resp.Body.Close()
	res.HTTPStatus = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Message = fmt.Sprintf("failed to read gateway response: %v", err)
		return res
	}

	var env envelope[T]
	decodeErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(log.Fields{"path": path, "status": resp.StatusCode}).Warn("paystack returned non-2xx")
		res.Message = env.Message
		if decodeErr != nil || res.Message == "" {
			res.Message = fmt.Sprintf("payment gateway returned status %d", resp.StatusCode)
		}
		return res
	}
	if decodeErr != nil {
		res.Message = fmt.Sprintf("failed to decode gateway response: %v", decodeErr)
		return res
	}

	res.Status = env.Status
	res.Message = env.Message
	res.Data = env.Data
	return res
}
