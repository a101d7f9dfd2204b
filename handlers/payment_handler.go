package handlers

import (
	"context"
	"strings"

	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/payments"
	"github.com/domestiq/domestiq_api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Payments interface {
	Initialize(ctx context.Context, clientID, bookingID uuid.UUID) (*services.InitializeResult, error)
	Verify(ctx context.Context, userID uuid.UUID, role, reference string) (*models.Transaction, error)
	Banks(ctx context.Context) ([]payments.Bank, error)
}

type PaymentHandler struct {
	payments Payments
	webhooks WebhookProcessor
}

func NewPaymentHandler(p Payments, w WebhookProcessor) *PaymentHandler {
	return &PaymentHandler{payments: p, webhooks: w}
}

type InitializePaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid"`
}

type BreakdownResponse struct {
	WorkerAmount float64 `json:"worker_amount"`
	PlatformFee  float64 `json:"platform_fee"`
	TotalAmount  float64 `json:"total_amount"`
	FeePercent   float64 `json:"fee_percent"`
}

type InitializePaymentResponse struct {
	AuthorizationURL string            `json:"authorization_url"`
	AccessCode       string            `json:"access_code"`
	Reference        string            `json:"reference"`
	Breakdown        BreakdownResponse `json:"breakdown"`
}

type BankResponse struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Slug string `json:"slug"`
}

func (h *PaymentHandler) Initialize(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req InitializePaymentRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return badRequest(c, "booking_id must be a valid UUID")
	}

	res, err := h.payments.Initialize(c.UserContext(), id.UserID, bookingID)
	if err != nil {
		return respondError(c, err)
	}
	b := res.Breakdown
	return c.JSON(InitializePaymentResponse{
		AuthorizationURL: res.AuthorizationURL,
		AccessCode:       res.AccessCode,
		Reference:        res.Reference,
		Breakdown: BreakdownResponse{
			WorkerAmount: b.WorkerAmount.InexactFloat64(),
			PlatformFee:  b.PlatformFee.InexactFloat64(),
			TotalAmount:  b.TotalAmount.InexactFloat64(),
			FeePercent:   b.FeePercent.InexactFloat64(),
		},
	})
}

func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	reference := strings.TrimSpace(c.Query("reference"))
	if reference == "" {
		return badRequest(c, "reference is required")
	}
	txn, err := h.payments.Verify(c.UserContext(), id.UserID, id.Role, reference)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": txn.Status, "transaction": txn})
}

func (h *PaymentHandler) Banks(c *fiber.Ctx) error {
	banks, err := h.payments.Banks(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]BankResponse, 0, len(banks))
	for _, b := range banks {
		out = append(out, BankResponse{Name: b.Name, Code: b.Code, Slug: b.Slug})
	}
	return c.JSON(fiber.Map{"banks": out})
}
