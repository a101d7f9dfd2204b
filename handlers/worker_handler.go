package handlers

import (
	"context"
	"strconv"

	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Profiles interface {
	Get(ctx context.Context, workerID uuid.UUID) (*models.WorkerProfile, error)
	Update(ctx context.Context, workerID uuid.UUID, in services.WorkerProfileInput) (*models.WorkerProfile, error)
}

type WorkerSearch interface {
	Search(ctx context.Context, lat, lng, radiusKm float64, skill string) ([]services.WorkerMatch, error)
}

type Payouts interface {
	Balance(ctx context.Context, workerID uuid.UUID) (services.Balance, error)
	SetBankAccount(ctx context.Context, workerID uuid.UUID, bankCode, accountNumber, accountName string) error
	Request(ctx context.Context, workerID uuid.UUID, amount decimal.Decimal) (*models.WorkerPayout, error)
	ListForWorker(ctx context.Context, workerID uuid.UUID) ([]models.WorkerPayout, error)
}

type WorkerHandler struct {
	profiles Profiles
	search   WorkerSearch
	payouts  Payouts
}

func NewWorkerHandler(profiles Profiles, search WorkerSearch, payouts Payouts) *WorkerHandler {
	return &WorkerHandler{profiles: profiles, search: search, payouts: payouts}
}

type UpdateProfileRequest struct {
	Headline        *string  `json:"headline,omitempty" validate:"omitempty,max=255"`
	Bio             *string  `json:"bio,omitempty" validate:"omitempty,max=5000"`
	Skills          []string `json:"skills" validate:"required,min=1,dive,required,max=50"`
	HourlyRate      string   `json:"hourly_rate" validate:"required,numeric"`
	Latitude        float64  `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude       float64  `json:"longitude" validate:"gte=-180,lte=180"`
	ServiceRadiusKm float64  `json:"service_radius_km" validate:"gte=0,lte=200"`
}

type BankAccountRequest struct {
	BankCode      string `json:"bank_code" validate:"required,max=20"`
	AccountNumber string `json:"account_number" validate:"required,numeric,min=6,max=20"`
	AccountName   string `json:"account_name" validate:"required,max=255"`
}

type PayoutRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
}

func (h *WorkerHandler) Profile(c *fiber.Ctx) error {
	workerID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	w, err := h.profiles.Get(c.UserContext(), workerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

func (h *WorkerHandler) UpdateProfile(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req UpdateProfileRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	rate, err := decimal.NewFromString(req.HourlyRate)
	if err != nil {
		return badRequest(c, "hourly_rate is invalid")
	}
	w, err := h.profiles.Update(c.UserContext(), id.UserID, services.WorkerProfileInput{
		Headline:        req.Headline,
		Bio:             req.Bio,
		Skills:          req.Skills,
		HourlyRate:      rate,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		ServiceRadiusKm: req.ServiceRadiusKm,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(w)
}

func (h *WorkerHandler) Search(c *fiber.Ctx) error {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		return badRequest(c, "lat and lng are required")
	}
	radius := 0.0
	if raw := c.Query("radius_km"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return badRequest(c, "radius_km is invalid")
		}
		radius = r
	}
	matches, err := h.search.Search(c.UserContext(), lat, lng, radius, c.Query("skill"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"workers": matches, "count": len(matches)})
}

func (h *WorkerHandler) SetBankAccount(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req BankAccountRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := h.payouts.SetBankAccount(c.UserContext(), id.UserID, req.BankCode, req.AccountNumber, req.AccountName); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Bank account saved"})
}

func (h *WorkerHandler) Balance(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	b, err := h.payouts.Balance(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"earned":    b.Earned.StringFixed(2),
		"reserved":  b.Reserved.StringFixed(2),
		"available": b.Available.StringFixed(2),
	})
}

func (h *WorkerHandler) RequestPayout(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req PayoutRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return badRequest(c, "amount is invalid")
	}
	p, err := h.payouts.Request(c.UserContext(), id.UserID, amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *WorkerHandler) Payouts(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	list, err := h.payouts.ListForWorker(c.UserContext(), id.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
