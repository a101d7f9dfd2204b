package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminUsers interface {
	List(ctx context.Context, page, limit int, role string) ([]models.User, int64, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type AdminBookings interface {
	ListAll(ctx context.Context, page, limit int, status string) ([]models.Booking, int64, error)
}

type AdminTransactions interface {
	ListAll(ctx context.Context, page, limit int, status string) ([]models.Transaction, int64, error)
}

type AdminPayouts interface {
	ListAll(ctx context.Context, page, limit int, status string) ([]models.WorkerPayout, int64, error)
}

type PayoutApprover interface {
	Approve(ctx context.Context, adminID, payoutID uuid.UUID) (*models.WorkerPayout, error)
	Reject(ctx context.Context, payoutID uuid.UUID, reason string) error
}

type RevenueLedger interface {
	Summary(ctx context.Context, from, to time.Time) (database.RevenueSummary, error)
	Between(ctx context.Context, from, to time.Time) ([]models.RevenueLedgerEntry, error)
}

type AdminHandler struct {
	users        AdminUsers
	bookings     AdminBookings
	transactions AdminTransactions
	payouts      AdminPayouts
	approver     PayoutApprover
	ledger       RevenueLedger
}

func NewAdminHandler(users AdminUsers, bookings AdminBookings, transactions AdminTransactions, payouts AdminPayouts, approver PayoutApprover, ledger RevenueLedger) *AdminHandler {
	return &AdminHandler{users: users, bookings: bookings, transactions: transactions, payouts: payouts, approver: approver, ledger: ledger}
}

type ToggleUserRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type RejectPayoutRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func paged(c *fiber.Ctx, data any, total int64, page, limit int) error {
	_, size := database.Page(page, limit)
	if page < 1 {
		page = 1
	}
	return c.JSON(fiber.Map{
		"data": data,
		"meta": fiber.Map{
			"total":     total,
			"page":      page,
			"last_page": int(math.Ceil(float64(total) / float64(size))),
		},
	})
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	page, limit := pageQuery(c)
	users, total, err := h.users.List(c.UserContext(), page, limit, c.Query("role"))
	if err != nil {
		return respondError(c, err)
	}
	return paged(c, users, total, page, limit)
}

func (h *AdminHandler) ToggleUser(c *fiber.Ctx) error {
	userID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	var req ToggleUserRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := h.users.SetActive(c.UserContext(), userID, *req.IsActive); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User status updated successfully."})
}

func (h *AdminHandler) Bookings(c *fiber.Ctx) error {
	page, limit := pageQuery(c)
	list, total, err := h.bookings.ListAll(c.UserContext(), page, limit, c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return paged(c, list, total, page, limit)
}

func (h *AdminHandler) Transactions(c *fiber.Ctx) error {
	page, limit := pageQuery(c)
	list, total, err := h.transactions.ListAll(c.UserContext(), page, limit, c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return paged(c, list, total, page, limit)
}

func (h *AdminHandler) Payouts(c *fiber.Ctx) error {
	page, limit := pageQuery(c)
	list, total, err := h.payouts.ListAll(c.UserContext(), page, limit, c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return paged(c, list, total, page, limit)
}

func (h *AdminHandler) ApprovePayout(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	payoutID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	p, err := h.approver.Approve(c.UserContext(), id.UserID, payoutID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *AdminHandler) RejectPayout(c *fiber.Ctx) error {
	payoutID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	var req RejectPayoutRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := h.approver.Reject(c.UserContext(), payoutID, req.Reason); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Payout rejected"})
}

// dateRange reads start_date and end_date (inclusive, YYYY-MM-DD), defaulting to the last month.
func dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start, err := time.Parse("2006-01-02", c.Query("start_date", now.AddDate(0, -1, 0).Format("2006-01-02")))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start_date must use YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", c.Query("end_date", now.Format("2006-01-02")))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end_date must use YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end_date must not be before start_date")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func (h *AdminHandler) Revenue(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	sum, err := h.ledger.Summary(c.UserContext(), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"from":    from.Format("2006-01-02"),
		"to":      to.AddDate(0, 0, -1).Format("2006-01-02"),
		"entries": sum.Entries,
		"total":   sum.Total.StringFixed(2),
	})
}

// RevenueReport streams the platform fee ledger for the range as CSV.
func (h *AdminHandler) RevenueReport(c *fiber.Ctx) error {
	from, to, err := dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	entries, err := h.ledger.Between(c.UserContext(), from, to)
	if err != nil {
		return respondError(c, err)
	}

	b := new(bytes.Buffer)
	w := csv.NewWriter(b)
	if err := w.Write([]string{"Entry ID", "Date", "Transaction ID", "Booking ID", "Platform Fee", "Currency"}); err != nil {
		return respondError(c, err)
	}
	for _, e := range entries {
		row := []string{
			e.ID.String(),
			e.CreatedAt.Format("2006-01-02 15:04"),
			e.TransactionID.String(),
			e.BookingID.String(),
			e.Amount.StringFixed(2),
			e.Currency,
		}
		if err := w.Write(row); err != nil {
			return respondError(c, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"revenue_%s_to_%s.csv\"",
		from.Format("2006-01-02"), to.AddDate(0, 0, -1).Format("2006-01-02")))
	return c.Send(b.Bytes())
}
