package handlers

import (
	"context"
	"time"

	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Bookings interface {
	Create(ctx context.Context, clientID uuid.UUID, in services.CreateBookingInput) (*models.Booking, error)
	Get(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, userID uuid.UUID, role string, status models.BookingStatus) ([]models.Booking, error)
	Transition(ctx context.Context, userID, id uuid.UUID, action services.BookingAction, reason *string) (*models.Booking, error)
	Review(ctx context.Context, clientID, bookingID uuid.UUID, rating int, comment string) (*models.Review, error)
	WorkerReviews(ctx context.Context, workerID uuid.UUID) ([]models.Review, error)
}

type BookingHandler struct {
	bookings Bookings
}

func NewBookingHandler(b Bookings) *BookingHandler {
	return &BookingHandler{bookings: b}
}

type CreateBookingRequest struct {
	WorkerID       string    `json:"worker_id" validate:"required,uuid"`
	ScheduledStart time.Time `json:"scheduled_start" validate:"required"`
	ScheduledEnd   time.Time `json:"scheduled_end" validate:"required"`
	Address        string    `json:"address" validate:"required,min=5"`
	Description    *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
}

type TransitionRequest struct {
	Action string  `json:"action" validate:"required,oneof=accept decline cancel start complete no_show dispute"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	workerID, err := uuid.Parse(req.WorkerID)
	if err != nil {
		return badRequest(c, "worker_id must be a valid UUID")
	}
	b, err := h.bookings.Create(c.UserContext(), id.UserID, services.CreateBookingInput{
		WorkerID:       workerID,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		Address:        req.Address,
		Description:    req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (h *BookingHandler) List(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	status := models.BookingStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return badRequest(c, "status is invalid")
	}
	bookings, err := h.bookings.List(c.UserContext(), id.UserID, id.Role, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bookings)
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	b, err := h.bookings.Get(c.UserContext(), id.UserID, id.Role, bookingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(b)
}

func (h *BookingHandler) Transition(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	var req TransitionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	b, err := h.bookings.Transition(c.UserContext(), id.UserID, bookingID, services.BookingAction(req.Action), req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(b)
}

func (h *BookingHandler) Review(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	bookingID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	var req ReviewRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	r, err := h.bookings.Review(c.UserContext(), id.UserID, bookingID, req.Rating, req.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *BookingHandler) WorkerReviews(c *fiber.Ctx) error {
	workerID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "id must be a valid UUID")
	}
	reviews, err := h.bookings.WorkerReviews(c.UserContext(), workerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reviews)
}
