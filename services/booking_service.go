package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type BookingAction string

const (
	ActionAccept   BookingAction = "accept"
	ActionDecline  BookingAction = "decline"
	ActionCancel   BookingAction = "cancel"
	ActionStart    BookingAction = "start"
	ActionComplete BookingAction = "complete"
	ActionNoShow   BookingAction = "no_show"
	ActionDispute  BookingAction = "dispute"
)

type actionRule struct {
	to    models.BookingStatus
	roles []string
}

var bookingActions = map[BookingAction]actionRule{
	ActionAccept:   {models.BookingAccepted, []string{models.RoleWorker}},
	ActionDecline:  {models.BookingCancelled, []string{models.RoleWorker}},
	ActionCancel:   {models.BookingCancelled, []string{models.RoleClient, models.RoleWorker}},
	ActionStart:    {models.BookingInProgress, []string{models.RoleWorker}},
	ActionComplete: {models.BookingCompleted, []string{models.RoleWorker}},
	ActionNoShow:   {models.BookingNoShow, []string{models.RoleClient, models.RoleWorker}},
	ActionDispute:  {models.BookingDisputed, []string{models.RoleClient}},
}

type BookingService struct {
	bookings BookingRepository
	workers  WorkerRepository
	reviews  ReviewRepository
	notifier Notifier
	now      func() time.Time
}

func NewBookingService(bookings BookingRepository, workers WorkerRepository, reviews ReviewRepository, notifier Notifier) *BookingService {
	return &BookingService{bookings: bookings, workers: workers, reviews: reviews, notifier: notifier, now: time.Now}
}

type CreateBookingInput struct {
	WorkerID       uuid.UUID
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	Address        string
	Description    *string
}

// Create books an approved worker. The amount is the worker's hourly rate over the slot.
func (s *BookingService) Create(ctx context.Context, clientID uuid.UUID, in CreateBookingInput) (*models.Booking, error) {
	if !in.ScheduledStart.After(s.now()) || !in.ScheduledEnd.After(in.ScheduledStart) {
		return nil, ErrInvalidSchedule
	}
	if in.WorkerID == clientID {
		return nil, ErrWorkerUnavailable
	}
	worker, err := s.workers.Get(ctx, in.WorkerID)
	if err != nil {
		return nil, err
	}
	if worker.Status != models.WorkerApproved || (worker.User != nil && !worker.User.IsActive) {
		return nil, ErrWorkerUnavailable
	}

	hours := decimal.NewFromFloat(in.ScheduledEnd.Sub(in.ScheduledStart).Hours())
	amount := worker.HourlyRate.Mul(hours).Round(2)
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	booking := models.Booking{
		ID:             uuid.New(),
		ClientID:       clientID,
		WorkerID:       in.WorkerID,
		Status:         models.BookingPending,
		ScheduledStart: in.ScheduledStart,
		ScheduledEnd:   in.ScheduledEnd,
		Address:        strings.TrimSpace(in.Address),
		Description:    in.Description,
		TotalAmount:    amount,
	}
	if err := s.bookings.Create(ctx, &booking); err != nil {
		return nil, err
	}

	s.notify(ctx, booking, booking.WorkerID, models.NotifBookingRequested, "New booking request",
		fmt.Sprintf("You have a new booking request for %s.", booking.ScheduledStart.Format("02 Jan 2006 15:04")))
	return &booking, nil
}

// Get hides bookings the caller does not take part in.
func (s *BookingService) Get(ctx context.Context, userID uuid.UUID, role string, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != models.RoleAdmin && !booking.Participant(userID) {
		return nil, database.ErrNotFound
	}
	return booking, nil
}

func (s *BookingService) List(ctx context.Context, userID uuid.UUID, role string, status models.BookingStatus) ([]models.Booking, error) {
	return s.bookings.ListForUser(ctx, userID, role, status)
}

// Transition applies a lifecycle action on behalf of a booking participant.
func (s *BookingService) Transition(ctx context.Context, userID, id uuid.UUID, action BookingAction, reason *string) (*models.Booking, error) {
	rule, ok := bookingActions[action]
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.Participant(userID) {
		return nil, database.ErrNotFound
	}
	actorRole := models.RoleClient
	if booking.WorkerID == userID {
		actorRole = models.RoleWorker
	}
	if !roleAllowed(rule.roles, actorRole) {
		return nil, database.ErrForbidden
	}
	if !booking.Status.CanTransition(rule.to) {
		return nil, ErrInvalidTransition
	}

	if err := s.bookings.UpdateStatus(ctx, booking.ID, booking.Status, rule.to, reason); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	log.WithFields(log.Fields{"booking_id": booking.ID, "from": booking.Status, "to": rule.to, "by": userID}).Info("booking status changed")

	booking.Status = rule.to
	if reason != nil {
		booking.CancelReason = reason
	}
	s.notify(ctx, *booking, booking.Counterpart(userID), models.NotifBookingUpdated, "Booking updated",
		fmt.Sprintf("Your booking on %s is now %s.", booking.ScheduledStart.Format("02 Jan 2006"), strings.ReplaceAll(string(rule.to), "_", " ")))
	return booking, nil
}

// Review lets the client rate a completed booking once.
func (s *BookingService) Review(ctx context.Context, clientID, bookingID uuid.UUID, rating int, comment string) (*models.Review, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ClientID != clientID {
		return nil, database.ErrNotFound
	}
	if booking.Status != models.BookingCompleted {
		return nil, ErrNotReviewable
	}

	review := models.Review{
		ID:        uuid.New(),
		BookingID: booking.ID,
		ClientID:  clientID,
		WorkerID:  booking.WorkerID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.reviews.CreateAndRate(ctx, &review); err != nil {
		return nil, err
	}
	s.notify(ctx, *booking, booking.WorkerID, models.NotifNewReview, "New review",
		fmt.Sprintf("A client left you a %d star review.", rating))
	return &review, nil
}

func (s *BookingService) WorkerReviews(ctx context.Context, workerID uuid.UUID) ([]models.Review, error) {
	return s.reviews.ListForWorker(ctx, workerID)
}

// SendReminders notifies both parties of confirmed bookings starting in [from, to).
func (s *BookingService) SendReminders(ctx context.Context, from, to time.Time) (int, error) {
	bookings, err := s.bookings.ListStartingBetween(ctx, models.BookingConfirmed, from, to)
	if err != nil {
		return 0, err
	}
	for _, b := range bookings {
		body := fmt.Sprintf("Reminder: your booking starts at %s.", b.ScheduledStart.Format("02 Jan 2006 15:04"))
		s.notify(ctx, b, b.ClientID, models.NotifBookingReminder, "Upcoming booking", body)
		s.notify(ctx, b, b.WorkerID, models.NotifBookingReminder, "Upcoming booking", body)
	}
	return len(bookings), nil
}

func (s *BookingService) notify(ctx context.Context, b models.Booking, userID uuid.UUID, kind models.NotificationType, title, body string) {
	data, _ := json.Marshal(map[string]any{"booking_id": b.ID, "status": b.Status})
	url := "/bookings/" + b.ID.String()
	err := s.notifier.CreateWithEvent(ctx, []models.Notification{{
		UserID: userID,
		Type:   kind,
		Title:  title,
		Body:   body,
		URL:    &url,
		Data:   datatypes.JSON(data),
	}})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"booking_id": b.ID, "type": kind}).Error("failed to create notification")
	}
}

func roleAllowed(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
