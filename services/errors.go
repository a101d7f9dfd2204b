package services

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotPayable       = errors.New("booking is not in a payable status")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrPaymentAlreadyInitiated = errors.New("a payment has already been initiated for this booking")
	ErrInvalidTransition       = errors.New("status transition is not allowed")
	ErrGateway                 = errors.New("payment gateway error")
	ErrAmountMismatch          = errors.New("verified amount does not match the transaction")
	ErrUnknownBank             = errors.New("bank code is not an active bank")
	ErrNoBankAccount           = errors.New("no bank account registered")
	ErrInsufficientBalance     = errors.New("amount exceeds available balance")
	ErrInvalidSchedule         = errors.New("scheduled end must be after a future start")
	ErrWorkerUnavailable       = errors.New("worker is not accepting bookings")
	ErrNotReviewable           = errors.New("only completed bookings can be reviewed")
	ErrInvalidConsentType      = errors.New("unknown consent type")
	ErrConsentRequired         = errors.New("worker has not granted income data sharing consent")
	ErrInvalidPeriod           = errors.New("period must be a past or current month in YYYY-MM form")
	ErrInvalidDocumentType     = errors.New("unknown document type")
	ErrInvalidLocation         = errors.New("latitude, longitude or radius out of range")
	ErrUploadsDisabled         = errors.New("uploads are not configured")
	ErrTranslationDisabled     = errors.New("translation is not configured")
	ErrUpstream                = errors.New("upstream service error")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrAccountDisabled         = errors.New("account is disabled")
)

// GatewayError is a request the payment processor refused or could not serve.
// HTTPStatus is zero when the processor was never reached.
type GatewayError struct {
	HTTPStatus int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", ErrGateway, e.Message)
}

func (e *GatewayError) Unwrap() error { return ErrGateway }

// Rejected reports whether the processor answered with a 4xx, i.e. it refused what we sent.
func (e *GatewayError) Rejected() bool {
	return e.HTTPStatus >= 400 && e.HTTPStatus < 500
}

func gatewayError(status int, message string) error {
	return &GatewayError{HTTPStatus: status, Message: message}
}
