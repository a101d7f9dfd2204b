package models

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingAccepted   BookingStatus = "accepted"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
	BookingDisputed   BookingStatus = "disputed"
)

var bookingEdges = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingAccepted, BookingConfirmed, BookingCancelled},
	BookingAccepted:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled, BookingNoShow},
	BookingInProgress: {BookingCompleted, BookingDisputed},
	BookingCompleted:  {BookingDisputed},
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	return contains(bookingEdges[s], to)
}

// Payable reports whether a payment may be initialized for a booking in this status.
func (s BookingStatus) Payable() bool {
	return s == BookingPending || s == BookingAccepted || s == BookingConfirmed
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingAccepted, BookingConfirmed, BookingInProgress,
		BookingCompleted, BookingCancelled, BookingNoShow, BookingDisputed:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "pending"
	TransactionProcessing TransactionStatus = "processing"
	TransactionCompleted  TransactionStatus = "completed"
	TransactionFailed     TransactionStatus = "failed"
)

var transactionEdges = map[TransactionStatus][]TransactionStatus{
	TransactionPending:    {TransactionProcessing, TransactionCompleted, TransactionFailed},
	TransactionProcessing: {TransactionCompleted, TransactionFailed},
}

func (s TransactionStatus) CanTransition(to TransactionStatus) bool {
	return contains(transactionEdges[s], to)
}

// Active statuses block a second payment attempt for the same booking.
func (s TransactionStatus) Active() bool {
	return s == TransactionPending || s == TransactionProcessing || s == TransactionCompleted
}

var ActiveTransactionStatuses = []TransactionStatus{TransactionPending, TransactionProcessing, TransactionCompleted}

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutCompleted PayoutStatus = "completed"
	PayoutFailed    PayoutStatus = "failed"
)

func (s PayoutStatus) CanTransition(to PayoutStatus) bool {
	return s == PayoutPending && (to == PayoutCompleted || to == PayoutFailed)
}

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
