package database

import "gorm.io/gorm"

type Stores struct {
	Users         *UserStore
	Workers       *WorkerStore
	Bookings      *BookingStore
	Reviews       *ReviewStore
	Transactions  *TransactionStore
	Settlement    *SettlementStore
	Ledger        *LedgerStore
	Payouts       *PayoutStore
	Notifications *NotificationStore
	Push          *PushSubscriptionStore
	Outbox        *OutboxStore
	WebhookEvents *WebhookEventStore
	Consents      *ConsentStore
	Statements    *IncomeStatementStore
	Documents     *DocumentStore
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		Users:         &UserStore{db: db},
		Workers:       &WorkerStore{db: db},
		Bookings:      &BookingStore{db: db},
		Reviews:       &ReviewStore{db: db},
		Transactions:  &TransactionStore{db: db},
		Settlement:    &SettlementStore{db: db},
		Ledger:        &LedgerStore{db: db},
		Payouts:       &PayoutStore{db: db},
		Notifications: &NotificationStore{db: db},
		Push:          &PushSubscriptionStore{db: db},
		Outbox:        &OutboxStore{db: db},
		WebhookEvents: &WebhookEventStore{db: db},
		Consents:      &ConsentStore{db: db},
		Statements:    &IncomeStatementStore{db: db},
		Documents:     &DocumentStore{db: db},
	}
}

// Page normalises page/limit query values into an offset and limit.
func Page(page, limit int) (offset, size int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return (page - 1) * limit, limit
}
