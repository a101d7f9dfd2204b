package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/payments"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memDB mirrors the conditional-update semantics of the gorm stores.
type memDB struct {
	mu            sync.Mutex
	bookings      map[uuid.UUID]*models.Booking
	txns          map[string]*models.Transaction
	ledger        []models.RevenueLedgerEntry
	notifications []models.Notification
	outbox        []models.OutboxEvent
	payouts       map[uuid.UUID]*models.WorkerPayout
	workers       map[uuid.UUID]*models.WorkerProfile
	reviews       []models.Review
	consents      []models.ConsentRecord
	statements    map[uuid.UUID]*models.IncomeStatement
	documents     map[uuid.UUID]*models.VerificationDocument
	webhooks      []models.WebhookEvent

	createTxnErr error
}

func newMemDB() *memDB {
	return &memDB{
		bookings:   map[uuid.UUID]*models.Booking{},
		txns:       map[string]*models.Transaction{},
		payouts:    map[uuid.UUID]*models.WorkerPayout{},
		workers:    map[uuid.UUID]*models.WorkerProfile{},
		statements: map[uuid.UUID]*models.IncomeStatement{},
		documents:  map[uuid.UUID]*models.VerificationDocument{},
	}
}

// bookings

type fakeBookings struct{ db *memDB }

func (f fakeBookings) Create(_ context.Context, b *models.Booking) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *b
	f.db.bookings[b.ID] = &cp
	return nil
}

func (f fakeBookings) Get(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f fakeBookings) ListForUser(_ context.Context, userID uuid.UUID, role string, status models.BookingStatus) ([]models.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Booking
	for _, b := range f.db.bookings {
		owner := b.ClientID
		if role == models.RoleWorker {
			owner = b.WorkerID
		}
		if owner == userID && (status == "" || b.Status == status) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f fakeBookings) UpdateStatus(_ context.Context, id uuid.UUID, from, to models.BookingStatus, reason *string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok || b.Status != from {
		return database.ErrConflict
	}
	b.Status = to
	if reason != nil {
		b.CancelReason = reason
	}
	return nil
}

func (f fakeBookings) ListStartingBetween(_ context.Context, status models.BookingStatus, from, to time.Time) ([]models.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Booking
	for _, b := range f.db.bookings {
		if b.Status == status && !b.ScheduledStart.Before(from) && !b.ScheduledStart.After(to) {
			out = append(out, *b)
		}
	}
	return out, nil
}

// transactions

type fakeTransactions struct{ db *memDB }

func (f fakeTransactions) Create(_ context.Context, t *models.Transaction) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.createTxnErr != nil {
		return f.db.createTxnErr
	}
	for _, existing := range f.db.txns {
		if existing.BookingID == t.BookingID && existing.Status.Active() {
			return database.ErrConflict
		}
	}
	cp := *t
	cp.CreatedAt = time.Now()
	f.db.txns[t.Reference] = &cp
	return nil
}

func (f fakeTransactions) GetByReference(_ context.Context, reference string) (*models.Transaction, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.txns[reference]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f fakeTransactions) HasActiveForBooking(_ context.Context, bookingID uuid.UUID) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, t := range f.db.txns {
		if t.BookingID == bookingID && t.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeTransactions) MarkFailed(_ context.Context, reference, gatewayStatus string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.txns[reference]
	if !ok || (t.Status != models.TransactionPending && t.Status != models.TransactionProcessing) {
		return false, nil
	}
	t.Status = models.TransactionFailed
	t.GatewayStatus = &gatewayStatus
	return true, nil
}

func (f fakeTransactions) ListStalePending(_ context.Context, before time.Time, limit int) ([]models.Transaction, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Transaction
	for _, t := range f.db.txns {
		if t.Status == models.TransactionPending && t.CreatedAt.Before(before) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeTransactions) CompletedTotals(_ context.Context, workerID uuid.UUID, from, to time.Time) (database.EarningsTotals, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	totals := database.EarningsTotals{Gross: decimal.Zero, PlatformFees: decimal.Zero}
	for _, t := range f.db.txns {
		if t.WorkerID != workerID || t.Status != models.TransactionCompleted || t.PaidAt == nil {
			continue
		}
		if t.PaidAt.Before(from) || !t.PaidAt.Before(to) {
			continue
		}
		totals.Count++
		totals.Gross = totals.Gross.Add(t.WorkerAmount)
		totals.PlatformFees = totals.PlatformFees.Add(t.PlatformFee)
	}
	return totals, nil
}

func (f fakeTransactions) LifetimeEarnings(_ context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	total := decimal.Zero
	for _, t := range f.db.txns {
		if t.WorkerID == workerID && t.Status == models.TransactionCompleted {
			total = total.Add(t.WorkerAmount)
		}
	}
	return total, nil
}

// settlement

type fakeSettler struct{ db *memDB }

func (f fakeSettler) SettleCharge(_ context.Context, in database.ChargeSettlement) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.txns[in.Reference]
	if !ok || (t.Status != models.TransactionPending && t.Status != models.TransactionProcessing) {
		return false, nil
	}
	t.Status = models.TransactionCompleted
	paidAt := in.PaidAt
	t.PaidAt = &paidAt
	if b, ok := f.db.bookings[t.BookingID]; ok && (b.Status == models.BookingPending || b.Status == models.BookingAccepted) {
		b.Status = models.BookingConfirmed
	}
	f.db.ledger = append(f.db.ledger, models.RevenueLedgerEntry{ID: uuid.New(), TransactionID: t.ID, BookingID: t.BookingID, Amount: t.PlatformFee})
	f.db.notifications = append(f.db.notifications, in.Notifications...)
	f.db.outbox = append(f.db.outbox, models.OutboxEvent{ID: uuid.New(), EventType: models.EventPaymentSettled, AggregateID: t.ID})
	return true, nil
}

func (f fakeSettler) SettleTransfer(_ context.Context, in database.TransferSettlement) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.payouts {
		if p.Reference != in.Reference {
			continue
		}
		if p.Status != models.PayoutPending {
			return false, nil
		}
		p.Status = models.PayoutFailed
		if in.Success {
			p.Status = models.PayoutCompleted
		} else {
			p.FailureReason = &in.Reason
		}
		at := in.ProcessedAt
		p.ProcessedAt = &at
		if in.Success && in.Notification != nil {
			f.db.notifications = append(f.db.notifications, *in.Notification)
			f.db.outbox = append(f.db.outbox, models.OutboxEvent{ID: uuid.New(), EventType: models.EventPayoutSettled, AggregateID: p.ID})
		}
		return true, nil
	}
	return false, nil
}

// notifications

type fakeNotifier struct{ db *memDB }

func (f fakeNotifier) CreateWithEvent(_ context.Context, notifs []models.Notification) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.notifications = append(f.db.notifications, notifs...)
	f.db.outbox = append(f.db.outbox, models.OutboxEvent{ID: uuid.New(), EventType: models.EventNotificationCreated})
	return nil
}

// workers

type fakeWorkers struct{ db *memDB }

func (f fakeWorkers) Get(_ context.Context, userID uuid.UUID) (*models.WorkerProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	w, ok := f.db.workers[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f fakeWorkers) Save(_ context.Context, w *models.WorkerProfile) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *w
	f.db.workers[w.UserID] = &cp
	return nil
}

func (f fakeWorkers) SearchInBox(_ context.Context, minLat, maxLat, minLng, maxLng float64) ([]models.WorkerProfile, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.WorkerProfile
	for _, w := range f.db.workers {
		if w.Status != models.WorkerApproved {
			continue
		}
		if w.Latitude >= minLat && w.Latitude <= maxLat && w.Longitude >= minLng && w.Longitude <= maxLng {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f fakeWorkers) SetBankAccount(_ context.Context, workerID uuid.UUID, bankCode, accountNumber, accountName string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	w, ok := f.db.workers[workerID]
	if !ok {
		return database.ErrNotFound
	}
	w.BankCode, w.AccountNumber, w.AccountName, w.RecipientCode = &bankCode, &accountNumber, &accountName, nil
	return nil
}

func (f fakeWorkers) SetRecipientCode(_ context.Context, workerID uuid.UUID, code string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if w, ok := f.db.workers[workerID]; ok {
		w.RecipientCode = &code
	}
	return nil
}

func (f fakeWorkers) SetVerified(_ context.Context, workerID uuid.UUID, verified bool) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if w, ok := f.db.workers[workerID]; ok {
		w.IsVerified = verified
		if verified {
			w.Status = models.WorkerApproved
		}
	}
	return nil
}

// payouts

type fakePayouts struct{ db *memDB }

func (f fakePayouts) Create(_ context.Context, p *models.WorkerPayout) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *p
	f.db.payouts[p.ID] = &cp
	return nil
}

func (f fakePayouts) Get(_ context.Context, id uuid.UUID) (*models.WorkerPayout, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.payouts[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f fakePayouts) GetByReference(_ context.Context, reference string) (*models.WorkerPayout, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.payouts {
		if p.Reference == reference {
			cp := *p
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f fakePayouts) ListForWorker(_ context.Context, workerID uuid.UUID) ([]models.WorkerPayout, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.WorkerPayout
	for _, p := range f.db.payouts {
		if p.WorkerID == workerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f fakePayouts) ReservedTotal(_ context.Context, workerID uuid.UUID) (decimal.Decimal, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	total := decimal.Zero
	for _, p := range f.db.payouts {
		if p.WorkerID == workerID && p.Status != models.PayoutFailed {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (f fakePayouts) SetTransfer(_ context.Context, id uuid.UUID, transferCode, recipientCode string, approvedBy uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.payouts[id]
	if !ok || p.Status != models.PayoutPending {
		return database.ErrConflict
	}
	p.TransferCode, p.RecipientCode, p.ApprovedBy = &transferCode, &recipientCode, &approvedBy
	return nil
}

func (f fakePayouts) MarkFailed(_ context.Context, id uuid.UUID, reason string, at time.Time) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.payouts[id]
	if !ok || p.Status != models.PayoutPending {
		return database.ErrConflict
	}
	p.Status, p.FailureReason, p.ProcessedAt = models.PayoutFailed, &reason, &at
	return nil
}

// reviews

type fakeReviews struct{ db *memDB }

func (f fakeReviews) CreateAndRate(_ context.Context, r *models.Review) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.reviews {
		if existing.BookingID == r.BookingID {
			return database.ErrConflict
		}
	}
	f.db.reviews = append(f.db.reviews, *r)
	return nil
}

func (f fakeReviews) ListForWorker(_ context.Context, workerID uuid.UUID) ([]models.Review, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.Review
	for _, r := range f.db.reviews {
		if r.WorkerID == workerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// consents

type fakeConsents struct{ db *memDB }

func (f fakeConsents) Create(_ context.Context, c *models.ConsentRecord) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.consents = append(f.db.consents, *c)
	return nil
}

func (f fakeConsents) ListForUser(_ context.Context, userID uuid.UUID) ([]models.ConsentRecord, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.ConsentRecord
	for _, c := range f.db.consents {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeConsents) RevokeActive(_ context.Context, userID uuid.UUID, consentType string, at time.Time) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for i := range f.db.consents {
		c := &f.db.consents[i]
		if c.UserID == userID && c.ConsentType == consentType && c.RevokedAt == nil {
			revoked := at
			c.RevokedAt = &revoked
			n++
		}
	}
	return n, nil
}

func (f fakeConsents) Active(_ context.Context, userID uuid.UUID, consentType string, now time.Time) (*models.ConsentRecord, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i := len(f.db.consents) - 1; i >= 0; i-- {
		c := f.db.consents[i]
		if c.UserID == userID && c.ConsentType == consentType && c.ActiveAt(now) {
			return &c, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f fakeConsents) UsersWithActive(_ context.Context, consentType string, now time.Time) ([]uuid.UUID, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, c := range f.db.consents {
		if c.ConsentType == consentType && c.ActiveAt(now) && !seen[c.UserID] {
			seen[c.UserID] = true
			out = append(out, c.UserID)
		}
	}
	return out, nil
}

// statements

type fakeStatements struct{ db *memDB }

func (f fakeStatements) FindByPeriod(_ context.Context, workerID uuid.UUID, period string) (*models.IncomeStatement, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, st := range f.db.statements {
		if st.WorkerID == workerID && st.Period == period {
			cp := *st
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f fakeStatements) Save(_ context.Context, st *models.IncomeStatement) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *st
	f.db.statements[st.ID] = &cp
	return nil
}

func (f fakeStatements) Get(_ context.Context, id uuid.UUID) (*models.IncomeStatement, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	st, ok := f.db.statements[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (f fakeStatements) ListForWorker(_ context.Context, workerID uuid.UUID) ([]models.IncomeStatement, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.IncomeStatement
	for _, st := range f.db.statements {
		if st.WorkerID == workerID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (f fakeStatements) SetPDFURL(_ context.Context, id uuid.UUID, url string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if st, ok := f.db.statements[id]; ok {
		st.PDFURL = &url
	}
	return nil
}

// documents

type fakeDocuments struct{ db *memDB }

func (f fakeDocuments) Create(_ context.Context, d *models.VerificationDocument) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	cp := *d
	f.db.documents[d.ID] = &cp
	return nil
}

func (f fakeDocuments) Get(_ context.Context, id uuid.UUID) (*models.VerificationDocument, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	d, ok := f.db.documents[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f fakeDocuments) ListForWorker(_ context.Context, workerID uuid.UUID) ([]models.VerificationDocument, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.VerificationDocument
	for _, d := range f.db.documents {
		if d.WorkerID == workerID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f fakeDocuments) ListByStatus(_ context.Context, status models.DocumentStatus) ([]models.VerificationDocument, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.VerificationDocument
	for _, d := range f.db.documents {
		if d.Status == status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f fakeDocuments) Review(_ context.Context, id uuid.UUID, status models.DocumentStatus, reviewer uuid.UUID, notes *string, at time.Time) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	d, ok := f.db.documents[id]
	if !ok || d.Status != models.DocumentPending {
		return database.ErrConflict
	}
	d.Status, d.ReviewedBy, d.ReviewerNotes, d.ReviewedAt = status, &reviewer, notes, &at
	return nil
}

// webhook audit

type fakeAudit struct{ db *memDB }

func (f fakeAudit) Record(_ context.Context, e *models.WebhookEvent) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.webhooks = append(f.db.webhooks, *e)
	return nil
}

func (f fakeAudit) SetError(_ context.Context, id uuid.UUID, reason string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for i := range f.db.webhooks {
		if f.db.webhooks[i].ID == id {
			f.db.webhooks[i].ProcessingError = &reason
		}
	}
	return nil
}

// gateway

type fakeGateway struct {
	mu          sync.Mutex
	secret      string
	initResult  payments.Result[payments.InitializeData]
	verify      map[string]payments.Result[payments.VerifyData]
	banks       payments.Result[[]payments.Bank]
	recipient   payments.Result[payments.RecipientData]
	transfer    payments.Result[payments.TransferData]
	initCalls   []payments.InitializeRequest
	verifyCalls int
	transfers   []payments.TransferRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		secret: "whsec_test",
		initResult: payments.Result[payments.InitializeData]{Status: true, Data: payments.InitializeData{
			AuthorizationURL: "https://checkout.paystack.com/xyz", AccessCode: "xyz",
		}},
		verify: map[string]payments.Result[payments.VerifyData]{},
	}
}

func (g *fakeGateway) InitializeTransaction(_ context.Context, req payments.InitializeRequest) payments.Result[payments.InitializeData] {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls = append(g.initCalls, req)
	res := g.initResult
	res.Data.Reference = req.Reference
	return res
}

func (g *fakeGateway) VerifyTransaction(_ context.Context, reference string) payments.Result[payments.VerifyData] {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	res, ok := g.verify[reference]
	if !ok {
		return payments.Result[payments.VerifyData]{Message: "Transaction reference not found"}
	}
	return res
}

func (g *fakeGateway) ListBanks(context.Context, string) payments.Result[[]payments.Bank] {
	return g.banks
}

func (g *fakeGateway) CreateTransferRecipient(context.Context, payments.RecipientRequest) payments.Result[payments.RecipientData] {
	return g.recipient
}

func (g *fakeGateway) InitiateTransfer(_ context.Context, req payments.TransferRequest) payments.Result[payments.TransferData] {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transfers = append(g.transfers, req)
	return g.transfer
}

func (g *fakeGateway) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	return payments.VerifySignature(g.secret, rawBody, signature)
}

func (g *fakeGateway) succeed(reference string, amountMinor int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verify[reference] = payments.Result[payments.VerifyData]{Status: true, Data: payments.VerifyData{
		Status: "success", Reference: reference, Amount: amountMinor, PaidAt: "2026-10-01T10:00:00Z",
	}}
}

func (g *fakeGateway) respond(reference, status string, amountMinor int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verify[reference] = payments.Result[payments.VerifyData]{Status: true, Data: payments.VerifyData{
		Status: status, Reference: reference, Amount: amountMinor,
	}}
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
