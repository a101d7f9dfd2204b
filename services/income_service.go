package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const periodLayout = "2006-01"

// StatementRenderer produces a hosted PDF for a statement and returns its URL.
type StatementRenderer interface {
	Render(ctx context.Context, st *models.IncomeStatement, workerName string) (string, error)
}

// ConsentChecker answers whether income data may be shared for a worker.
type ConsentChecker interface {
	HasActive(ctx context.Context, userID uuid.UUID, consentType string) (bool, error)
	UsersWithActive(ctx context.Context, consentType string) ([]uuid.UUID, error)
}

type IncomeService struct {
	transactions TransactionRepository
	statements   StatementRepository
	consents     ConsentChecker
	workers      WorkerRepository
	renderer     StatementRenderer
	currency     string
	now          func() time.Time
}

func NewIncomeService(transactions TransactionRepository, statements StatementRepository, consents ConsentChecker, workers WorkerRepository, renderer StatementRenderer, currency string) *IncomeService {
	return &IncomeService{
		transactions: transactions,
		statements:   statements,
		consents:     consents,
		workers:      workers,
		renderer:     renderer,
		currency:     currency,
		now:          time.Now,
	}
}

// VerificationHash is the SHA-256 hex digest of the statement's pipe-joined figures.
func VerificationHash(st *models.IncomeStatement) string {
	canonical := strings.Join([]string{
		st.ID.String(),
		st.WorkerID.String(),
		st.Period,
		strconv.Itoa(st.TransactionCount),
		st.GrossEarnings.StringFixed(2),
		st.PlatformFees.StringFixed(2),
		st.Currency,
	}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// PeriodBounds parses YYYY-MM into the half-open UTC month [start, end).
func PeriodBounds(period string) (time.Time, time.Time, error) {
	start, err := time.Parse(periodLayout, period)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
	return start, start.AddDate(0, 1, 0), nil
}

// Generate builds or refreshes the worker's statement for the month.
func (s *IncomeService) Generate(ctx context.Context, workerID uuid.UUID, period string) (*models.IncomeStatement, error) {
	start, end, err := PeriodBounds(period)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if start.After(now) {
		return nil, ErrInvalidPeriod
	}

	totals, err := s.transactions.CompletedTotals(ctx, workerID, start, end)
	if err != nil {
		return nil, err
	}

	st, err := s.statements.FindByPeriod(ctx, workerID, period)
	if errors.Is(err, database.ErrNotFound) {
		st = &models.IncomeStatement{ID: uuid.New(), WorkerID: workerID, Period: period}
	} else if err != nil {
		return nil, err
	}
	st.PeriodStart = start
	st.PeriodEnd = end
	st.TransactionCount = totals.Count
	st.GrossEarnings = totals.Gross.Round(2)
	st.PlatformFees = totals.PlatformFees.Round(2)
	st.Currency = s.currency
	st.GeneratedAt = now
	st.VerificationHash = VerificationHash(st)

	if err := s.statements.Save(ctx, st); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"worker_id": workerID, "period": period, "transactions": st.TransactionCount}).Info("income statement generated")

	s.renderPDF(ctx, st)
	return st, nil
}

func (s *IncomeService) renderPDF(ctx context.Context, st *models.IncomeStatement) {
	if s.renderer == nil {
		return
	}
	name := ""
	if profile, err := s.workers.Get(ctx, st.WorkerID); err == nil && profile.User != nil {
		name = profile.User.FullName
	}
	url, err := s.renderer.Render(ctx, st, name)
	if err != nil {
		log.WithError(err).WithField("statement_id", st.ID).Warn("failed to render statement pdf")
		return
	}
	if err := s.statements.SetPDFURL(ctx, st.ID, url); err != nil {
		log.WithError(err).WithField("statement_id", st.ID).Warn("failed to store statement pdf url")
		return
	}
	st.PDFURL = &url
}

func (s *IncomeService) List(ctx context.Context, workerID uuid.UUID) ([]models.IncomeStatement, error) {
	return s.statements.ListForWorker(ctx, workerID)
}

func (s *IncomeService) Get(ctx context.Context, workerID, id uuid.UUID) (*models.IncomeStatement, error) {
	st, err := s.statements.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.WorkerID != workerID {
		return nil, database.ErrNotFound
	}
	return st, nil
}

type VerificationResult struct {
	Valid     bool
	Statement *models.IncomeStatement
}

// PartnerVerify checks a statement hash on behalf of a financial partner. The worker must
// hold active income data sharing consent, otherwise nothing about the statement is disclosed.
func (s *IncomeService) PartnerVerify(ctx context.Context, statementID uuid.UUID, hash string) (VerificationResult, error) {
	st, err := s.statements.Get(ctx, statementID)
	if err != nil {
		return VerificationResult{}, err
	}
	shared, err := s.consents.HasActive(ctx, st.WorkerID, models.ConsentIncomeDataSharing)
	if err != nil {
		return VerificationResult{}, err
	}
	if !shared {
		return VerificationResult{}, ErrConsentRequired
	}

	expected := VerificationHash(st)
	valid := subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(hash)))) == 1 &&
		expected == st.VerificationHash
	if !valid {
		return VerificationResult{Valid: false}, nil
	}
	return VerificationResult{Valid: true, Statement: st}, nil
}

// GeneratePreviousMonth builds last month's statement for every worker sharing income data.
func (s *IncomeService) GeneratePreviousMonth(ctx context.Context) (int, error) {
	now := s.now().UTC()
	period := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0).Format(periodLayout)

	users, err := s.consents.UsersWithActive(ctx, models.ConsentIncomeDataSharing)
	if err != nil {
		return 0, err
	}
	generated := 0
	for _, id := range users {
		if _, err := s.workers.Get(ctx, id); err != nil {
			continue
		}
		if _, err := s.Generate(ctx, id, period); err != nil {
			log.WithError(err).WithFields(log.Fields{"worker_id": id, "period": period}).Error("failed to generate income statement")
			continue
		}
		generated++
	}
	return generated, nil
}
