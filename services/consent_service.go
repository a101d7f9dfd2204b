package services

import (
	"context"
	"errors"
	"time"

	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ConsentService struct {
	consents ConsentRepository
	now      func() time.Time
}

func NewConsentService(consents ConsentRepository) *ConsentService {
	return &ConsentService{consents: consents, now: time.Now}
}

func validConsentType(t string) bool {
	return t == models.ConsentIncomeDataSharing || t == models.ConsentMarketing
}

// Grant appends a new record. Earlier grants of the same type stay in the log untouched.
func (s *ConsentService) Grant(ctx context.Context, userID uuid.UUID, consentType string, partner *string, expiresAt *time.Time) (*models.ConsentRecord, error) {
	if !validConsentType(consentType) {
		return nil, ErrInvalidConsentType
	}
	now := s.now()
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, ErrInvalidPeriod
	}
	record := models.ConsentRecord{
		ID:          uuid.New(),
		UserID:      userID,
		ConsentType: consentType,
		PartnerName: partner,
		GrantedAt:   now,
		ExpiresAt:   expiresAt,
		Active:      true,
	}
	if err := s.consents.Create(ctx, &record); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": userID, "consent_type": consentType}).Info("consent granted")
	return &record, nil
}

// Revoke stamps revoked_at on every active grant of the type.
func (s *ConsentService) Revoke(ctx context.Context, userID uuid.UUID, consentType string) error {
	if !validConsentType(consentType) {
		return ErrInvalidConsentType
	}
	n, err := s.consents.RevokeActive(ctx, userID, consentType, s.now())
	if err != nil {
		return err
	}
	if n == 0 {
		return database.ErrNotFound
	}
	log.WithFields(log.Fields{"user_id": userID, "consent_type": consentType}).Info("consent revoked")
	return nil
}

// List returns the user's full consent log, newest first, with each record's Active flag set.
func (s *ConsentService) List(ctx context.Context, userID uuid.UUID) ([]models.ConsentRecord, error) {
	records, err := s.consents.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range records {
		records[i].Active = records[i].ActiveAt(now)
	}
	return records, nil
}

// UsersWithActive lists the users currently holding consent of the type.
func (s *ConsentService) UsersWithActive(ctx context.Context, consentType string) ([]uuid.UUID, error) {
	return s.consents.UsersWithActive(ctx, consentType, s.now())
}

func (s *ConsentService) HasActive(ctx context.Context, userID uuid.UUID, consentType string) (bool, error) {
	_, err := s.consents.Active(ctx, userID, consentType, s.now())
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
