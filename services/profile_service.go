package services

import (
	"context"
	"strings"

	"github.com/domestiq/domestiq_api/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProfileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.WorkerProfile, error)
	Save(ctx context.Context, w *models.WorkerProfile) error
}

type WorkerProfileInput struct {
	Headline        *string
	Bio             *string
	Skills          []string
	HourlyRate      decimal.Decimal
	Latitude        float64
	Longitude       float64
	ServiceRadiusKm float64
}

type ProfileService struct {
	profiles ProfileRepository
}

func NewProfileService(profiles ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

func (s *ProfileService) Get(ctx context.Context, workerID uuid.UUID) (*models.WorkerProfile, error) {
	return s.profiles.Get(ctx, workerID)
}

// Update replaces the public profile fields. Bank details and review status are untouched.
func (s *ProfileService) Update(ctx context.Context, workerID uuid.UUID, in WorkerProfileInput) (*models.WorkerProfile, error) {
	if !in.HourlyRate.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if in.Latitude < -90 || in.Latitude > 90 || in.Longitude < -180 || in.Longitude > 180 || in.ServiceRadiusKm < 0 {
		return nil, ErrInvalidLocation
	}

	w, err := s.profiles.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}

	skills := make([]string, 0, len(in.Skills))
	for _, sk := range in.Skills {
		if sk = strings.ToLower(strings.TrimSpace(sk)); sk != "" {
			skills = append(skills, sk)
		}
	}

	w.Headline = in.Headline
	w.Bio = in.Bio
	w.Skills = strings.Join(skills, ",")
	w.HourlyRate = in.HourlyRate.Round(2)
	w.Latitude = in.Latitude
	w.Longitude = in.Longitude
	if in.ServiceRadiusKm > 0 {
		w.ServiceRadiusKm = in.ServiceRadiusKm
	}
	if err := s.profiles.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}
