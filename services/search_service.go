package services

import (
	"context"
	"math"
	"sort"

	"github.com/domestiq/domestiq_api/models"
	"github.com/domestiq/domestiq_api/utils"
)

const (
	DefaultSearchRadiusKm = 25.0
	MaxSearchRadiusKm     = 200.0
)

type WorkerMatch struct {
	Worker     models.WorkerProfile `json:"worker"`
	DistanceKm float64              `json:"distance_km"`
}

type SearchService struct {
	workers WorkerRepository
}

func NewSearchService(workers WorkerRepository) *SearchService {
	return &SearchService{workers: workers}
}

// Search returns approved workers within radiusKm of the point, nearest first.
func (s *SearchService) Search(ctx context.Context, lat, lng, radiusKm float64, skill string) ([]WorkerMatch, error) {
	if radiusKm == 0 {
		radiusKm = DefaultSearchRadiusKm
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || radiusKm < 0 || radiusKm > MaxSearchRadiusKm {
		return nil, ErrInvalidLocation
	}

	minLat, maxLat, minLng, maxLng := utils.BoundingBox(lat, lng, radiusKm)
	candidates, err := s.workers.SearchInBox(ctx, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}

	matches := make([]WorkerMatch, 0, len(candidates))
	for _, w := range candidates {
		if !w.HasSkill(skill) {
			continue
		}
		d := utils.HaversineKm(lat, lng, w.Latitude, w.Longitude)
		if d > radiusKm {
			continue
		}
		matches = append(matches, WorkerMatch{Worker: w, DistanceKm: math.Round(d*100) / 100})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].DistanceKm < matches[j].DistanceKm })
	return matches, nil
}
