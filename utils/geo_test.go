package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// Johannesburg to Pretoria is roughly 54km as the crow flies.
	d := HaversineKm(-26.2041, 28.0473, -25.7479, 28.2293)
	assert.InDelta(t, 54, d, 2)

	// Johannesburg to Cape Town is roughly 1260km.
	d = HaversineKm(-26.2041, 28.0473, -33.9249, 18.4241)
	assert.InDelta(t, 1262, d, 15)

	assert.Zero(t, HaversineKm(-26.2, 28.0, -26.2, 28.0))
}

func TestBoundingBoxContainsRadius(t *testing.T) {
	lat, lng, radius := -26.2041, 28.0473, 25.0
	minLat, maxLat, minLng, maxLng := BoundingBox(lat, lng, radius)

	assert.Less(t, minLat, lat)
	assert.Greater(t, maxLat, lat)
	assert.Less(t, minLng, lng)
	assert.Greater(t, maxLng, lng)

	// the edges of the box are at least radius away from the centre
	assert.GreaterOrEqual(t, HaversineKm(lat, lng, maxLat, lng), radius-0.01)
	assert.GreaterOrEqual(t, HaversineKm(lat, lng, lat, maxLng), radius-0.01)
}

func TestNewReference(t *testing.T) {
	a, b := NewReference("DIQ"), NewReference("DIQ")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "DIQ-"))
	assert.Len(t, strings.Split(a, "-"), 3)
}
