package services_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/vetclinicdiscovery/internal/application/services"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
)

var sofia = geo.Point{Latitude: 42.70, Longitude: 23.32}

func TestWeightsSumToOne(t *testing.T) {
	sum := services.WeightDistance + services.WeightMatch + services.WeightRating + services.WeightPrice + services.WeightEmergency
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestComposeScore_Scenario(t *testing.T) {
	clinic := clinicAt("c1", "Vitosha Vet", 42.75, 23.32, func(c *entities.Clinic) {
		c.Rating = 4.5
		c.EmergencyService = true
	})
	req := &entities.RecommendationRequest{UserLocation: sofia, MaxDistanceKm: 50, PreferredPrice: "med"}

	b, ok := services.ComposeScore(clinic, req, services.MatchScores{Service: 1})
	require.True(t, ok)

	assert.Equal(t, "c1", b.ClinicID)
	assert.InDelta(t, 5.56, b.DistanceKm, 0.01)
	assert.InDelta(t, 88.88, b.DistanceScore, 0.01)
	assert.Equal(t, 100.0, b.ServiceMatchScore)
	assert.Equal(t, 90.0, b.RatingScore)
	assert.Equal(t, 100.0, b.PriceMatchScore)
	assert.Equal(t, 100.0, b.EmergencyScore)
	assert.InDelta(t, 94.66, b.TotalScore, 0.01)
	assert.Nil(t, b.EquipmentMatchScore)
	assert.Equal(t, clinic.Phone, b.Details.Phone)
	assert.True(t, b.Details.EmergencyService)
}

func TestComposeScore_DistanceBoundaries(t *testing.T) {
	here := clinicAt("c1", "Here", sofia.Latitude, sofia.Longitude)
	req := &entities.RecommendationRequest{UserLocation: sofia, MaxDistanceKm: 10}

	b, ok := services.ComposeScore(here, req, services.MatchScores{Service: 1})
	require.True(t, ok)
	assert.Equal(t, 100.0, b.DistanceScore)

	edge := clinicAt("c2", "Edge", 42.75, 23.32)
	req.MaxDistanceKm = geo.DistanceTo(sofia, edge.Location)
	b, ok = services.ComposeScore(edge, req, services.MatchScores{Service: 1})
	require.True(t, ok, "a clinic exactly at the cutoff stays eligible")
	assert.Equal(t, 0.0, b.DistanceScore)

	req.MaxDistanceKm -= 0.001
	_, ok = services.ComposeScore(edge, req, services.MatchScores{Service: 1})
	assert.False(t, ok)
}

func TestComposeScore_UnknownLocationIsIneligible(t *testing.T) {
	req := &entities.RecommendationRequest{UserLocation: sofia, MaxDistanceKm: 20000}

	noLocation := clinicAt("c1", "Nowhere", 0, 0, func(c *entities.Clinic) { c.Location = nil })
	_, ok := services.ComposeScore(noLocation, req, services.MatchScores{Service: 1})
	assert.False(t, ok)

	invalid := clinicAt("c2", "Broken", 95, 23.32)
	_, ok = services.ComposeScore(invalid, req, services.MatchScores{Service: 1})
	assert.False(t, ok)
}

func TestComposeScore_SplitModeReportsEquipment(t *testing.T) {
	clinic := clinicAt("c1", "Split", sofia.Latitude, sofia.Longitude)
	req := &entities.RecommendationRequest{UserLocation: sofia, MaxDistanceKm: 10}

	b, ok := services.ComposeScore(clinic, req, services.MatchScores{Service: 1, Equipment: ptr(0.5)})
	require.True(t, ok)

	require.NotNil(t, b.EquipmentMatchScore)
	assert.Equal(t, 50.0, *b.EquipmentMatchScore)
	assert.Equal(t, 100.0, b.ServiceMatchScore)
	// distance 1, match 0.75, unrated 0.5, price 1, emergency 1
	assert.InDelta(t, 82.5, b.TotalScore, 1e-9)
}

func TestRatingScore(t *testing.T) {
	assert.Equal(t, 0.5, services.RatingScore(&entities.Clinic{}))
	assert.Equal(t, 0.8, services.RatingScore(&entities.Clinic{Rating: 4}))
	assert.Equal(t, 1.0, services.RatingScore(&entities.Clinic{Rating: 5}))
}

func TestPriceScore(t *testing.T) {
	assert.Equal(t, 1.0, services.PriceScore("high", ""))
	assert.Equal(t, 1.0, services.PriceScore("low", "LOW"))
	assert.InDelta(t, 0.7, services.PriceScore("low", "med"), 1e-9)
	assert.InDelta(t, 0.4, services.PriceScore("low", "high"), 1e-9)
	assert.InDelta(t, 0.7, services.PriceScore("", "high"), 1e-9, "unknown tiers count as med")
}

func TestEmergencyScore(t *testing.T) {
	assert.Equal(t, 1.0, services.EmergencyScore(false, false))
	assert.Equal(t, 1.0, services.EmergencyScore(true, false))
	assert.Equal(t, 1.0, services.EmergencyScore(true, true))
	assert.Equal(t, 0.0, services.EmergencyScore(false, true))
}

func TestComposeScore_StaysWithinBounds(t *testing.T) {
	none, full, over := 0.0, 1.0, 1.7

	cases := []struct {
		name      string
		rating    float64
		price     string
		preferred string
		emergency bool
		needs     bool
		lat       float64
		match     services.MatchScores
	}{
		{name: "best case", rating: 5, price: "low", preferred: "low", emergency: true, needs: true, lat: sofia.Latitude, match: services.MatchScores{Service: 1}},
		{name: "widest price gap", rating: 3, price: "low", preferred: "high", lat: 42.72, match: services.MatchScores{Service: 0.5}},
		{name: "rating above scale", rating: 7, price: "high", preferred: "low", lat: 42.71, match: services.MatchScores{Service: 1.5}},
		{name: "unrated without services", price: "med", needs: true, lat: 42.77, match: services.MatchScores{Service: 0}},
		{name: "split mode no equipment", rating: 4, price: "med", preferred: "high", lat: 42.74, match: services.MatchScores{Service: 1, Equipment: &none}},
		{name: "split mode full", rating: 5, price: "high", preferred: "high", emergency: true, lat: sofia.Latitude, match: services.MatchScores{Service: 1, Equipment: &full}},
		{name: "split mode inflated", rating: 9, price: "low", emergency: true, needs: true, lat: sofia.Latitude, match: services.MatchScores{Service: 1.5, Equipment: &over}},
		{name: "negative match", rating: 1, price: "unknown", preferred: "med", needs: true, lat: 42.78, match: services.MatchScores{Service: -0.4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clinic := clinicAt("c1", tc.name, tc.lat, sofia.Longitude, func(c *entities.Clinic) {
				c.Rating = tc.rating
				c.PriceRange = tc.price
				c.EmergencyService = tc.emergency
			})
			req := &entities.RecommendationRequest{UserLocation: sofia, MaxDistanceKm: 10, PreferredPrice: tc.preferred, NeedsEmergency: tc.needs}

			b, ok := services.ComposeScore(clinic, req, tc.match)
			require.True(t, ok)

			for label, v := range map[string]float64{
				"total":     b.TotalScore,
				"distance":  b.DistanceScore,
				"service":   b.ServiceMatchScore,
				"rating":    b.RatingScore,
				"price":     b.PriceMatchScore,
				"emergency": b.EmergencyScore,
			} {
				assert.GreaterOrEqual(t, v, 0.0, label)
				assert.LessOrEqual(t, v, 100.0, label)
			}
			if b.EquipmentMatchScore != nil {
				assert.GreaterOrEqual(t, *b.EquipmentMatchScore, 0.0)
				assert.LessOrEqual(t, *b.EquipmentMatchScore, 100.0)
			}
		})
	}
}

func TestComposeScore_NonFiniteCutoffExcludes(t *testing.T) {
	here := clinicAt("c1", "Here", sofia.Latitude, sofia.Longitude)

	for _, cutoff := range []float64{math.NaN(), 0, -3} {
		req := &entities.RecommendationRequest{UserLocation: sofia, MaxDistanceKm: cutoff}
		_, ok := services.ComposeScore(here, req, services.MatchScores{Service: 1})
		assert.False(t, ok, "cutoff %v", cutoff)
	}
}
