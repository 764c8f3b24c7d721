package services

import (
	"math"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
)

// Fixed component weights; they sum to 1.0
const (
	WeightDistance  = 0.30
	WeightMatch     = 0.30
	WeightRating    = 0.20
	WeightPrice     = 0.10
	WeightEmergency = 0.10

	unratedScore    = 0.5
	pricePenalty    = 0.3
	maxClinicRating = 5.0
)

// MatchScores carries the precomputed feature-match results for one clinic.
// Equipment is only set in split mode.
type MatchScores struct {
	Service   float64
	Equipment *float64
}

// combined returns the match term fed into the weighted total
func (m MatchScores) combined() float64 {
	if m.Equipment == nil {
		return clamp01(m.Service)
	}
	return clamp01((m.Service + *m.Equipment) / 2)
}

// ComposeScore scores one clinic for a request. It returns false when the
// clinic lies beyond req.MaxDistanceKm, including unknown or invalid coordinates.
func ComposeScore(clinic *entities.Clinic, req *entities.RecommendationRequest, match MatchScores) (entities.ScoreBreakdown, bool) {
	distance := geo.DistanceTo(req.UserLocation, clinic.Location)
	// written as !(<=) so a NaN cutoff excludes rather than admits
	if math.IsInf(distance, 1) || !(distance <= req.MaxDistanceKm) || req.MaxDistanceKm <= 0 {
		return entities.ScoreBreakdown{}, false
	}

	distanceScore := clamp01(1 - distance/req.MaxDistanceKm)
	matchScore := match.combined()
	ratingScore := RatingScore(clinic)
	priceScore := PriceScore(clinic.PriceRange, req.PreferredPrice)
	emergencyScore := EmergencyScore(clinic.EmergencyService, req.NeedsEmergency)

	total := 100 * (WeightDistance*distanceScore +
		WeightMatch*matchScore +
		WeightRating*ratingScore +
		WeightPrice*priceScore +
		WeightEmergency*emergencyScore)

	breakdown := entities.ScoreBreakdown{
		ClinicID:          clinic.ID,
		ClinicName:        clinic.Name,
		TotalScore:        round2(total),
		DistanceKm:        round2(distance),
		DistanceScore:     round2(distanceScore * 100),
		ServiceMatchScore: round2(clamp01(match.Service) * 100),
		RatingScore:       round2(ratingScore * 100),
		PriceMatchScore:   round2(priceScore * 100),
		EmergencyScore:    round2(emergencyScore * 100),
		Details: entities.ClinicDetails{
			Phone:            clinic.Phone,
			Address:          clinic.Address,
			Rating:           clinic.Rating,
			PriceRange:       clinic.PriceRange,
			EmergencyService: clinic.EmergencyService,
			Website:          clinic.Website,
			Location:         clinic.Location,
		},
	}
	if match.Equipment != nil {
		equipment := round2(clamp01(*match.Equipment) * 100)
		breakdown.EquipmentMatchScore = &equipment
	}

	return breakdown, true
}

// RatingScore normalizes the clinic rating to [0,1]; unrated clinics get a neutral 0.5
func RatingScore(clinic *entities.Clinic) float64 {
	if !clinic.HasRating() {
		return unratedScore
	}
	return clamp01(clinic.Rating / maxClinicRating)
}

// PriceScore is 1.0 without a preference and loses 0.3 per tier of difference
func PriceScore(clinicPrice, preferred string) float64 {
	if preferred == "" {
		return 1.0
	}
	diff := math.Abs(float64(entities.ParsePriceTier(clinicPrice) - entities.ParsePriceTier(preferred)))
	return clamp01(1 - pricePenalty*diff)
}

// EmergencyScore is binary when emergency care is needed, otherwise 1.0
func EmergencyScore(clinicHasEmergency, needsEmergency bool) float64 {
	if !needsEmergency || clinicHasEmergency {
		return 1.0
	}
	return 0.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
