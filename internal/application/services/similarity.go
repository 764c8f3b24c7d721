package services

import (
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
)

const (
	WeightJaccard         = 0.7
	WeightPriceSimilarity = 0.3

	samePriceSimilarity      = 1.0
	differentPriceSimilarity = 0.5
)

// CapabilityVector holds one bit per entry of entities.CapabilityFlags; a bit
// is set when any of the clinic's service rows declares that flag.
type CapabilityVector [7]bool

// VectorFromServices folds a clinic's service rows into its capability vector
func VectorFromServices(services []*entities.Service) CapabilityVector {
	var v CapabilityVector
	for i, f := range entities.CapabilityFlags {
		for _, s := range services {
			if s.HasCapability(f) {
				v[i] = true
				break
			}
		}
	}
	return v
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when neither vector has a flag set
func Jaccard(a, b CapabilityVector) float64 {
	var inter, union int
	for i := range a {
		if a[i] && b[i] {
			inter++
		}
		if a[i] || b[i] {
			union++
		}
	}
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// PriceSimilarity is 1.0 for the same price tier and 0.5 otherwise
func PriceSimilarity(a, b string) float64 {
	if entities.ParsePriceTier(a) == entities.ParsePriceTier(b) {
		return samePriceSimilarity
	}
	return differentPriceSimilarity
}

// Similarity blends capability overlap and price tier on a 0-100 scale
func Similarity(ref, other CapabilityVector, refPrice, otherPrice string) float64 {
	return round2(100 * (WeightJaccard*Jaccard(ref, other) + WeightPriceSimilarity*PriceSimilarity(refPrice, otherPrice)))
}
