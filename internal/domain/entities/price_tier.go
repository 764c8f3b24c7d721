package entities

import "strings"

// PriceTier is the ordinal price classification of a clinic
type PriceTier int

const (
	PriceTierLow  PriceTier = 1
	PriceTierMed  PriceTier = 2
	PriceTierHigh PriceTier = 3
)

// ParsePriceTier maps a stored or requested price range to its ordinal.
// Unrecognised values, including the empty string, map to PriceTierMed.
func ParsePriceTier(s string) PriceTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "1", "$", "cheap":
		return PriceTierLow
	case "high", "3", "$$$", "expensive":
		return PriceTierHigh
	default:
		return PriceTierMed
	}
}

func (t PriceTier) String() string {
	switch t {
	case PriceTierLow:
		return "low"
	case PriceTierHigh:
		return "high"
	default:
		return "med"
	}
}
