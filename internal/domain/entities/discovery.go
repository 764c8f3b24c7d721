package entities

import "github.com/zatekoja/vetclinicdiscovery/pkg/geo"

// NearbyClinic is a clinic within a search radius
type NearbyClinic struct {
	ClinicID   string     `json:"clinic_id"`
	Name       string     `json:"name"`
	DistanceKm float64    `json:"distance_km"`
	Rating     float64    `json:"rating"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	PriceRange string     `json:"price_range"`
	Location   *geo.Point `json:"location,omitempty"`
}

// NearbyResult is the response of a radius search
type NearbyResult struct {
	UserLocation geo.Point      `json:"user_location"`
	RadiusKm     float64        `json:"radius_km"`
	Found        int            `json:"found"`
	Clinics      []NearbyClinic `json:"nearby_clinics"`
}

// PopularClinic is a clinic ranked by rating and review volume
type PopularClinic struct {
	ClinicID         string  `json:"clinic_id"`
	Name             string  `json:"name"`
	Rating           float64 `json:"rating"`
	ReviewCount      int     `json:"review_count"`
	PopularityScore  float64 `json:"popularity_score"`
	Phone            string  `json:"phone"`
	Address          string  `json:"address"`
	PriceRange       string  `json:"price_range"`
	EmergencyService bool    `json:"emergency_service"`
}

// ClinicSearchParams filters the service search
type ClinicSearchParams struct {
	Service       string
	EmergencyOnly bool
	MinRating     float64
}

// ClinicSearchResult is one clinic matched by the service search
type ClinicSearchResult struct {
	Clinic     *Clinic  `json:"clinic"`
	Services   []string `json:"services"`
	MatchScore float64  `json:"match_score"`
}
