package entities

import "github.com/zatekoja/vetclinicdiscovery/pkg/geo"

// MatchMode selects how service and equipment requirements feed the match score
type MatchMode string

const (
	// MatchModeCombined scores all requirements as one list
	MatchModeCombined MatchMode = "combined"
	// MatchModeSplit scores services and equipment separately and averages them
	MatchModeSplit MatchMode = "split"
)

// EmergencyPolicy selects how NeedsEmergency is applied
type EmergencyPolicy string

const (
	// EmergencyPolicySoft keeps non-emergency clinics and scores them 0 on the emergency term
	EmergencyPolicySoft EmergencyPolicy = "soft"
	// EmergencyPolicyHard drops non-emergency clinics before scoring
	EmergencyPolicyHard EmergencyPolicy = "hard"
)

// ServiceRequirement is one requested capability. Condition and Equipment are
// case-insensitive substrings; Flags are capabilities requested as true.
type ServiceRequirement struct {
	Condition string           `json:"condition,omitempty"`
	Equipment string           `json:"equipment,omitempty"`
	Flags     []CapabilityFlag `json:"flags,omitempty"`
}

// IsEmpty reports whether the descriptor requests nothing
func (r ServiceRequirement) IsEmpty() bool {
	return r.Condition == "" && r.Equipment == "" && len(r.Flags) == 0
}

// RecommendationRequest carries the requester's location and preferences
type RecommendationRequest struct {
	UserLocation       geo.Point            `json:"user_location"`
	RequiredServices   []ServiceRequirement `json:"required_services,omitempty"`
	RequiredEquipment  []string             `json:"required_equipment,omitempty"`
	PreferredPrice     string               `json:"preferred_price,omitempty"`
	NeedsEmergency     bool                 `json:"needs_emergency"`
	RequireInpatient   bool                 `json:"require_inpatient,omitempty"`
	RequireWildAnimals bool                 `json:"require_wild_animals,omitempty"`
	MinRating          *float64             `json:"min_rating,omitempty"`
	MaxDistanceKm      float64              `json:"max_distance_km"`
	TopN               int                  `json:"top_n"`
	MatchMode          MatchMode            `json:"match_mode,omitempty"`
	EmergencyPolicy    EmergencyPolicy      `json:"emergency_policy,omitempty"`
}

// ClinicDetails is the contact summary attached to a ranked clinic
type ClinicDetails struct {
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	Rating           float64    `json:"rating"`
	PriceRange       string     `json:"price_range"`
	EmergencyService bool       `json:"emergency_service"`
	Website          string     `json:"website,omitempty"`
	Location         *geo.Point `json:"location,omitempty"`
}

// ScoreBreakdown explains one clinic's rank. Scores are on a 0-100 scale.
type ScoreBreakdown struct {
	ClinicID            string        `json:"clinic_id"`
	ClinicName          string        `json:"clinic_name"`
	TotalScore          float64       `json:"total_score"`
	DistanceKm          float64       `json:"distance_km"`
	DistanceScore       float64       `json:"distance_score"`
	ServiceMatchScore   float64       `json:"service_match_score"`
	EquipmentMatchScore *float64      `json:"equipment_match_score,omitempty"`
	RatingScore         float64       `json:"rating_score"`
	PriceMatchScore     float64       `json:"price_match_score"`
	EmergencyScore      float64       `json:"emergency_score"`
	Details             ClinicDetails `json:"clinic_details"`
}

// RecommendationFilters echoes the effective filters back to the caller
type RecommendationFilters struct {
	RequiredServices  []ServiceRequirement `json:"required_services"`
	RequiredEquipment []string             `json:"required_equipment"`
	PreferredPrice    string               `json:"preferred_price"`
	NeedsEmergency    bool                 `json:"needs_emergency"`
	MinRating         *float64             `json:"min_rating,omitempty"`
	MaxDistanceKm     float64              `json:"max_distance_km"`
	MatchMode         MatchMode            `json:"match_mode"`
	EmergencyPolicy   EmergencyPolicy      `json:"emergency_policy"`
}

// RecommendationResult is the ranked response. StoreEmpty distinguishes an
// empty directory from a query that filtered every clinic out.
type RecommendationResult struct {
	StoreEmpty      bool                  `json:"store_empty"`
	Message         string                `json:"message,omitempty"`
	TotalFound      int                   `json:"total_found"`
	ShowingTop      int                   `json:"showing_top"`
	UserLocation    geo.Point             `json:"user_location"`
	Filters         RecommendationFilters `json:"filters"`
	Recommendations []ScoreBreakdown      `json:"recommendations"`
}

// SimilarClinic is one entry of a similar-clinics response
type SimilarClinic struct {
	ClinicID        string  `json:"clinic_id"`
	Name            string  `json:"name"`
	SimilarityScore float64 `json:"similarity_score"`
	Rating          float64 `json:"rating"`
	PriceRange      string  `json:"price_range"`
	Phone           string  `json:"phone"`
	Address         string  `json:"address"`
}

// SimilarClinicsResult lists the clinics most like a reference clinic
type SimilarClinicsResult struct {
	ReferenceClinicID   string          `json:"reference_clinic_id"`
	ReferenceClinicName string          `json:"reference_clinic_name"`
	Similar             []SimilarClinic `json:"similar"`
}
