package entities

import "time"

// Review is an append-only rating of a clinic
type Review struct {
	ID           string    `json:"id" db:"id"`
	ClinicID     string    `json:"clinic_id" db:"clinic_id"`
	Rating       int       `json:"rating" db:"rating"`
	PriceRating  *int      `json:"price_rating,omitempty" db:"price_rating"`
	Text         string    `json:"text" db:"text"`
	ReviewerName string    `json:"reviewer_name" db:"reviewer_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RatingSummary is a clinic's aggregate after a review insert
type RatingSummary struct {
	ClinicID      string  `json:"clinic_id"`
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}
