package entities

import (
	"time"

	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
)

// Clinic represents a veterinary clinic in the directory
type Clinic struct {
	ID               string     `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	Email            string     `json:"email" db:"email"`
	Phone            string     `json:"phone" db:"phone"`
	Address          string     `json:"address" db:"address"`
	Location         *geo.Point `json:"location,omitempty" db:"-"`
	PriceRange       string     `json:"price_range" db:"price_range"`
	Rating           float64    `json:"rating" db:"rating"`
	ReviewCount      int        `json:"review_count" db:"review_count"`
	Description      string     `json:"description,omitempty" db:"description"`
	Website          string     `json:"website,omitempty" db:"website"`
	EmergencyService bool       `json:"emergency_service" db:"emergency_service"`
	InpatientCare    bool       `json:"inpatient_care" db:"inpatient_care"`
	WildAnimals      bool       `json:"wild_animals" db:"wild_animals"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// PriceTier returns the ordinal tier of the clinic's price range
func (c *Clinic) PriceTier() PriceTier {
	return ParsePriceTier(c.PriceRange)
}

// HasRating reports whether at least one review has set the aggregate rating
func (c *Clinic) HasRating() bool {
	return c.Rating > 0
}

// ClinicUpdate carries a partial update; nil fields are left untouched
type ClinicUpdate struct {
	Name             *string  `json:"name,omitempty"`
	Phone            *string  `json:"phone,omitempty"`
	Address          *string  `json:"address,omitempty"`
	Latitude         *float64 `json:"location_lat,omitempty"`
	Longitude        *float64 `json:"location_lon,omitempty"`
	PriceRange       *string  `json:"price_range,omitempty"`
	Description      *string  `json:"description,omitempty"`
	Website          *string  `json:"website,omitempty"`
	EmergencyService *bool    `json:"emergency_service,omitempty"`
	InpatientCare    *bool    `json:"inpatient_care,omitempty"`
	WildAnimals      *bool    `json:"wild_animals,omitempty"`
}

// Apply copies the set fields onto c
func (u ClinicUpdate) Apply(c *Clinic) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.Address != nil {
		c.Address = *u.Address
	}
	if u.Latitude != nil || u.Longitude != nil {
		loc := geo.Point{}
		if c.Location != nil {
			loc = *c.Location
		}
		if u.Latitude != nil {
			loc.Latitude = *u.Latitude
		}
		if u.Longitude != nil {
			loc.Longitude = *u.Longitude
		}
		c.Location = &loc
	}
	if u.PriceRange != nil {
		c.PriceRange = *u.PriceRange
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Website != nil {
		c.Website = *u.Website
	}
	if u.EmergencyService != nil {
		c.EmergencyService = *u.EmergencyService
	}
	if u.InpatientCare != nil {
		c.InpatientCare = *u.InpatientCare
	}
	if u.WildAnimals != nil {
		c.WildAnimals = *u.WildAnimals
	}
}
