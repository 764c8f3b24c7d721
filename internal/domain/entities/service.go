package entities

import (
	"strings"
	"time"
)

// Service is one offered capability row belonging to a clinic
type Service struct {
	ID          string    `json:"id" db:"id"`
	ClinicID    string    `json:"clinic_id" db:"clinic_id"`
	Condition   string    `json:"condition,omitempty" db:"condition"`
	Equipment   string    `json:"equipment,omitempty" db:"equipment"`
	SpecialFood string    `json:"special_food,omitempty" db:"special_food"`
	HotelCats   bool      `json:"hotel_cats" db:"hotel_cats"`
	HotelDogs   bool      `json:"hotel_dogs" db:"hotel_dogs"`
	Grooming    bool      `json:"grooming" db:"grooming"`
	WildAnimals bool      `json:"wild_animals" db:"wild_animals"`
	Surgery     bool      `json:"surgery" db:"surgery"`
	Vaccination bool      `json:"vaccination" db:"vaccination"`
	DentalCare  bool      `json:"dental_care" db:"dental_care"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CapabilityFlag names one boolean capability a service row can declare
type CapabilityFlag string

const (
	FlagHotelCats   CapabilityFlag = "hotel_cats"
	FlagHotelDogs   CapabilityFlag = "hotel_dogs"
	FlagGrooming    CapabilityFlag = "grooming"
	FlagWildAnimals CapabilityFlag = "wild_animals"
	FlagSurgery     CapabilityFlag = "surgery"
	FlagVaccination CapabilityFlag = "vaccination"
	FlagDentalCare  CapabilityFlag = "dental_care"
)

// CapabilityFlags is the fixed dimension order used for similarity vectors
var CapabilityFlags = []CapabilityFlag{
	FlagHotelCats,
	FlagHotelDogs,
	FlagGrooming,
	FlagWildAnimals,
	FlagSurgery,
	FlagVaccination,
	FlagDentalCare,
}

// ParseCapabilityFlag accepts snake_case, kebab-case or spaced spellings
func ParseCapabilityFlag(s string) (CapabilityFlag, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	for _, f := range CapabilityFlags {
		if string(f) == normalized {
			return f, true
		}
	}
	return "", false
}

// HasCapability reports whether the row declares flag
func (s *Service) HasCapability(flag CapabilityFlag) bool {
	switch flag {
	case FlagHotelCats:
		return s.HotelCats
	case FlagHotelDogs:
		return s.HotelDogs
	case FlagGrooming:
		return s.Grooming
	case FlagWildAnimals:
		return s.WildAnimals
	case FlagSurgery:
		return s.Surgery
	case FlagVaccination:
		return s.Vaccination
	case FlagDentalCare:
		return s.DentalCare
	default:
		return false
	}
}

// SetCapability sets flag on the row; unknown flags are ignored
func (s *Service) SetCapability(flag CapabilityFlag, v bool) {
	switch flag {
	case FlagHotelCats:
		s.HotelCats = v
	case FlagHotelDogs:
		s.HotelDogs = v
	case FlagGrooming:
		s.Grooming = v
	case FlagWildAnimals:
		s.WildAnimals = v
	case FlagSurgery:
		s.Surgery = v
	case FlagVaccination:
		s.Vaccination = v
	case FlagDentalCare:
		s.DentalCare = v
	}
}
