package repositories

import (
	"context"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
)

// ClinicRepository defines the interface for clinic data operations
type ClinicRepository interface {
	// Create creates a new clinic
	Create(ctx context.Context, clinic *entities.Clinic) error

	// GetByID retrieves a clinic by ID
	GetByID(ctx context.Context, id string) (*entities.Clinic, error)

	// GetByEmail retrieves a clinic by its unique email
	GetByEmail(ctx context.Context, email string) (*entities.Clinic, error)

	// Update updates a clinic
	Update(ctx context.Context, clinic *entities.Clinic) error

	// Delete deletes a clinic together with its services, reviews and hours
	Delete(ctx context.Context, id string) error

	// List retrieves clinics with filters. A zero Limit returns every match.
	List(ctx context.Context, filter ClinicFilter) ([]*entities.Clinic, error)
}

// ClinicFilter defines filters for listing clinics
type ClinicFilter struct {
	IDs           []string
	PriceRange    string
	EmergencyOnly bool
	MinRating     float64
	OrderBy       ClinicOrder
	Limit         int
	Offset        int
}

// ClinicOrder selects the ordering of List results
type ClinicOrder string

const (
	OrderByCreatedAt ClinicOrder = "created_at"
	OrderByRating    ClinicOrder = "rating"
	OrderByName      ClinicOrder = "name"
)
