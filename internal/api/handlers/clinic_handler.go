package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/vetclinicdiscovery/internal/application/services"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	"github.com/zatekoja/vetclinicdiscovery/pkg/geo"
)

// ClinicService defines the directory operations used by the handler
type ClinicService interface {
	Register(ctx context.Context, clinic *entities.Clinic) error
	GetByID(ctx context.Context, id string) (*entities.Clinic, error)
	Update(ctx context.Context, id string, update entities.ClinicUpdate) (*entities.Clinic, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params services.ListClinicsParams) ([]*entities.Clinic, error)
	AddService(ctx context.Context, clinicID string, service *entities.Service) error
	ListServices(ctx context.Context, clinicID string) ([]*entities.Service, error)
	AddWorkingHours(ctx context.Context, clinicID string, hours *entities.WorkingHours) error
	ListWorkingHours(ctx context.Context, clinicID string) ([]*entities.WorkingHours, error)
}

// ClinicHandler handles clinic directory HTTP requests
type ClinicHandler struct {
	service ClinicService
}

// NewClinicHandler creates a new clinic handler
func NewClinicHandler(service ClinicService) *ClinicHandler {
	return &ClinicHandler{service: service}
}

type clinicRequest struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	Latitude         *float64 `json:"location_lat"`
	Longitude        *float64 `json:"location_lon"`
	PriceRange       string   `json:"price_range"`
	Description      string   `json:"description"`
	Website          string   `json:"website"`
	EmergencyService bool     `json:"emergency_service"`
	InpatientCare    bool     `json:"inpatient_care"`
	WildAnimals      bool     `json:"wild_animals"`
}

func (p clinicRequest) toEntity() *entities.Clinic {
	clinic := &entities.Clinic{
		Name:             p.Name,
		Email:            p.Email,
		Phone:            p.Phone,
		Address:          p.Address,
		PriceRange:       p.PriceRange,
		Description:      p.Description,
		Website:          p.Website,
		EmergencyService: p.EmergencyService,
		InpatientCare:    p.InpatientCare,
		WildAnimals:      p.WildAnimals,
	}
	if p.Latitude != nil && p.Longitude != nil {
		clinic.Location = &geo.Point{Latitude: *p.Latitude, Longitude: *p.Longitude}
	}
	return clinic
}

// RegisterClinic handles POST /api/clinics
func (h *ClinicHandler) RegisterClinic(w http.ResponseWriter, r *http.Request) {
	var payload clinicRequest
	if !decodeJSON(w, r, &payload) {
		return
	}
	if (payload.Latitude == nil) != (payload.Longitude == nil) {
		respondWithError(w, http.StatusBadRequest, "location_lat and location_lon must be set together")
		return
	}

	clinic := payload.toEntity()
	if err := h.service.Register(r.Context(), clinic); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, clinic)
}

// GetClinic handles GET /api/clinics/{id}
func (h *ClinicHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	clinic, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, clinic)
}

// UpdateClinic handles PUT /api/clinics/{id}
func (h *ClinicHandler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	var update entities.ClinicUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	clinic, err := h.service.Update(r.Context(), r.PathValue("id"), update)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, clinic)
}

// DeleteClinic handles DELETE /api/clinics/{id}
func (h *ClinicHandler) DeleteClinic(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListClinics handles GET /api/clinics
func (h *ClinicHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	params := services.ListClinicsParams{
		PriceRange:    q.get("price_range"),
		EmergencyOnly: q.getBool("emergency_only"),
		Offset:        q.getInt("skip", 0),
		Limit:         q.getInt("limit", 0),
	}
	if q.err != nil {
		respondWithAppError(w, r, q.err)
		return
	}

	clinics, err := h.service.List(r.Context(), params)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"clinics": clinics,
		"count":   len(clinics),
	})
}

// AddService handles POST /api/clinics/{id}/services
func (h *ClinicHandler) AddService(w http.ResponseWriter, r *http.Request) {
	var service entities.Service
	if !decodeJSON(w, r, &service) {
		return
	}

	if err := h.service.AddService(r.Context(), r.PathValue("id"), &service); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, &service)
}

// ListServices handles GET /api/clinics/{id}/services
func (h *ClinicHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rows, err := h.service.ListServices(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"clinic_id": id,
		"services":  rows,
	})
}

// AddWorkingHours handles POST /api/clinics/{id}/working-hours
func (h *ClinicHandler) AddWorkingHours(w http.ResponseWriter, r *http.Request) {
	var hours entities.WorkingHours
	if !decodeJSON(w, r, &hours) {
		return
	}

	if err := h.service.AddWorkingHours(r.Context(), r.PathValue("id"), &hours); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, &hours)
}

// ListWorkingHours handles GET /api/clinics/{id}/working-hours
func (h *ClinicHandler) ListWorkingHours(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	hours, err := h.service.ListWorkingHours(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"clinic_id":     id,
		"working_hours": hours,
	})
}
