package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/vetclinicdiscovery/internal/api/handlers"
	"github.com/zatekoja/vetclinicdiscovery/internal/application/services"
	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
	apperrors "github.com/zatekoja/vetclinicdiscovery/pkg/errors"
)

type stubClinicService struct {
	registered []*entities.Clinic
	listParams services.ListClinicsParams
	err        error
}

func (s *stubClinicService) Register(_ context.Context, clinic *entities.Clinic) error {
	if s.err != nil {
		return s.err
	}
	clinic.ID = "clinic-1"
	s.registered = append(s.registered, clinic)
	return nil
}

func (s *stubClinicService) GetByID(_ context.Context, id string) (*entities.Clinic, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entities.Clinic{ID: id, Name: "Happy Paws"}, nil
}

func (s *stubClinicService) Update(_ context.Context, id string, update entities.ClinicUpdate) (*entities.Clinic, error) {
	if s.err != nil {
		return nil, s.err
	}
	c := &entities.Clinic{ID: id}
	update.Apply(c)
	return c, nil
}

func (s *stubClinicService) Delete(_ context.Context, _ string) error {
	return s.err
}

func (s *stubClinicService) List(_ context.Context, params services.ListClinicsParams) ([]*entities.Clinic, error) {
	s.listParams = params
	if s.err != nil {
		return nil, s.err
	}
	return []*entities.Clinic{{ID: "a"}, {ID: "b"}}, nil
}

func (s *stubClinicService) AddService(_ context.Context, clinicID string, service *entities.Service) error {
	if s.err != nil {
		return s.err
	}
	service.ID = "svc-1"
	service.ClinicID = clinicID
	return nil
}

func (s *stubClinicService) ListServices(_ context.Context, clinicID string) ([]*entities.Service, error) {
	return []*entities.Service{{ID: "svc-1", ClinicID: clinicID}}, s.err
}

func (s *stubClinicService) AddWorkingHours(_ context.Context, _ string, _ *entities.WorkingHours) error {
	return s.err
}

func (s *stubClinicService) ListWorkingHours(_ context.Context, _ string) ([]*entities.WorkingHours, error) {
	return []*entities.WorkingHours{}, s.err
}

// serve routes a single request through a mux so path values are populated
func serve(pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestClinicHandler_Register(t *testing.T) {
	service := &stubClinicService{}
	handler := handlers.NewClinicHandler(service)

	body := `{"name":"Happy Paws","email":"info@happypaws.bg","phone":"+359 2 123 4567",
		"address":"12 Rakovski St","location_lat":42.69,"location_lon":23.33,"price_range":"med"}`
	req := httptest.NewRequest(http.MethodPost, "/api/clinics", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.RegisterClinic(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, service.registered, 1)
	require.NotNil(t, service.registered[0].Location)
	assert.Equal(t, 42.69, service.registered[0].Location.Latitude)
	assert.Equal(t, "clinic-1", decodeBody(t, w)["id"])
}

func TestClinicHandler_RegisterRejectsHalfLocation(t *testing.T) {
	handler := handlers.NewClinicHandler(&stubClinicService{})

	req := httptest.NewRequest(http.MethodPost, "/api/clinics", strings.NewReader(`{"name":"X","location_lat":1}`))
	w := httptest.NewRecorder()
	handler.RegisterClinic(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClinicHandler_RegisterInvalidJSON(t *testing.T) {
	handler := handlers.NewClinicHandler(&stubClinicService{})

	req := httptest.NewRequest(http.MethodPost, "/api/clinics", strings.NewReader(`{`))
	w := httptest.NewRecorder()
	handler.RegisterClinic(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request payload", decodeBody(t, w)["error"])
}

func TestClinicHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperrors.NewNotFoundError("clinic with id x not found"), http.StatusNotFound, "clinic with id x not found"},
		{apperrors.NewConflictError("clinic with email a@b.c already exists"), http.StatusConflict, "clinic with email a@b.c already exists"},
		{apperrors.NewValidationError("name must be between 2 and 255 characters"), http.StatusBadRequest, "name must be between 2 and 255 characters"},
		{apperrors.NewInternalError("failed to get clinic", errors.New("pq: password authentication failed")), http.StatusInternalServerError, "internal server error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		handler := handlers.NewClinicHandler(&stubClinicService{err: tc.err})
		req := httptest.NewRequest(http.MethodGet, "/api/clinics/x", nil)

		w := serve("GET /api/clinics/{id}", handler.GetClinic, req)

		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.message, decodeBody(t, w)["error"])
	}
}

func TestClinicHandler_GetUpdateDelete(t *testing.T) {
	handler := handlers.NewClinicHandler(&stubClinicService{})

	w := serve("GET /api/clinics/{id}", handler.GetClinic, httptest.NewRequest(http.MethodGet, "/api/clinics/c9", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c9", decodeBody(t, w)["id"])

	w = serve("PUT /api/clinics/{id}", handler.UpdateClinic,
		httptest.NewRequest(http.MethodPut, "/api/clinics/c9", strings.NewReader(`{"name":"Renamed"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", decodeBody(t, w)["name"])

	w = serve("DELETE /api/clinics/{id}", handler.DeleteClinic, httptest.NewRequest(http.MethodDelete, "/api/clinics/c9", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestClinicHandler_List(t *testing.T) {
	service := &stubClinicService{}
	handler := handlers.NewClinicHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/api/clinics?skip=10&limit=5&price_range=low&emergency_only=true", nil)
	w := httptest.NewRecorder()
	handler.ListClinics(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.ListClinicsParams{PriceRange: "low", EmergencyOnly: true, Offset: 10, Limit: 5}, service.listParams)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])

	req = httptest.NewRequest(http.MethodGet, "/api/clinics?limit=ten", nil)
	w = httptest.NewRecorder()
	handler.ListClinics(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClinicHandler_ServicesAndHours(t *testing.T) {
	handler := handlers.NewClinicHandler(&stubClinicService{})

	w := serve("POST /api/clinics/{id}/services", handler.AddService,
		httptest.NewRequest(http.MethodPost, "/api/clinics/c1/services", strings.NewReader(`{"condition":"dermatology","surgery":true}`)))
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "c1", body["clinic_id"])
	assert.Equal(t, true, body["surgery"])

	w = serve("GET /api/clinics/{id}/services", handler.ListServices, httptest.NewRequest(http.MethodGet, "/api/clinics/c1/services", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve("POST /api/clinics/{id}/working-hours", handler.AddWorkingHours,
		httptest.NewRequest(http.MethodPost, "/api/clinics/c1/working-hours", strings.NewReader(`{"day_of_week":"monday","open_time":"09:00","close_time":"17:00"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve("GET /api/clinics/{id}/working-hours", handler.ListWorkingHours, httptest.NewRequest(http.MethodGet, "/api/clinics/c1/working-hours", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", decodeBody(t, w)["clinic_id"])
}
