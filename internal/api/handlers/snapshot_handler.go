package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/zatekoja/vetclinicdiscovery/internal/domain/entities"
)

// SnapshotService defines the backup operations used by the handler
type SnapshotService interface {
	Export(ctx context.Context) (*entities.Snapshot, error)
	Import(ctx context.Context, snapshot *entities.Snapshot) (*entities.ImportReport, error)
}

// SnapshotHandler handles directory export and import
type SnapshotHandler struct {
	service SnapshotService
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(service SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{service: service}
}

// Export handles GET /api/admin/export
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Export(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	filename := fmt.Sprintf("clinics-%s.json", snapshot.ExportedAt.Format("20060102-150405"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	respondWithJSON(w, http.StatusOK, snapshot)
}

// Import handles POST /api/admin/import
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	var snapshot entities.Snapshot
	if !decodeJSON(w, r, &snapshot) {
		return
	}

	report, err := h.service.Import(r.Context(), &snapshot)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}
