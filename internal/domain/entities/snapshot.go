package entities

import "time"

// SnapshotFormatVersion is bumped whenever the snapshot layout changes
const SnapshotFormatVersion = 1

// ClinicRecord bundles a clinic with everything that belongs to it
type ClinicRecord struct {
	Clinic       *Clinic         `json:"clinic"`
	Services     []*Service      `json:"services"`
	Reviews      []*Review       `json:"reviews"`
	WorkingHours []*WorkingHours `json:"working_hours"`
}

// Snapshot is a full export of the directory
type Snapshot struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Clinics    []ClinicRecord `json:"clinics"`
}

// ImportReport summarises a snapshot restore
type ImportReport struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
