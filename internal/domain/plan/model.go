package plan

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/platform/clinicerr"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var statusSynonyms = map[string]Status{
	"active":     StatusActive,
	"activo":     StatusActive,
	"inactive":   StatusInactive,
	"inactivo":   StatusInactive,
	"completed":  StatusCompleted,
	"completado": StatusCompleted,
	"cancelled":  StatusCancelled,
	"canceled":   StatusCancelled,
	"cancelado":  StatusCancelled,
}

// ParseStatus normalizes a raw status string, accepting the Spanish labels.
func ParseStatus(raw string) (Status, error) {
	s, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", clinicerr.Validationf("status", "unknown status %q", raw)
	}
	return s, nil
}

// Plan is a treatment plan a doctor prescribes for a patient over a date
// window. Dates are day-granular UTC midnights.
type Plan struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
