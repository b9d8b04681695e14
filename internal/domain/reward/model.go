package reward

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
	StatusAvailable Status = "available"
	StatusDepleted  Status = "depleted"
)

// statusSynonyms maps the Spanish status labels still sent by older
// clients onto the stored forms.
var statusSynonyms = map[string]Status{
	"active":     StatusActive,
	"activo":     StatusActive,
	"inactive":   StatusInactive,
	"inactivo":   StatusInactive,
	"available":  StatusAvailable,
	"disponible": StatusAvailable,
	"depleted":   StatusDepleted,
	"agotado":    StatusDepleted,
}

// ParseStatus normalizes a raw status string to its stored form. The match
// is case-insensitive and accepts the Spanish labels.
func ParseStatus(raw string) (Status, error) {
	s, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", clinicerr.Validationf("status", "unknown status %q", raw)
	}
	return s, nil
}

type Reward struct {
	ID             uuid.UUID `json:"id"`
	ProviderID     uuid.UUID `json:"provider_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	PointsRequired int       `json:"points_required"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
