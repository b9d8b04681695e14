package redemption

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/platform/clinicerr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusDelivered Status = "delivered"
)

var statusSynonyms = map[string]Status{
	"pending":   StatusPending,
	"pendiente": StatusPending,
	"approved":  StatusApproved,
	"aprobado":  StatusApproved,
	"rejected":  StatusRejected,
	"rechazado": StatusRejected,
	"delivered": StatusDelivered,
	"entregado": StatusDelivered,
}

// ParseStatus normalizes a raw status string, accepting the Spanish labels.
func ParseStatus(raw string) (Status, error) {
	s, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", clinicerr.Validationf("status", "unknown status %q", raw)
	}
	return s, nil
}

// Redemption records a points-for-reward exchange. PointsSpent is fixed at
// creation time; later edits touch status and date only, the ledger debit
// is never re-applied.
type Redemption struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patient_id"`
	RewardID    uuid.UUID `json:"reward_id"`
	PointsSpent int       `json:"points_spent"`
	RedeemedAt  time.Time `json:"redeemed_at"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
