package redemption

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Redemption) error
	GetByID(ctx context.Context, id uuid.UUID) (*Redemption, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Redemption, int, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Redemption, int, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Redemption, error)
	ListByPointsRange(ctx context.Context, min, max int) ([]*Redemption, error)
	Update(ctx context.Context, r *Redemption) error
	Delete(ctx context.Context, id uuid.UUID) error
}
