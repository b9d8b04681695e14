package reward

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Reward) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reward, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Reward, int, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Reward, int, error)
	ListByPointsRange(ctx context.Context, min, max int) ([]*Reward, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*Reward, error)
	Update(ctx context.Context, r *Reward) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
