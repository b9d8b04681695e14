package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*Patient, error)
	ListByEPS(ctx context.Context, epsID uuid.UUID, limit, offset int) ([]*Patient, int, error)
	ListByPointsAtLeast(ctx context.Context, n int) ([]*Patient, error)
	ListByPointsBelow(ctx context.Context, n int) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// SetBalance writes a new balance if and only if the row still carries
	// expectedVersion, bumping the version. A stale version yields a
	// ConflictError. This is the only way the balance changes.
	SetBalance(ctx context.Context, id uuid.UUID, points, expectedVersion int) error

	AddEntry(ctx context.Context, e *PointEntry) error
	ListEntries(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PointEntry, int, error)
}
