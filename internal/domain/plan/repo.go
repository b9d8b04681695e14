package plan

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Plan, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Plan, int, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Plan, int, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Plan, int, error)
	ListExpired(ctx context.Context, today time.Time) ([]*Plan, error)
	ListExpiringSoon(ctx context.Context, today, until time.Time) ([]*Plan, error)
	ListOverlapping(ctx context.Context, qStart, qEnd time.Time) ([]*Plan, error)
	Update(ctx context.Context, p *Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
}
