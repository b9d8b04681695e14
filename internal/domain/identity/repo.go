package identity

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type EPSRepository interface {
	Create(ctx context.Context, e *EPS) error
	GetByID(ctx context.Context, id uuid.UUID) (*EPS, error)
	List(ctx context.Context, limit, offset int) ([]*EPS, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
