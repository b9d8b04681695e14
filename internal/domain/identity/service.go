package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/platform/clinicerr"
)

var validRoles = map[string]bool{
	RoleAdmin: true, RoleDoctor: true, RolePatient: true, RoleEPS: true,
}

type Service struct {
	users   UserRepository
	doctors DoctorRepository
	eps     EPSRepository
}

func NewService(users UserRepository, doctors DoctorRepository, eps EPSRepository) *Service {
	return &Service{users: users, doctors: doctors, eps: eps}
}

// -- Users --

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	u.FullName = strings.TrimSpace(u.FullName)
	u.Role = strings.TrimSpace(strings.ToLower(u.Role))

	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return clinicerr.Validation("email", "must be a valid address")
	}
	if u.FullName == "" {
		return clinicerr.Validation("full_name", "must not be empty")
	}
	if !validRoles[u.Role] {
		return clinicerr.Validationf("role", "unknown role %q", u.Role)
	}
	u.Active = true
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// -- Doctors --

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.UserID == uuid.Nil {
		return clinicerr.Validation("user_id", "is required")
	}
	ok, err := s.users.Exists(ctx, d.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return clinicerr.NotFound("user", d.UserID.String())
	}
	d.Specialty = strings.TrimSpace(d.Specialty)
	d.LicenseNumber = strings.TrimSpace(d.LicenseNumber)
	if d.LicenseNumber == "" {
		return clinicerr.Validation("license_number", "must not be empty")
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

// -- EPS providers --

func (s *Service) CreateEPS(ctx context.Context, e *EPS) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Code = strings.TrimSpace(strings.ToUpper(e.Code))
	if e.Name == "" {
		return clinicerr.Validation("name", "must not be empty")
	}
	if e.Code == "" {
		return clinicerr.Validation("code", "must not be empty")
	}
	return s.eps.Create(ctx, e)
}

func (s *Service) GetEPS(ctx context.Context, id uuid.UUID) (*EPS, error) {
	return s.eps.GetByID(ctx, id)
}

func (s *Service) ListEPS(ctx context.Context, limit, offset int) ([]*EPS, int, error) {
	return s.eps.List(ctx, limit, offset)
}
