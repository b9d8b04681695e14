package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/platform/clinicerr"
)

type mockUserRepo struct{ store map[uuid.UUID]*User }

func newMockUserRepo() *mockUserRepo { return &mockUserRepo{store: make(map[uuid.UUID]*User)} }
func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	m.store[u.ID] = u
	return nil
}
func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.store[id]
	if !ok {
		return nil, clinicerr.NotFound("user", id.String())
	}
	return u, nil
}
func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.store {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, clinicerr.NotFound("user", email)
}
func (m *mockUserRepo) Update(_ context.Context, u *User) error { m.store[u.ID] = u; return nil }
func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var r []*User
	for _, u := range m.store {
		r = append(r, u)
	}
	return r, len(r), nil
}
func (m *mockUserRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.store[id]
	return ok, nil
}

type mockDoctorRepo struct{ store map[uuid.UUID]*Doctor }

func newMockDoctorRepo() *mockDoctorRepo { return &mockDoctorRepo{store: make(map[uuid.UUID]*Doctor)} }
func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.store[d.ID] = d
	return nil
}
func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.store[id]
	if !ok {
		return nil, clinicerr.NotFound("doctor", id.String())
	}
	return d, nil
}
func (m *mockDoctorRepo) GetByUser(_ context.Context, userID uuid.UUID) (*Doctor, error) {
	for _, d := range m.store {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, clinicerr.NotFound("doctor", userID.String())
}
func (m *mockDoctorRepo) List(_ context.Context, limit, offset int) ([]*Doctor, int, error) {
	var r []*Doctor
	for _, d := range m.store {
		r = append(r, d)
	}
	return r, len(r), nil
}
func (m *mockDoctorRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.store[id]
	return ok, nil
}

type mockEPSRepo struct{ store map[uuid.UUID]*EPS }

func newMockEPSRepo() *mockEPSRepo { return &mockEPSRepo{store: make(map[uuid.UUID]*EPS)} }
func (m *mockEPSRepo) Create(_ context.Context, e *EPS) error {
	e.ID = uuid.New()
	m.store[e.ID] = e
	return nil
}
func (m *mockEPSRepo) GetByID(_ context.Context, id uuid.UUID) (*EPS, error) {
	e, ok := m.store[id]
	if !ok {
		return nil, clinicerr.NotFound("eps", id.String())
	}
	return e, nil
}
func (m *mockEPSRepo) List(_ context.Context, limit, offset int) ([]*EPS, int, error) {
	var r []*EPS
	for _, e := range m.store {
		r = append(r, e)
	}
	return r, len(r), nil
}
func (m *mockEPSRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.store[id]
	return ok, nil
}

func newTestService() *Service {
	return NewService(newMockUserRepo(), newMockDoctorRepo(), newMockEPSRepo())
}

func TestCreateUser_NormalizesFields(t *testing.T) {
	svc := newTestService()
	u := &User{Email: "  Ana@Clinic.CO ", FullName: " Ana Ruiz ", Role: "Doctor"}
	if err := svc.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "ana@clinic.co" || u.FullName != "Ana Ruiz" || u.Role != "doctor" {
		t.Errorf("fields not normalized: %+v", u)
	}
	if !u.Active {
		t.Error("new users should be active")
	}
}

func TestCreateUser_InvalidEmail(t *testing.T) {
	svc := newTestService()
	err := svc.CreateUser(context.Background(), &User{Email: "notanemail", FullName: "X", Role: "patient"})
	if !clinicerr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateUser_UnknownRole(t *testing.T) {
	svc := newTestService()
	err := svc.CreateUser(context.Background(), &User{Email: "a@b.co", FullName: "X", Role: "janitor"})
	if !clinicerr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateDoctor_RequiresExistingUser(t *testing.T) {
	svc := newTestService()
	err := svc.CreateDoctor(context.Background(), &Doctor{UserID: uuid.New(), LicenseNumber: "L-1"})
	if !clinicerr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCreateDoctor_Success(t *testing.T) {
	svc := newTestService()
	u := &User{Email: "doc@clinic.co", FullName: "Doc", Role: "doctor"}
	if err := svc.CreateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	d := &Doctor{UserID: u.ID, Specialty: "cardiology", LicenseNumber: "L-99"}
	if err := svc.CreateDoctor(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.GetDoctor(context.Background(), d.ID)
	if err != nil || got.LicenseNumber != "L-99" {
		t.Errorf("round trip failed: %v %+v", err, got)
	}
}

func TestCreateEPS_Validation(t *testing.T) {
	svc := newTestService()
	if err := svc.CreateEPS(context.Background(), &EPS{Name: "", Code: "SURA"}); !clinicerr.IsValidation(err) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}
	e := &EPS{Name: "Sura EPS", Code: "sura"}
	if err := svc.CreateEPS(context.Background(), e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Code != "SURA" {
		t.Errorf("expected upper-cased code, got %q", e.Code)
	}
}
