package plan

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/domain/policy"
	"github.com/cliniq/cliniq/internal/platform/clinicerr"
	"github.com/cliniq/cliniq/pkg/dates"
)

// PatientDirectory reports whether a patient profile exists.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// DoctorDirectory reports whether a doctor is registered.
type DoctorDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	doctors  DoctorDirectory
	limits   policy.Limits
}

func NewService(repo Repository, patients PatientDirectory, doctors DoctorDirectory, limits policy.Limits) *Service {
	return &Service{repo: repo, patients: patients, doctors: doctors, limits: limits}
}

type CreateInput struct {
	PatientID   uuid.UUID `json:"patient_id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	Description string    `json:"description"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Status      string    `json:"status"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Plan, error) {
	ok, err := s.patients.Exists(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, clinicerr.NotFound("patient", in.PatientID.String())
	}
	ok, err = s.doctors.Exists(ctx, in.DoctorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, clinicerr.NotFound("doctor", in.DoctorID.String())
	}

	p := &Plan{
		PatientID:   in.PatientID,
		DoctorID:    in.DoctorID,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.validateDescription(p.Description); err != nil {
		return nil, err
	}

	start, err := dates.ParseDay(in.StartDate)
	if err != nil {
		return nil, clinicerr.Validationf("start_date", "not a valid date: %q", in.StartDate)
	}
	end, err := dates.ParseDay(in.EndDate)
	if err != nil {
		return nil, clinicerr.Validationf("end_date", "not a valid date: %q", in.EndDate)
	}
	if !start.Before(end) {
		return nil, clinicerr.Validation("start_date", "must be before end_date")
	}
	if start.Before(dates.Today()) {
		return nil, clinicerr.Validation("start_date", "must not be in the past")
	}
	p.StartDate, p.EndDate = start, end

	status := in.Status
	if status == "" {
		status = string(StatusActive)
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	p.Status = st

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) validateDescription(d string) error {
	if d == "" {
		return clinicerr.Validation("description", "must not be empty")
	}
	if utf8.RuneCountInString(d) > s.limits.MaxDescriptionLen {
		return clinicerr.Validationf("description", "must be at most %d characters", s.limits.MaxDescriptionLen)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Plan, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Plan, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, raw string, limit, offset int) ([]*Plan, int, error) {
	st, err := ParseStatus(raw)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByStatus(ctx, st, limit, offset)
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*Plan, int, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

// Expired lists active plans whose window already closed.
func (s *Service) Expired(ctx context.Context) ([]*Plan, error) {
	return s.repo.ListExpired(ctx, dates.Today())
}

// ExpiringSoon lists active plans ending within the next n days. n <= 0
// falls back to the configured lookahead.
func (s *Service) ExpiringSoon(ctx context.Context, n int) ([]*Plan, error) {
	if n <= 0 {
		n = s.limits.ExpiringSoonDays
	}
	today := dates.Today()
	return s.repo.ListExpiringSoon(ctx, today, today.AddDate(0, 0, n))
}

// Overlapping lists plans whose window intersects [qStart, qEnd].
func (s *Service) Overlapping(ctx context.Context, qStartRaw, qEndRaw string) ([]*Plan, error) {
	qStart, err := dates.ParseDay(qStartRaw)
	if err != nil {
		return nil, clinicerr.Validationf("start", "not a valid date: %q", qStartRaw)
	}
	qEnd, err := dates.ParseDay(qEndRaw)
	if err != nil {
		return nil, clinicerr.Validationf("end", "not a valid date: %q", qEndRaw)
	}
	if !qStart.Before(qEnd) {
		return nil, clinicerr.Validation("date_range", "start must be before end")
	}
	return s.repo.ListOverlapping(ctx, qStart, qEnd)
}

type UpdateInput struct {
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// Update applies a partial edit. A date edit re-checks start < end
// against the merged view, so changing one date never skips validation
// against the other.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if err := s.validateDescription(d); err != nil {
			return nil, err
		}
		p.Description = d
	}

	start, end := p.StartDate, p.EndDate
	if in.StartDate != nil {
		start, err = dates.ParseDay(*in.StartDate)
		if err != nil {
			return nil, clinicerr.Validationf("start_date", "not a valid date: %q", *in.StartDate)
		}
	}
	if in.EndDate != nil {
		end, err = dates.ParseDay(*in.EndDate)
		if err != nil {
			return nil, clinicerr.Validationf("end_date", "not a valid date: %q", *in.EndDate)
		}
	}
	if in.StartDate != nil || in.EndDate != nil {
		if !start.Before(end) {
			return nil, clinicerr.Validation("start_date", "must be before end_date")
		}
		p.StartDate, p.EndDate = start, end
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Activate moves a plan to active from any other status.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.transition(ctx, id, StatusActive, func(cur Status) error {
		if cur == StatusActive {
			return clinicerr.Conflict("plan is already active")
		}
		return nil
	})
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.transition(ctx, id, StatusInactive, func(cur Status) error {
		if cur != StatusActive {
			return clinicerr.Conflictf("only an active plan can be deactivated, currently %s", cur)
		}
		return nil
	})
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.transition(ctx, id, StatusCompleted, func(cur Status) error {
		if cur != StatusActive {
			return clinicerr.Conflictf("only an active plan can be completed, currently %s", cur)
		}
		return nil
	})
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.transition(ctx, id, StatusCancelled, func(cur Status) error {
		if cur != StatusActive && cur != StatusInactive {
			return clinicerr.Conflictf("a %s plan cannot be cancelled", cur)
		}
		return nil
	})
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status, guard func(cur Status) error) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(p.Status); err != nil {
		return nil, err
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
