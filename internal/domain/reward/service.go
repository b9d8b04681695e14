package reward

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

// ProviderDirectory reports whether an EPS provider is registered.
type ProviderDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo      Repository
	providers ProviderDirectory
	limits    policy.Limits
}

func NewService(repo Repository, providers ProviderDirectory, limits policy.Limits) *Service {
	return &Service{repo: repo, providers: providers, limits: limits}
}

type CreateInput struct {
	ProviderID     uuid.UUID `json:"provider_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	PointsRequired int       `json:"points_required"`
	CreatedAt      string    `json:"created_at"`
	Status         string    `json:"status"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Reward, error) {
	if in.ProviderID == uuid.Nil {
		return nil, clinicerr.Validation("provider_id", "is required")
	}
	ok, err := s.providers.Exists(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, clinicerr.NotFound("eps", in.ProviderID.String())
	}

	rw := &Reward{
		ProviderID:     in.ProviderID,
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		PointsRequired: in.PointsRequired,
	}
	if err := s.validateFields(rw); err != nil {
		return nil, err
	}

	if in.CreatedAt == "" {
		rw.CreatedAt = dates.Today()
	} else {
		day, err := dates.ParseDay(in.CreatedAt)
		if err != nil {
			return nil, clinicerr.Validationf("created_at", "not a valid date: %q", in.CreatedAt)
		}
		rw.CreatedAt = day
	}

	status := in.Status
	if status == "" {
		status = string(StatusActive)
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	rw.Status = st

	if err := s.repo.Create(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

func (s *Service) validateFields(rw *Reward) error {
	if rw.Name == "" {
		return clinicerr.Validation("name", "must not be empty")
	}
	if utf8.RuneCountInString(rw.Name) > s.limits.MaxNameLen {
		return clinicerr.Validationf("name", "must be at most %d characters", s.limits.MaxNameLen)
	}
	if rw.Description == "" {
		return clinicerr.Validation("description", "must not be empty")
	}
	if utf8.RuneCountInString(rw.Description) > s.limits.MaxDescriptionLen {
		return clinicerr.Validationf("description", "must be at most %d characters", s.limits.MaxDescriptionLen)
	}
	if rw.PointsRequired <= 0 {
		return clinicerr.Validation("points_required", "must be positive")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reward, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Reward, int, error) {
	return s.repo.ListByProvider(ctx, providerID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, raw string, limit, offset int) ([]*Reward, int, error) {
	st, err := ParseStatus(raw)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByStatus(ctx, st, limit, offset)
}

// Available lists the rewards patients can redeem right now.
func (s *Service) Available(ctx context.Context, limit, offset int) ([]*Reward, int, error) {
	return s.repo.ListByStatus(ctx, StatusActive, limit, offset)
}

func (s *Service) ListByPointsRange(ctx context.Context, min, max int) ([]*Reward, error) {
	if min < 0 || max < 0 {
		return nil, clinicerr.Validation("points_range", "bounds must not be negative")
	}
	if min > max {
		return nil, clinicerr.Validationf("points_range", "min %d exceeds max %d", min, max)
	}
	return s.repo.ListByPointsRange(ctx, min, max)
}

func (s *Service) ListByDateRange(ctx context.Context, fromRaw, toRaw string) ([]*Reward, error) {
	from, err := dates.ParseDay(fromRaw)
	if err != nil {
		return nil, clinicerr.Validationf("from", "not a valid date: %q", fromRaw)
	}
	to, err := dates.ParseDay(toRaw)
	if err != nil {
		return nil, clinicerr.Validationf("to", "not a valid date: %q", toRaw)
	}
	if !from.Before(to) {
		return nil, clinicerr.Validation("date_range", "from must be before to")
	}
	return s.repo.ListByDateRange(ctx, from, to)
}

type UpdateInput struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	PointsRequired *int    `json:"points_required"`
}

// Update applies a partial edit. Provided fields go through the same
// checks creation runs; omitted fields stay as they are.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Reward, error) {
	rw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		rw.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		rw.Description = strings.TrimSpace(*in.Description)
	}
	if in.PointsRequired != nil {
		rw.PointsRequired = *in.PointsRequired
	}
	if err := s.validateFields(rw); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

// Activate moves a reward to active. A reward that is already active
// conflicts rather than silently succeeding.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*Reward, error) {
	return s.transition(ctx, id, StatusActive, func(cur Status) error {
		if cur == StatusActive {
			return clinicerr.Conflict("reward is already active")
		}
		return nil
	})
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Reward, error) {
	return s.transition(ctx, id, StatusInactive, func(cur Status) error {
		if cur == StatusInactive {
			return clinicerr.Conflict("reward is already inactive")
		}
		return nil
	})
}

// Deplete marks an active reward as out of stock.
func (s *Service) Deplete(ctx context.Context, id uuid.UUID) (*Reward, error) {
	return s.transition(ctx, id, StatusDepleted, func(cur Status) error {
		if cur != StatusActive {
			return clinicerr.Conflictf("only an active reward can be depleted, currently %s", cur)
		}
		return nil
	})
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status, guard func(cur Status) error) (*Reward, error) {
	rw, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guard(rw.Status); err != nil {
		return nil, err
	}
	rw.Status = to
	rw.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, rw); err != nil {
		return nil, err
	}
	return rw, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
