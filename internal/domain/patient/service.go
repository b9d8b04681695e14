package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/domain/policy"
	"github.com/cliniq/cliniq/internal/platform/clinicerr"
	"github.com/cliniq/cliniq/pkg/dates"
)

// TxRunner executes fn as a single unit of work. Repository calls made
// through the context fn receives share one transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// UserDirectory is the slice of the identity package this service needs.
type UserDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// EPSDirectory reports whether an EPS provider is registered.
type EPSDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo   Repository
	users  UserDirectory
	eps    EPSDirectory
	limits policy.Limits
	inTx   TxRunner
}

func NewService(repo Repository, users UserDirectory, eps EPSDirectory, limits policy.Limits, inTx TxRunner) *Service {
	return &Service{repo: repo, users: users, eps: eps, limits: limits, inTx: inTx}
}

func (s *Service) CreateProfile(ctx context.Context, p *Patient) error {
	if p.UserID == uuid.Nil {
		return clinicerr.Validation("user_id", "is required")
	}
	if p.EPSID == uuid.Nil {
		return clinicerr.Validation("eps_id", "is required")
	}
	ok, err := s.users.Exists(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return clinicerr.NotFound("user", p.UserID.String())
	}
	ok, err = s.eps.Exists(ctx, p.EPSID)
	if err != nil {
		return err
	}
	if !ok {
		return clinicerr.NotFound("eps", p.EPSID.String())
	}
	if p.Points < 0 {
		return clinicerr.Validation("points", "must not be negative")
	}
	if p.Points > s.limits.MaxBalance {
		return clinicerr.BalanceCap(p.Points, s.limits.MaxBalance)
	}
	return s.repo.Create(ctx, p)
}

// UpdateProfileInput carries the editable profile fields. The balance is
// not among them; it only moves through Credit and Debit.
type UpdateProfileInput struct {
	EPSID *uuid.UUID `json:"eps_id"`
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.EPSID != nil {
		if *in.EPSID == uuid.Nil {
			return nil, clinicerr.Validation("eps_id", "is required")
		}
		ok, err := s.eps.Exists(ctx, *in.EPSID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, clinicerr.NotFound("eps", in.EPSID.String())
		}
		p.EPSID = *in.EPSID
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUser(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return s.repo.GetByUser(ctx, userID)
}

func (s *Service) ListByEPS(ctx context.Context, epsID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListByEPS(ctx, epsID, limit, offset)
}

// ListEligible returns patients whose balance can cover cost.
func (s *Service) ListEligible(ctx context.Context, cost int) ([]*Patient, error) {
	if cost < 0 {
		return nil, clinicerr.Validation("cost", "must not be negative")
	}
	return s.repo.ListByPointsAtLeast(ctx, cost)
}

// ListBelow returns patients with fewer than n points.
func (s *Service) ListBelow(ctx context.Context, n int) ([]*Patient, error) {
	if n < 0 {
		return nil, clinicerr.Validation("points", "must not be negative")
	}
	return s.repo.ListByPointsBelow(ctx, n)
}

func (s *Service) Balance(ctx context.Context, id uuid.UUID) (int, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Points, nil
}

func (s *Service) PointHistory(ctx context.Context, id uuid.UUID, limit, offset int) ([]*PointEntry, int, error) {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, clinicerr.NotFound("patient", id.String())
	}
	return s.repo.ListEntries(ctx, id, limit, offset)
}

// Credit adds amount to the patient balance. The cap is enforced against
// the balance read inside the unit of work, and the write only lands if
// nobody moved the balance in between.
func (s *Service) Credit(ctx context.Context, id uuid.UUID, amount int, reason string) error {
	if amount <= 0 {
		return clinicerr.Validation("amount", "must be positive")
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		next := p.Points + amount
		if next > s.limits.MaxBalance {
			return clinicerr.BalanceCap(next, s.limits.MaxBalance)
		}
		if err := s.repo.SetBalance(ctx, id, next, p.Version); err != nil {
			return err
		}
		return s.repo.AddEntry(ctx, &PointEntry{
			PatientID: id,
			Delta:     amount,
			Balance:   next,
			Reason:    reason,
		})
	})
}

// Debit subtracts amount from the patient balance. A balance that cannot
// cover the amount fails without writing anything.
func (s *Service) Debit(ctx context.Context, id uuid.UUID, amount int, reason string) error {
	if amount <= 0 {
		return clinicerr.Validation("amount", "must be positive")
	}
	return s.inTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Points < amount {
			return clinicerr.InsufficientBalance(amount, p.Points)
		}
		next := p.Points - amount
		if err := s.repo.SetBalance(ctx, id, next, p.Version); err != nil {
			return err
		}
		return s.repo.AddEntry(ctx, &PointEntry{
			PatientID: id,
			Delta:     -amount,
			Balance:   next,
			Reason:    reason,
		})
	})
}

// RecordVisit advances the visit streak. A visit the day after the last
// one extends the streak, a same-day visit is a no-op, anything else
// restarts at one.
func (s *Service) RecordVisit(ctx context.Context, id uuid.UUID, on time.Time) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	day := dates.Day(on)
	switch {
	case p.LastStreakDate == nil:
		p.StreakDays = 1
	case p.LastStreakDate.Equal(day):
		return p, nil
	case p.LastStreakDate.Equal(day.AddDate(0, 0, -1)):
		p.StreakDays++
	default:
		p.StreakDays = 1
	}
	p.LastStreakDate = &day
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
