package redemption

import (
	"context"

	"github.com/google/uuid"

	"github.com/cliniq/cliniq/internal/platform/clinicerr"
	"github.com/cliniq/cliniq/pkg/dates"
)

// TxRunner executes fn as a single unit of work. See db.RunInTx.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PatientLedger is the slice of the patient package this service needs:
// read a balance and take points off it. Debit enforces the balance floor
// and loses cleanly when a concurrent writer got there first.
type PatientLedger interface {
	Balance(ctx context.Context, patientID uuid.UUID) (int, error)
	Debit(ctx context.Context, patientID uuid.UUID, amount int, reason string) error
}

// RewardDirectory reports whether a reward exists.
type RewardDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo    Repository
	ledger  PatientLedger
	rewards RewardDirectory
	inTx    TxRunner
}

func NewService(repo Repository, ledger PatientLedger, rewards RewardDirectory, inTx TxRunner) *Service {
	return &Service{repo: repo, ledger: ledger, rewards: rewards, inTx: inTx}
}

type CreateInput struct {
	PatientID   uuid.UUID `json:"patient_id"`
	RewardID    uuid.UUID `json:"reward_id"`
	PointsSpent int       `json:"points_spent"`
	RedeemedAt  string    `json:"redeemed_at"`
	Status      string    `json:"status"`
}

// Create exchanges points for a reward. The debit and the record are one
// unit of work: the sufficiency check, the balance write and the insert
// either all commit or none do, and the version check on the balance
// write keeps a concurrent redemption from spending the same points.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Redemption, error) {
	rd := &Redemption{
		PatientID:   in.PatientID,
		RewardID:    in.RewardID,
		PointsSpent: in.PointsSpent,
	}

	err := s.inTx(ctx, func(ctx context.Context) error {
		balance, err := s.ledger.Balance(ctx, in.PatientID)
		if err != nil {
			return err
		}
		ok, err := s.rewards.Exists(ctx, in.RewardID)
		if err != nil {
			return err
		}
		if !ok {
			return clinicerr.NotFound("reward", in.RewardID.String())
		}
		if in.PointsSpent <= 0 {
			return clinicerr.Validation("points_spent", "must be positive")
		}
		if balance < in.PointsSpent {
			return clinicerr.InsufficientBalance(in.PointsSpent, balance)
		}

		if in.RedeemedAt == "" {
			rd.RedeemedAt = dates.Today()
		} else {
			day, err := dates.ParseDay(in.RedeemedAt)
			if err != nil {
				return clinicerr.Validationf("redeemed_at", "not a valid date: %q", in.RedeemedAt)
			}
			rd.RedeemedAt = day
		}

		status := in.Status
		if status == "" {
			status = string(StatusPending)
		}
		st, err := ParseStatus(status)
		if err != nil {
			return err
		}
		rd.Status = st

		if err := s.ledger.Debit(ctx, in.PatientID, in.PointsSpent, "reward redemption"); err != nil {
			return err
		}
		return s.repo.Create(ctx, rd)
	})
	if err != nil {
		return nil, err
	}
	return rd, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Redemption, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Redemption, int, error) {
	if _, err := s.ledger.Balance(ctx, patientID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, raw string, limit, offset int) ([]*Redemption, int, error) {
	st, err := ParseStatus(raw)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByStatus(ctx, st, limit, offset)
}

func (s *Service) ListByDateRange(ctx context.Context, fromRaw, toRaw string) ([]*Redemption, error) {
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

func (s *Service) ListByPointsRange(ctx context.Context, min, max int) ([]*Redemption, error) {
	if min < 0 || max < 0 {
		return nil, clinicerr.Validation("points_range", "bounds must not be negative")
	}
	if min > max {
		return nil, clinicerr.Validationf("points_range", "min %d exceeds max %d", min, max)
	}
	return s.repo.ListByPointsRange(ctx, min, max)
}

type UpdateInput struct {
	PatientID  *uuid.UUID `json:"patient_id"`
	RewardID   *uuid.UUID `json:"reward_id"`
	RedeemedAt *string    `json:"redeemed_at"`
	Status     *string    `json:"status"`
}

// Update edits the references, status and date. PointsSpent is history:
// it cannot change here, and repointing a reference moves the record
// only, never the points already debited.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Redemption, error) {
	rd, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.PatientID != nil {
		if _, err := s.ledger.Balance(ctx, *in.PatientID); err != nil {
			return nil, err
		}
		rd.PatientID = *in.PatientID
	}
	if in.RewardID != nil {
		ok, err := s.rewards.Exists(ctx, *in.RewardID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, clinicerr.NotFound("reward", in.RewardID.String())
		}
		rd.RewardID = *in.RewardID
	}
	if in.RedeemedAt != nil {
		day, err := dates.ParseDay(*in.RedeemedAt)
		if err != nil {
			return nil, clinicerr.Validationf("redeemed_at", "not a valid date: %q", *in.RedeemedAt)
		}
		rd.RedeemedAt = day
	}
	if in.Status != nil {
		st, err := ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		rd.Status = st
	}
	if err := s.repo.Update(ctx, rd); err != nil {
		return nil, err
	}
	return rd, nil
}

// Delete removes the record only. The points spent stay spent: there is
// no compensating credit.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
