package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. Points carries the loyalty balance;
// Version guards every balance write so concurrent debits cannot both
// observe the same pre-debit balance.
type Patient struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	EPSID          uuid.UUID  `db:"eps_id" json:"eps_id"`
	Points         int        `db:"points" json:"points"`
	StreakDays     int        `db:"streak_days" json:"streak_days"`
	LastStreakDate *time.Time `db:"last_streak_date" json:"last_streak_date,omitempty"`
	Version        int        `db:"version" json:"version"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// PointEntry maps to the point_entry table: the append-only record of every
// balance change. Entries are never updated or deleted; the running Balance
// column lets an auditor replay history without recomputation.
type PointEntry struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Delta     int       `db:"delta" json:"delta"`
	Balance   int       `db:"balance" json:"balance"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
