package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliniq/cliniq/internal/platform/clinicerr"
	"github.com/cliniq/cliniq/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, user_id, eps_id, points, streak_days, last_streak_date, version, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.EPSID, &p.Points, &p.StreakDays,
		&p.LastStreakDate, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("patient", "")
	}
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.Version = 1
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, user_id, eps_id, points, streak_days, last_streak_date, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.UserID, p.EPSID, p.Points, p.StreakDays, p.LastStreakDate, p.Version)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("patient", id.String())
	}
	return p, err
}

func (r *repoPG) GetByUser(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE user_id = $1`, userID))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("patient", userID.String())
	}
	return p, err
}

func (r *repoPG) ListByEPS(ctx context.Context, epsID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	q := r.conn(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM patient WHERE eps_id = $1`, epsID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+patientCols+` FROM patient WHERE eps_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		epsID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectPatients(rows)
	return items, total, err
}

func (r *repoPG) ListByPointsAtLeast(ctx context.Context, n int) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient WHERE points >= $1 ORDER BY points DESC`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

func (r *repoPG) ListByPointsBelow(ctx context.Context, n int) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patient WHERE points < $1 ORDER BY points ASC`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	// Profile fields only. The balance moves through SetBalance.
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET eps_id=$2, streak_days=$3, last_streak_date=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.EPSID, p.StreakDays, p.LastStreakDate)
	return err
}

func (r *repoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) SetBalance(ctx context.Context, id uuid.UUID, points, expectedVersion int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET points=$2, version=version+1, updated_at=NOW()
		WHERE id = $1 AND version = $3`,
		id, points, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the row vanished or someone else won the version race.
		exists, err := r.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return clinicerr.NotFound("patient", id.String())
		}
		return clinicerr.Conflict("patient balance changed concurrently")
	}
	return nil
}

func (r *repoPG) AddEntry(ctx context.Context, e *PointEntry) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO point_entry (id, patient_id, delta, balance, reason)
		VALUES ($1,$2,$3,$4,$5)`,
		e.ID, e.PatientID, e.Delta, e.Balance, e.Reason)
	return err
}

func (r *repoPG) ListEntries(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PointEntry, int, error) {
	q := r.conn(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM point_entry WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `
		SELECT id, patient_id, delta, balance, reason, created_at
		FROM point_entry WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PointEntry
	for rows.Next() {
		var e PointEntry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.Delta, &e.Balance, &e.Reason, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, &e)
	}
	return items, total, rows.Err()
}
