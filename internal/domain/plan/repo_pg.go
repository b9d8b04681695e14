package plan

import (
	"context"
	"errors"
	"time"

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

const planCols = `id, patient_id, doctor_id, description, start_date, end_date, status, created_at, updated_at`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.Description,
		&p.StartDate, &p.EndDate, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("plan", "")
	}
	return &p, err
}

func collectPlans(rows pgx.Rows) ([]*Plan, error) {
	var items []*Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, p *Plan) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO plan (id, patient_id, doctor_id, description, start_date, end_date, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.PatientID, p.DoctorID, p.Description, p.StartDate, p.EndDate, p.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, err := scanPlan(r.conn(ctx).QueryRow(ctx, `SELECT `+planCols+` FROM plan WHERE id = $1`, id))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("plan", id.String())
	}
	return p, err
}

func (r *repoPG) listPage(ctx context.Context, where string, arg interface{}, limit, offset int) ([]*Plan, int, error) {
	q := r.conn(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM plan WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+planCols+` FROM plan WHERE `+where+` ORDER BY start_date DESC LIMIT $2 OFFSET $3`,
		arg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectPlans(rows)
	return items, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Plan, int, error) {
	return r.listPage(ctx, `patient_id = $1`, patientID, limit, offset)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Plan, int, error) {
	return r.listPage(ctx, `doctor_id = $1`, doctorID, limit, offset)
}

func (r *repoPG) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Plan, int, error) {
	return r.listPage(ctx, `status = $1`, status, limit, offset)
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Plan, int, error) {
	q := r.conn(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM plan`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+planCols+` FROM plan ORDER BY start_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectPlans(rows)
	return items, total, err
}

func (r *repoPG) ListExpired(ctx context.Context, today time.Time) ([]*Plan, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+planCols+` FROM plan
		WHERE end_date < $1 AND status = $2 ORDER BY end_date ASC`, today, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlans(rows)
}

func (r *repoPG) ListExpiringSoon(ctx context.Context, today, until time.Time) ([]*Plan, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+planCols+` FROM plan
		WHERE end_date >= $1 AND end_date <= $2 AND status = $3 ORDER BY end_date ASC`,
		today, until, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlans(rows)
}

func (r *repoPG) ListOverlapping(ctx context.Context, qStart, qEnd time.Time) ([]*Plan, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+planCols+` FROM plan
		WHERE start_date <= $2 AND end_date >= $1 ORDER BY start_date ASC`, qStart, qEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPlans(rows)
}

func (r *repoPG) Update(ctx context.Context, p *Plan) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE plan SET description=$2, start_date=$3, end_date=$4, status=$5, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Description, p.StartDate, p.EndDate, p.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("plan", p.ID.String())
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM plan WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("plan", id.String())
	}
	return nil
}
