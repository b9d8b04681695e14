package redemption

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

const redemptionCols = `id, patient_id, reward_id, points_spent, redeemed_at, status, created_at, updated_at`

func scanRedemption(row pgx.Row) (*Redemption, error) {
	var rd Redemption
	err := row.Scan(&rd.ID, &rd.PatientID, &rd.RewardID, &rd.PointsSpent,
		&rd.RedeemedAt, &rd.Status, &rd.CreatedAt, &rd.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("redemption", "")
	}
	return &rd, err
}

func collectRedemptions(rows pgx.Rows) ([]*Redemption, error) {
	var items []*Redemption
	for rows.Next() {
		rd, err := scanRedemption(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rd)
	}
	return items, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, rd *Redemption) error {
	rd.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO redemption (id, patient_id, reward_id, points_spent, redeemed_at, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rd.ID, rd.PatientID, rd.RewardID, rd.PointsSpent, rd.RedeemedAt, rd.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Redemption, error) {
	rd, err := scanRedemption(r.conn(ctx).QueryRow(ctx, `SELECT `+redemptionCols+` FROM redemption WHERE id = $1`, id))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("redemption", id.String())
	}
	return rd, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Redemption, int, error) {
	q := r.conn(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM redemption WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+redemptionCols+` FROM redemption WHERE patient_id = $1 ORDER BY redeemed_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectRedemptions(rows)
	return items, total, err
}

func (r *repoPG) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Redemption, int, error) {
	q := r.conn(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM redemption WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+redemptionCols+` FROM redemption WHERE status = $1 ORDER BY redeemed_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectRedemptions(rows)
	return items, total, err
}

func (r *repoPG) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Redemption, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+redemptionCols+` FROM redemption
		WHERE redeemed_at >= $1 AND redeemed_at < $2 ORDER BY redeemed_at ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRedemptions(rows)
}

func (r *repoPG) ListByPointsRange(ctx context.Context, min, max int) ([]*Redemption, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+redemptionCols+` FROM redemption
		WHERE points_spent BETWEEN $1 AND $2 ORDER BY points_spent ASC`, min, max)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRedemptions(rows)
}

func (r *repoPG) Update(ctx context.Context, rd *Redemption) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE redemption SET patient_id=$2, reward_id=$3, redeemed_at=$4, status=$5, updated_at=NOW()
		WHERE id = $1`,
		rd.ID, rd.PatientID, rd.RewardID, rd.RedeemedAt, rd.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("redemption", rd.ID.String())
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM redemption WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("redemption", id.String())
	}
	return nil
}
