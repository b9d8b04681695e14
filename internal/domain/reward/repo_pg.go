package reward

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

const rewardCols = `id, provider_id, name, description, points_required, status, created_at, updated_at`

func scanReward(row pgx.Row) (*Reward, error) {
	var rw Reward
	err := row.Scan(&rw.ID, &rw.ProviderID, &rw.Name, &rw.Description,
		&rw.PointsRequired, &rw.Status, &rw.CreatedAt, &rw.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("reward", "")
	}
	return &rw, err
}

func collectRewards(rows pgx.Rows) ([]*Reward, error) {
	var items []*Reward
	for rows.Next() {
		rw, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rw)
	}
	return items, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, rw *Reward) error {
	rw.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reward (id, provider_id, name, description, points_required, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rw.ID, rw.ProviderID, rw.Name, rw.Description, rw.PointsRequired, rw.Status, rw.CreatedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Reward, error) {
	rw, err := scanReward(r.conn(ctx).QueryRow(ctx, `SELECT `+rewardCols+` FROM reward WHERE id = $1`, id))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("reward", id.String())
	}
	return rw, err
}

func (r *repoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*Reward, int, error) {
	q := r.conn(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM reward WHERE provider_id = $1`, providerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+rewardCols+` FROM reward WHERE provider_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectRewards(rows)
	return items, total, err
}

func (r *repoPG) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*Reward, int, error) {
	q := r.conn(ctx)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM reward WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+rewardCols+` FROM reward WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectRewards(rows)
	return items, total, err
}

func (r *repoPG) ListByPointsRange(ctx context.Context, min, max int) ([]*Reward, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+rewardCols+` FROM reward
		WHERE points_required BETWEEN $1 AND $2 ORDER BY points_required ASC`, min, max)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRewards(rows)
}

func (r *repoPG) ListByDateRange(ctx context.Context, from, to time.Time) ([]*Reward, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+rewardCols+` FROM reward
		WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRewards(rows)
}

func (r *repoPG) Update(ctx context.Context, rw *Reward) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE reward SET name=$2, description=$3, points_required=$4, status=$5, updated_at=NOW()
		WHERE id = $1`,
		rw.ID, rw.Name, rw.Description, rw.PointsRequired, rw.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("reward", rw.ID.String())
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM reward WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return clinicerr.NotFound("reward", id.String())
	}
	return nil
}

func (r *repoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reward WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
