package identity

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

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

const userCols = `id, email, full_name, role, active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("user", "")
	}
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO app_user (id, email, full_name, role, active)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Email, u.FullName, u.Role, u.Active)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE id = $1`, id))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("user", id.String())
	}
	return u, err
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE email = $1`, email))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("user", email)
	}
	return u, err
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE app_user SET email=$2, full_name=$3, role=$4, active=$5, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Email, u.FullName, u.Role, u.Active)
	return err
}

func (r *userRepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM app_user`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+userCols+` FROM app_user ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *userRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM app_user WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `id, user_id, specialty, license_number, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.Specialty, &d.LicenseNumber, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("doctor", "")
	}
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO doctor (id, user_id, specialty, license_number)
		VALUES ($1,$2,$3,$4)`,
		d.ID, d.UserID, d.Specialty, d.LicenseNumber)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("doctor", id.String())
	}
	return d, err
}

func (r *doctorRepoPG) GetByUser(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	d, err := scanDoctor(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE user_id = $1`, userID))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("doctor", userID.String())
	}
	return d, err
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+doctorCols+` FROM doctor ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *doctorRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM doctor WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// =========== EPS Repository ===========

type epsRepoPG struct{ pool *pgxpool.Pool }

func NewEPSRepoPG(pool *pgxpool.Pool) EPSRepository {
	return &epsRepoPG{pool: pool}
}

const epsCols = `id, name, code, contact_email, created_at, updated_at`

func scanEPS(row pgx.Row) (*EPS, error) {
	var e EPS
	err := row.Scan(&e.ID, &e.Name, &e.Code, &e.ContactEmail, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, clinicerr.NotFound("eps", "")
	}
	return &e, err
}

func (r *epsRepoPG) Create(ctx context.Context, e *EPS) error {
	e.ID = uuid.New()
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO eps (id, name, code, contact_email)
		VALUES ($1,$2,$3,$4)`,
		e.ID, e.Name, e.Code, e.ContactEmail)
	return err
}

func (r *epsRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*EPS, error) {
	e, err := scanEPS(conn(ctx, r.pool).QueryRow(ctx, `SELECT `+epsCols+` FROM eps WHERE id = $1`, id))
	if clinicerr.IsNotFound(err) {
		return nil, clinicerr.NotFound("eps", id.String())
	}
	return e, err
}

func (r *epsRepoPG) List(ctx context.Context, limit, offset int) ([]*EPS, int, error) {
	q := conn(ctx, r.pool)
	var total int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM eps`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+epsCols+` FROM eps ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*EPS
	for rows.Next() {
		e, err := scanEPS(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *epsRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM eps WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
