package identity

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type UserRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepoPG(pool *pgxpool.Pool) *UserRepoPG {
	return &UserRepoPG{pool: pool}
}

func (r *UserRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const userCols = `id, username, password, email, full_name, role, facility_id, phone,
	profile_image_url, is_active, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.Username, &u.Password, &u.Email, &u.FullName, &u.Role,
		&u.FacilityID, &u.Phone, &u.ProfileImageURL, &u.IsActive, &u.LastLogin,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return &u, err
}

func (r *UserRepoPG) Create(ctx context.Context, user *User) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (username, password, email, full_name, role, facility_id, phone, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		user.Username, user.Password, user.Email, user.FullName, user.Role,
		user.FacilityID, user.Phone, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepoPG) GetByID(ctx context.Context, id int) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *UserRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1`, username))
}

func (r *UserRepoPG) Update(ctx context.Context, user *User) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE users
		SET email = $2, full_name = $3, role = $4, facility_id = $5, phone = $6,
		    profile_image_url = $7, is_active = $8, password = $9, updated_at = NOW()
		WHERE id = $1`,
		user.ID, user.Email, user.FullName, user.Role, user.FacilityID,
		user.Phone, user.ProfileImageURL, user.IsActive, user.Password,
	)
	return err
}

func (r *UserRepoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *UserRepoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+userCols+` FROM users ORDER BY full_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepoPG) TouchLastLogin(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

type ProfessionalRepoPG struct {
	pool *pgxpool.Pool
}

func NewProfessionalRepoPG(pool *pgxpool.Pool) *ProfessionalRepoPG {
	return &ProfessionalRepoPG{pool: pool}
}

func (r *ProfessionalRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const professionalCols = `id, user_id, professional_type, license_number, license_type,
	specialization, employment_type, hourly_rate, supervisor_id, facility_id, bio,
	is_active, created_at, updated_at`

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional
	err := row.Scan(
		&p.ID, &p.UserID, &p.ProfessionalType, &p.LicenseNumber, &p.LicenseType,
		&p.Specialization, &p.EmploymentType, &p.HourlyRate, &p.SupervisorID,
		&p.FacilityID, &p.Bio, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return &p, err
}

func (r *ProfessionalRepoPG) Create(ctx context.Context, p *Professional) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO professionals (user_id, professional_type, license_number, license_type,
			specialization, employment_type, hourly_rate, supervisor_id, facility_id, bio, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		p.UserID, p.ProfessionalType, p.LicenseNumber, p.LicenseType,
		p.Specialization, p.EmploymentType, p.HourlyRate, p.SupervisorID,
		p.FacilityID, p.Bio, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProfessionalRepoPG) GetByID(ctx context.Context, id int) (*Professional, error) {
	return scanProfessional(r.conn(ctx).QueryRow(ctx,
		`SELECT `+professionalCols+` FROM professionals WHERE id = $1`, id))
}

func (r *ProfessionalRepoPG) GetByUserID(ctx context.Context, userID int) (*Professional, error) {
	return scanProfessional(r.conn(ctx).QueryRow(ctx,
		`SELECT `+professionalCols+` FROM professionals WHERE user_id = $1`, userID))
}

func (r *ProfessionalRepoPG) Update(ctx context.Context, p *Professional) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE professionals
		SET professional_type = $2, license_number = $3, license_type = $4,
		    specialization = $5, employment_type = $6, hourly_rate = $7,
		    supervisor_id = $8, facility_id = $9, bio = $10, is_active = $11,
		    updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.ProfessionalType, p.LicenseNumber, p.LicenseType,
		p.Specialization, p.EmploymentType, p.HourlyRate, p.SupervisorID,
		p.FacilityID, p.Bio, p.IsActive,
	)
	return err
}

func (r *ProfessionalRepoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM professionals WHERE id = $1`, id)
	return err
}

func (r *ProfessionalRepoPG) List(ctx context.Context, limit, offset int) ([]*Professional, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM professionals`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+professionalCols+` FROM professionals ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var professionals []*Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, 0, err
		}
		professionals = append(professionals, p)
	}
	return professionals, total, rows.Err()
}

func (r *ProfessionalRepoPG) ListSupervisees(ctx context.Context, supervisorID int) ([]*Professional, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+professionalCols+` FROM professionals WHERE supervisor_id = $1 ORDER BY id`, supervisorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var professionals []*Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		professionals = append(professionals, p)
	}
	return professionals, rows.Err()
}
