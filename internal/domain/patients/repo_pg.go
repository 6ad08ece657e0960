package patients

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

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

func (r *RepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, full_name, date_of_birth, gender, cpf, address, city, state,
	zip_code, phone, email, emergency_contact, emergency_phone,
	guardian_name, guardian_phone, guardian_email, guardian_relationship,
	insurance_plan_id, insurance_number, diagnosis, notes, profile_image_url,
	is_active, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FullName, &p.DateOfBirth, &p.Gender, &p.CPF, &p.Address, &p.City,
		&p.State, &p.ZipCode, &p.Phone, &p.Email, &p.EmergencyContact, &p.EmergencyPhone,
		&p.GuardianName, &p.GuardianPhone, &p.GuardianEmail, &p.GuardianRelationship,
		&p.InsurancePlanID, &p.InsuranceNumber, &p.Diagnosis, &p.Notes, &p.ProfileImageURL,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return &p, err
}

func (r *RepoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (full_name, date_of_birth, gender, cpf, address, city, state,
			zip_code, phone, email, emergency_contact, emergency_phone,
			guardian_name, guardian_phone, guardian_email, guardian_relationship,
			insurance_plan_id, insurance_number, diagnosis, notes, profile_image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22)
		RETURNING id, created_at, updated_at`,
		p.FullName, p.DateOfBirth, p.Gender, p.CPF, p.Address, p.City, p.State,
		p.ZipCode, p.Phone, p.Email, p.EmergencyContact, p.EmergencyPhone,
		p.GuardianName, p.GuardianPhone, p.GuardianEmail, p.GuardianRelationship,
		p.InsurancePlanID, p.InsuranceNumber, p.Diagnosis, p.Notes, p.ProfileImageURL, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *RepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients
		SET full_name = $2, date_of_birth = $3, gender = $4, cpf = $5, address = $6,
		    city = $7, state = $8, zip_code = $9, phone = $10, email = $11,
		    emergency_contact = $12, emergency_phone = $13, guardian_name = $14,
		    guardian_phone = $15, guardian_email = $16, guardian_relationship = $17,
		    insurance_plan_id = $18, insurance_number = $19, diagnosis = $20,
		    notes = $21, profile_image_url = $22, is_active = $23, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.FullName, p.DateOfBirth, p.Gender, p.CPF, p.Address, p.City, p.State,
		p.ZipCode, p.Phone, p.Email, p.EmergencyContact, p.EmergencyPhone,
		p.GuardianName, p.GuardianPhone, p.GuardianEmail, p.GuardianRelationship,
		p.InsurancePlanID, p.InsuranceNumber, p.Diagnosis, p.Notes, p.ProfileImageURL, p.IsActive,
	)
	return err
}

func (r *RepoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	return err
}

func (r *RepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY full_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collect(rows, total)
}

func (r *RepoPG) Search(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + name + "%"

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE full_name ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients WHERE full_name ILIKE $1 ORDER BY full_name LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collect(rows, total)
}

func collect(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}
