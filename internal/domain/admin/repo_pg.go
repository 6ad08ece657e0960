package admin

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

func connFor(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}

type FacilityRepoPG struct {
	pool *pgxpool.Pool
}

func NewFacilityRepoPG(pool *pgxpool.Pool) *FacilityRepoPG {
	return &FacilityRepoPG{pool: pool}
}

const facilityCols = `id, name, address, city, state, zip_code, phone, email, cnpj,
	license_number, created_at, updated_at`

func scanFacility(row pgx.Row) (*Facility, error) {
	var f Facility
	err := row.Scan(
		&f.ID, &f.Name, &f.Address, &f.City, &f.State, &f.ZipCode,
		&f.Phone, &f.Email, &f.CNPJ, &f.LicenseNumber, &f.CreatedAt, &f.UpdatedAt,
	)
	return &f, err
}

func (r *FacilityRepoPG) Create(ctx context.Context, f *Facility) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO facilities (name, address, city, state, zip_code, phone, email, cnpj, license_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		f.Name, f.Address, f.City, f.State, f.ZipCode, f.Phone, f.Email, f.CNPJ, f.LicenseNumber,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

func (r *FacilityRepoPG) GetByID(ctx context.Context, id int) (*Facility, error) {
	return scanFacility(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+facilityCols+` FROM facilities WHERE id = $1`, id))
}

func (r *FacilityRepoPG) Update(ctx context.Context, f *Facility) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE facilities
		SET name = $2, address = $3, city = $4, state = $5, zip_code = $6,
		    phone = $7, email = $8, cnpj = $9, license_number = $10, updated_at = NOW()
		WHERE id = $1`,
		f.ID, f.Name, f.Address, f.City, f.State, f.ZipCode, f.Phone, f.Email, f.CNPJ, f.LicenseNumber,
	)
	return err
}

func (r *FacilityRepoPG) Delete(ctx context.Context, id int) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	return err
}

func (r *FacilityRepoPG) List(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	var total int
	if err := connFor(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM facilities`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := connFor(ctx, r.pool).Query(ctx,
		`SELECT `+facilityCols+` FROM facilities ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var facilities []*Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, 0, err
		}
		facilities = append(facilities, f)
	}
	return facilities, total, rows.Err()
}

type RoomRepoPG struct {
	pool *pgxpool.Pool
}

func NewRoomRepoPG(pool *pgxpool.Pool) *RoomRepoPG {
	return &RoomRepoPG{pool: pool}
}

const roomCols = `id, name, facility_id, capacity, description, is_active, created_at, updated_at`

func scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	err := row.Scan(
		&rm.ID, &rm.Name, &rm.FacilityID, &rm.Capacity, &rm.Description,
		&rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt,
	)
	return &rm, err
}

func (r *RoomRepoPG) Create(ctx context.Context, rm *Room) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO rooms (name, facility_id, capacity, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		rm.Name, rm.FacilityID, rm.Capacity, rm.Description, rm.IsActive,
	).Scan(&rm.ID, &rm.CreatedAt, &rm.UpdatedAt)
}

func (r *RoomRepoPG) GetByID(ctx context.Context, id int) (*Room, error) {
	return scanRoom(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+roomCols+` FROM rooms WHERE id = $1`, id))
}

func (r *RoomRepoPG) Update(ctx context.Context, rm *Room) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE rooms
		SET name = $2, facility_id = $3, capacity = $4, description = $5,
		    is_active = $6, updated_at = NOW()
		WHERE id = $1`,
		rm.ID, rm.Name, rm.FacilityID, rm.Capacity, rm.Description, rm.IsActive,
	)
	return err
}

func (r *RoomRepoPG) Delete(ctx context.Context, id int) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	return err
}

func (r *RoomRepoPG) List(ctx context.Context, limit, offset int) ([]*Room, int, error) {
	var total int
	if err := connFor(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := connFor(ctx, r.pool).Query(ctx,
		`SELECT `+roomCols+` FROM rooms ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, total, rows.Err()
}

func (r *RoomRepoPG) ListByFacility(ctx context.Context, facilityID int) ([]*Room, error) {
	rows, err := connFor(ctx, r.pool).Query(ctx,
		`SELECT `+roomCols+` FROM rooms WHERE facility_id = $1 ORDER BY name`, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}

type InsurancePlanRepoPG struct {
	pool *pgxpool.Pool
}

func NewInsurancePlanRepoPG(pool *pgxpool.Pool) *InsurancePlanRepoPG {
	return &InsurancePlanRepoPG{pool: pool}
}

const planCols = `id, name, provider, coverage_details, contact_info, created_at, updated_at`

func scanPlan(row pgx.Row) (*InsurancePlan, error) {
	var p InsurancePlan
	err := row.Scan(
		&p.ID, &p.Name, &p.Provider, &p.CoverageDetails, &p.ContactInfo,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return &p, err
}

func (r *InsurancePlanRepoPG) Create(ctx context.Context, p *InsurancePlan) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO insurance_plans (name, provider, coverage_details, contact_info)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Provider, p.CoverageDetails, p.ContactInfo,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *InsurancePlanRepoPG) GetByID(ctx context.Context, id int) (*InsurancePlan, error) {
	return scanPlan(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+planCols+` FROM insurance_plans WHERE id = $1`, id))
}

func (r *InsurancePlanRepoPG) Update(ctx context.Context, p *InsurancePlan) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `
		UPDATE insurance_plans
		SET name = $2, provider = $3, coverage_details = $4, contact_info = $5, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Provider, p.CoverageDetails, p.ContactInfo,
	)
	return err
}

func (r *InsurancePlanRepoPG) Delete(ctx context.Context, id int) error {
	_, err := connFor(ctx, r.pool).Exec(ctx, `DELETE FROM insurance_plans WHERE id = $1`, id)
	return err
}

func (r *InsurancePlanRepoPG) List(ctx context.Context, limit, offset int) ([]*InsurancePlan, int, error) {
	var total int
	if err := connFor(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM insurance_plans`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := connFor(ctx, r.pool).Query(ctx,
		`SELECT `+planCols+` FROM insurance_plans ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var plans []*InsurancePlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, p)
	}
	return plans, total, rows.Err()
}
