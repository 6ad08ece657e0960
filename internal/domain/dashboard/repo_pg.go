package dashboard

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

func (r *RepoPG) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *RepoPG) ActivePatients(ctx context.Context, facilityID *int) (int, error) {
	if facilityID != nil {
		return r.count(ctx, `
			SELECT count(DISTINCT p.id) FROM patients p
			JOIN appointments a ON a.patient_id = p.id
			WHERE p.is_active AND a.facility_id = $1`, *facilityID)
	}
	return r.count(ctx, "SELECT count(*) FROM patients WHERE is_active")
}

func (r *RepoPG) ActiveProfessionals(ctx context.Context, facilityID *int) (int, error) {
	if facilityID != nil {
		return r.count(ctx, `
			SELECT count(DISTINCT pr.id) FROM professionals pr
			JOIN appointments a ON a.professional_id = pr.id
			WHERE pr.is_active AND a.facility_id = $1`, *facilityID)
	}
	return r.count(ctx, "SELECT count(*) FROM professionals WHERE is_active")
}

func (r *RepoPG) AppointmentsToday(ctx context.Context, facilityID, professionalID *int) (int, error) {
	query := "SELECT count(*) FROM appointments WHERE start_time::date = current_date"
	var args []any
	if facilityID != nil {
		query += " AND facility_id = $1"
		args = append(args, *facilityID)
	} else if professionalID != nil {
		query += " AND professional_id = $1"
		args = append(args, *professionalID)
	}
	return r.count(ctx, query, args...)
}

func (r *RepoPG) PendingEvolutions(ctx context.Context, professionalID *int) (int, error) {
	if professionalID != nil {
		return r.count(ctx,
			"SELECT count(*) FROM evolutions WHERE status = 'pending' AND professional_id = $1",
			*professionalID)
	}
	return r.count(ctx, "SELECT count(*) FROM evolutions WHERE status = 'pending'")
}

func (r *RepoPG) UpcomingAppointments(ctx context.Context, facilityID, professionalID *int) (int, error) {
	query := "SELECT count(*) FROM appointments WHERE start_time > now() AND status IN ('scheduled', 'confirmed')"
	var args []any
	if facilityID != nil {
		query += " AND facility_id = $1"
		args = append(args, *facilityID)
	} else if professionalID != nil {
		query += " AND professional_id = $1"
		args = append(args, *professionalID)
	}
	return r.count(ctx, query, args...)
}

func (r *RepoPG) PatientsTreatedBy(ctx context.Context, professionalID int) (int, error) {
	return r.count(ctx,
		"SELECT count(DISTINCT patient_id) FROM appointments WHERE professional_id = $1",
		professionalID)
}
