package scheduling

import (
	"context"
	"fmt"
	"strings"

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

const appointmentCols = `id, patient_id, professional_id, room_id, facility_id,
	start_time, end_time, procedure_type, status, notes, created_by, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.ProfessionalID, &a.RoomID, &a.FacilityID,
		&a.StartTime, &a.EndTime, &a.ProcedureType, &a.Status, &a.Notes,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	return &a, err
}

func (r *RepoPG) Create(ctx context.Context, a *Appointment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, professional_id, room_id, facility_id,
			start_time, end_time, procedure_type, status, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.ProfessionalID, a.RoomID, a.FacilityID,
		a.StartTime, a.EndTime, a.ProcedureType, a.Status, a.Notes, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int) (*Appointment, error) {
	return scanAppointment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
}

func (r *RepoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments
		SET patient_id = $2, professional_id = $3, room_id = $4, facility_id = $5,
		    start_time = $6, end_time = $7, procedure_type = $8, status = $9,
		    notes = $10, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.PatientID, a.ProfessionalID, a.RoomID, a.FacilityID,
		a.StartTime, a.EndTime, a.ProcedureType, a.Status, a.Notes,
	)
	return err
}

func (r *RepoPG) Delete(ctx context.Context, id int) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}

func (r *RepoPG) List(ctx context.Context, filter Filter, limit, offset int) ([]*Appointment, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if filter.ProfessionalID != nil {
		where = append(where, fmt.Sprintf("professional_id = $%d", idx))
		args = append(args, *filter.ProfessionalID)
		idx++
	}
	if filter.PatientID != nil {
		where = append(where, fmt.Sprintf("patient_id = $%d", idx))
		args = append(args, *filter.PatientID)
		idx++
	}
	if filter.FacilityID != nil {
		where = append(where, fmt.Sprintf("facility_id = $%d", idx))
		args = append(args, *filter.FacilityID)
		idx++
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("start_time >= $%d", idx))
		args = append(args, *filter.From)
		idx++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("start_time <= $%d", idx))
		args = append(args, *filter.To)
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	countQ := fmt.Sprintf("SELECT COUNT(*) FROM appointments %s", whereClause)
	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf("SELECT %s FROM appointments %s ORDER BY start_time DESC LIMIT $%d OFFSET $%d",
		appointmentCols, whereClause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
