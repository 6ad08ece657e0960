package reports

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

const reportCols = "id, name, description, parameters, created_by, created_at, updated_at"

func scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.Name, &rep.Description, &rep.Parameters,
		&rep.CreatedBy, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *RepoPG) Create(ctx context.Context, rep *Report) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO reports (name, description, parameters, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		rep.Name, rep.Description, rep.Parameters, rep.CreatedBy,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int) (*Report, error) {
	row := r.conn(ctx).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM reports WHERE id = $1", reportCols), id)
	return scanReport(row)
}

func (r *RepoPG) Delete(ctx context.Context, id int) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM reports WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, createdBy *int, limit, offset int) ([]*Report, int, error) {
	clause := ""
	var args []any
	if createdBy != nil {
		clause = " WHERE created_by = $1"
		args = append(args, *createdBy)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT count(*) FROM reports"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM reports%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		reportCols, clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rep)
	}
	return out, total, rows.Err()
}

// statsScope builds the shared WHERE clause for period-bounded appointment
// aggregates.
func statsScope(period Period, facilityID, professionalID *int) (string, []any) {
	where := []string{"start_time >= $1", "end_time <= $2"}
	args := []any{period.Start, period.End}
	idx := 3
	if facilityID != nil {
		where = append(where, fmt.Sprintf("facility_id = $%d", idx))
		args = append(args, *facilityID)
		idx++
	}
	if professionalID != nil {
		where = append(where, fmt.Sprintf("professional_id = $%d", idx))
		args = append(args, *professionalID)
	}
	return strings.Join(where, " AND "), args
}

func (r *RepoPG) ProfessionalHours(ctx context.Context, period Period, facilityID, professionalID *int) ([]*ProfessionalHours, error) {
	clause, args := statsScope(period, facilityID, professionalID)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT professional_id,
			SUM(EXTRACT(EPOCH FROM (end_time - start_time)) / 3600),
			SUM(CASE WHEN procedure_type = 'planning' THEN EXTRACT(EPOCH FROM (end_time - start_time)) / 3600 ELSE 0 END),
			SUM(CASE WHEN procedure_type = 'free_time' THEN EXTRACT(EPOCH FROM (end_time - start_time)) / 3600 ELSE 0 END)
		FROM appointments
		WHERE `+clause+`
		GROUP BY professional_id
		ORDER BY professional_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ProfessionalHours
	for rows.Next() {
		var h ProfessionalHours
		if err := rows.Scan(&h.ProfessionalID, &h.TotalHours, &h.PlanningHours, &h.FreeTimeHours); err != nil {
			return nil, err
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

func (r *RepoPG) AppointmentsByProcedure(ctx context.Context, period Period, facilityID, professionalID *int) ([]*ProcedureCount, error) {
	clause, args := statsScope(period, facilityID, professionalID)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT procedure_type, count(*)
		FROM appointments
		WHERE `+clause+`
		GROUP BY procedure_type
		ORDER BY procedure_type`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ProcedureCount
	for rows.Next() {
		var p ProcedureCount
		if err := rows.Scan(&p.ProcedureType, &p.Count); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *RepoPG) PatientsByFacility(ctx context.Context) ([]*FacilityPatients, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT facility_id, count(DISTINCT patient_id)
		FROM appointments
		GROUP BY facility_id
		ORDER BY facility_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FacilityPatients
	for rows.Next() {
		var f FacilityPatients
		if err := rows.Scan(&f.FacilityID, &f.Count); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
