package documents

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

const documentCols = `id, name, file_url, file_type, file_size, description, category, status,
	patient_id, facility_id, evolution_id, appointment_id, uploaded_by, version,
	created_at, updated_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Name, &d.FileURL, &d.FileType, &d.FileSize, &d.Description,
		&d.Category, &d.Status, &d.PatientID, &d.FacilityID, &d.EvolutionID, &d.AppointmentID,
		&d.UploadedBy, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *RepoPG) Create(ctx context.Context, d *Document) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO documents (name, file_url, file_type, file_size, description, category, status,
			patient_id, facility_id, evolution_id, appointment_id, uploaded_by, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		d.Name, d.FileURL, d.FileType, d.FileSize, d.Description, d.Category, d.Status,
		d.PatientID, d.FacilityID, d.EvolutionID, d.AppointmentID, d.UploadedBy, d.Version,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int) (*Document, error) {
	row := r.conn(ctx).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM documents WHERE id = $1", documentCols), id)
	return scanDocument(row)
}

func (r *RepoPG) Update(ctx context.Context, d *Document) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE documents
		SET name = $2, description = $3, category = $4, status = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.Name, d.Description, d.Category, d.Status,
	).Scan(&d.UpdatedAt)
}

func (r *RepoPG) Delete(ctx context.Context, id int) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, filter Filter, limit, offset int) ([]*Document, int, error) {
	var (
		where []string
		args  []any
		idx   = 1
	)
	add := func(cond string, value any) {
		where = append(where, fmt.Sprintf(cond, idx))
		args = append(args, value)
		idx++
	}
	if filter.PatientID != nil {
		add("patient_id = $%d", *filter.PatientID)
	}
	if filter.FacilityID != nil {
		add("facility_id = $%d", *filter.FacilityID)
	}
	if filter.EvolutionID != nil {
		add("evolution_id = $%d", *filter.EvolutionID)
	}
	if filter.AppointmentID != nil {
		add("appointment_id = $%d", *filter.AppointmentID)
	}
	if filter.Category != nil {
		add("category = $%d", *filter.Category)
	}
	if filter.UploadedBy != nil {
		add("uploaded_by = $%d", *filter.UploadedBy)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT count(*) FROM documents"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM documents%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		documentCols, clause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}
