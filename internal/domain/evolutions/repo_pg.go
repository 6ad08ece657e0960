package evolutions

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

// RepoPG is the Postgres-backed evolution repository.
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

const evolutionCols = `id, appointment_id, professional_id, content, status,
	supervisor_id, supervisor_notes, created_at, updated_at`

func scanEvolution(row pgx.Row) (*Evolution, error) {
	var e Evolution
	err := row.Scan(&e.ID, &e.AppointmentID, &e.ProfessionalID, &e.Content,
		&e.Status, &e.SupervisorID, &e.SupervisorNotes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *RepoPG) Create(ctx context.Context, e *Evolution) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO evolutions (appointment_id, professional_id, content, status, supervisor_id, supervisor_notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		e.AppointmentID, e.ProfessionalID, e.Content, e.Status, e.SupervisorID, e.SupervisorNotes,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id int) (*Evolution, error) {
	row := r.conn(ctx).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM evolutions WHERE id = $1", evolutionCols), id)
	return scanEvolution(row)
}

func (r *RepoPG) Update(ctx context.Context, e *Evolution) error {
	return r.conn(ctx).QueryRow(ctx, `
		UPDATE evolutions
		SET content = $2, status = $3, supervisor_id = $4, supervisor_notes = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		e.ID, e.Content, e.Status, e.SupervisorID, e.SupervisorNotes,
	).Scan(&e.UpdatedAt)
}

func (r *RepoPG) Delete(ctx context.Context, id int) error {
	tag, err := r.conn(ctx).Exec(ctx, "DELETE FROM evolutions WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *RepoPG) List(ctx context.Context, filter Filter, limit, offset int) ([]*Evolution, int, error) {
	var (
		where []string
		args  []any
		idx   = 1
	)
	if filter.AppointmentID != nil {
		where = append(where, fmt.Sprintf("appointment_id = $%d", idx))
		args = append(args, *filter.AppointmentID)
		idx++
	}
	if filter.ProfessionalID != nil {
		where = append(where, fmt.Sprintf("professional_id = $%d", idx))
		args = append(args, *filter.ProfessionalID)
		idx++
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, *filter.Status)
		idx++
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, "SELECT count(*) FROM evolutions"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM evolutions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		evolutionCols, clause, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Evolution
	for rows.Next() {
		e, err := scanEvolution(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// UserIDForProfessional implements ProfessionalDirectory.
func (r *RepoPG) UserIDForProfessional(ctx context.Context, professionalID int) (int, error) {
	var userID int
	err := r.conn(ctx).QueryRow(ctx,
		"SELECT user_id FROM professionals WHERE id = $1", professionalID).Scan(&userID)
	return userID, err
}
