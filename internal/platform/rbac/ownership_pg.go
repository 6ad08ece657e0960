package rbac

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// OwnershipStorePG answers ownership questions against Postgres.
type OwnershipStorePG struct {
	pool *pgxpool.Pool
}

func NewOwnershipStorePG(pool *pgxpool.Pool) *OwnershipStorePG {
	return &OwnershipStorePG{pool: pool}
}

func (s *OwnershipStorePG) AppointmentProfessionalID(ctx context.Context, appointmentID int) (int, error) {
	var professionalID int
	err := s.pool.QueryRow(ctx,
		`SELECT professional_id FROM appointments WHERE id = $1`,
		appointmentID,
	).Scan(&professionalID)
	if err != nil {
		return 0, fmt.Errorf("appointment %d professional: %w", appointmentID, err)
	}
	return professionalID, nil
}

func (s *OwnershipStorePG) EvolutionProfessionalID(ctx context.Context, evolutionID int) (int, error) {
	var professionalID int
	err := s.pool.QueryRow(ctx,
		`SELECT professional_id FROM evolutions WHERE id = $1`,
		evolutionID,
	).Scan(&professionalID)
	if err != nil {
		return 0, fmt.Errorf("evolution %d professional: %w", evolutionID, err)
	}
	return professionalID, nil
}

func (s *OwnershipStorePG) PatientTreatedBy(ctx context.Context, patientID, professionalID int) (bool, error) {
	var treated bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
            SELECT 1 FROM appointments
            WHERE patient_id = $1 AND professional_id = $2
        )`,
		patientID, professionalID,
	).Scan(&treated)
	if err != nil {
		return false, fmt.Errorf("patient %d treated by %d: %w", patientID, professionalID, err)
	}
	return treated, nil
}
