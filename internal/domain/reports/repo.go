package reports

import "context"

// Repository persists saved report definitions.
type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id int) (*Report, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, createdBy *int, limit, offset int) ([]*Report, int, error)
}

// StatsRepository runs the aggregate queries behind generated reports. A nil
// facilityID or professionalID means no scoping on that column.
type StatsRepository interface {
	ProfessionalHours(ctx context.Context, period Period, facilityID, professionalID *int) ([]*ProfessionalHours, error)
	AppointmentsByProcedure(ctx context.Context, period Period, facilityID, professionalID *int) ([]*ProcedureCount, error)
	PatientsByFacility(ctx context.Context) ([]*FacilityPatients, error)
}
