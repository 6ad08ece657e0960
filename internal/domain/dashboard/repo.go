package dashboard

import "context"

// StatsRepository runs the counter queries. The facility-wide variants take
// an optional facility scope; the caseload variants are keyed by
// professional.
type StatsRepository interface {
	ActivePatients(ctx context.Context, facilityID *int) (int, error)
	ActiveProfessionals(ctx context.Context, facilityID *int) (int, error)
	AppointmentsToday(ctx context.Context, facilityID, professionalID *int) (int, error)
	PendingEvolutions(ctx context.Context, professionalID *int) (int, error)
	UpcomingAppointments(ctx context.Context, facilityID, professionalID *int) (int, error)
	PatientsTreatedBy(ctx context.Context, professionalID int) (int, error)
}
