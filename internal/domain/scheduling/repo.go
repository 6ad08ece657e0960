package scheduling

import "context"

// Repository defines the persistence interface for appointments.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id int) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Appointment, int, error)
}
