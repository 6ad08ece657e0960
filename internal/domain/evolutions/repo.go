package evolutions

import "context"

// Repository defines the persistence interface for evolutions.
type Repository interface {
	Create(ctx context.Context, e *Evolution) error
	GetByID(ctx context.Context, id int) (*Evolution, error)
	Update(ctx context.Context, e *Evolution) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Evolution, int, error)
}

// ProfessionalDirectory resolves a professional record back to its user
// account, used to route notifications.
type ProfessionalDirectory interface {
	UserIDForProfessional(ctx context.Context, professionalID int) (int, error)
}
