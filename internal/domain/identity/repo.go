package identity

import "context"

// UserRepository defines the persistence interface for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	TouchLastLogin(ctx context.Context, id int) error
}

// ProfessionalRepository defines the persistence interface for professional
// profiles.
type ProfessionalRepository interface {
	Create(ctx context.Context, p *Professional) error
	GetByID(ctx context.Context, id int) (*Professional, error)
	GetByUserID(ctx context.Context, userID int) (*Professional, error)
	Update(ctx context.Context, p *Professional) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, limit, offset int) ([]*Professional, int, error)
	ListSupervisees(ctx context.Context, supervisorID int) ([]*Professional, error)
}
