package admin

import "context"

// FacilityRepository defines the persistence interface for facilities.
type FacilityRepository interface {
	Create(ctx context.Context, f *Facility) error
	GetByID(ctx context.Context, id int) (*Facility, error)
	Update(ctx context.Context, f *Facility) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, limit, offset int) ([]*Facility, int, error)
}

// RoomRepository defines the persistence interface for rooms.
type RoomRepository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id int) (*Room, error)
	Update(ctx context.Context, r *Room) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, limit, offset int) ([]*Room, int, error)
	ListByFacility(ctx context.Context, facilityID int) ([]*Room, error)
}

// InsurancePlanRepository defines the persistence interface for insurance
// plans.
type InsurancePlanRepository interface {
	Create(ctx context.Context, p *InsurancePlan) error
	GetByID(ctx context.Context, id int) (*InsurancePlan, error)
	Update(ctx context.Context, p *InsurancePlan) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, limit, offset int) ([]*InsurancePlan, int, error)
}
