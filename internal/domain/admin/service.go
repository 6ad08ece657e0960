package admin

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("não encontrado")

type Service struct {
	facilities FacilityRepository
	rooms      RoomRepository
	plans      InsurancePlanRepository
}

func NewService(facilities FacilityRepository, rooms RoomRepository, plans InsurancePlanRepository) *Service {
	return &Service{facilities: facilities, rooms: rooms, plans: plans}
}

func (s *Service) CreateFacility(ctx context.Context, f *Facility) error {
	return s.facilities.Create(ctx, f)
}

func (s *Service) GetFacility(ctx context.Context, id int) (*Facility, error) {
	f, err := s.facilities.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *Service) UpdateFacility(ctx context.Context, f *Facility) error {
	if _, err := s.facilities.GetByID(ctx, f.ID); err != nil {
		return ErrNotFound
	}
	return s.facilities.Update(ctx, f)
}

func (s *Service) DeleteFacility(ctx context.Context, id int) error {
	if _, err := s.facilities.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.facilities.Delete(ctx, id)
}

func (s *Service) ListFacilities(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	return s.facilities.List(ctx, limit, offset)
}

func (s *Service) CreateRoom(ctx context.Context, r *Room) error {
	return s.rooms.Create(ctx, r)
}

func (s *Service) GetRoom(ctx context.Context, id int) (*Room, error) {
	r, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *Service) UpdateRoom(ctx context.Context, r *Room) error {
	if _, err := s.rooms.GetByID(ctx, r.ID); err != nil {
		return ErrNotFound
	}
	return s.rooms.Update(ctx, r)
}

func (s *Service) DeleteRoom(ctx context.Context, id int) error {
	if _, err := s.rooms.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.rooms.Delete(ctx, id)
}

func (s *Service) ListRooms(ctx context.Context, limit, offset int) ([]*Room, int, error) {
	return s.rooms.List(ctx, limit, offset)
}

func (s *Service) ListRoomsByFacility(ctx context.Context, facilityID int) ([]*Room, error) {
	return s.rooms.ListByFacility(ctx, facilityID)
}

func (s *Service) CreateInsurancePlan(ctx context.Context, p *InsurancePlan) error {
	return s.plans.Create(ctx, p)
}

func (s *Service) GetInsurancePlan(ctx context.Context, id int) (*InsurancePlan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) UpdateInsurancePlan(ctx context.Context, p *InsurancePlan) error {
	if _, err := s.plans.GetByID(ctx, p.ID); err != nil {
		return ErrNotFound
	}
	return s.plans.Update(ctx, p)
}

func (s *Service) DeleteInsurancePlan(ctx context.Context, id int) error {
	if _, err := s.plans.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.plans.Delete(ctx, id)
}

func (s *Service) ListInsurancePlans(ctx context.Context, limit, offset int) ([]*InsurancePlan, int, error) {
	return s.plans.List(ctx, limit, offset)
}
