package admin

import (
	"context"
	"fmt"
	"testing"
)

type mockFacilityRepo struct {
	facilities map[int]*Facility
	nextID     int
}

func newMockFacilityRepo() *mockFacilityRepo {
	return &mockFacilityRepo{facilities: make(map[int]*Facility), nextID: 1}
}

func (m *mockFacilityRepo) Create(_ context.Context, f *Facility) error {
	f.ID = m.nextID
	m.nextID++
	m.facilities[f.ID] = f
	return nil
}

func (m *mockFacilityRepo) GetByID(_ context.Context, id int) (*Facility, error) {
	f, ok := m.facilities[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return f, nil
}

func (m *mockFacilityRepo) Update(_ context.Context, f *Facility) error {
	m.facilities[f.ID] = f
	return nil
}

func (m *mockFacilityRepo) Delete(_ context.Context, id int) error {
	delete(m.facilities, id)
	return nil
}

func (m *mockFacilityRepo) List(_ context.Context, limit, offset int) ([]*Facility, int, error) {
	var result []*Facility
	for _, f := range m.facilities {
		result = append(result, f)
	}
	return result, len(result), nil
}

type mockRoomRepo struct {
	rooms  map[int]*Room
	nextID int
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[int]*Room), nextID: 1}
}

func (m *mockRoomRepo) Create(_ context.Context, r *Room) error {
	r.ID = m.nextID
	m.nextID++
	m.rooms[r.ID] = r
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id int) (*Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return r, nil
}

func (m *mockRoomRepo) Update(_ context.Context, r *Room) error {
	m.rooms[r.ID] = r
	return nil
}

func (m *mockRoomRepo) Delete(_ context.Context, id int) error {
	delete(m.rooms, id)
	return nil
}

func (m *mockRoomRepo) List(_ context.Context, limit, offset int) ([]*Room, int, error) {
	var result []*Room
	for _, r := range m.rooms {
		result = append(result, r)
	}
	return result, len(result), nil
}

func (m *mockRoomRepo) ListByFacility(_ context.Context, facilityID int) ([]*Room, error) {
	var result []*Room
	for _, r := range m.rooms {
		if r.FacilityID == facilityID {
			result = append(result, r)
		}
	}
	return result, nil
}

type mockPlanRepo struct {
	plans  map[int]*InsurancePlan
	nextID int
}

func newMockPlanRepo() *mockPlanRepo {
	return &mockPlanRepo{plans: make(map[int]*InsurancePlan), nextID: 1}
}

func (m *mockPlanRepo) Create(_ context.Context, p *InsurancePlan) error {
	p.ID = m.nextID
	m.nextID++
	m.plans[p.ID] = p
	return nil
}

func (m *mockPlanRepo) GetByID(_ context.Context, id int) (*InsurancePlan, error) {
	p, ok := m.plans[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockPlanRepo) Update(_ context.Context, p *InsurancePlan) error {
	m.plans[p.ID] = p
	return nil
}

func (m *mockPlanRepo) Delete(_ context.Context, id int) error {
	delete(m.plans, id)
	return nil
}

func (m *mockPlanRepo) List(_ context.Context, limit, offset int) ([]*InsurancePlan, int, error) {
	var result []*InsurancePlan
	for _, p := range m.plans {
		result = append(result, p)
	}
	return result, len(result), nil
}

func newTestService() (*Service, *mockFacilityRepo, *mockRoomRepo, *mockPlanRepo) {
	facilities := newMockFacilityRepo()
	rooms := newMockRoomRepo()
	plans := newMockPlanRepo()
	return NewService(facilities, rooms, plans), facilities, rooms, plans
}

func TestFacilityLifecycle(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	f := &Facility{Name: "Clínica Centro", Address: "Rua A, 1", City: "São Paulo", State: "SP", ZipCode: "01000-000"}
	if err := svc.CreateFacility(ctx, f); err != nil {
		t.Fatalf("CreateFacility: %v", err)
	}
	if f.ID == 0 {
		t.Fatal("facility id not assigned")
	}

	f.Name = "Clínica Centro II"
	if err := svc.UpdateFacility(ctx, f); err != nil {
		t.Fatalf("UpdateFacility: %v", err)
	}

	got, err := svc.GetFacility(ctx, f.ID)
	if err != nil {
		t.Fatalf("GetFacility: %v", err)
	}
	if got.Name != "Clínica Centro II" {
		t.Errorf("name = %q", got.Name)
	}

	if err := svc.DeleteFacility(ctx, f.ID); err != nil {
		t.Fatalf("DeleteFacility: %v", err)
	}
	if _, err := svc.GetFacility(ctx, f.ID); err != ErrNotFound {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}
}

func TestUpdateMissingFacility(t *testing.T) {
	svc, _, _, _ := newTestService()
	err := svc.UpdateFacility(context.Background(), &Facility{ID: 99, Name: "Ghost"})
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRoomsByFacility(t *testing.T) {
	svc, _, rooms, _ := newTestService()
	ctx := context.Background()

	for i, facilityID := range []int{1, 1, 2} {
		r := &Room{Name: fmt.Sprintf("Sala %d", i+1), FacilityID: facilityID, IsActive: true}
		if err := rooms.Create(ctx, r); err != nil {
			t.Fatalf("seed room: %v", err)
		}
	}

	got, err := svc.ListRoomsByFacility(ctx, 1)
	if err != nil {
		t.Fatalf("ListRoomsByFacility: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("rooms in facility 1 = %d, want 2", len(got))
	}
}

func TestInsurancePlanLifecycle(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	p := &InsurancePlan{Name: "Plano Ouro", Provider: "Saúde SA"}
	if err := svc.CreateInsurancePlan(ctx, p); err != nil {
		t.Fatalf("CreateInsurancePlan: %v", err)
	}

	if err := svc.DeleteInsurancePlan(ctx, p.ID); err != nil {
		t.Fatalf("DeleteInsurancePlan: %v", err)
	}
	if err := svc.DeleteInsurancePlan(ctx, p.ID); err != ErrNotFound {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
