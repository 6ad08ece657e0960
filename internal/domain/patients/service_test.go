package patients

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
)

type mockRepo struct {
	patients map[int]*Patient
	nextID   int
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[int]*Patient), nextID: 1}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = m.nextID
	m.nextID++
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int) error {
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) Search(_ context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	return m.List(context.Background(), limit, offset)
}

// treatmentStore answers the patient ownership question from a fixed set of
// (patientID, professionalID) pairs.
type treatmentStore struct {
	treats map[[2]int]bool
}

func (s *treatmentStore) AppointmentProfessionalID(_ context.Context, _ int) (int, error) {
	return 0, fmt.Errorf("not used")
}

func (s *treatmentStore) EvolutionProfessionalID(_ context.Context, _ int) (int, error) {
	return 0, fmt.Errorf("not used")
}

func (s *treatmentStore) PatientTreatedBy(_ context.Context, patientID, professionalID int) (bool, error) {
	return s.treats[[2]int{patientID, professionalID}], nil
}

func newTestService(treats map[[2]int]bool) (*Service, *mockRepo) {
	repo := newMockRepo()
	resolver := rbac.NewResolver(&treatmentStore{treats: treats}, zerolog.Nop())
	return NewService(repo, resolver), repo
}

func seedPatient(t *testing.T, repo *mockRepo, name string) *Patient {
	t.Helper()
	p := &Patient{FullName: name, DateOfBirth: "2015-03-10", IsActive: true}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func TestUpdateOwnPolicyTreatingProfessional(t *testing.T) {
	profID := 7
	svc, repo := newTestService(map[[2]int]bool{{1, 7}: true})
	p := seedPatient(t, repo, "João")

	principal := &auth.Principal{UserID: 3, Role: "professional", ProfessionalID: &profID}
	p.FullName = "João Silva"
	if err := svc.Update(context.Background(), principal, p, true); err != nil {
		t.Fatalf("Update: %v", err)
	}
}

func TestUpdateOwnPolicyNonTreatingProfessionalDenied(t *testing.T) {
	profID := 8
	svc, repo := newTestService(map[[2]int]bool{{1, 7}: true})
	p := seedPatient(t, repo, "João")

	principal := &auth.Principal{UserID: 3, Role: "professional", ProfessionalID: &profID}
	if err := svc.Update(context.Background(), principal, p, true); err != ErrForbidden {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestUpdateOwnPolicyElevatedRoleBypasses(t *testing.T) {
	svc, repo := newTestService(nil)
	p := seedPatient(t, repo, "João")

	principal := &auth.Principal{UserID: 1, Role: "admin"}
	if err := svc.Update(context.Background(), principal, p, true); err != nil {
		t.Errorf("admin update denied: %v", err)
	}
}

func TestUpdateBarePolicySkipsOwnership(t *testing.T) {
	svc, repo := newTestService(nil)
	p := seedPatient(t, repo, "João")

	// Secretary holds a bare update grant; no ownership check applies.
	principal := &auth.Principal{UserID: 5, Role: "secretary"}
	if err := svc.Update(context.Background(), principal, p, false); err != nil {
		t.Errorf("secretary update denied: %v", err)
	}
}

func TestUpdateMissingPatient(t *testing.T) {
	svc, _ := newTestService(nil)
	principal := &auth.Principal{UserID: 1, Role: "admin"}
	err := svc.Update(context.Background(), principal, &Patient{ID: 99}, false)
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
