package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

type fakeOwnershipStore struct {
	appointmentProfessional int
	evolutionProfessional   int
	patientTreated          bool
	err                     error
	calls                   int
}

func (s *fakeOwnershipStore) AppointmentProfessionalID(ctx context.Context, appointmentID int) (int, error) {
	s.calls++
	return s.appointmentProfessional, s.err
}

func (s *fakeOwnershipStore) EvolutionProfessionalID(ctx context.Context, evolutionID int) (int, error) {
	s.calls++
	return s.evolutionProfessional, s.err
}

func (s *fakeOwnershipStore) PatientTreatedBy(ctx context.Context, patientID, professionalID int) (bool, error) {
	s.calls++
	return s.patientTreated, s.err
}

func principalWithProfile(role string, professionalID int) *auth.Principal {
	return &auth.Principal{UserID: 1, Role: role, ProfessionalID: &professionalID}
}

func TestElevatedRolesOwnEverything(t *testing.T) {
	store := &fakeOwnershipStore{err: errors.New("should not be called")}
	resolver := NewResolver(store, zerolog.Nop())

	for _, role := range []string{"admin", "coordinator"} {
		p := &auth.Principal{UserID: 1, Role: role}
		for _, resource := range []Resource{ResourceAppointments, ResourceEvolutions, ResourcePatients, ResourceRooms} {
			if !resolver.IsOwnerOrSupervisor(context.Background(), p, resource, 99) {
				t.Errorf("%s not owner of %s", role, resource)
			}
		}
	}
	if store.calls != 0 {
		t.Errorf("store consulted %d times for elevated roles", store.calls)
	}
}

func TestOwnershipByResource(t *testing.T) {
	tests := []struct {
		name     string
		store    *fakeOwnershipStore
		resource Resource
		want     bool
	}{
		{"assigned appointment", &fakeOwnershipStore{appointmentProfessional: 7}, ResourceAppointments, true},
		{"other professional's appointment", &fakeOwnershipStore{appointmentProfessional: 8}, ResourceAppointments, false},
		{"authored evolution", &fakeOwnershipStore{evolutionProfessional: 7}, ResourceEvolutions, true},
		{"other author's evolution", &fakeOwnershipStore{evolutionProfessional: 3}, ResourceEvolutions, false},
		{"treated patient", &fakeOwnershipStore{patientTreated: true}, ResourcePatients, true},
		{"untreated patient", &fakeOwnershipStore{patientTreated: false}, ResourcePatients, false},
		{"resource without ownership semantics", &fakeOwnershipStore{}, ResourceRooms, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(tt.store, zerolog.Nop())
			p := principalWithProfile("professional", 7)
			got := resolver.IsOwnerOrSupervisor(context.Background(), p, tt.resource, 5)
			if got != tt.want {
				t.Errorf("IsOwnerOrSupervisor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOwnershipFailsClosedOnLookupError(t *testing.T) {
	store := &fakeOwnershipStore{err: errors.New("connection refused")}
	resolver := NewResolver(store, zerolog.Nop())
	p := principalWithProfile("professional", 7)

	for _, resource := range []Resource{ResourceAppointments, ResourceEvolutions, ResourcePatients} {
		if resolver.IsOwnerOrSupervisor(context.Background(), p, resource, 5) {
			t.Errorf("lookup error granted ownership on %s", resource)
		}
	}
}

func TestOwnershipWithoutProfessionalProfile(t *testing.T) {
	store := &fakeOwnershipStore{appointmentProfessional: 7}
	resolver := NewResolver(store, zerolog.Nop())
	p := &auth.Principal{UserID: 1, Role: "professional"}

	if resolver.IsOwnerOrSupervisor(context.Background(), p, ResourceAppointments, 5) {
		t.Error("principal without professional profile granted ownership")
	}
	if store.calls != 0 {
		t.Error("store consulted for principal without professional profile")
	}
}

func TestOwnershipNilPrincipal(t *testing.T) {
	resolver := NewResolver(&fakeOwnershipStore{}, zerolog.Nop())
	if resolver.IsOwnerOrSupervisor(context.Background(), nil, ResourceAppointments, 5) {
		t.Error("nil principal granted ownership")
	}
}
