package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
	"github.com/clinicore/clinicore/internal/platform/websocket"
)

var (
	ErrNotFound = errors.New("não encontrado")
	// ErrStatusChangeForbidden marks a status transition attempted by someone
	// other than the assigned professional or an elevated role.
	ErrStatusChangeForbidden = errors.New("sem permissão para alterar o status")
	// ErrFullUpdateForbidden marks a reschedule attempted by a non-elevated
	// role.
	ErrFullUpdateForbidden = errors.New("apenas administradores e coordenadores podem atualizar agendamentos")
)

// TopicAppointments is the broadcast topic for appointment events.
const TopicAppointments = "appointments"

type Service struct {
	repo   Repository
	events websocket.EventPublisher
}

func NewService(repo Repository, events websocket.EventPublisher) *Service {
	return &Service{repo: repo, events: events}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	s.publish(ctx, "appointment_created", a.ID)
	return nil
}

func (s *Service) Get(ctx context.Context, id int) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// assignedTo reports whether the principal is the appointment's professional.
func assignedTo(principal *auth.Principal, a *Appointment) bool {
	return principal.ProfessionalID != nil && *principal.ProfessionalID == a.ProfessionalID
}

// Update applies a partial update. A status-only payload may come from the
// assigned professional or an elevated role; anything touching other fields
// requires an elevated role.
func (s *Service) Update(ctx context.Context, principal *auth.Principal, id int, in UpdateInput) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	elevated := rbac.HasElevatedAccess(rbac.Role(principal.Role))
	if in.StatusOnly() {
		if !elevated && !assignedTo(principal, a) {
			return nil, ErrStatusChangeForbidden
		}
	} else if !elevated {
		return nil, ErrFullUpdateForbidden
	}

	if in.PatientID != nil {
		a.PatientID = *in.PatientID
	}
	if in.ProfessionalID != nil {
		a.ProfessionalID = *in.ProfessionalID
	}
	if in.RoomID != nil {
		a.RoomID = *in.RoomID
	}
	if in.FacilityID != nil {
		a.FacilityID = *in.FacilityID
	}
	if in.StartTime != nil {
		a.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		a.EndTime = *in.EndTime
	}
	if in.ProcedureType != nil {
		a.ProcedureType = *in.ProcedureType
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update appointment %d: %w", id, err)
	}
	s.publish(ctx, "appointment_updated", a.ID)
	return a, nil
}

// SetStatus is the confirm/cancel path. ownPolicy mirrors the caller's
// permission grant: when set, only the assigned professional may transition.
func (s *Service) SetStatus(ctx context.Context, principal *auth.Principal, id int, status string, ownPolicy bool) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	if ownPolicy && !rbac.HasElevatedAccess(rbac.Role(principal.Role)) && !assignedTo(principal, a) {
		return nil, ErrStatusChangeForbidden
	}

	a.Status = status
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("set appointment %d status: %w", id, err)
	}
	s.publish(ctx, "appointment_"+status, a.ID)
	return a, nil
}

// MarkCompleted flips an appointment to completed when a session note is
// recorded for it. Already-completed appointments are left alone.
func (s *Service) MarkCompleted(ctx context.Context, id int) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if a.Status == StatusCompleted {
		return nil
	}
	a.Status = StatusCompleted
	if err := s.repo.Update(ctx, a); err != nil {
		return fmt.Errorf("mark appointment %d completed: %w", id, err)
	}
	s.publish(ctx, "appointment_completed", a.ID)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, "appointment_deleted", id)
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, id int) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, websocket.Event{
		Type:       eventType,
		Topic:      TopicAppointments,
		Resource:   "appointments",
		ResourceID: id,
	})
}
