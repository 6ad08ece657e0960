package evolutions

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
	"github.com/clinicore/clinicore/internal/platform/websocket"
)

var (
	ErrNotFound = errors.New("evolução não encontrada")
	// ErrNotProfessional marks an author without a professional profile.
	ErrNotProfessional = errors.New("apenas profissionais podem criar evoluções")
	// ErrStatusForbidden marks a status change by someone who is neither the
	// evolution's supervisor nor an elevated role.
	ErrStatusForbidden = errors.New("apenas supervisores podem alterar o status")
	// ErrContentForbidden marks a content edit by someone other than the
	// author or an elevated role.
	ErrContentForbidden = errors.New("apenas o autor pode editar o conteúdo")
	// ErrNotesForbidden marks a supervisor-notes edit by a non-supervisor.
	ErrNotesForbidden = errors.New("apenas supervisores podem adicionar notas")
)

// Appointments is the slice of the scheduling service the evolutions flow
// needs: a session note marks its appointment as completed.
type Appointments interface {
	MarkCompleted(ctx context.Context, appointmentID int) error
}

// Notifier delivers private events to a user's websocket topic.
type Notifier interface {
	Notify(userID int, event websocket.Event)
}

type Service struct {
	repo         Repository
	directory    ProfessionalDirectory
	appointments Appointments
	notifier     Notifier
	logger       zerolog.Logger
}

func NewService(repo Repository, directory ProfessionalDirectory, appointments Appointments, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		directory:    directory,
		appointments: appointments,
		notifier:     notifier,
		logger:       logger.With().Str("component", "evolutions").Logger(),
	}
}

// Create records a session note authored by the principal's professional
// profile. Interns' notes start pending and their supervisor is notified;
// everyone else's start completed. The linked appointment is marked completed.
func (s *Service) Create(ctx context.Context, principal *auth.Principal, in CreateInput) (*Evolution, error) {
	if principal.ProfessionalID == nil {
		return nil, ErrNotProfessional
	}

	status := StatusCompleted
	if rbac.Role(principal.Role) == rbac.RoleIntern {
		status = StatusPending
	}

	e := &Evolution{
		AppointmentID:  in.AppointmentID,
		ProfessionalID: *principal.ProfessionalID,
		Content:        in.Content,
		Status:         status,
		SupervisorID:   in.SupervisorID,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create evolution: %w", err)
	}

	if s.appointments != nil {
		if err := s.appointments.MarkCompleted(ctx, e.AppointmentID); err != nil {
			s.logger.Warn().Err(err).
				Int("appointment_id", e.AppointmentID).
				Msg("could not mark appointment completed")
		}
	}

	if status == StatusPending && e.SupervisorID != nil {
		s.notifyProfessional(ctx, *e.SupervisorID, websocket.Event{
			Type:       "evolution_approval",
			Resource:   "evolutions",
			ResourceID: e.ID,
		})
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Evolution, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Evolution, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// Update applies a partial update with per-field authorization: status moves
// are for the supervisor or elevated roles, content edits for the author or
// elevated roles, supervisor notes for the supervisor or elevated roles.
func (s *Service) Update(ctx context.Context, principal *auth.Principal, id int, in UpdateInput) (*Evolution, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	elevated := rbac.HasElevatedAccess(rbac.Role(principal.Role))
	isAuthor := principal.ProfessionalID != nil && *principal.ProfessionalID == e.ProfessionalID
	isSupervisor := principal.ProfessionalID != nil && e.SupervisorID != nil &&
		*principal.ProfessionalID == *e.SupervisorID

	if in.Status != nil && !isSupervisor && !elevated {
		return nil, ErrStatusForbidden
	}
	if in.Content != nil && !isAuthor && !elevated {
		return nil, ErrContentForbidden
	}
	if in.SupervisorNotes != nil && !isSupervisor && !elevated {
		return nil, ErrNotesForbidden
	}

	previousStatus := e.Status
	if in.Content != nil {
		e.Content = *in.Content
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
	if in.SupervisorNotes != nil {
		e.SupervisorNotes = in.SupervisorNotes
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update evolution %d: %w", id, err)
	}

	if e.Status != previousStatus && (e.Status == StatusApproved || e.Status == StatusRejected) {
		s.notifyProfessional(ctx, e.ProfessionalID, websocket.Event{
			Type:       "evolution_" + e.Status,
			Resource:   "evolutions",
			ResourceID: e.ID,
		})
	}

	return e, nil
}

// SetStatus is the approve/reject path for elevated roles. The permission
// table restricts the calling routes, so no supervisor check happens here.
func (s *Service) SetStatus(ctx context.Context, id int, status string, notes *string) (*Evolution, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	previousStatus := e.Status
	e.Status = status
	if notes != nil {
		e.SupervisorNotes = notes
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("set evolution %d status: %w", id, err)
	}

	if e.Status != previousStatus && (status == StatusApproved || status == StatusRejected) {
		s.notifyProfessional(ctx, e.ProfessionalID, websocket.Event{
			Type:       "evolution_" + status,
			Resource:   "evolutions",
			ResourceID: e.ID,
		})
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) notifyProfessional(ctx context.Context, professionalID int, event websocket.Event) {
	if s.notifier == nil || s.directory == nil {
		return
	}
	userID, err := s.directory.UserIDForProfessional(ctx, professionalID)
	if err != nil {
		s.logger.Warn().Err(err).
			Int("professional_id", professionalID).
			Msg("could not resolve professional to user for notification")
		return
	}
	s.notifier.Notify(userID, event)
}
