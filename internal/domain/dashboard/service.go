package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
)

// ErrNoView means the role has no dashboard grant at all.
var ErrNoView = errors.New("sem acesso ao painel")

type Service struct {
	table rbac.Table
	stats StatsRepository
}

func NewService(table rbac.Table, stats StatsRepository) *Service {
	return &Service{table: table, stats: stats}
}

// view returns the dashboard pseudo-action granted to the role.
func (s *Service) view(role rbac.Role) (rbac.Action, bool) {
	grants := s.table.AllowedActions(role, rbac.ResourceDashboard)
	if len(grants) == 0 {
		return "", false
	}
	return grants[0].Base, true
}

// Overview assembles the counters for the principal's dashboard view.
// Elevated and secretary roles get clinic numbers (coordinators and
// secretaries scoped to their facility when one is set); clinical roles get
// their own caseload.
func (s *Service) Overview(ctx context.Context, principal *auth.Principal) (any, error) {
	view, ok := s.view(rbac.Role(principal.Role))
	if !ok {
		return nil, ErrNoView
	}

	switch view {
	case rbac.ActionFullAccess:
		return s.summary(ctx, "full", nil)
	case rbac.ActionFacilityView:
		return s.summary(ctx, "facility", principal.FacilityID)
	case rbac.ActionSecretaryView:
		return s.summary(ctx, "secretary", principal.FacilityID)
	case rbac.ActionProfessionalView, rbac.ActionInternView:
		if principal.ProfessionalID == nil {
			return nil, ErrNoView
		}
		name := "professional"
		if view == rbac.ActionInternView {
			name = "intern"
		}
		return s.caseload(ctx, name, *principal.ProfessionalID)
	default:
		return nil, ErrNoView
	}
}

func (s *Service) summary(ctx context.Context, view string, facilityID *int) (*Summary, error) {
	out := &Summary{View: view}
	var err error

	if out.ActivePatients, err = s.stats.ActivePatients(ctx, facilityID); err != nil {
		return nil, fmt.Errorf("dashboard patients: %w", err)
	}
	if out.ActiveProfessionals, err = s.stats.ActiveProfessionals(ctx, facilityID); err != nil {
		return nil, fmt.Errorf("dashboard professionals: %w", err)
	}
	if out.AppointmentsToday, err = s.stats.AppointmentsToday(ctx, facilityID, nil); err != nil {
		return nil, fmt.Errorf("dashboard appointments today: %w", err)
	}
	if out.PendingEvolutions, err = s.stats.PendingEvolutions(ctx, nil); err != nil {
		return nil, fmt.Errorf("dashboard pending evolutions: %w", err)
	}
	if out.UpcomingAppointments, err = s.stats.UpcomingAppointments(ctx, facilityID, nil); err != nil {
		return nil, fmt.Errorf("dashboard upcoming: %w", err)
	}
	return out, nil
}

func (s *Service) caseload(ctx context.Context, view string, professionalID int) (*CaseloadSummary, error) {
	out := &CaseloadSummary{View: view, ProfessionalID: professionalID}
	var err error

	if out.PatientsTreated, err = s.stats.PatientsTreatedBy(ctx, professionalID); err != nil {
		return nil, fmt.Errorf("dashboard caseload patients: %w", err)
	}
	if out.AppointmentsToday, err = s.stats.AppointmentsToday(ctx, nil, &professionalID); err != nil {
		return nil, fmt.Errorf("dashboard caseload appointments today: %w", err)
	}
	if out.PendingEvolutions, err = s.stats.PendingEvolutions(ctx, &professionalID); err != nil {
		return nil, fmt.Errorf("dashboard caseload pending evolutions: %w", err)
	}
	if out.UpcomingAppointments, err = s.stats.UpcomingAppointments(ctx, nil, &professionalID); err != nil {
		return nil, fmt.Errorf("dashboard caseload upcoming: %w", err)
	}
	return out, nil
}
