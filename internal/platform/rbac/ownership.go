package rbac

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/auth"
)

// OwnershipStore answers the record-level questions the resolver needs.
// Implementations must return an error rather than guess when a record is
// missing; the resolver treats every error as "not the owner".
type OwnershipStore interface {
	AppointmentProfessionalID(ctx context.Context, appointmentID int) (int, error)
	EvolutionProfessionalID(ctx context.Context, evolutionID int) (int, error)
	PatientTreatedBy(ctx context.Context, patientID, professionalID int) (bool, error)
}

// Resolver decides whether a principal owns (or supervises) a specific
// record. It fails closed: lookup errors are logged and reported as "no".
type Resolver struct {
	store  OwnershipStore
	logger zerolog.Logger
}

func NewResolver(store OwnershipStore, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With().Str("component", "ownership").Logger(),
	}
}

// IsOwnerOrSupervisor reports whether the principal may treat the record as
// their own. Admin and coordinator own everything. For other roles the answer
// depends on the resource:
//
//	appointments  assigned professional
//	evolutions    authoring professional
//	patients      at least one appointment with the professional
//
// Any other resource, a principal without a professional profile, or a lookup
// failure all resolve to false.
func (r *Resolver) IsOwnerOrSupervisor(ctx context.Context, principal *auth.Principal, resource Resource, recordID int) bool {
	if principal == nil {
		return false
	}
	if HasElevatedAccess(Role(principal.Role)) {
		return true
	}
	if principal.ProfessionalID == nil {
		return false
	}
	professionalID := *principal.ProfessionalID

	switch resource {
	case ResourceAppointments:
		assigned, err := r.store.AppointmentProfessionalID(ctx, recordID)
		if err != nil {
			r.fail(err, principal, resource, recordID)
			return false
		}
		return assigned == professionalID
	case ResourceEvolutions:
		author, err := r.store.EvolutionProfessionalID(ctx, recordID)
		if err != nil {
			r.fail(err, principal, resource, recordID)
			return false
		}
		return author == professionalID
	case ResourcePatients:
		treated, err := r.store.PatientTreatedBy(ctx, recordID, professionalID)
		if err != nil {
			r.fail(err, principal, resource, recordID)
			return false
		}
		return treated
	default:
		return false
	}
}

func (r *Resolver) fail(err error, principal *auth.Principal, resource Resource, recordID int) {
	r.logger.Error().
		Err(err).
		Int("user_id", principal.UserID).
		Str("resource", string(resource)).
		Int("record_id", recordID).
		Msg("ownership lookup failed, denying")
}
