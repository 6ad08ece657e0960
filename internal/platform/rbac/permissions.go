// Package rbac implements role-based access control for the clinic API:
// the static role/resource permission table, the permission check guard,
// per-resource ownership resolution, and the approval gate for sensitive
// actions requested by lower-privilege roles.
package rbac

import "strings"

// Role is the access profile attached to a user account. It is immutable
// within a request; only an admin editing another user's record can change it.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCoordinator  Role = "coordinator"
	RoleProfessional Role = "professional"
	RoleIntern       Role = "intern"
	RoleSecretary    Role = "secretary"
)

// Roles returns every role known to the system.
func Roles() []Role {
	return []Role{RoleAdmin, RoleCoordinator, RoleProfessional, RoleIntern, RoleSecretary}
}

// HasElevatedAccess reports whether the role bypasses ownership checks.
// Defined once here so handlers don't maintain their own role lists.
func HasElevatedAccess(role Role) bool {
	return role == RoleAdmin || role == RoleCoordinator
}

// Resource is a domain noun the permission table governs access to.
type Resource string

const (
	ResourceUsers          Resource = "users"
	ResourceFacilities     Resource = "facilities"
	ResourceRooms          Resource = "rooms"
	ResourceProfessionals  Resource = "professionals"
	ResourcePatients       Resource = "patients"
	ResourceAppointments   Resource = "appointments"
	ResourceEvolutions     Resource = "evolutions"
	ResourceDocuments      Resource = "documents"
	ResourceReports        Resource = "reports"
	ResourceInsurancePlans Resource = "insurancePlans"
	ResourceDashboard      Resource = "dashboard"

	// ResourceAuditLogs is admin-only and deliberately absent from
	// Resources(): no other role ever sees an entry for it.
	ResourceAuditLogs Resource = "auditLogs"
)

// Resources returns every resource the system exposes.
func Resources() []Resource {
	return []Resource{
		ResourceUsers, ResourceFacilities, ResourceRooms, ResourceProfessionals,
		ResourcePatients, ResourceAppointments, ResourceEvolutions,
		ResourceDocuments, ResourceReports, ResourceInsurancePlans,
		ResourceDashboard,
	}
}

// Action is the base operation requested on a resource.
type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionManage   Action = "manage"
	ActionConfirm  Action = "confirm"
	ActionCancel   Action = "cancel"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionSign     Action = "sign"
	ActionShare    Action = "share"
	ActionGenerate Action = "generate"
	ActionExport   Action = "export"
	ActionPublish  Action = "publish"
	ActionFinalize Action = "finalize"

	// Dashboard grants are view markers rather than operations.
	ActionFullAccess       Action = "fullAccess"
	ActionFacilityView     Action = "facilityView"
	ActionProfessionalView Action = "professionalView"
	ActionInternView       Action = "internView"
	ActionSecretaryView    Action = "secretaryView"
)

// Qualifier narrows an action grant to resources the principal owns.
type Qualifier int

const (
	QualifierNone Qualifier = iota
	QualifierOwn
	QualifierOwnSupervised
)

func (q Qualifier) String() string {
	switch q {
	case QualifierOwn:
		return "own"
	case QualifierOwnSupervised:
		return "own:supervised"
	default:
		return ""
	}
}

// ActionSpec is a parsed action grant: a base action plus an ownership
// qualifier. The wire grammar is "base", "base:own" or "base:own:supervised".
type ActionSpec struct {
	Base      Action
	Qualifier Qualifier
}

// ParseActionSpec parses the textual action grammar. Unknown suffixes fold
// into the base comparison, matching the split-at-first-colon behavior the
// clients rely on.
func ParseActionSpec(s string) ActionSpec {
	base, rest, found := strings.Cut(s, ":")
	spec := ActionSpec{Base: Action(base)}
	if !found {
		return spec
	}
	switch rest {
	case "own":
		spec.Qualifier = QualifierOwn
	case "own:supervised":
		spec.Qualifier = QualifierOwnSupervised
	}
	return spec
}

func (a ActionSpec) String() string {
	if a.Qualifier == QualifierNone {
		return string(a.Base)
	}
	return string(a.Base) + ":" + a.Qualifier.String()
}

// grant helpers keep the table literal readable.
func grant(base Action) ActionSpec       { return ActionSpec{Base: base} }
func own(base Action) ActionSpec         { return ActionSpec{Base: base, Qualifier: QualifierOwn} }
func supervised(base Action) ActionSpec  { return ActionSpec{Base: base, Qualifier: QualifierOwnSupervised} }

// Table maps role -> resource -> allowed action grants. It is built once at
// startup and shared read-only across requests; guards receive it by value
// injection rather than through a package-level singleton.
type Table map[Role]map[Resource][]ActionSpec

// AllowedActions returns the grants for a role/resource pair. Unknown roles
// or resources yield nil: absence means "no access", never an error.
func (t Table) AllowedActions(role Role, resource Resource) []ActionSpec {
	byResource, ok := t[role]
	if !ok {
		return nil
	}
	return byResource[resource]
}

// KnowsRole reports whether the role has any entry in the table at all.
func (t Table) KnowsRole(role Role) bool {
	_, ok := t[role]
	return ok
}

// Allows applies the grant-matching rule: a request passes when the role
// holds the exact grant, the bare base action, or the base qualified with
// ":own". A bare grant therefore subsumes its qualified forms, and an
// ":own" grant also satisfies a bare request for the same base. This
// breadth is deliberate and load-bearing; handlers tighten it with explicit
// ownership checks where instance-level control matters.
func (t Table) Allows(role Role, resource Resource, requested ActionSpec) bool {
	for _, granted := range t.AllowedActions(role, resource) {
		if granted == requested {
			return true
		}
		if granted.Base != requested.Base {
			continue
		}
		if granted.Qualifier == QualifierNone || granted.Qualifier == QualifierOwn {
			return true
		}
	}
	return false
}

// GrantFor returns the grant that satisfies the requested action, preferring
// the broadest one the role holds. Handlers use the returned qualifier to
// decide whether an ownership check is required.
func (t Table) GrantFor(role Role, resource Resource, requested ActionSpec) (ActionSpec, bool) {
	var best ActionSpec
	found := false
	for _, granted := range t.AllowedActions(role, resource) {
		satisfies := granted == requested ||
			(granted.Base == requested.Base &&
				(granted.Qualifier == QualifierNone || granted.Qualifier == QualifierOwn))
		if !satisfies {
			continue
		}
		if !found || granted.Qualifier < best.Qualifier {
			best = granted
			found = true
		}
	}
	return best, found
}

// auditedBases are the base actions that trigger an audit entry when granted.
var auditedBases = map[Action]bool{
	ActionCreate:  true,
	ActionUpdate:  true,
	ActionDelete:  true,
	ActionApprove: true,
	ActionReject:  true,
	ActionSign:    true,
}

// Audited reports whether a granted base action must be audit-logged.
func Audited(base Action) bool {
	return auditedBases[base]
}

// DefaultTable returns the production permission matrix.
func DefaultTable() Table {
	return Table{
		RoleAdmin: {
			ResourceUsers:          {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete)},
			ResourceFacilities:     {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete)},
			ResourceRooms:          {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete)},
			ResourceProfessionals:  {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete)},
			ResourcePatients:       {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete)},
			ResourceAppointments:   {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete), grant(ActionManage), grant(ActionConfirm), grant(ActionCancel)},
			ResourceEvolutions:     {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete), grant(ActionApprove), grant(ActionReject)},
			ResourceDocuments:      {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete), grant(ActionSign), grant(ActionShare)},
			ResourceReports:        {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete), grant(ActionGenerate), grant(ActionExport)},
			ResourceInsurancePlans: {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionDelete)},
			ResourceDashboard:      {grant(ActionFullAccess)},
			ResourceAuditLogs:      {grant(ActionRead), grant(ActionExport)},
		},
		RoleCoordinator: {
			ResourceUsers:          {grant(ActionRead)},
			ResourceFacilities:     {grant(ActionRead)},
			ResourceRooms:          {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate)},
			ResourceProfessionals:  {grant(ActionRead)},
			ResourcePatients:       {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate)},
			ResourceAppointments:   {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionManage), grant(ActionConfirm), grant(ActionCancel)},
			ResourceEvolutions:     {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionApprove), grant(ActionReject)},
			ResourceDocuments:      {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionSign), grant(ActionShare)},
			ResourceReports:        {grant(ActionCreate), grant(ActionRead), grant(ActionGenerate), grant(ActionExport)},
			ResourceInsurancePlans: {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate)},
			ResourceDashboard:      {grant(ActionFacilityView)},
		},
		RoleProfessional: {
			ResourceUsers:          {grant(ActionRead)},
			ResourceFacilities:     {grant(ActionRead)},
			ResourceRooms:          {grant(ActionRead)},
			ResourceProfessionals:  {grant(ActionRead)},
			ResourcePatients:       {grant(ActionRead), own(ActionUpdate)},
			ResourceAppointments:   {grant(ActionRead), own(ActionUpdate), own(ActionConfirm), own(ActionCancel)},
			ResourceEvolutions:     {own(ActionCreate), own(ActionRead), own(ActionUpdate)},
			ResourceDocuments:      {own(ActionCreate), own(ActionRead), own(ActionUpdate), own(ActionSign)},
			ResourceReports:        {own(ActionCreate), own(ActionRead), own(ActionGenerate)},
			ResourceInsurancePlans: {grant(ActionRead)},
			ResourceDashboard:      {grant(ActionProfessionalView)},
		},
		RoleIntern: {
			ResourceUsers:          {grant(ActionRead)},
			ResourceFacilities:     {grant(ActionRead)},
			ResourceRooms:          {grant(ActionRead)},
			ResourceProfessionals:  {grant(ActionRead)},
			ResourcePatients:       {grant(ActionRead)},
			ResourceAppointments:   {own(ActionRead), supervised(ActionUpdate)},
			ResourceEvolutions:     {supervised(ActionCreate), own(ActionRead), supervised(ActionUpdate)},
			ResourceDocuments:      {supervised(ActionCreate), own(ActionRead), supervised(ActionUpdate)},
			ResourceReports:        {own(ActionRead)},
			ResourceInsurancePlans: {grant(ActionRead)},
			ResourceDashboard:      {grant(ActionInternView)},
		},
		RoleSecretary: {
			ResourceUsers:          {grant(ActionRead)},
			ResourceFacilities:     {grant(ActionRead)},
			ResourceRooms:          {grant(ActionRead)},
			ResourceProfessionals:  {grant(ActionRead)},
			ResourcePatients:       {grant(ActionRead), grant(ActionCreate), grant(ActionUpdate)},
			ResourceAppointments:   {grant(ActionCreate), grant(ActionRead), grant(ActionUpdate), grant(ActionConfirm), grant(ActionCancel)},
			ResourceEvolutions:     {grant(ActionRead)},
			ResourceDocuments:      {grant(ActionRead), grant(ActionCreate)},
			ResourceReports:        {grant(ActionRead)},
			ResourceInsurancePlans: {grant(ActionRead), grant(ActionCreate)},
			ResourceDashboard:      {grant(ActionSecretaryView)},
		},
	}
}
