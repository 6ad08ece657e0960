package rbac

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/audit"
	"github.com/clinicore/clinicore/internal/platform/auth"
)

// approvalBases are the base actions that lower-privilege roles cannot
// execute directly.
var approvalBases = map[Action]bool{
	ActionDelete:   true,
	ActionPublish:  true,
	ActionFinalize: true,
}

// approvalRoles are the roles whose sensitive actions go through approval.
var approvalRoles = map[Role]bool{
	RoleIntern:       true,
	RoleProfessional: true,
}

// PendingApproval marks a request whose action must be approved by a
// supervisor before taking effect. Handlers that see one record the intent
// and return 202 instead of executing.
type PendingApproval struct {
	RequestedBy int    `json:"requestedBy"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Status      string `json:"status"`
}

type decisionKey struct{}

// WithDecision stores an approval decision on the context. A nil decision
// means the action proceeds directly.
func WithDecision(ctx context.Context, pending *PendingApproval) context.Context {
	return context.WithValue(ctx, decisionKey{}, pending)
}

// DecisionFromContext returns the approval decision for the request. nil
// means direct execution; non-nil means the handler must not execute the
// action and should surface the pending marker instead.
func DecisionFromContext(ctx context.Context) *PendingApproval {
	pending, _ := ctx.Value(decisionKey{}).(*PendingApproval)
	return pending
}

// NeedsApproval reports whether the role/action combination requires a
// supervisor sign-off.
func NeedsApproval(role Role, action ActionSpec) bool {
	return approvalBases[action.Base] && approvalRoles[role]
}

// RequireApproval returns middleware that attaches the approval decision for
// the request. It never blocks or denies: when approval is needed it records
// an approval_requested audit entry and stores a pending marker in the
// context; otherwise it stores nothing and the handler executes directly.
// It must be registered after CheckPermission, so only actions the table
// already grants can end up pending. A role with no grant at all is denied
// before the gate ever runs.
func (g *Guard) RequireApproval(resource Resource, action string) echo.MiddlewareFunc {
	requested := ParseActionSpec(action)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := auth.PrincipalFromContext(c.Request().Context())
			if principal == nil {
				return next(c)
			}

			if !NeedsApproval(Role(principal.Role), requested) {
				return next(c)
			}

			pending := &PendingApproval{
				RequestedBy: principal.UserID,
				Resource:    string(resource),
				Action:      action,
				Status:      "pending",
			}

			entry := &audit.Entry{
				UserID:    principal.UserID,
				Action:    "approval_requested:" + action,
				Resource:  string(resource),
				IPAddress: c.RealIP(),
				UserAgent: c.Request().UserAgent(),
				Details: map[string]any{
					"method": c.Request().Method,
					"path":   c.Request().URL.Path,
					"status": pending.Status,
				},
			}
			if id := resourceIDParam(c); id != nil {
				entry.ResourceID = id
			}
			g.auditor.Enqueue(entry)

			req := c.Request()
			c.SetRequest(req.WithContext(WithDecision(req.Context(), pending)))
			return next(c)
		}
	}
}
