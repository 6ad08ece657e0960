package rbac

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/audit"
	"github.com/clinicore/clinicore/internal/platform/auth"
)

// maxAuditedBodyBytes caps how much of a request body gets copied into an
// audit entry's details. Larger bodies are recorded without the body field.
const maxAuditedBodyBytes = 64 << 10

// Auditor is the slice of the audit recorder the guard needs. Satisfied by
// *audit.Recorder.
type Auditor interface {
	Enqueue(*audit.Entry)
}

// Guard builds permission-checking middleware from an immutable permission
// table. One Guard is constructed in main and shared by every route group.
type Guard struct {
	table    Table
	auditor  Auditor
	resolver *Resolver
	logger   zerolog.Logger
}

// NewGuard wires a Guard. The auditor may not be nil; routes that should not
// audit simply never hit an audited base action.
func NewGuard(table Table, auditor Auditor, resolver *Resolver, logger zerolog.Logger) *Guard {
	return &Guard{
		table:    table,
		auditor:  auditor,
		resolver: resolver,
		logger:   logger.With().Str("component", "rbac").Logger(),
	}
}

// Resolver exposes the guard's ownership resolver to handlers that enforce
// instance-level access on top of the table check.
func (g *Guard) Resolver() *Resolver {
	return g.resolver
}

// RequiresOwnership reports whether the role's grant for the action is
// ownership-qualified. Handlers call this after the table check passes to
// decide whether the record must belong to the principal.
func (g *Guard) RequiresOwnership(role Role, resource Resource, action string) bool {
	grant, ok := g.table.GrantFor(role, resource, ParseActionSpec(action))
	return ok && grant.Qualifier != QualifierNone
}

// CheckPermission returns middleware enforcing that the authenticated
// principal's role grants the given action on the given resource. The action
// uses the textual grammar ("delete", "create:own:supervised", ...). Denials
// carry the exact client-facing messages; grants on sensitive base actions
// enqueue an audit entry before the handler runs. Ownership is NOT checked
// here; handlers consult the resolver where instance access matters.
func (g *Guard) CheckPermission(resource Resource, action string) echo.MiddlewareFunc {
	requested := ParseActionSpec(action)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := auth.PrincipalFromContext(c.Request().Context())
			if principal == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Não autenticado"})
			}

			role := Role(principal.Role)
			if !g.table.KnowsRole(role) {
				g.logger.Warn().
					Str("role", principal.Role).
					Int("user_id", principal.UserID).
					Msg("unknown role in permission check")
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": fmt.Sprintf("Papel de usuário desconhecido: %s", principal.Role),
				})
			}

			if len(g.table.AllowedActions(role, resource)) == 0 {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": fmt.Sprintf("Acesso negado ao recurso: %s", resource),
				})
			}

			if !g.table.Allows(role, resource, requested) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": fmt.Sprintf("Acesso negado. Ação não permitida: %s em %s", action, resource),
				})
			}

			if Audited(requested.Base) {
				g.auditor.Enqueue(g.entryFromRequest(c, principal, resource, action))
			}

			return next(c)
		}
	}
}

// CheckResourceAccess returns middleware enforcing only that the role has
// some grant on the resource, without naming an action. Used for surfaces
// like the dashboard whose grants are view pseudo-actions resolved later.
func (g *Guard) CheckResourceAccess(resource Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := auth.PrincipalFromContext(c.Request().Context())
			if principal == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Não autenticado"})
			}

			role := Role(principal.Role)
			if !g.table.KnowsRole(role) {
				g.logger.Warn().
					Str("role", principal.Role).
					Int("user_id", principal.UserID).
					Msg("unknown role in resource access check")
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": fmt.Sprintf("Papel de usuário desconhecido: %s", principal.Role),
				})
			}

			if len(g.table.AllowedActions(role, resource)) == 0 {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": fmt.Sprintf("Acesso negado ao recurso: %s", resource),
				})
			}

			return next(c)
		}
	}
}

// entryFromRequest captures the request context for the audit trail. The body
// is read and restored so the handler still sees it; redaction happens inside
// the recorder.
func (g *Guard) entryFromRequest(c echo.Context, principal *auth.Principal, resource Resource, action string) *audit.Entry {
	req := c.Request()

	details := map[string]any{
		"method": req.Method,
		"path":   req.URL.Path,
	}
	if params := pathParams(c); len(params) > 0 {
		details["params"] = params
	}
	if query := req.URL.Query(); len(query) > 0 {
		flat := make(map[string]any, len(query))
		for k, v := range query {
			if len(v) == 1 {
				flat[k] = v[0]
			} else {
				flat[k] = v
			}
		}
		details["query"] = flat
	}
	if body := captureBody(c); body != nil {
		details["body"] = body
	}

	entry := &audit.Entry{
		UserID:    principal.UserID,
		Action:    action,
		Resource:  string(resource),
		IPAddress: c.RealIP(),
		UserAgent: req.UserAgent(),
		Details:   details,
	}
	if id := resourceIDParam(c); id != nil {
		entry.ResourceID = id
	}
	return entry
}

func pathParams(c echo.Context) map[string]any {
	names := c.ParamNames()
	if len(names) == 0 {
		return nil
	}
	params := make(map[string]any, len(names))
	for _, name := range names {
		params[name] = c.Param(name)
	}
	return params
}

// resourceIDParam parses the :id path parameter when present and numeric.
func resourceIDParam(c echo.Context) *int {
	raw := c.Param("id")
	if raw == "" {
		return nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &id
}

// captureBody reads a JSON request body for the audit details and puts it
// back on the request. Returns nil for empty, oversized or non-JSON bodies.
func captureBody(c echo.Context) map[string]any {
	req := c.Request()
	if req.Body == nil || req.ContentLength == 0 || req.ContentLength > maxAuditedBodyBytes {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(req.Body, maxAuditedBodyBytes+1))
	req.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 || len(raw) > maxAuditedBodyBytes {
		return nil
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return body
}
