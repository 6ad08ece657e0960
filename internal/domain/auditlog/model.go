// Package auditlog is the read side of the audit trail: admin-only listing
// with filters, human-readable labels and a translation catalog for the UI.
package auditlog

import (
	"time"

	"github.com/clinicore/clinicore/internal/platform/audit"
)

// Filter narrows an audit log search. Zero values mean no constraint.
type Filter struct {
	UserID   *int
	Resource *string
	Action   *string
	From     *time.Time
	To       *time.Time
}

// LogEntry is an audit entry enriched with translated labels for display.
type LogEntry struct {
	audit.Entry
	ResourceText string `json:"resourceText"`
	ActionText   string `json:"actionText"`
}
