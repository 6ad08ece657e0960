package auditlog

import (
	"context"

	"github.com/clinicore/clinicore/internal/platform/audit"
)

// Repository searches the append-only audit_logs table. There is no write
// path here; inserts happen exclusively through the audit recorder.
type Repository interface {
	Search(ctx context.Context, filter Filter, limit, offset int) ([]*audit.Entry, int, error)
}
