// Package audit provides the append-only audit trail for sensitive actions.
// Entries are queued on a bounded channel and persisted by a background
// worker so that audit persistence can never fail or slow down the request
// that triggered it.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MaskValue replaces credential fields in audit details before persistence.
const MaskValue = "********"

// redactedKeys are field names whose values must never reach the audit store.
var redactedKeys = map[string]bool{
	"password":        true,
	"currentPassword": true,
	"newPassword":     true,
}

// Entry is an immutable audit record. Entries are only ever inserted; the
// application never updates or deletes them.
type Entry struct {
	ID         int64          `json:"id"`
	UserID     int            `json:"userId"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID *int           `json:"resourceId,omitempty"`
	IPAddress  string         `json:"ipAddress"`
	UserAgent  string         `json:"userAgent"`
	Details    map[string]any `json:"details,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Store persists audit entries.
type Store interface {
	Insert(ctx context.Context, entry *Entry) error
}

// Redact returns a copy of details with credential fields masked. Nested
// maps are walked so that a password echoed anywhere in a request body is
// masked. The input map is not modified.
func Redact(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		if redactedKeys[k] {
			out[k] = MaskValue
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = Redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// Recorder accepts audit entries from request handlers and middleware and
// writes them to the store asynchronously. Enqueue never blocks: when the
// queue is full the entry is dropped with a warning, favoring availability
// of the primary action over guaranteed audit completeness.
type Recorder struct {
	store  Store
	logger zerolog.Logger
	queue  chan *Entry
}

// NewRecorder creates a Recorder with a bounded queue of the given size.
func NewRecorder(store Store, logger zerolog.Logger, queueSize int) *Recorder {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Recorder{
		store:  store,
		logger: logger,
		queue:  make(chan *Entry, queueSize),
	}
}

// Enqueue redacts the entry's details, stamps it, and hands it to the
// background worker. Safe for concurrent use.
func (r *Recorder) Enqueue(entry *Entry) {
	if entry == nil {
		return
	}
	entry.Details = Redact(entry.Details)
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	select {
	case r.queue <- entry:
	default:
		r.logger.Warn().
			Str("action", entry.Action).
			Str("resource", entry.Resource).
			Int("user_id", entry.UserID).
			Msg("audit queue full, entry dropped")
	}
}

// Start runs the persistence worker until ctx is canceled. Persistence
// failures are logged and discarded; they never propagate.
func (r *Recorder) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case entry := <-r.queue:
			r.persist(ctx, entry)
		}
	}
}

// drain makes a best effort to flush queued entries on shutdown.
func (r *Recorder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case entry := <-r.queue:
			r.persist(ctx, entry)
		default:
			return
		}
	}
}

func (r *Recorder) persist(ctx context.Context, entry *Entry) {
	if err := r.store.Insert(ctx, entry); err != nil {
		r.logger.Error().Err(err).
			Str("action", entry.Action).
			Str("resource", entry.Resource).
			Int("user_id", entry.UserID).
			Msg("failed to persist audit entry")
	}
}
