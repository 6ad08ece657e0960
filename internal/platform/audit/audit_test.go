package audit

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeStore collects inserted entries for assertions.
type fakeStore struct {
	mu      sync.Mutex
	entries []*Entry
	err     error
	slow    time.Duration
}

func (f *fakeStore) Insert(ctx context.Context, entry *Entry) error {
	if f.slow > 0 {
		time.Sleep(f.slow)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return f.err
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeStore) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.count() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d entries, got %d", n, f.count())
}

func TestRedact_MasksCredentialFields(t *testing.T) {
	details := map[string]any{
		"username":        "drsilva",
		"password":        "hunter2",
		"currentPassword": "old",
		"newPassword":     "new",
		"body": map[string]any{
			"password": "nested-secret",
			"notes":    "keep",
		},
	}

	got := Redact(details)

	for _, key := range []string{"password", "currentPassword", "newPassword"} {
		if got[key] != MaskValue {
			t.Errorf("expected %s to be masked, got %v", key, got[key])
		}
	}
	nested := got["body"].(map[string]any)
	if nested["password"] != MaskValue {
		t.Errorf("expected nested password masked, got %v", nested["password"])
	}
	if nested["notes"] != "keep" {
		t.Errorf("expected non-credential field preserved, got %v", nested["notes"])
	}
	// Original untouched
	if details["password"] != "hunter2" {
		t.Error("Redact must not modify its input")
	}
}

func TestRedact_Nil(t *testing.T) {
	if Redact(nil) != nil {
		t.Error("expected nil for nil input")
	}
}

func TestRecorder_PersistsEnqueuedEntries(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, zerolog.New(os.Stderr), 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	r.Enqueue(&Entry{UserID: 1, Action: "create", Resource: "patients"})
	r.Enqueue(&Entry{UserID: 2, Action: "delete", Resource: "appointments"})

	store.waitFor(t, 2)

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.entries[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be stamped on enqueue")
	}
}

func TestRecorder_RedactsOnEnqueue(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, zerolog.New(os.Stderr), 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	r.Enqueue(&Entry{
		UserID:   1,
		Action:   "update",
		Resource: "users",
		Details:  map[string]any{"password": "plaintext"},
	})

	store.waitFor(t, 1)

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.entries[0].Details["password"] != MaskValue {
		t.Errorf("expected masked password in persisted entry, got %v", store.entries[0].Details["password"])
	}
}

func TestRecorder_StoreErrorIsSwallowed(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	r := NewRecorder(store, zerolog.New(os.Stderr), 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Start(ctx)

	// Must not panic or propagate; the worker just logs.
	r.Enqueue(&Entry{UserID: 1, Action: "create", Resource: "patients"})
	store.waitFor(t, 1)
}

func TestRecorder_DropsWhenQueueFull(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store, zerolog.New(os.Stderr), 1)

	// No worker running: first entry fills the queue, the rest are dropped.
	for i := 0; i < 10; i++ {
		r.Enqueue(&Entry{UserID: i, Action: "create", Resource: "patients"})
	}

	if len(r.queue) != 1 {
		t.Errorf("expected queue length 1, got %d", len(r.queue))
	}
}
