package auditlog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/audit"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
)

type mockRepo struct {
	entries []*audit.Entry
	filter  Filter
	err     error
}

func (m *mockRepo) Search(_ context.Context, filter Filter, limit, offset int) ([]*audit.Entry, int, error) {
	m.filter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.entries, len(m.entries), nil
}

func TestSearchEnrichesWithTranslations(t *testing.T) {
	resourceID := 42
	repo := &mockRepo{entries: []*audit.Entry{
		{ID: 1, UserID: 7, Action: "create:own:supervised", Resource: "evolutions", ResourceID: &resourceID, Timestamp: time.Now()},
		{ID: 2, UserID: 1, Action: "delete", Resource: "users", Timestamp: time.Now()},
	}}
	svc := NewService(repo)

	logs, total, err := svc.Search(context.Background(), Filter{}, 20, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("total = %d, len = %d", total, len(logs))
	}
	if logs[0].ResourceText != "Evoluções" {
		t.Fatalf("resourceText = %q", logs[0].ResourceText)
	}
	if logs[0].ActionText != "Criação (Supervisionado)" {
		t.Fatalf("actionText = %q", logs[0].ActionText)
	}
	if logs[1].ActionText != "Exclusão" || logs[1].ResourceText != "Usuários" {
		t.Fatalf("second entry labels = %q / %q", logs[1].ActionText, logs[1].ResourceText)
	}
}

func TestSearchPropagatesError(t *testing.T) {
	repo := &mockRepo{err: errors.New("boom")}
	svc := NewService(repo)

	if _, _, err := svc.Search(context.Background(), Filter{}, 20, 0); err == nil {
		t.Fatal("expected error")
	}
}

type noopAuditor struct{}

func (noopAuditor) Enqueue(*audit.Entry) {}

func requestAs(t *testing.T, h *Handler, principal *auth.Principal, target string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	api := e.Group("/api")
	h.RegisterRoutes(api)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if principal != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newTestHandler(repo Repository) *Handler {
	guard := rbac.NewGuard(rbac.DefaultTable(), noopAuditor{}, nil, zerolog.Nop())
	return NewHandler(NewService(repo), guard)
}

func TestListIsAdminOnly(t *testing.T) {
	h := newTestHandler(&mockRepo{})

	for _, role := range []string{"coordinator", "professional", "intern", "secretary"} {
		rec := requestAs(t, h, &auth.Principal{UserID: 2, Role: role}, "/api/audit-logs")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("role %s: status = %d, want 403", role, rec.Code)
		}
	}

	rec := requestAs(t, h, &auth.Principal{UserID: 1, Role: "admin"}, "/api/audit-logs")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestListParsesFilters(t *testing.T) {
	repo := &mockRepo{}
	h := newTestHandler(repo)

	rec := requestAs(t, h, &auth.Principal{UserID: 1, Role: "admin"},
		"/api/audit-logs?userId=7&resource=evolutions&action=delete&startDate=2026-01-01T00:00:00Z&endDate=2026-01-31T00:00:00Z&page=2&pageSize=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if repo.filter.UserID == nil || *repo.filter.UserID != 7 {
		t.Fatalf("userId filter = %v", repo.filter.UserID)
	}
	if repo.filter.Resource == nil || *repo.filter.Resource != "evolutions" {
		t.Fatalf("resource filter = %v", repo.filter.Resource)
	}
	if repo.filter.From == nil || repo.filter.To == nil {
		t.Fatal("period filters not parsed")
	}
}

func TestTranslationsEndpointIsAdminOnly(t *testing.T) {
	h := newTestHandler(&mockRepo{})

	rec := requestAs(t, h, &auth.Principal{UserID: 2, Role: "secretary"}, "/api/meta/translations")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("secretary status = %d, want 403", rec.Code)
	}

	rec = requestAs(t, h, &auth.Principal{UserID: 1, Role: "admin"}, "/api/meta/translations")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
}
