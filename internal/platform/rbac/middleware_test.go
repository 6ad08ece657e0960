package rbac

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/audit"
	"github.com/clinicore/clinicore/internal/platform/auth"
)

type captureAuditor struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (a *captureAuditor) Enqueue(entry *audit.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *captureAuditor) all() []*audit.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*audit.Entry(nil), a.entries...)
}

func newTestGuard(auditor Auditor) *Guard {
	return NewGuard(DefaultTable(), auditor, nil, zerolog.Nop())
}

// doRequest runs the middleware chain against a request authenticated as the
// given principal (nil for anonymous) and returns the recorder plus whether
// the inner handler ran.
func doRequest(t *testing.T, mw echo.MiddlewareFunc, principal *auth.Principal, method, target, body string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	var bodyReader *strings.Reader
	if body == "" {
		bodyReader = strings.NewReader("")
	} else {
		bodyReader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, bodyReader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if principal != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handlerRan := false
	handler := mw(func(c echo.Context) error {
		handlerRan = true
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, handlerRan
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestCheckPermissionUnauthenticated(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)

	rec, ran := doRequest(t, guard.CheckPermission(ResourcePatients, "read"), nil, http.MethodGet, "/api/patients", "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := errorBody(t, rec); got != "Não autenticado" {
		t.Errorf("error = %q", got)
	}
	if ran {
		t.Error("handler ran for anonymous request")
	}
}

func TestCheckPermissionUnknownRole(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)
	principal := &auth.Principal{UserID: 3, Role: "janitor"}

	rec, ran := doRequest(t, guard.CheckPermission(ResourcePatients, "read"), principal, http.MethodGet, "/api/patients", "")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := errorBody(t, rec); got != "Papel de usuário desconhecido: janitor" {
		t.Errorf("error = %q", got)
	}
	if ran {
		t.Error("handler ran for unknown role")
	}
}

func TestCheckPermissionResourceDenied(t *testing.T) {
	auditor := &captureAuditor{}
	table := Table{
		RoleSecretary: {
			ResourceAppointments: {grant(ActionRead)},
		},
	}
	guard := NewGuard(table, auditor, nil, zerolog.Nop())
	principal := &auth.Principal{UserID: 5, Role: "secretary"}

	rec, ran := doRequest(t, guard.CheckPermission(ResourceReports, "read"), principal, http.MethodGet, "/api/reports", "")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := errorBody(t, rec); got != "Acesso negado ao recurso: reports" {
		t.Errorf("error = %q", got)
	}
	if ran {
		t.Error("handler ran despite resource denial")
	}
}

func TestSecretaryCannotDeleteAppointments(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)
	principal := &auth.Principal{UserID: 9, Role: "secretary"}

	rec, ran := doRequest(t, guard.CheckPermission(ResourceAppointments, "delete"), principal, http.MethodDelete, "/api/appointments/4", "")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := errorBody(t, rec); got != "Acesso negado. Ação não permitida: delete em appointments" {
		t.Errorf("error = %q", got)
	}
	if ran {
		t.Error("handler ran despite action denial")
	}
	if len(auditor.all()) != 0 {
		t.Error("denied request produced an audit entry")
	}
}

func TestInternCreateSupervisedEvolutionGrantedAndAudited(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)
	profID := 12
	principal := &auth.Principal{UserID: 7, Role: "intern", ProfessionalID: &profID}

	rec, ran := doRequest(t, guard.CheckPermission(ResourceEvolutions, "create:own:supervised"), principal,
		http.MethodPost, "/api/evolutions", `{"patientId":3,"content":"sessão inicial"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !ran {
		t.Fatal("handler did not run for granted request")
	}
	entries := auditor.all()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Action != "create:own:supervised" {
		t.Errorf("entry.Action = %q", entry.Action)
	}
	if entry.Resource != "evolutions" {
		t.Errorf("entry.Resource = %q", entry.Resource)
	}
	if entry.UserID != 7 {
		t.Errorf("entry.UserID = %d", entry.UserID)
	}
	body, ok := entry.Details["body"].(map[string]any)
	if !ok {
		t.Fatalf("entry details missing body: %v", entry.Details)
	}
	if body["content"] != "sessão inicial" {
		t.Errorf("body content = %v", body["content"])
	}
}

func TestProfessionalCannotDeleteEvolutions(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)
	profID := 4
	principal := &auth.Principal{UserID: 2, Role: "professional", ProfessionalID: &profID}

	rec, ran := doRequest(t, guard.CheckPermission(ResourceEvolutions, "delete"), principal, http.MethodDelete, "/api/evolutions/10", "")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if ran {
		t.Error("handler ran despite denial")
	}
	if len(auditor.all()) != 0 {
		t.Error("denied delete produced an audit entry")
	}
}

// The delete route chain registers the permission check before the approval
// gate: a role without a delete grant is denied outright and never gets a
// pending marker or an approval_requested entry.
func TestDeniedDeleteNeverReachesApprovalGate(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)
	profID := 4
	principal := &auth.Principal{UserID: 2, Role: "professional", ProfessionalID: &profID}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/evolutions/10", strings.NewReader(""))
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("10")

	handlerRan := false
	var decision *PendingApproval
	inner := func(c echo.Context) error {
		handlerRan = true
		decision = DecisionFromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}
	chain := guard.CheckPermission(ResourceEvolutions, "delete")(
		guard.RequireApproval(ResourceEvolutions, "delete")(inner))
	if err := chain(c); err != nil {
		t.Fatalf("chain error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if handlerRan {
		t.Error("handler ran despite denial")
	}
	if decision != nil {
		t.Errorf("pending approval marker attached: %+v", decision)
	}
	for _, entry := range auditor.all() {
		t.Errorf("denied delete produced audit entry %q on %q", entry.Action, entry.Resource)
	}
}

func TestAuditEnqueuedBeforeHandlerRuns(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)
	principal := &auth.Principal{UserID: 1, Role: "admin"}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(`{"name":"Ana"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var entriesAtHandlerTime int
	handler := guard.CheckPermission(ResourcePatients, "create")(func(c echo.Context) error {
		entriesAtHandlerTime = len(auditor.all())
		return c.NoContent(http.StatusCreated)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if entriesAtHandlerTime != 1 {
		t.Errorf("entries at handler time = %d, want 1 (audit must precede handler)", entriesAtHandlerTime)
	}
}

func TestAuditedRequestBodyStillReadableByHandler(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)
	principal := &auth.Principal{UserID: 1, Role: "admin"}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/patients", strings.NewReader(`{"name":"Ana"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := guard.CheckPermission(ResourcePatients, "create")(func(c echo.Context) error {
		var payload map[string]any
		if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
			t.Fatalf("handler could not re-read body: %v", err)
		}
		if payload["name"] != "Ana" {
			t.Errorf("handler saw body %v", payload)
		}
		return c.NoContent(http.StatusCreated)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestReadActionsAreNotAudited(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)
	principal := &auth.Principal{UserID: 1, Role: "admin"}

	rec, ran := doRequest(t, guard.CheckPermission(ResourcePatients, "read"), principal, http.MethodGet, "/api/patients", "")

	if rec.Code != http.StatusOK || !ran {
		t.Fatalf("read not granted: status=%d ran=%v", rec.Code, ran)
	}
	if len(auditor.all()) != 0 {
		t.Error("read produced an audit entry")
	}
}

func TestResourceIDParamCapturedInEntry(t *testing.T) {
	auditor := &captureAuditor{}
	guard := newTestGuard(auditor)
	principal := &auth.Principal{UserID: 1, Role: "admin"}

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/patients/42", strings.NewReader(""))
	req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("42")

	handler := guard.CheckPermission(ResourcePatients, "delete")(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	entries := auditor.all()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].ResourceID == nil || *entries[0].ResourceID != 42 {
		t.Errorf("ResourceID = %v, want 42", entries[0].ResourceID)
	}
}
