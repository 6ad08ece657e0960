package documents

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicore/clinicore/internal/platform/audit"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
)

type noopAuditor struct{}

func (noopAuditor) Enqueue(*audit.Entry) {}

// newTestRouter wires the handler behind the real route registration so the
// guard middleware runs exactly as in production.
func newTestRouter(repo *mockRepo, notifier Notifier) *echo.Echo {
	e := echo.New()
	svc := NewService(repo, notifier)
	guard := rbac.NewGuard(rbac.DefaultTable(), noopAuditor{}, nil, zerolog.Nop())
	NewHandler(svc, guard).RegisterRoutes(e.Group("/api"))
	return e
}

func requestAs(e *echo.Echo, principal *auth.Principal, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if principal != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), principal))
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestSignRouteSignsOnce(t *testing.T) {
	repo := newMockRepo()
	doc := seedDocument(repo, 20, StatusPendingSignature)
	e := newTestRouter(repo, nil)
	uploader := &auth.Principal{UserID: 20, Role: "professional"}

	rec := requestAs(e, uploader, http.MethodPut, "/api/documents/1/sign", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var signed Document
	if err := json.Unmarshal(rec.Body.Bytes(), &signed); err != nil {
		t.Fatalf("decode signed document: %v", err)
	}
	if signed.ID != doc.ID || signed.Status != StatusSigned {
		t.Fatalf("signed = %+v", signed)
	}

	rec = requestAs(e, uploader, http.MethodPut, "/api/documents/1/sign", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second sign status = %d, want 400", rec.Code)
	}
	if got := decodeError(t, rec); got != "Documento já foi assinado" {
		t.Errorf("error = %q", got)
	}
}

func TestSignRouteRejectsOtherUploader(t *testing.T) {
	repo := newMockRepo()
	seedDocument(repo, 20, StatusPendingSignature)
	e := newTestRouter(repo, nil)

	other := &auth.Principal{UserID: 21, Role: "professional"}
	rec := requestAs(e, other, http.MethodPut, "/api/documents/1/sign", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := decodeError(t, rec); got != "Acesso não autorizado" {
		t.Errorf("error = %q", got)
	}
}

func TestShareRouteNotifiesRecipient(t *testing.T) {
	repo := newMockRepo()
	notifier := &fakeNotifier{}
	seedDocument(repo, 20, StatusActive)
	e := newTestRouter(repo, notifier)
	coordinator := &auth.Principal{UserID: 2, Role: "coordinator"}

	rec := requestAs(e, coordinator, http.MethodPost, "/api/documents/1/share", `{"userId":44}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(notifier.userIDs) != 1 || notifier.userIDs[0] != 44 {
		t.Fatalf("notified users = %v, want [44]", notifier.userIDs)
	}

	rec = requestAs(e, coordinator, http.MethodPost, "/api/documents/1/share", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing recipient status = %d, want 400", rec.Code)
	}
}

func TestShareRouteDeniedForProfessional(t *testing.T) {
	repo := newMockRepo()
	seedDocument(repo, 20, StatusActive)
	e := newTestRouter(repo, nil)

	uploader := &auth.Principal{UserID: 20, Role: "professional"}
	rec := requestAs(e, uploader, http.MethodPost, "/api/documents/1/share", `{"userId":44}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := decodeError(t, rec); got != "Acesso negado. Ação não permitida: share em documents" {
		t.Errorf("error = %q", got)
	}
}

func TestDeleteRouteDeniedForProfessional(t *testing.T) {
	repo := newMockRepo()
	seedDocument(repo, 20, StatusActive)
	e := newTestRouter(repo, nil)

	uploader := &auth.Principal{UserID: 20, Role: "professional"}
	rec := requestAs(e, uploader, http.MethodDelete, "/api/documents/1", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "approval") {
		t.Errorf("denied delete carried an approval marker: %s", rec.Body.String())
	}
	if _, ok := repo.documents[1]; !ok {
		t.Error("document deleted despite denial")
	}

	admin := &auth.Principal{UserID: 1, Role: "admin"}
	rec = requestAs(e, admin, http.MethodDelete, "/api/documents/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete status = %d, want 204", rec.Code)
	}
	if _, ok := repo.documents[1]; ok {
		t.Error("document still present after admin delete")
	}
}

func TestCreateRouteRequiresClinicalLink(t *testing.T) {
	repo := newMockRepo()
	e := newTestRouter(repo, nil)
	secretary := &auth.Principal{UserID: 8, Role: "secretary"}

	body := `{"name":"solto.pdf","fileUrl":"/uploads/solto.pdf","fileType":"application/pdf","fileSize":10}`
	rec := requestAs(e, secretary, http.MethodPost, "/api/documents", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if got := decodeError(t, rec); got != "É necessário associar o documento a um paciente, unidade, evolução ou consulta" {
		t.Errorf("error = %q", got)
	}
}

func TestListRouteScopesOwnReaders(t *testing.T) {
	repo := newMockRepo()
	seedDocument(repo, 20, StatusActive)
	seedDocument(repo, 99, StatusActive)
	e := newTestRouter(repo, nil)

	uploader := &auth.Principal{UserID: 20, Role: "professional"}
	rec := requestAs(e, uploader, http.MethodGet, "/api/documents", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out struct {
		Documents []*Document `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(out.Documents) != 1 || out.Documents[0].UploadedBy != 20 {
		t.Fatalf("listing = %+v, want only uploads by user 20", out.Documents)
	}
}
