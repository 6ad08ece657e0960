package identity

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/clinicore/clinicore/internal/platform/audit"
	"github.com/clinicore/clinicore/internal/platform/auth"
)

type mockUserRepo struct {
	users  map[int]*User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int]*User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *User) error {
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockUserRepo) Update(_ context.Context, user *User) error {
	if _, ok := m.users[user.ID]; !ok {
		return fmt.Errorf("not found")
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]*User, int, error) {
	var result []*User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, len(result), nil
}

func (m *mockUserRepo) TouchLastLogin(_ context.Context, id int) error {
	if u, ok := m.users[id]; ok {
		now := time.Now()
		u.LastLogin = &now
	}
	return nil
}

type mockProfessionalRepo struct {
	professionals map[int]*Professional
	nextID        int
}

func newMockProfessionalRepo() *mockProfessionalRepo {
	return &mockProfessionalRepo{professionals: make(map[int]*Professional), nextID: 1}
}

func (m *mockProfessionalRepo) Create(_ context.Context, p *Professional) error {
	p.ID = m.nextID
	m.nextID++
	m.professionals[p.ID] = p
	return nil
}

func (m *mockProfessionalRepo) GetByID(_ context.Context, id int) (*Professional, error) {
	p, ok := m.professionals[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockProfessionalRepo) GetByUserID(_ context.Context, userID int) (*Professional, error) {
	for _, p := range m.professionals {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockProfessionalRepo) Update(_ context.Context, p *Professional) error {
	m.professionals[p.ID] = p
	return nil
}

func (m *mockProfessionalRepo) Delete(_ context.Context, id int) error {
	delete(m.professionals, id)
	return nil
}

func (m *mockProfessionalRepo) List(_ context.Context, limit, offset int) ([]*Professional, int, error) {
	var result []*Professional
	for _, p := range m.professionals {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockProfessionalRepo) ListSupervisees(_ context.Context, supervisorID int) ([]*Professional, error) {
	var result []*Professional
	for _, p := range m.professionals {
		if p.SupervisorID != nil && *p.SupervisorID == supervisorID {
			result = append(result, p)
		}
	}
	return result, nil
}

type captureAuditor struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (a *captureAuditor) Enqueue(entry *audit.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

// fakeHasher avoids scrypt cost in tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(password, encoded string) (bool, error) {
	return encoded == "hashed:"+password, nil
}

func newTestService(t *testing.T) (*Service, *mockUserRepo, *mockProfessionalRepo, *captureAuditor) {
	t.Helper()
	users := newMockUserRepo()
	professionals := newMockProfessionalRepo()
	auditor := &captureAuditor{}
	issuer := auth.NewTokenIssuer([]byte("test-secret-key-with-enough-bytes"), time.Hour)
	svc := NewService(users, professionals, issuer, fakeHasher{}, auditor)
	return svc, users, professionals, auditor
}

func seedUser(t *testing.T, users *mockUserRepo, username, role string) *User {
	t.Helper()
	u := &User{
		Username: username,
		Password: "hashed:secret",
		Email:    username + "@clinic.test",
		FullName: "Test " + username,
		Role:     role,
		IsActive: true,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestLoginSuccessRecordsAudit(t *testing.T) {
	svc, users, _, auditor := newTestService(t)
	seedUser(t, users, "ana", "professional")

	result, err := svc.Login(context.Background(), Credentials{Username: "ana", Password: "secret"}, "10.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Error("empty token")
	}
	if result.User.Username != "ana" {
		t.Errorf("user = %+v", result.User)
	}

	if len(auditor.entries) != 1 {
		t.Fatalf("audit entries = %d", len(auditor.entries))
	}
	if auditor.entries[0].Action != "login" {
		t.Errorf("audit action = %q", auditor.entries[0].Action)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users, _, auditor := newTestService(t)
	seedUser(t, users, "ana", "professional")

	if _, err := svc.Login(context.Background(), Credentials{Username: "ana", Password: "wrong"}, "", ""); err != ErrInvalidCredentials {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
	if len(auditor.entries) != 0 {
		t.Error("failed login produced an audit entry")
	}
}

func TestLoginUnknownUserAndInactiveUserLookTheSame(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	inactive := seedUser(t, users, "old", "secretary")
	inactive.IsActive = false
	users.users[inactive.ID] = inactive

	_, errUnknown := svc.Login(context.Background(), Credentials{Username: "ghost", Password: "secret"}, "", "")
	_, errInactive := svc.Login(context.Background(), Credentials{Username: "old", Password: "secret"}, "", "")

	if errUnknown != ErrInvalidCredentials || errInactive != ErrInvalidCredentials {
		t.Errorf("errors = %v, %v; both should be ErrInvalidCredentials", errUnknown, errInactive)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	seedUser(t, users, "ana", "professional")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "ana", Password: "x", Email: "other@clinic.test", FullName: "Other", Role: "secretary",
	}, "", "")
	if err != ErrUsernameTaken {
		t.Errorf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestUpdateUserSelfRoleChangeRejected(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	u := seedUser(t, users, "carlos", "professional")

	principal := &auth.Principal{UserID: u.ID, Role: "professional"}
	newRole := "admin"
	_, err := svc.UpdateUser(context.Background(), principal, u.ID, UpdateUserInput{Role: &newRole})
	if err != ErrSelfPrivilegeChange {
		t.Errorf("err = %v, want ErrSelfPrivilegeChange", err)
	}

	stored, _ := users.GetByID(context.Background(), u.ID)
	if stored.Role != "professional" {
		t.Errorf("role was changed to %q", stored.Role)
	}
}

func TestUpdateUserSelfActiveFlagRejected(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	u := seedUser(t, users, "carlos", "secretary")

	principal := &auth.Principal{UserID: u.ID, Role: "secretary"}
	inactive := false
	_, err := svc.UpdateUser(context.Background(), principal, u.ID, UpdateUserInput{IsActive: &inactive})
	if err != ErrSelfPrivilegeChange {
		t.Errorf("err = %v, want ErrSelfPrivilegeChange", err)
	}
}

func TestUpdateUserSelfProfileFieldsAllowed(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	u := seedUser(t, users, "carlos", "professional")

	principal := &auth.Principal{UserID: u.ID, Role: "professional"}
	email := "new@clinic.test"
	sameRole := "professional"
	updated, err := svc.UpdateUser(context.Background(), principal, u.ID, UpdateUserInput{Email: &email, Role: &sameRole})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Email != "new@clinic.test" {
		t.Errorf("email = %q", updated.Email)
	}
}

func TestUpdateUserAdminMayChangeRoles(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	admin := seedUser(t, users, "root", "admin")
	u := seedUser(t, users, "carlos", "intern")

	principal := &auth.Principal{UserID: admin.ID, Role: "admin"}
	promoted := "professional"
	updated, err := svc.UpdateUser(context.Background(), principal, u.ID, UpdateUserInput{Role: &promoted})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Role != "professional" {
		t.Errorf("role = %q", updated.Role)
	}
}

func TestUpdateUserAdminSelfRoleChangeAllowed(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	admin := seedUser(t, users, "root", "admin")

	principal := &auth.Principal{UserID: admin.ID, Role: "admin"}
	demoted := "coordinator"
	if _, err := svc.UpdateUser(context.Background(), principal, admin.ID, UpdateUserInput{Role: &demoted}); err != nil {
		t.Errorf("admin self role change rejected: %v", err)
	}
}

func TestLoginAttachesProfessionalProfile(t *testing.T) {
	svc, users, professionals, _ := newTestService(t)
	u := seedUser(t, users, "ana", "professional")
	prof := &Professional{UserID: u.ID, ProfessionalType: "psychologist", EmploymentType: "employee", IsActive: true}
	if err := professionals.Create(context.Background(), prof); err != nil {
		t.Fatalf("seed professional: %v", err)
	}

	result, err := svc.Login(context.Background(), Credentials{Username: "ana", Password: "secret"}, "", "")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("empty token")
	}
}
