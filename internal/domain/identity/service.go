package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicore/clinicore/internal/platform/audit"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
)

var (
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrUsernameTaken      = errors.New("nome de usuário já existe")
	ErrNotFound           = errors.New("não encontrado")
	// ErrSelfPrivilegeChange marks an attempt by a non-admin to change their
	// own role or active flag.
	ErrSelfPrivilegeChange = errors.New("acesso não autorizado")
)

// Auditor is the slice of the audit recorder the service needs.
type Auditor interface {
	Enqueue(*audit.Entry)
}

// Hasher abstracts password hashing so tests can use a cheap fake.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, encoded string) (bool, error)
}

// ScryptHasher adapts the platform scrypt functions to the Hasher interface.
type ScryptHasher struct{}

func (ScryptHasher) Hash(password string) (string, error) {
	return auth.HashPassword(password)
}

func (ScryptHasher) Compare(password, encoded string) (bool, error) {
	return auth.ComparePassword(password, encoded)
}

type Service struct {
	users         UserRepository
	professionals ProfessionalRepository
	issuer        *auth.TokenIssuer
	hasher        Hasher
	auditor       Auditor
}

func NewService(users UserRepository, professionals ProfessionalRepository, issuer *auth.TokenIssuer, hasher Hasher, auditor Auditor) *Service {
	return &Service{
		users:         users,
		professionals: professionals,
		issuer:        issuer,
		hasher:        hasher,
		auditor:       auditor,
	}
}

// LoginResult carries the session token and the authenticated user.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login verifies credentials, issues a session token and records the login
// in the audit trail. Unknown users and wrong passwords are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, creds Credentials, ip, userAgent string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	match, err := s.hasher.Compare(creds.Password, user.Password)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}

	principal := &auth.Principal{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       user.Role,
		FacilityID: user.FacilityID,
	}
	if prof, err := s.professionals.GetByUserID(ctx, user.ID); err == nil {
		principal.ProfessionalID = &prof.ID
	}

	token, err := s.issuer.Issue(principal)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		// Login proceeds; the timestamp is informational.
		_ = err
	}

	s.auditor.Enqueue(&audit.Entry{
		UserID:    user.ID,
		Action:    "login",
		Resource:  "users",
		IPAddress: ip,
		UserAgent: userAgent,
		Details:   map[string]any{"username": user.Username},
	})

	return &LoginResult{Token: token, User: user}, nil
}

// Logout records the logout in the audit trail. With stateless JWT sessions
// there is nothing server-side to invalidate.
func (s *Service) Logout(ctx context.Context, principal *auth.Principal, ip, userAgent string) {
	s.auditor.Enqueue(&audit.Entry{
		UserID:    principal.UserID,
		Action:    "logout",
		Resource:  "users",
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

// Register creates a user account from the self-service registration form.
func (s *Service) Register(ctx context.Context, input RegisterInput, ip, userAgent string) (*User, error) {
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username: input.Username,
		Password: hashed,
		Email:    input.Email,
		FullName: input.FullName,
		Role:     input.Role,
		Phone:    input.Phone,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.auditor.Enqueue(&audit.Entry{
		UserID:    user.ID,
		Action:    "register",
		Resource:  "users",
		IPAddress: ip,
		UserAgent: userAgent,
		Details:   map[string]any{"username": user.Username, "role": user.Role},
	})

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// CreateUser creates an account on behalf of an admin, hashing the supplied
// password.
func (s *Service) CreateUser(ctx context.Context, user *User, plainPassword string) error {
	if _, err := s.users.GetByUsername(ctx, user.Username); err == nil {
		return ErrUsernameTaken
	}
	hashed, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hashed
	return s.users.Create(ctx, user)
}

// UpdateUser applies the partial update. A non-admin principal editing their
// own record cannot change role or isActive, even when the permission table
// grants them the update action.
func (s *Service) UpdateUser(ctx context.Context, principal *auth.Principal, id int, input UpdateUserInput) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}

	selfEdit := principal.UserID == id && principal.Role != string(rbac.RoleAdmin)
	if selfEdit {
		if input.Role != nil && *input.Role != user.Role {
			return nil, ErrSelfPrivilegeChange
		}
		if input.IsActive != nil && *input.IsActive != user.IsActive {
			return nil, ErrSelfPrivilegeChange
		}
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.FacilityID != nil {
		user.FacilityID = input.FacilityID
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.ProfileImageURL != nil {
		user.ProfileImageURL = input.ProfileImageURL
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		hashed, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.users.Delete(ctx, id)
}

func (s *Service) GetProfessional(ctx context.Context, id int) (*Professional, error) {
	p, err := s.professionals.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) GetProfessionalByUser(ctx context.Context, userID int) (*Professional, error) {
	p, err := s.professionals.GetByUserID(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListProfessionals(ctx context.Context, limit, offset int) ([]*Professional, int, error) {
	return s.professionals.List(ctx, limit, offset)
}

func (s *Service) CreateProfessional(ctx context.Context, p *Professional) error {
	return s.professionals.Create(ctx, p)
}

func (s *Service) UpdateProfessional(ctx context.Context, p *Professional) error {
	if _, err := s.professionals.GetByID(ctx, p.ID); err != nil {
		return ErrNotFound
	}
	return s.professionals.Update(ctx, p)
}

func (s *Service) DeleteProfessional(ctx context.Context, id int) error {
	if _, err := s.professionals.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.professionals.Delete(ctx, id)
}

// ListSupervisees returns the interns supervised by the given professional.
func (s *Service) ListSupervisees(ctx context.Context, supervisorID int) ([]*Professional, error) {
	return s.professionals.ListSupervisees(ctx, supervisorID)
}
