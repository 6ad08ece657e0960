package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
	"github.com/clinicore/clinicore/internal/platform/websocket"
)

var (
	ErrNotFound = errors.New("documento não encontrado")
	// ErrUnlinked marks a document with no clinical association.
	ErrUnlinked = errors.New("documento sem associação clínica")
	// ErrAlreadySigned marks a second signing attempt.
	ErrAlreadySigned = errors.New("documento já assinado")
	// ErrForbidden marks an own-scoped operation on someone else's document.
	ErrForbidden = errors.New("acesso não autorizado")
)

// Notifier delivers private events to a user's websocket topic.
type Notifier interface {
	Notify(userID int, event websocket.Event)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Create stores a document record. Documents float free of nothing: at least
// one of patient, facility, evolution or appointment must be set.
func (s *Service) Create(ctx context.Context, principal *auth.Principal, d *Document) error {
	if !d.Linked() {
		return ErrUnlinked
	}
	if d.Category == "" {
		d.Category = CategoryOther
	}
	if d.Status == "" {
		d.Status = StatusActive
	}
	if d.Version == 0 {
		d.Version = 1
	}
	d.UploadedBy = principal.UserID

	if err := s.repo.Create(ctx, d); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Document, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// ownedBy reports whether the principal uploaded the document. Elevated roles
// own everything.
func ownedBy(principal *auth.Principal, d *Document) bool {
	return rbac.HasElevatedAccess(rbac.Role(principal.Role)) || d.UploadedBy == principal.UserID
}

// Update edits document metadata. With ownPolicy set only the uploader (or an
// elevated role) may edit.
func (s *Service) Update(ctx context.Context, principal *auth.Principal, id int, in UpdateInput, ownPolicy bool) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if ownPolicy && !ownedBy(principal, d) {
		return nil, ErrForbidden
	}

	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.Description != nil {
		d.Description = in.Description
	}
	if in.Category != nil {
		d.Category = *in.Category
	}
	if in.Status != nil {
		d.Status = *in.Status
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("update document %d: %w", id, err)
	}
	return d, nil
}

// Sign transitions a document to signed. Signing is final: a signed document
// cannot be signed again. With ownPolicy set only the uploader may sign.
func (s *Service) Sign(ctx context.Context, principal *auth.Principal, id int, ownPolicy bool) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if ownPolicy && !ownedBy(principal, d) {
		return nil, ErrForbidden
	}
	if d.Status == StatusSigned {
		return nil, ErrAlreadySigned
	}

	d.Status = StatusSigned
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("sign document %d: %w", id, err)
	}
	return d, nil
}

// Share notifies another user about a document. The document itself is not
// modified; the share is visible through the audit trail and the recipient's
// notification stream.
func (s *Service) Share(ctx context.Context, principal *auth.Principal, id, recipientUserID int, ownPolicy bool) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if ownPolicy && !ownedBy(principal, d) {
		return nil, ErrForbidden
	}

	if s.notifier != nil {
		s.notifier.Notify(recipientUserID, websocket.Event{
			Type:       "document_shared",
			Resource:   "documents",
			ResourceID: d.ID,
		})
	}
	return d, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
