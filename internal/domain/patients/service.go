package patients

import (
	"context"
	"errors"

	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/internal/platform/rbac"
)

var (
	ErrNotFound  = errors.New("não encontrado")
	ErrForbidden = errors.New("acesso não autorizado")
)

type Service struct {
	repo     Repository
	resolver *rbac.Resolver
}

func NewService(repo Repository, resolver *rbac.Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id int) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// Update applies the edit. When ownPolicy is set (the caller's grant was
// ownership-qualified) the principal must treat the patient through at least
// one appointment.
func (s *Service) Update(ctx context.Context, principal *auth.Principal, p *Patient, ownPolicy bool) error {
	if _, err := s.repo.GetByID(ctx, p.ID); err != nil {
		return ErrNotFound
	}
	if ownPolicy && !s.resolver.IsOwnerOrSupervisor(ctx, principal, rbac.ResourcePatients, p.ID) {
		return ErrForbidden
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error) {
	if name != "" {
		return s.repo.Search(ctx, name, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
