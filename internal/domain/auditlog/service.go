package auditlog

import (
	"context"

	"github.com/clinicore/clinicore/internal/platform/rbac"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search returns matching audit entries enriched with translated resource
// and action labels.
func (s *Service) Search(ctx context.Context, filter Filter, limit, offset int) ([]*LogEntry, int, error) {
	entries, total, err := s.repo.Search(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*LogEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, &LogEntry{
			Entry:        *entry,
			ResourceText: rbac.ResourceText(entry.Resource),
			ActionText:   rbac.ActionText(entry.Action),
		})
	}
	return out, total, nil
}

// Translations exposes the resource and action label catalog.
func (s *Service) Translations() map[string]map[string]string {
	return rbac.Translations()
}
