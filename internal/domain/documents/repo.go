package documents

import "context"

// Repository defines the persistence interface for documents.
type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id int) (*Document, error)
	Update(ctx context.Context, d *Document) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Document, int, error)
}
