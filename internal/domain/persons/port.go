package persons

import "context"

type Repository interface {
	Create(ctx context.Context, p *Person) error
	Update(ctx context.Context, p *Person) error
	Delete(ctx context.Context, userID, id string) error
	// Get returns ErrNotFound when the person does not exist or belongs to someone else.
	Get(ctx context.Context, userID, id string) (*Person, error)
	ListByUser(ctx context.Context, userID string) ([]*Person, error)
}
