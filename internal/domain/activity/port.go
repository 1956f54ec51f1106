package activity

import "context"

// Repository defines persistence for user activity
type Repository interface {
	Save(ctx context.Context, a *Activity) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Activity, error)
}
