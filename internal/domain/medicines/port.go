package medicines

import "context"

// Repository port. FindByName matches case-insensitively on the trimmed name
// and returns (nil, nil) when nothing is stored yet.
type Repository interface {
	Save(ctx context.Context, s *MedicineSearch) error
	FindByName(ctx context.Context, name string) (*MedicineSearch, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*MedicineSearch, error)
}
