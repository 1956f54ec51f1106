package reports

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, r *MedicalReport) error
	Get(ctx context.Context, id ReportID) (*MedicalReport, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*MedicalReport, error)
}

// ArchiveStore keeps the uploaded original next to the record.
type ArchiveStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
