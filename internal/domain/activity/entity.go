package activity

import "time"

type Type string

const (
	TypeReportUpload   Type = "report_upload"
	TypeMedicineSearch Type = "medicine_search"
)

// Activity represents a persisted user activity entry
type Activity struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	Type        Type      `json:"type"`
	DetailsJSON string    `json:"details,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"createdAt"`
}
