package reports

import (
	"errors"
	"time"
)

// ReportID tipe untuk MedicalReport
type ReportID string

var ErrNotFound = errors.New("report not found")

// StructuredAnalysis value object, embedded in MedicalReport.
type StructuredAnalysis struct {
	Summary        string   `json:"summary"`
	NormalResults  []string `json:"normalResults"`
	NeedsAttention []string `json:"needsAttention"`
	Explanation    string   `json:"explanation"`
	ReportType     string   `json:"reportType"`
}

// Aggregate Root: MedicalReport. Written once at creation, never updated.
type MedicalReport struct {
	ID            ReportID            `json:"id"`
	UserID        *string             `json:"userId,omitempty"`
	PersonID      *string             `json:"personId,omitempty"`
	FileName      string              `json:"fileName"`
	FileType      string              `json:"fileType"`
	ExtractedText *string             `json:"extractedText,omitempty"`
	Analysis      *StructuredAnalysis `json:"analysis,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
}
