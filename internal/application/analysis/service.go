package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bryanwahyu/medinsight/internal/application"
	"github.com/bryanwahyu/medinsight/internal/application/extract"
	"github.com/bryanwahyu/medinsight/internal/application/usage"
	"github.com/bryanwahyu/medinsight/internal/domain/activity"
	"github.com/bryanwahyu/medinsight/internal/domain/medicines"
	"github.com/bryanwahyu/medinsight/internal/domain/persons"
	"github.com/bryanwahyu/medinsight/internal/domain/reports"
	"github.com/bryanwahyu/medinsight/internal/logger"
	"github.com/bryanwahyu/medinsight/internal/metrics"
)

const (
	// MinExtractedLength is the shortest extracted text worth analysing.
	MinExtractedLength = 10
	// PreviewLength caps the extracted text echoed back to the client.
	PreviewLength = 500
	historyLimit  = 50
)

type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (extract.Result, error)
}

type Generator interface {
	GenerateReportAnalysis(ctx context.Context, text string, person *persons.PersonContext) (*reports.StructuredAnalysis, error)
	GenerateMedicineInfo(ctx context.Context, name string) (*medicines.MedicineInfo, error)
}

// PersonDirectory resolves a user's own persons.
type PersonDirectory interface {
	ResolveContext(ctx context.Context, userID, id string) (*persons.PersonContext, error)
	List(ctx context.Context, userID string) ([]*persons.Person, error)
}

// Service is the per-request orchestrator: gate, extract or cache lookup,
// generate, persist, then bookkeeping. Nothing is written unless every step
// before persistence succeeded. Archive may be nil.
type Service struct {
	Gate      *usage.Gate
	Extractor Extractor
	Generator Generator
	Reports   reports.Repository
	Medicines medicines.Repository
	Persons   PersonDirectory
	Activity  activity.Repository
	Archive   reports.ArchiveStore
	Clock     application.Clock
	Log       *logger.Logger
}

// New fills in the logger and clock when left empty.
func New(s Service) *Service {
	if s.Log == nil {
		s.Log = logger.Nop()
	}
	if s.Clock == nil {
		s.Clock = application.SystemClock{}
	}
	return &s
}

// Caller is who is asking, as resolved by the identity middleware.
type Caller struct {
	Authenticated bool
	UserID        string
	SessionToken  string
}

//
// ==== USE CASES ====
//

type UploadCommand struct {
	Data     []byte
	MimeType string
	FileName string
	PersonID string
}

type UploadResult struct {
	ReportID      string                      `json:"reportId"`
	Analysis      *reports.StructuredAnalysis `json:"analysis"`
	ExtractedText string                      `json:"extractedText"`
}

// HandleReportUpload always extracts, generates and stores a new record.
// The quota slot is held for the whole pipeline and only kept on success.
func (s *Service) HandleReportUpload(ctx context.Context, c Caller, cmd UploadCommand) (UploadResult, error) {
	person, personID, err := s.resolvePerson(ctx, c, cmd.PersonID)
	if err != nil {
		return UploadResult{}, s.fail("report", err)
	}
	slot, err := s.reserve(ctx, c)
	if err != nil {
		return UploadResult{}, s.fail("report", err)
	}
	defer s.release(ctx, slot)

	res, err := s.Extractor.Extract(ctx, cmd.Data, cmd.MimeType)
	if err != nil {
		s.Log.Warn("extraction failed", "file_type", cmd.MimeType, "ocr_outcome", res.OCR, "error", err)
		return UploadResult{}, s.fail("report", Extraction(err))
	}
	text := res.Text
	if utf8.RuneCountInString(text) < MinExtractedLength {
		s.Log.Warn("extracted text too short", "chars", utf8.RuneCountInString(text), "ocr_outcome", res.OCR, "used_vision", res.UsedVision)
		return UploadResult{}, s.fail("report", Extraction(extract.ErrNoText))
	}

	analysis, err := s.Generator.GenerateReportAnalysis(ctx, text, person)
	if err != nil {
		return UploadResult{}, s.fail("report", Generation(MsgReportFailed, err))
	}

	report := &reports.MedicalReport{
		ID:            reports.ReportID(uuid.NewString()),
		UserID:        userRef(c),
		PersonID:      personID,
		FileName:      cmd.FileName,
		FileType:      cmd.MimeType,
		ExtractedText: &text,
		Analysis:      analysis,
		CreatedAt:     s.Clock.Now(),
	}
	if err := s.Reports.Save(ctx, report); err != nil {
		return UploadResult{}, s.fail("report", Persistence(MsgSaveFailed, err))
	}

	slot.Keep()
	s.archive(ctx, report, cmd.Data)
	s.record(ctx, c, activity.TypeReportUpload, map[string]any{
		"reportId": report.ID,
		"fileName": report.FileName,
		"fileType": report.FileType,
	})
	metrics.ObserveAnalysis("report", "success")

	return UploadResult{
		ReportID:      string(report.ID),
		Analysis:      analysis,
		ExtractedText: Preview(text),
	}, nil
}

type SearchCommand struct {
	Name     string
	PersonID string
}

type SearchResult struct {
	SearchID     string                  `json:"searchId"`
	MedicineInfo *medicines.MedicineInfo `json:"medicineInfo"`
	Cached       bool                    `json:"cached"`
}

// HandleMedicineSearch serves repeated names from storage. A cache hit
// consumes no quota and records no activity.
func (s *Service) HandleMedicineSearch(ctx context.Context, c Caller, cmd SearchCommand) (SearchResult, error) {
	name := strings.TrimSpace(cmd.Name)
	if utf8.RuneCountInString(name) < medicines.MinNameLength {
		return SearchResult{}, s.fail("medicine", Validation(MsgNameTooShort))
	}
	_, personID, err := s.resolvePerson(ctx, c, cmd.PersonID)
	if err != nil {
		return SearchResult{}, s.fail("medicine", err)
	}
	slot, err := s.reserve(ctx, c)
	if err != nil {
		return SearchResult{}, s.fail("medicine", err)
	}
	// a cache hit or any failure hands the slot back
	defer s.release(ctx, slot)

	cached, err := s.Medicines.FindByName(ctx, name)
	if err != nil {
		return SearchResult{}, s.fail("medicine", Persistence(MsgMedicineFailed, err))
	}
	if cached != nil && cached.SearchResult != nil {
		metrics.ObserveCache(true)
		metrics.ObserveAnalysis("medicine", "cached")
		return SearchResult{SearchID: string(cached.ID), MedicineInfo: cached.SearchResult, Cached: true}, nil
	}
	metrics.ObserveCache(false)

	info, err := s.Generator.GenerateMedicineInfo(ctx, name)
	if err != nil {
		return SearchResult{}, s.fail("medicine", Generation(MsgMedicineFailed, err))
	}

	search := &medicines.MedicineSearch{
		ID:           medicines.SearchID(uuid.NewString()),
		UserID:       userRef(c),
		PersonID:     personID,
		MedicineName: name,
		SearchResult: info,
		CreatedAt:    s.Clock.Now(),
	}
	if err := s.Medicines.Save(ctx, search); err != nil {
		return SearchResult{}, s.fail("medicine", Persistence(MsgSaveFailed, err))
	}

	slot.Keep()
	s.record(ctx, c, activity.TypeMedicineSearch, map[string]any{
		"searchId":     search.ID,
		"medicineName": search.MedicineName,
	})
	metrics.ObserveAnalysis("medicine", "success")

	return SearchResult{SearchID: string(search.ID), MedicineInfo: info, Cached: false}, nil
}

// GetReport is read-only and not gated.
func (s *Service) GetReport(ctx context.Context, id string) (*reports.MedicalReport, error) {
	r, err := s.Reports.Get(ctx, reports.ReportID(id))
	if errors.Is(err, reports.ErrNotFound) {
		return nil, NotFound(MsgReportNotFound)
	}
	if err != nil {
		return nil, Persistence("Failed to fetch report", err)
	}
	return r, nil
}

type History struct {
	Reports          []*reports.MedicalReport   `json:"reports"`
	MedicineSearches []*medicines.MedicineSearch `json:"medicineSearches"`
	Persons          []*persons.Person           `json:"persons"`
}

// UserHistory lists the user's records, newest first.
func (s *Service) UserHistory(ctx context.Context, userID string) (History, error) {
	rs, err := s.Reports.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return History{}, Persistence("Failed to fetch history", err)
	}
	ms, err := s.Medicines.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return History{}, Persistence("Failed to fetch history", err)
	}
	ps, err := s.Persons.List(ctx, userID)
	if err != nil {
		return History{}, Persistence("Failed to fetch history", err)
	}
	return History{Reports: nonNil(rs), MedicineSearches: nonNil(ms), Persons: nonNil(ps)}, nil
}

func (s *Service) UsageStatus(ctx context.Context, c Caller) (usage.Status, error) {
	st, err := s.Gate.Status(ctx, c.Authenticated, c.SessionToken, c.UserID)
	if err != nil {
		return usage.Status{}, Persistence("Failed to read usage", err)
	}
	return st, nil
}

// Preview truncates to PreviewLength characters plus "...".
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength]) + "..."
}

// resolvePerson only applies to signed-in callers; anonymous ones have no
// persons, so their personId is ignored.
func (s *Service) resolvePerson(ctx context.Context, c Caller, personID string) (*persons.PersonContext, *string, error) {
	personID = strings.TrimSpace(personID)
	if !c.Authenticated || personID == "" || s.Persons == nil {
		return nil, nil, nil
	}
	pc, err := s.Persons.ResolveContext(ctx, c.UserID, personID)
	if errors.Is(err, persons.ErrNotFound) {
		return nil, nil, Validation(MsgPersonNotFound)
	}
	if err != nil {
		return nil, nil, Persistence(MsgPersonLookupErr, err)
	}
	return pc, &personID, nil
}

func (s *Service) reserve(ctx context.Context, c Caller) (*usage.Reservation, error) {
	slot, err := s.Gate.Reserve(ctx, c.Authenticated, c.SessionToken)
	if errors.Is(err, usage.ErrLimitReached) {
		return nil, UsageLimit()
	}
	if err != nil {
		return nil, Persistence("Failed to check usage. Please try again.", err)
	}
	return slot, nil
}

// release returns an unkept slot, even when the request context is gone.
func (s *Service) release(ctx context.Context, slot *usage.Reservation) {
	if err := slot.Release(context.WithoutCancel(ctx)); err != nil {
		s.Log.Warn("usage slot release failed", "error", err)
	}
}

// record does the post-success bookkeeping for signed-in users; anonymous
// usage was already counted by the kept slot. Failures are logged only.
func (s *Service) record(ctx context.Context, c Caller, typ activity.Type, details map[string]any) {
	if !c.Authenticated {
		return
	}
	if _, err := s.Gate.RecordUser(ctx, c.UserID); err != nil {
		s.Log.Warn("user usage increment failed", "user_id", c.UserID, "error", err)
	}
	if s.Activity == nil {
		return
	}
	raw, err := json.Marshal(details)
	if err != nil {
		s.Log.Warn("activity details encode failed", "error", err)
		return
	}
	a := &activity.Activity{
		UserID:      c.UserID,
		Type:        typ,
		DetailsJSON: string(raw),
		CreatedAt:   s.Clock.Now(),
	}
	if err := s.Activity.Save(ctx, a); err != nil {
		s.Log.Warn("activity save failed", "user_id", c.UserID, "type", typ, "error", err)
	}
}

func (s *Service) archive(ctx context.Context, r *reports.MedicalReport, data []byte) {
	if s.Archive == nil {
		return
	}
	key := fmt.Sprintf("reports/%s/%s", r.ID, r.FileName)
	if _, err := s.Archive.Put(ctx, key, data, r.FileType); err != nil {
		s.Log.Warn("archive upload failed", "report_id", r.ID, "key", key, "error", err)
	}
}

func (s *Service) fail(kind string, err error) error {
	metrics.ObserveAnalysis(kind, string(KindOf(err)))
	return err
}

func userRef(c Caller) *string {
	if !c.Authenticated {
		return nil
	}
	id := c.UserID
	return &id
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
