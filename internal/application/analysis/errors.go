package analysis

import "errors"

// Kind classifies a failed request so the boundary can pick a status code.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindUsageLimit  Kind = "usage_limit"
	KindExtraction  Kind = "extraction"
	KindGeneration  Kind = "generation"
	KindPersistence Kind = "persistence"
	KindNotFound    Kind = "not_found"
)

// User-facing messages.
const (
	MsgUsageLimit      = "You've used your free analysis. Please sign in to continue using MedInsight."
	MsgUnreadable      = "Could not extract text from the file. Please ensure the file is clear and readable."
	MsgReportFailed    = "Failed to analyze medical report. Please try again."
	MsgMedicineFailed  = "Failed to get medicine information. Please try again."
	MsgNameTooShort    = "Medicine name must be at least 2 characters long"
	MsgSaveFailed      = "Failed to save the result. Please try again."
	MsgPersonNotFound  = "Person not found"
	MsgReportNotFound  = "Report not found"
	MsgPersonLookupErr = "Failed to load person details. Please try again."
)

// Error is the only error type the orchestrator returns.
type Error struct {
	Kind         Kind
	Message      string
	RequiresAuth bool
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func UsageLimit() *Error {
	return &Error{Kind: KindUsageLimit, Message: MsgUsageLimit, RequiresAuth: true}
}

func Extraction(err error) *Error {
	return &Error{Kind: KindExtraction, Message: MsgUnreadable, Err: err}
}

func Generation(msg string, err error) *Error {
	return &Error{Kind: KindGeneration, Message: msg, Err: err}
}

func Persistence(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}
