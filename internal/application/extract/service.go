package extract

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bryanwahyu/medinsight/internal/domain/ai"
	"github.com/bryanwahyu/medinsight/internal/domain/ocr"
	"github.com/bryanwahyu/medinsight/internal/logger"
	"github.com/bryanwahyu/medinsight/internal/metrics"
)

// MinDirectTextLength is how much text OCR or SVG markup must yield before
// the vision-model fallback is skipped.
const MinDirectTextLength = 50

// ErrNoText means neither the local path nor the vision model produced text.
var ErrNoText = errors.New("no text could be extracted")

// OCROutcome is the typed result of the local OCR attempt.
type OCROutcome string

const (
	OCRSkipped OCROutcome = "skipped"
	OCRFailed  OCROutcome = "failed"
	OCRShort   OCROutcome = "short"
	OCROK      OCROutcome = "ok"
)

// Result carries the text plus how it was obtained.
type Result struct {
	Text       string
	OCR        OCROutcome
	UsedVision bool
}

// Service turns uploaded bytes into plain text. OCR may be nil, in which
// case raster images go straight to the vision model.
type Service struct {
	OCR           ocr.Engine
	Vision        ai.Vision
	OCRTimeout    time.Duration
	VisionTimeout time.Duration
	Log           *logger.Logger
}

func NewService(engine ocr.Engine, vision ai.Vision, ocrTimeout, visionTimeout time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{OCR: engine, Vision: vision, OCRTimeout: ocrTimeout, VisionTimeout: visionTimeout, Log: log}
}

// Extract picks a strategy by MIME type. Unsupported types are rejected
// at the upload boundary and never get here.
func (s *Service) Extract(ctx context.Context, data []byte, mimeType string) (Result, error) {
	switch mimeType {
	case "application/pdf":
		return s.viaVision(ctx, data, mimeType, Result{OCR: OCRSkipped}, "pdf")
	case "image/svg+xml":
		text := SVGText(data)
		if utf8.RuneCountInString(text) >= MinDirectTextLength {
			return Result{Text: text, OCR: OCRSkipped}, nil
		}
		s.Log.Debug("svg markup text too short", "chars", utf8.RuneCountInString(text))
		return s.viaVision(ctx, data, mimeType, Result{OCR: OCRSkipped}, "svg_short")
	default:
		text, outcome := s.tryOCR(ctx, data)
		s.Log.Debug("ocr attempt", "ocr_outcome", outcome, "chars", utf8.RuneCountInString(text))
		if outcome == OCROK {
			return Result{Text: text, OCR: outcome}, nil
		}
		return s.viaVision(ctx, data, mimeType, Result{OCR: outcome}, "ocr_"+string(outcome))
	}
}

// tryOCR never returns an error; failures are an outcome like any other.
func (s *Service) tryOCR(ctx context.Context, data []byte) (string, OCROutcome) {
	if s.OCR == nil {
		return "", OCRSkipped
	}
	ctx, cancel := withTimeout(ctx, s.OCRTimeout)
	defer cancel()

	text, err := s.OCR.Recognize(ctx, data)
	if err != nil {
		s.Log.Warn("ocr failed", "ocr_outcome", OCRFailed, "error", err)
		return "", OCRFailed
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinDirectTextLength {
		return text, OCRShort
	}
	return text, OCROK
}

func (s *Service) viaVision(ctx context.Context, data []byte, mimeType string, res Result, reason string) (Result, error) {
	metrics.ObserveFallback(reason)
	ctx, cancel := withTimeout(ctx, s.VisionTimeout)
	defer cancel()

	text, err := s.Vision.ReadImage(ctx, data, mimeType)
	if err != nil {
		return res, fmt.Errorf("vision extraction (%s): %w", reason, err)
	}
	res.Text = strings.TrimSpace(text)
	res.UsedVision = true
	if res.Text == "" {
		return res, ErrNoText
	}
	return res, nil
}

var svgTextPattern = regexp.MustCompile(`(?is)<(?:text|tspan)\b[^>]*>([^<]*)`)

// SVGText pulls the character data of <text> and <tspan> elements.
func SVGText(data []byte) string {
	matches := svgTextPattern.FindAllSubmatch(data, -1)
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		t := strings.TrimSpace(html.UnescapeString(string(m[1])))
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
