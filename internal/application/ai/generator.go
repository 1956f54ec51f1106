package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainai "github.com/bryanwahyu/medinsight/internal/domain/ai"
	"github.com/bryanwahyu/medinsight/internal/domain/medicines"
	"github.com/bryanwahyu/medinsight/internal/domain/persons"
	"github.com/bryanwahyu/medinsight/internal/domain/reports"
	"github.com/bryanwahyu/medinsight/internal/logger"
	"github.com/bryanwahyu/medinsight/internal/metrics"
)

// Prompts builds the (system, user) message pair for each output type.
type Prompts interface {
	ReportAnalysis(text string, person *persons.PersonContext) (system, user string)
	MedicineInfo(name string) (system, user string)
}

// Generator turns text or a medicine name into a validated structure.
// One attempt per call, no retries.
type Generator struct {
	llm     domainai.LLM
	prompts Prompts
	timeout time.Duration
	log     *logger.Logger
}

func NewGenerator(llm domainai.LLM, prompts Prompts, timeout time.Duration, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{llm: llm, prompts: prompts, timeout: timeout, log: log}
}

// GenerateReportAnalysis errors wrap either domainai.ErrTransport or domainai.ErrSchemaInvalid.
func (g *Generator) GenerateReportAnalysis(ctx context.Context, text string, person *persons.PersonContext) (*reports.StructuredAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("report text is empty")
	}
	system, user := g.prompts.ReportAnalysis(text, person)
	raw, err := g.complete(ctx, "report", system, user)
	if err != nil {
		return nil, err
	}
	a, err := ParseAnalysis([]byte(raw))
	if err != nil {
		g.schemaFailure("report", err)
		return nil, err
	}
	return a, nil
}

func (g *Generator) GenerateMedicineInfo(ctx context.Context, name string) (*medicines.MedicineInfo, error) {
	if name == "" {
		return nil, errors.New("medicine name is empty")
	}
	system, user := g.prompts.MedicineInfo(name)
	raw, err := g.complete(ctx, "medicine", system, user)
	if err != nil {
		return nil, err
	}
	m, err := ParseMedicineInfo([]byte(raw))
	if err != nil {
		g.schemaFailure("medicine", err)
		return nil, err
	}
	return m, nil
}

func (g *Generator) complete(ctx context.Context, kind, system, user string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	start := time.Now()
	raw, err := g.llm.CompleteJSON(ctx, system, user)
	if err != nil {
		metrics.ObserveGenerationFailure("transport")
		g.log.Error("generation failed", "kind", kind, "cause", "transport", "duration", time.Since(start), "error", err)
		if errors.Is(err, domainai.ErrTransport) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domainai.ErrTransport, err)
	}
	g.log.Debug("generation done", "kind", kind, "duration", time.Since(start), "bytes", len(raw))
	return raw, nil
}

func (g *Generator) schemaFailure(kind string, err error) {
	metrics.ObserveGenerationFailure("schema")
	g.log.Error("generation failed", "kind", kind, "cause", "schema", "error", err)
}
