package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainai "github.com/bryanwahyu/medinsight/internal/domain/ai"
	"github.com/bryanwahyu/medinsight/internal/domain/persons"
)

type fakeLLM struct {
	calls atomic.Int32
	fn    func(ctx context.Context, system, user string) (string, error)
}

func (f *fakeLLM) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	f.calls.Add(1)
	return f.fn(ctx, system, user)
}

type stubPrompts struct {
	lastPerson *persons.PersonContext
}

func (p *stubPrompts) ReportAnalysis(text string, person *persons.PersonContext) (string, string) {
	p.lastPerson = person
	return "sys", text
}

func (p *stubPrompts) MedicineInfo(name string) (string, string) { return "sys", name }

const validAnalysis = `{
  "summary": "Blood count looks fine",
  "normalResults": ["Hemoglobin is normal"],
  "needsAttention": [],
  "explanation": "Nothing stands out.",
  "reportType": "Blood Test",
  "extra": true
}`

const validMedicine = `{
  "medicineName": "Paracetamol",
  "medicineType": "Pain reliever",
  "whatItDoes": "Eases pain and lowers fever",
  "expectedEffects": ["Less pain"],
  "sideEffects": {"common": [], "rare": ["Rash"], "serious": ["Liver damage in overdose"]},
  "contraindications": ["Severe liver disease"],
  "importantNotes": ["Check other products for paracetamol"]
}`

func returning(s string) *fakeLLM {
	return &fakeLLM{fn: func(context.Context, string, string) (string, error) { return s, nil }}
}

func TestGenerateReportAnalysisValid(t *testing.T) {
	llm := returning(validAnalysis)
	prompts := &stubPrompts{}
	g := NewGenerator(llm, prompts, time.Second, nil)

	person := &persons.PersonContext{Name: "Sari"}
	a, err := g.GenerateReportAnalysis(context.Background(), "Hb 13.5", person)
	require.NoError(t, err)
	assert.Equal(t, "Blood Test", a.ReportType)
	assert.Equal(t, []string{"Hemoglobin is normal"}, a.NormalResults)
	assert.Equal(t, []string{}, a.NeedsAttention)
	assert.Same(t, person, prompts.lastPerson)
}

func TestGenerateReportAnalysisSchemaFailures(t *testing.T) {
	cases := map[string]string{
		"missing summary":   `{"normalResults":[],"needsAttention":[],"explanation":"x","reportType":"y"}`,
		"null summary":      `{"summary":null,"normalResults":[],"needsAttention":[],"explanation":"x","reportType":"y"}`,
		"mistyped list":     `{"summary":"s","normalResults":"none","needsAttention":[],"explanation":"x","reportType":"y"}`,
		"null list element": `{"summary":"s","normalResults":[null],"needsAttention":[],"explanation":"x","reportType":"y"}`,
		"not an object":     `["summary"]`,
		"not json":          `{"summary": "s"`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewGenerator(returning(payload), &stubPrompts{}, 0, nil)
			_, err := g.GenerateReportAnalysis(context.Background(), "text", nil)
			assert.ErrorIs(t, err, domainai.ErrSchemaInvalid)
			assert.NotErrorIs(t, err, domainai.ErrTransport)
		})
	}
}

func TestGenerateTransportFailure(t *testing.T) {
	llm := &fakeLLM{fn: func(context.Context, string, string) (string, error) {
		return "", errors.New("connection reset")
	}}
	g := NewGenerator(llm, &stubPrompts{}, 0, nil)

	_, err := g.GenerateMedicineInfo(context.Background(), "Ibuprofen")
	assert.ErrorIs(t, err, domainai.ErrTransport)
	assert.NotErrorIs(t, err, domainai.ErrSchemaInvalid)
	assert.Equal(t, int32(1), llm.calls.Load())
}

func TestGenerateTimeoutIsTransport(t *testing.T) {
	llm := &fakeLLM{fn: func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	g := NewGenerator(llm, &stubPrompts{}, 10*time.Millisecond, nil)

	_, err := g.GenerateMedicineInfo(context.Background(), "Ibuprofen")
	assert.ErrorIs(t, err, domainai.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGenerateMedicineInfoValid(t *testing.T) {
	g := NewGenerator(returning(validMedicine), &stubPrompts{}, 0, nil)
	m, err := g.GenerateMedicineInfo(context.Background(), "Paracetamol")
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", m.MedicineName)
	assert.Equal(t, []string{"Rash"}, m.SideEffects.Rare)
}

func TestGenerateMedicineInfoMissingSideEffectList(t *testing.T) {
	payload := `{"medicineName":"A","medicineType":"B","whatItDoes":"C","expectedEffects":[],
	  "sideEffects":{"common":[],"rare":[]},"contraindications":[],"importantNotes":[]}`
	g := NewGenerator(returning(payload), &stubPrompts{}, 0, nil)
	_, err := g.GenerateMedicineInfo(context.Background(), "A")
	assert.ErrorIs(t, err, domainai.ErrSchemaInvalid)
}
