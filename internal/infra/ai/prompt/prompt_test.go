package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/medinsight/internal/domain/persons"
)

func TestReportAnalysisWithoutPerson(t *testing.T) {
	sys, user := Builder{}.ReportAnalysis("Hb 13.5 g/dL", nil)
	assert.Contains(t, sys, "JSON")
	assert.Contains(t, user, `"Hb 13.5 g/dL"`)
	assert.NotContains(t, user, "Patient context")
	for _, f := range []string{"summary", "normalResults", "needsAttention", "explanation", "reportType"} {
		assert.Contains(t, user, f)
	}
}

func TestReportAnalysisWithPersonAndBMI(t *testing.T) {
	age, h, w := 42, 180.0, 81.0
	sex := persons.SexFemale
	_, user := Builder{}.ReportAnalysis("text", &persons.PersonContext{Name: "Dewi", Age: &age, Sex: &sex, Height: &h, Weight: &w})
	assert.Contains(t, user, "- Name: Dewi")
	assert.Contains(t, user, "- Age: 42 years old")
	assert.Contains(t, user, "- Sex: Female")
	assert.Contains(t, user, "- BMI: 25.0")
	assert.Contains(t, user, "address Dewi by name")
	assert.Contains(t, user, "shows for Dewi")
}

func TestReportAnalysisSkipsBMIWithoutWeight(t *testing.T) {
	h := 170.0
	_, user := Builder{}.ReportAnalysis("text", &persons.PersonContext{Name: "A", Height: &h})
	assert.Contains(t, user, "- Height: 170 cm")
	assert.NotContains(t, user, "BMI")
}

func TestMedicineInfoPrompt(t *testing.T) {
	_, user := Builder{}.MedicineInfo("Amoxicillin")
	assert.Contains(t, user, `"Amoxicillin"`)
	assert.Contains(t, user, "more than 1% of patients")
	assert.Contains(t, user, `"contraindications"`)
}
