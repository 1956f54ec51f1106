package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/medinsight/internal/domain/persons"
)

const reportSystem = `You are a helpful medical information assistant. Explain medical reports in simple terms without providing medical advice or recommendations. Always remind users to consult healthcare professionals for medical decisions. You must produce one valid JSON object only (no markdown, no commentary, no code fences).`

// Builder implements the generator's prompt contract.
type Builder struct{}

// ReportAnalysis embeds the report text and, when known, the person's demographics.
func (Builder) ReportAnalysis(text string, person *persons.PersonContext) (string, string) {
	var b strings.Builder
	b.WriteString("You are a medical expert tasked with explaining medical reports in simple, non-technical language.\n\n")
	b.WriteString("Analyze the following medical report text and provide a clear explanation suitable for patients:\n\n")
	fmt.Fprintf(&b, "%q\n", text)

	forName := ""
	if person != nil {
		forName = " for " + person.Name
		b.WriteString("\nPatient context for this analysis:\n")
		fmt.Fprintf(&b, "- Name: %s\n", person.Name)
		if person.Age != nil {
			fmt.Fprintf(&b, "- Age: %d years old\n", *person.Age)
		}
		if person.Sex != nil {
			fmt.Fprintf(&b, "- Sex: %s\n", *person.Sex)
		}
		if person.Height != nil {
			fmt.Fprintf(&b, "- Height: %g cm\n", *person.Height)
		}
		if person.Weight != nil {
			fmt.Fprintf(&b, "- Weight: %g kg\n", *person.Weight)
		}
		if bmi, ok := person.BMI(); ok {
			fmt.Fprintf(&b, "- BMI: %.1f\n", bmi)
		}
		fmt.Fprintf(&b, "\nUse age and sex specific reference ranges where relevant and address %s by name.\n", person.Name)
	}

	b.WriteString("\nRespond with a JSON object containing exactly these fields:\n")
	fmt.Fprintf(&b, "- summary: string, a brief overview of what this report shows%s\n", forName)
	b.WriteString("- normalResults: array of strings, findings within normal ranges, in simple terms\n")
	b.WriteString("- needsAttention: array of strings, findings that may need attention, without medical jargon\n")
	b.WriteString("- explanation: string, a paragraph explaining what these results mean for the patient's health\n")
	b.WriteString(`- reportType: string, the type of report (e.g. "Blood Test", "ECG", "X-Ray")` + "\n")
	b.WriteString("\nUse empty arrays rather than omitting a field. Do not provide medical advice or recommendations.")
	return reportSystem, b.String()
}
