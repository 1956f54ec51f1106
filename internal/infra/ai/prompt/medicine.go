package prompt

import "fmt"

const medicineSystem = `You are a helpful pharmaceutical information assistant. Provide medicine information in simple terms without giving medical advice or specific dosage recommendations. Always remind users to consult healthcare professionals. You must produce one valid JSON object only (no markdown, no commentary, no code fences).`

// MedicineInfo asks for the fixed medicine schema.
func (Builder) MedicineInfo(name string) (string, string) {
	user := fmt.Sprintf(`Provide detailed information about the medicine %q in simple, patient-friendly language.

Schema (example with empty values):
{
  "medicineName": "<string>",
  "medicineType": "<string, e.g. Pain reliever, Antibiotic>",
  "whatItDoes": "<string>",
  "expectedEffects": ["<string>"],
  "sideEffects": {
    "common": ["<string, more than 1%% of patients>"],
    "rare": ["<string, less than 1%% of patients>"],
    "serious": ["<string, needs immediate medical attention>"]
  },
  "contraindications": ["<string, who should not take it>"],
  "importantNotes": ["<string, interactions and reminders>"]
}

Every field is required; use empty arrays when there is nothing to list. Do not provide dosage recommendations or medical advice.`, name)
	return medicineSystem, user
}
