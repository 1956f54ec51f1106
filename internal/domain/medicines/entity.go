package medicines

import "time"

type SearchID string

type SideEffects struct {
	Common  []string `json:"common"`
	Rare    []string `json:"rare"`
	Serious []string `json:"serious"`
}

// MedicineInfo value object, embedded in MedicineSearch.
type MedicineInfo struct {
	MedicineName      string      `json:"medicineName"`
	MedicineType      string      `json:"medicineType"`
	WhatItDoes        string      `json:"whatItDoes"`
	ExpectedEffects   []string    `json:"expectedEffects"`
	SideEffects       SideEffects `json:"sideEffects"`
	Contraindications []string    `json:"contraindications"`
	ImportantNotes    []string    `json:"importantNotes"`
}

// MedicineSearch is one stored lookup. MedicineName is the trimmed query as typed.
type MedicineSearch struct {
	ID           SearchID      `json:"id"`
	UserID       *string       `json:"userId,omitempty"`
	PersonID     *string       `json:"personId,omitempty"`
	MedicineName string        `json:"medicineName"`
	SearchResult *MedicineInfo `json:"searchResult,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// MinNameLength is the shortest trimmed query accepted.
const MinNameLength = 2

// Popular is the fixed autocomplete list, in display order.
var Popular = []string{
	"Paracetamol",
	"Ibuprofen",
	"Aspirin",
	"Omeprazole",
	"Metformin",
	"Amlodipine",
	"Simvastatin",
	"Levothyroxine",
	"Salbutamol",
	"Prednisolone",
	"Amoxicillin",
	"Diclofenac",
	"Ranitidine",
	"Cetirizine",
	"Lorazepam",
}

// PopularMedicines returns a copy of the autocomplete list.
func PopularMedicines() []string {
	out := make([]string, len(Popular))
	copy(out, Popular)
	return out
}
