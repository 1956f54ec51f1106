package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	domainai "github.com/bryanwahyu/medinsight/internal/domain/ai"
	"github.com/bryanwahyu/medinsight/internal/domain/medicines"
	"github.com/bryanwahyu/medinsight/internal/domain/reports"
)

// object is a decoded JSON object whose fields are checked one by one.
// Every field must be present, non-null and of the right type; extra
// fields are ignored.
type object map[string]json.RawMessage

func parseObject(raw []byte) (object, error) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, schemaErr("payload is not a JSON object: %v", err)
	}
	if o == nil {
		return nil, schemaErr("payload is null")
	}
	return o, nil
}

func (o object) field(key string) (json.RawMessage, error) {
	v, ok := o[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, schemaErr("%s is required", key)
	}
	return v, nil
}

func (o object) str(key string) (string, error) {
	v, err := o.field(key)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", schemaErr("%s must be a string", key)
	}
	return s, nil
}

func (o object) strs(key string) ([]string, error) {
	v, err := o.field(key)
	if err != nil {
		return nil, err
	}
	var items []*string
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, schemaErr("%s must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		if it == nil {
			return nil, schemaErr("%s[%d] must be a string", key, i)
		}
		out = append(out, *it)
	}
	return out, nil
}

func (o object) obj(key string) (object, error) {
	v, err := o.field(key)
	if err != nil {
		return nil, err
	}
	var inner object
	if err := json.Unmarshal(v, &inner); err != nil || inner == nil {
		return nil, schemaErr("%s must be an object", key)
	}
	return inner, nil
}

func schemaErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domainai.ErrSchemaInvalid, fmt.Sprintf(format, args...))
}

// ParseAnalysis validates a report analysis payload.
func ParseAnalysis(raw []byte) (*reports.StructuredAnalysis, error) {
	o, err := parseObject(raw)
	if err != nil {
		return nil, err
	}
	var a reports.StructuredAnalysis
	if a.Summary, err = o.str("summary"); err != nil {
		return nil, err
	}
	if a.NormalResults, err = o.strs("normalResults"); err != nil {
		return nil, err
	}
	if a.NeedsAttention, err = o.strs("needsAttention"); err != nil {
		return nil, err
	}
	if a.Explanation, err = o.str("explanation"); err != nil {
		return nil, err
	}
	if a.ReportType, err = o.str("reportType"); err != nil {
		return nil, err
	}
	return &a, nil
}

// ParseMedicineInfo validates a medicine info payload.
func ParseMedicineInfo(raw []byte) (*medicines.MedicineInfo, error) {
	o, err := parseObject(raw)
	if err != nil {
		return nil, err
	}
	var m medicines.MedicineInfo
	if m.MedicineName, err = o.str("medicineName"); err != nil {
		return nil, err
	}
	if m.MedicineType, err = o.str("medicineType"); err != nil {
		return nil, err
	}
	if m.WhatItDoes, err = o.str("whatItDoes"); err != nil {
		return nil, err
	}
	if m.ExpectedEffects, err = o.strs("expectedEffects"); err != nil {
		return nil, err
	}
	se, err := o.obj("sideEffects")
	if err != nil {
		return nil, err
	}
	if m.SideEffects.Common, err = se.strs("common"); err != nil {
		return nil, err
	}
	if m.SideEffects.Rare, err = se.strs("rare"); err != nil {
		return nil, err
	}
	if m.SideEffects.Serious, err = se.strs("serious"); err != nil {
		return nil, err
	}
	if m.Contraindications, err = o.strs("contraindications"); err != nil {
		return nil, err
	}
	if m.ImportantNotes, err = o.strs("importantNotes"); err != nil {
		return nil, err
	}
	return &m, nil
}
