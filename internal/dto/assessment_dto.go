package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/samms-api/internal/models"
)

// MarkValue is a score entered on the marks sheet. A blank entry has a nil Value.
type MarkValue struct {
	Value *float64
}

// Score builds a filled-in mark entry.
func Score(v float64) MarkValue {
	return MarkValue{Value: &v}
}

// UnmarshalJSON accepts a number, a numeric string, an empty string or null.
func (m *MarkValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		m.Value = nil
		return nil
	}

	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			m.Value = nil
			return nil
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("invalid mark %q", text)
		}
		m.Value = &parsed
		return nil
	}

	var number float64
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("invalid mark: %w", err)
	}
	m.Value = &number
	return nil
}

// MarshalJSON writes the number or null.
func (m MarkValue) MarshalJSON() ([]byte, error) {
	if m.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*m.Value)
}

// AssessmentCreateRequest creates an assessment and the marks of its class.
type AssessmentCreateRequest struct {
	Name      string               `json:"name" validate:"required"`
	Subject   string               `json:"subject" validate:"required"`
	ClassName string               `json:"className" validate:"required"`
	Date      string               `json:"date" validate:"required,datetime=2006-01-02"`
	Total     float64              `json:"total" validate:"gt=0"`
	Marks     map[string]MarkValue `json:"marks"`
}

// Normalize trims the metadata fields.
func (r *AssessmentCreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Subject = strings.TrimSpace(r.Subject)
	r.ClassName = strings.TrimSpace(r.ClassName)
	r.Date = strings.TrimSpace(r.Date)
}

// AssessmentCreatedResponse returns the stored assessment with its marks.
type AssessmentCreatedResponse struct {
	Assessment models.Assessment `json:"assessment"`
	Marks      []models.Mark     `json:"marks"`
}
