package dto

import "strings"

// AttendanceSaveRequest replaces the attendance of a class for one date.
type AttendanceSaveRequest struct {
	ClassName string          `json:"className" validate:"required"`
	Date      string          `json:"date" validate:"required,datetime=2006-01-02"`
	Present   map[string]bool `json:"present"`
}

// Normalize trims the class and date.
func (r *AttendanceSaveRequest) Normalize() {
	r.ClassName = strings.TrimSpace(r.ClassName)
	r.Date = strings.TrimSpace(r.Date)
}

// AttendanceSaveResponse reports how many records were written.
type AttendanceSaveResponse struct {
	ClassName string `json:"className"`
	Date      string `json:"date"`
	Saved     int    `json:"saved"`
}

// AttendanceSheetRow is one roster line of the attendance form.
type AttendanceSheetRow struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Present   bool   `json:"present"`
}
