package models

// AttendanceRecord stores whether a student was present for a class on a date.
type AttendanceRecord struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	ClassName string `json:"className"`
	StudentID string `json:"studentId"`
	Present   bool   `json:"present"`
}
