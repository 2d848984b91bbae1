package dto

import "strings"

// StudentUpsertRequest creates a student (empty ID) or edits an existing one.
type StudentUpsertRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	ClassName string `json:"className" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (r *StudentUpsertRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.ClassName = strings.TrimSpace(r.ClassName)
	r.Username = strings.TrimSpace(r.Username)
	r.Password = strings.TrimSpace(r.Password)
}

// StudentListItem is a student row with its bound login name.
type StudentListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"className"`
	Username  string `json:"username"`
}
