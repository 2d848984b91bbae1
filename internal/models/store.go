package models

import (
	"bytes"
	"encoding/json"
	"sort"
)

// CurrentVersion is the store layout version written by this build.
const CurrentVersion = 1

// UnknownName labels references to students that no longer exist.
const UnknownName = "Unknown"

// UnknownUsername is shown for students without a bound login.
const UnknownUsername = "-"

// Store is the whole persisted data set. Top-level keys this build does not
// know about are kept in Extra and written back unchanged.
type Store struct {
	Version     int                        `json:"version"`
	Users       []User                     `json:"users"`
	Students    []Student                  `json:"students"`
	Subjects    []string                   `json:"subjects"`
	Assessments []Assessment               `json:"assessments"`
	Marks       []Mark                     `json:"marks"`
	Attendance  []AttendanceRecord         `json:"attendance"`
	Extra       map[string]json.RawMessage `json:"-"`
}

type storeFields Store

var knownStoreKeys = []string{"version", "users", "students", "subjects", "assessments", "marks", "attendance"}

// MarshalJSON writes the known collections followed by any preserved keys.
func (s Store) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(storeFields(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extra) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(s.Extra))
	for key := range s.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	for _, key := range keys {
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(s.Extra[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the known collections and keeps the remaining keys.
func (s *Store) UnmarshalJSON(data []byte) error {
	var fields storeFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, key := range knownStoreKeys {
		delete(raw, key)
	}

	fields.Extra = nil
	if len(raw) > 0 {
		fields.Extra = raw
	}
	*s = Store(fields)
	return nil
}

// StudentByID looks up a student.
func (s *Store) StudentByID(id string) (Student, bool) {
	for _, student := range s.Students {
		if student.ID == id {
			return student, true
		}
	}
	return Student{}, false
}

// StudentName resolves a student id to its name, or UnknownName when the
// student has been removed.
func (s *Store) StudentName(id string) string {
	if student, ok := s.StudentByID(id); ok {
		return student.Name
	}
	return UnknownName
}

// UserForStudent returns the login bound to a student.
func (s *Store) UserForStudent(studentID string) (User, bool) {
	for _, user := range s.Users {
		if user.StudentID != "" && user.StudentID == studentID {
			return user, true
		}
	}
	return User{}, false
}

// UsernameForStudent resolves the bound username, or UnknownUsername.
func (s *Store) UsernameForStudent(studentID string) string {
	if user, ok := s.UserForStudent(studentID); ok {
		return user.Username
	}
	return UnknownUsername
}

// UsernameTaken reports whether any user other than exceptUserID owns username.
func (s *Store) UsernameTaken(username, exceptUserID string) bool {
	for _, user := range s.Users {
		if user.Username == username && user.ID != exceptUserID {
			return true
		}
	}
	return false
}

// AssessmentIndex maps assessment ids to assessments.
func (s *Store) AssessmentIndex() map[string]Assessment {
	index := make(map[string]Assessment, len(s.Assessments))
	for _, assessment := range s.Assessments {
		index[assessment.ID] = assessment
	}
	return index
}
