package models

// Role values a User can carry.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User is a login account. Student accounts are bound to a Student record.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	StudentID string `json:"studentId,omitempty"`
}

// IsStudent reports whether the account belongs to a student.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}
