package repository

import (
	"github.com/google/uuid"

	"github.com/noah-isme/samms-api/internal/models"
)

const seedPassword = "pass"

// DefaultStore builds the initial data set written on first start or when the
// persisted store cannot be read.
func DefaultStore() *models.Store {
	return &models.Store{
		Version: models.CurrentVersion,
		Users: []models.User{
			{ID: uuid.NewString(), Username: "teacher1", Password: seedPassword, Role: models.RoleTeacher},
			{ID: uuid.NewString(), Username: "s1", Password: seedPassword, Role: models.RoleStudent, StudentID: "stu_1"},
			{ID: uuid.NewString(), Username: "s2", Password: seedPassword, Role: models.RoleStudent, StudentID: "stu_2"},
			{ID: uuid.NewString(), Username: "s3", Password: seedPassword, Role: models.RoleStudent, StudentID: "stu_3"},
		},
		Students: []models.Student{
			{ID: "stu_1", Name: "Alice Johnson", ClassName: "10A"},
			{ID: "stu_2", Name: "Bob Smith", ClassName: "10A"},
			{ID: "stu_3", Name: "Carlos Lee", ClassName: "10B"},
		},
		Subjects:    []string{"Math", "Science", "English"},
		Assessments: []models.Assessment{},
		Marks:       []models.Mark{},
		Attendance:  []models.AttendanceRecord{},
	}
}
