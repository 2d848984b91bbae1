package dto

// AttendanceFilter narrows attendance records. Empty fields do not filter.
// Dates are inclusive bounds.
type AttendanceFilter struct {
	ClassName string
	From      string
	To        string
}

// MarksFilter narrows assessments by class and subject. Empty fields do not filter.
type MarksFilter struct {
	ClassName string
	Subject   string
}

// ReportFilter drives the teacher reports view.
type ReportFilter struct {
	ClassName string `query:"class"`
	Subject   string `query:"subject"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// StudentRate is a student's attendance percentage.
type StudentRate struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Percent   int    `json:"percent"`
}

// StudentAverage is a student's mean marks.
type StudentAverage struct {
	StudentID string  `json:"studentId"`
	Name      string  `json:"name"`
	Average   float64 `json:"average"`
}

// AssessmentAverage is the class mean on one assessment.
type AssessmentAverage struct {
	AssessmentID string  `json:"assessmentId"`
	Label        string  `json:"label"`
	Date         string  `json:"date"`
	Average      float64 `json:"average"`
}

// PerformerEntry is one ranked mark.
type PerformerEntry struct {
	StudentID string  `json:"studentId"`
	Name      string  `json:"name"`
	Marks     float64 `json:"marks"`
}

// TopPerformers ranks the marks of the latest matching assessment.
type TopPerformers struct {
	AssessmentID   string           `json:"assessmentId,omitempty"`
	AssessmentName string           `json:"assessmentName,omitempty"`
	Entries        []PerformerEntry `json:"entries"`
}

// TeacherReports bundles the series shown on the reports tab.
type TeacherReports struct {
	AttendanceByStudent     []StudentRate       `json:"attendance_by_student"`
	AverageMarksByStudent   []StudentAverage    `json:"average_marks_by_student"`
	ClassAssessmentAverages []AssessmentAverage `json:"class_assessment_averages"`
	TopPerformers           TopPerformers       `json:"top_performers"`
}

// AttendancePoint is 1 for present, 0 for absent.
type AttendancePoint struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
}

// SubjectAverage is a student's mean marks in one subject.
type SubjectAverage struct {
	Subject string  `json:"subject"`
	Average float64 `json:"average"`
}

// ScorePoint is a student's mark on one assessment.
type ScorePoint struct {
	AssessmentID string  `json:"assessmentId"`
	Label        string  `json:"label"`
	Date         string  `json:"date"`
	Marks        float64 `json:"marks"`
}

// StudentSummary condenses a student's attendance and marks.
type StudentSummary struct {
	Present           int     `json:"present"`
	Total             int     `json:"total"`
	AttendancePercent int     `json:"attendance_percent"`
	OverallAverage    float64 `json:"overall_average"`
}

// StudentProfile identifies the student a dashboard belongs to.
type StudentProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"className"`
}

// StudentDashboardResponse aggregates everything the student view shows.
type StudentDashboardResponse struct {
	Student          StudentProfile    `json:"student"`
	Timeline         []AttendancePoint `json:"attendance_timeline"`
	AverageBySubject []SubjectAverage  `json:"average_by_subject"`
	RecentScores     []ScorePoint      `json:"recent_scores"`
	Summary          StudentSummary    `json:"summary"`
}
