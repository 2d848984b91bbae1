package models

// Assessment is a gradeable event such as a quiz or an exam.
type Assessment struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Subject   string  `json:"subject"`
	ClassName string  `json:"className"`
	Date      string  `json:"date"`
	Total     float64 `json:"total"`
}

// Label renders the assessment the way report series name it.
func (a Assessment) Label() string {
	return a.Name + " (" + a.Subject + ")"
}

// Mark is one student's score on one assessment. Total is frozen to the
// assessment total at the time the mark was saved.
type Mark struct {
	ID           string   `json:"id"`
	AssessmentID string   `json:"assessmentId"`
	StudentID    string   `json:"studentId"`
	Marks        *float64 `json:"marks"`
	Total        float64  `json:"total"`
}

// Score returns the recorded marks, treating a missing value as zero.
func (m Mark) Score() float64 {
	if m.Marks == nil {
		return 0
	}
	return *m.Marks
}
