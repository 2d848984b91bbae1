package dto

// ExportFile is a downloadable snapshot or report.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ImportResponse summarises the collections of an imported store.
type ImportResponse struct {
	Users       int `json:"users"`
	Students    int `json:"students"`
	Assessments int `json:"assessments"`
	Marks       int `json:"marks"`
	Attendance  int `json:"attendance"`
}
