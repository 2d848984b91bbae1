package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/samms-api/internal/datastore"
	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/models"
)

// DefaultRankingLimit caps top performer and recent score listings.
const DefaultRankingLimit = 5

// ReportService answers read-only questions about the store. It never mutates
// or persists anything.
type ReportService interface {
	ListStudents(ctx context.Context, className string) []dto.StudentListItem
	StudentsInClass(ctx context.Context, className string) []models.Student
	MostCommonClass(ctx context.Context) (string, bool)
	Subjects(ctx context.Context) []string
	AttendanceSheet(ctx context.Context, className, date string) []dto.AttendanceSheetRow
	AttendanceRates(ctx context.Context, students []models.Student, filter dto.AttendanceFilter) []dto.StudentRate
	AverageMarks(ctx context.Context, students []models.Student, filter dto.MarksFilter) []dto.StudentAverage
	ClassAssessmentAverages(ctx context.Context, filter dto.MarksFilter) []dto.AssessmentAverage
	TopPerformers(ctx context.Context, filter dto.MarksFilter, limit int) dto.TopPerformers
	StudentAttendanceTimeline(ctx context.Context, studentID string) []dto.AttendancePoint
	StudentAverageBySubject(ctx context.Context, studentID string) []dto.SubjectAverage
	StudentRecentScores(ctx context.Context, studentID string, limit int) []dto.ScorePoint
	StudentSummary(ctx context.Context, studentID string) dto.StudentSummary
	BuildReports(ctx context.Context, filter dto.ReportFilter) dto.TeacherReports
}

type reportService struct {
	store  *datastore.DataStore
	logger zerolog.Logger
}

// NewReportService constructs the query engine over the shared store.
func NewReportService(store *datastore.DataStore, logger zerolog.Logger) ReportService {
	return &reportService{
		store:  store,
		logger: logger.With().Str("component", "report_service").Logger(),
	}
}

func (s *reportService) ListStudents(_ context.Context, className string) []dto.StudentListItem {
	var items []dto.StudentListItem
	s.store.View(func(db *models.Store) {
		students := make([]models.Student, 0, len(db.Students))
		for _, student := range db.Students {
			if className == "" || student.ClassName == className {
				students = append(students, student)
			}
		}
		sortStudentsByClassAndName(students)

		items = make([]dto.StudentListItem, 0, len(students))
		for _, student := range students {
			items = append(items, dto.StudentListItem{
				ID:        student.ID,
				Name:      student.Name,
				ClassName: student.ClassName,
				Username:  db.UsernameForStudent(student.ID),
			})
		}
	})
	return items
}

func (s *reportService) StudentsInClass(_ context.Context, className string) []models.Student {
	var roster []models.Student
	s.store.View(func(db *models.Store) {
		roster = classRoster(db, className)
	})
	return roster
}

func (s *reportService) MostCommonClass(_ context.Context) (string, bool) {
	best, bestCount := "", 0
	s.store.View(func(db *models.Store) {
		counts := make(map[string]int)
		order := make([]string, 0)
		for _, student := range db.Students {
			if _, seen := counts[student.ClassName]; !seen {
				order = append(order, student.ClassName)
			}
			counts[student.ClassName]++
		}
		for _, className := range order {
			if counts[className] > bestCount {
				best, bestCount = className, counts[className]
			}
		}
	})
	return best, bestCount > 0
}

func (s *reportService) Subjects(_ context.Context) []string {
	var subjects []string
	s.store.View(func(db *models.Store) {
		subjects = append(make([]string, 0, len(db.Subjects)), db.Subjects...)
	})
	return subjects
}

func (s *reportService) AttendanceSheet(_ context.Context, className, date string) []dto.AttendanceSheetRow {
	var rows []dto.AttendanceSheetRow
	s.store.View(func(db *models.Store) {
		present := make(map[string]bool)
		for _, record := range db.Attendance {
			if record.ClassName == className && record.Date == date {
				present[record.StudentID] = record.Present
			}
		}

		roster := classRoster(db, className)
		rows = make([]dto.AttendanceSheetRow, 0, len(roster))
		for _, student := range roster {
			rows = append(rows, dto.AttendanceSheetRow{
				StudentID: student.ID,
				Name:      student.Name,
				Present:   present[student.ID],
			})
		}
	})
	return rows
}

func (s *reportService) AttendanceRates(_ context.Context, students []models.Student, filter dto.AttendanceFilter) []dto.StudentRate {
	var rates []dto.StudentRate
	s.store.View(func(db *models.Store) {
		rates = attendanceRates(db, students, filter)
	})
	return rates
}

// attendanceRates divides present rows by recorded rows per student; the
// denominator is what was recorded, not calendar days.
func attendanceRates(db *models.Store, students []models.Student, filter dto.AttendanceFilter) []dto.StudentRate {
	totals := make(map[string]int)
	presents := make(map[string]int)
	for _, record := range db.Attendance {
		if filter.ClassName != "" && record.ClassName != filter.ClassName {
			continue
		}
		if filter.From != "" && record.Date < filter.From {
			continue
		}
		if filter.To != "" && record.Date > filter.To {
			continue
		}
		totals[record.StudentID]++
		if record.Present {
			presents[record.StudentID]++
		}
	}

	rates := make([]dto.StudentRate, 0, len(students))
	for _, student := range students {
		rates = append(rates, dto.StudentRate{
			StudentID: student.ID,
			Name:      student.Name,
			Percent:   wholePercent(presents[student.ID], totals[student.ID]),
		})
	}
	return rates
}

func (s *reportService) AverageMarks(_ context.Context, students []models.Student, filter dto.MarksFilter) []dto.StudentAverage {
	var averages []dto.StudentAverage
	s.store.View(func(db *models.Store) {
		averages = averageMarks(db, students, filter)
	})
	return averages
}

func averageMarks(db *models.Store, students []models.Student, filter dto.MarksFilter) []dto.StudentAverage {
	included := make(map[string]struct{})
	for _, assessment := range matchingAssessments(db, filter) {
		included[assessment.ID] = struct{}{}
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, mark := range db.Marks {
		if _, ok := included[mark.AssessmentID]; !ok {
			continue
		}
		sums[mark.StudentID] += mark.Score()
		counts[mark.StudentID]++
	}

	averages := make([]dto.StudentAverage, 0, len(students))
	for _, student := range students {
		averages = append(averages, dto.StudentAverage{
			StudentID: student.ID,
			Name:      student.Name,
			Average:   mean(sums[student.ID], counts[student.ID]),
		})
	}
	return averages
}

func (s *reportService) ClassAssessmentAverages(_ context.Context, filter dto.MarksFilter) []dto.AssessmentAverage {
	var averages []dto.AssessmentAverage
	s.store.View(func(db *models.Store) {
		averages = classAssessmentAverages(db, filter)
	})
	return averages
}

func classAssessmentAverages(db *models.Store, filter dto.MarksFilter) []dto.AssessmentAverage {
	assessments := matchingAssessments(db, filter)
	compare := newTextOrder()
	sort.SliceStable(assessments, func(i, j int) bool {
		if assessments[i].Date != assessments[j].Date {
			return assessments[i].Date < assessments[j].Date
		}
		return compare(assessments[i].Name, assessments[j].Name) < 0
	})

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, mark := range db.Marks {
		sums[mark.AssessmentID] += mark.Score()
		counts[mark.AssessmentID]++
	}

	averages := make([]dto.AssessmentAverage, 0, len(assessments))
	for _, assessment := range assessments {
		averages = append(averages, dto.AssessmentAverage{
			AssessmentID: assessment.ID,
			Label:        assessment.Label(),
			Date:         assessment.Date,
			Average:      mean(sums[assessment.ID], counts[assessment.ID]),
		})
	}
	return averages
}

func (s *reportService) TopPerformers(_ context.Context, filter dto.MarksFilter, limit int) dto.TopPerformers {
	var top dto.TopPerformers
	s.store.View(func(db *models.Store) {
		top = topPerformers(db, filter, limit)
	})
	return top
}

func topPerformers(db *models.Store, filter dto.MarksFilter, limit int) dto.TopPerformers {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}

	assessments := matchingAssessments(db, filter)
	if len(assessments) == 0 {
		return dto.TopPerformers{Entries: []dto.PerformerEntry{}}
	}
	sort.SliceStable(assessments, func(i, j int) bool { return assessments[i].Date > assessments[j].Date })
	latest := assessments[0]

	entries := make([]dto.PerformerEntry, 0)
	for _, mark := range db.Marks {
		if mark.AssessmentID != latest.ID {
			continue
		}
		entries = append(entries, dto.PerformerEntry{
			StudentID: mark.StudentID,
			Name:      db.StudentName(mark.StudentID),
			Marks:     mark.Score(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Marks > entries[j].Marks })
	if len(entries) > limit {
		entries = entries[:limit]
	}

	return dto.TopPerformers{
		AssessmentID:   latest.ID,
		AssessmentName: latest.Name,
		Entries:        entries,
	}
}

func (s *reportService) StudentAttendanceTimeline(_ context.Context, studentID string) []dto.AttendancePoint {
	var points []dto.AttendancePoint
	s.store.View(func(db *models.Store) {
		points = attendanceTimeline(db, studentID)
	})
	return points
}

func attendanceTimeline(db *models.Store, studentID string) []dto.AttendancePoint {
	records := make([]models.AttendanceRecord, 0)
	for _, record := range db.Attendance {
		if record.StudentID == studentID {
			records = append(records, record)
		}
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].Date < records[j].Date })

	points := make([]dto.AttendancePoint, 0, len(records))
	for _, record := range records {
		present := 0
		if record.Present {
			present = 1
		}
		points = append(points, dto.AttendancePoint{Date: record.Date, Present: present})
	}
	return points
}

func (s *reportService) StudentAverageBySubject(_ context.Context, studentID string) []dto.SubjectAverage {
	var averages []dto.SubjectAverage
	s.store.View(func(db *models.Store) {
		averages = averageBySubject(db, studentID)
	})
	return averages
}

func averageBySubject(db *models.Store, studentID string) []dto.SubjectAverage {
	index := db.AssessmentIndex()
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, mark := range db.Marks {
		if mark.StudentID != studentID {
			continue
		}
		assessment, ok := index[mark.AssessmentID]
		if !ok {
			continue
		}
		sums[assessment.Subject] += mark.Score()
		counts[assessment.Subject]++
	}

	subjects := make([]string, 0, len(counts))
	for subject := range counts {
		subjects = append(subjects, subject)
	}
	sortTexts(subjects)

	averages := make([]dto.SubjectAverage, 0, len(subjects))
	for _, subject := range subjects {
		averages = append(averages, dto.SubjectAverage{Subject: subject, Average: mean(sums[subject], counts[subject])})
	}
	return averages
}

func (s *reportService) StudentRecentScores(_ context.Context, studentID string, limit int) []dto.ScorePoint {
	var scores []dto.ScorePoint
	s.store.View(func(db *models.Store) {
		scores = recentScores(db, studentID, limit)
	})
	return scores
}

func recentScores(db *models.Store, studentID string, limit int) []dto.ScorePoint {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}

	byAssessment := make(map[string]float64)
	for _, mark := range db.Marks {
		if mark.StudentID == studentID {
			byAssessment[mark.AssessmentID] = mark.Score()
		}
	}

	assessments := make([]models.Assessment, 0)
	for _, assessment := range db.Assessments {
		if _, ok := byAssessment[assessment.ID]; ok {
			assessments = append(assessments, assessment)
		}
	}
	sort.SliceStable(assessments, func(i, j int) bool { return assessments[i].Date > assessments[j].Date })
	if len(assessments) > limit {
		assessments = assessments[:limit]
	}

	scores := make([]dto.ScorePoint, len(assessments))
	for i, assessment := range assessments {
		scores[len(assessments)-1-i] = dto.ScorePoint{
			AssessmentID: assessment.ID,
			Label:        assessment.Label(),
			Date:         assessment.Date,
			Marks:        byAssessment[assessment.ID],
		}
	}
	return scores
}

func (s *reportService) StudentSummary(_ context.Context, studentID string) dto.StudentSummary {
	var summary dto.StudentSummary
	s.store.View(func(db *models.Store) {
		summary = studentSummary(db, studentID)
	})
	return summary
}

func studentSummary(db *models.Store, studentID string) dto.StudentSummary {
	summary := dto.StudentSummary{}
	for _, record := range db.Attendance {
		if record.StudentID != studentID {
			continue
		}
		summary.Total++
		if record.Present {
			summary.Present++
		}
	}
	summary.AttendancePercent = wholePercent(summary.Present, summary.Total)

	index := db.AssessmentIndex()
	var sum float64
	var count int
	for _, mark := range db.Marks {
		if mark.StudentID != studentID {
			continue
		}
		if _, ok := index[mark.AssessmentID]; !ok {
			continue
		}
		sum += mark.Score()
		count++
	}
	summary.OverallAverage = mean(sum, count)
	return summary
}

func (s *reportService) BuildReports(ctx context.Context, filter dto.ReportFilter) dto.TeacherReports {
	tracer := otel.Tracer("github.com/noah-isme/samms-api/internal/service/report")
	_, span := tracer.Start(ctx, "reports.build")
	span.SetAttributes(
		attribute.String("reports.class", filter.ClassName),
		attribute.String("reports.subject", filter.Subject),
	)
	defer span.End()

	marksFilter := dto.MarksFilter{ClassName: filter.ClassName, Subject: filter.Subject}
	attendanceFilter := dto.AttendanceFilter{ClassName: filter.ClassName, From: filter.From, To: filter.To}

	var reports dto.TeacherReports
	s.store.View(func(db *models.Store) {
		var students []models.Student
		if filter.ClassName != "" {
			students = classRoster(db, filter.ClassName)
		} else {
			students = append(make([]models.Student, 0, len(db.Students)), db.Students...)
			sortStudentsByName(students)
		}

		reports = dto.TeacherReports{
			AttendanceByStudent:     attendanceRates(db, students, attendanceFilter),
			AverageMarksByStudent:   averageMarks(db, students, marksFilter),
			ClassAssessmentAverages: classAssessmentAverages(db, marksFilter),
			TopPerformers:           topPerformers(db, marksFilter, DefaultRankingLimit),
		}
		span.SetAttributes(attribute.Int("reports.students", len(students)))
	})

	s.logger.Debug().Str("class", filter.ClassName).Str("subject", filter.Subject).Msg("reports built")
	return reports
}
