package service

import (
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/models"
)

// classRoster returns the students of a class ordered by name.
func classRoster(db *models.Store, className string) []models.Student {
	roster := make([]models.Student, 0)
	for _, student := range db.Students {
		if student.ClassName == className {
			roster = append(roster, student)
		}
	}
	sortStudentsByName(roster)
	return roster
}

// newTextOrder returns a locale-aware comparison for names, classes and
// subjects. Collators keep scratch buffers, so every sort takes its own.
func newTextOrder() func(a, b string) int {
	return collate.New(language.Und).CompareString
}

func sortStudentsByName(students []models.Student) {
	compare := newTextOrder()
	sort.SliceStable(students, func(i, j int) bool { return compare(students[i].Name, students[j].Name) < 0 })
}

// sortStudentsByClassAndName orders by class, then by name within a class.
func sortStudentsByClassAndName(students []models.Student) {
	compare := newTextOrder()
	sort.SliceStable(students, func(i, j int) bool {
		if byClass := compare(students[i].ClassName, students[j].ClassName); byClass != 0 {
			return byClass < 0
		}
		return compare(students[i].Name, students[j].Name) < 0
	})
}

func sortTexts(values []string) {
	compare := newTextOrder()
	sort.SliceStable(values, func(i, j int) bool { return compare(values[i], values[j]) < 0 })
}

// matchingAssessments keeps assessments whose class and subject pass the filter.
func matchingAssessments(db *models.Store, filter dto.MarksFilter) []models.Assessment {
	matched := make([]models.Assessment, 0)
	for _, assessment := range db.Assessments {
		if filter.ClassName != "" && assessment.ClassName != filter.ClassName {
			continue
		}
		if filter.Subject != "" && assessment.Subject != filter.Subject {
			continue
		}
		matched = append(matched, assessment)
	}
	return matched
}

// roundTo2 rounds half-up to two decimals. Inputs are never negative.
func roundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}

// wholePercent returns part/total as a whole percentage rounded half-up, or 0.
func wholePercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func mean(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return roundTo2(sum / float64(count))
}
