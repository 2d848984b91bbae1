package service

import (
	"context"
	"errors"
	"html"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/datastore"
	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/models"
	"github.com/noah-isme/samms-api/internal/observability"
)

// errNothingChanged aborts an update that turned out to be a no-op.
var errNothingChanged = errors.New("nothing changed")

// RecordService creates and edits students, attendance and marks.
type RecordService interface {
	SaveStudent(ctx context.Context, payload dto.StudentUpsertRequest) (dto.StudentListItem, error)
	DeleteStudent(ctx context.Context, id string) error
	SaveAttendance(ctx context.Context, payload dto.AttendanceSaveRequest) (dto.AttendanceSaveResponse, error)
	CreateAssessmentWithMarks(ctx context.Context, payload dto.AssessmentCreateRequest) (dto.AssessmentCreatedResponse, error)
	ReplaceStore(ctx context.Context, next models.Store) error
}

type recordService struct {
	store     *datastore.DataStore
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	newID     func() string
}

// NewRecordService builds the mutation service over the shared store.
func NewRecordService(store *datastore.DataStore, validate *validator.Validate, logger zerolog.Logger) RecordService {
	return &recordService{
		store:     store,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "record_service").Logger(),
		newID:     uuid.NewString,
	}
}

func (s *recordService) SaveStudent(ctx context.Context, payload dto.StudentUpsertRequest) (item dto.StudentListItem, err error) {
	defer func() { countMutation("save_student", err) }()

	payload.Normalize()
	payload.Name = s.clean(payload.Name)
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentListItem{}, validationFailure(err)
	}

	err = s.store.Update(ctx, func(db *models.Store) error {
		if payload.ID != "" {
			return s.updateStudent(db, payload)
		}

		if db.UsernameTaken(payload.Username, "") {
			return newValidationError(ErrUsernameTaken, FieldError{Field: "username", Message: "is already taken"})
		}

		payload.ID = s.newID()
		db.Students = append(db.Students, models.Student{ID: payload.ID, Name: payload.Name, ClassName: payload.ClassName})
		db.Users = append(db.Users, models.User{
			ID:        s.newID(),
			Username:  payload.Username,
			Password:  payload.Password,
			Role:      models.RoleStudent,
			StudentID: payload.ID,
		})
		return nil
	})
	if err != nil {
		return dto.StudentListItem{}, err
	}

	s.logger.Info().Str("student_id", payload.ID).Str("class", payload.ClassName).Msg("student saved")

	return dto.StudentListItem{
		ID:        payload.ID,
		Name:      payload.Name,
		ClassName: payload.ClassName,
		Username:  payload.Username,
	}, nil
}

func (s *recordService) updateStudent(db *models.Store, payload dto.StudentUpsertRequest) error {
	studentIdx := -1
	for i := range db.Students {
		if db.Students[i].ID == payload.ID {
			studentIdx = i
			break
		}
	}
	if studentIdx < 0 {
		return ErrStudentNotFound
	}

	userIdx := -1
	for i := range db.Users {
		if db.Users[i].StudentID == payload.ID {
			userIdx = i
			break
		}
	}

	boundUserID := ""
	if userIdx >= 0 {
		boundUserID = db.Users[userIdx].ID
	}
	if db.UsernameTaken(payload.Username, boundUserID) {
		return newValidationError(ErrUsernameTaken, FieldError{Field: "username", Message: "is already taken"})
	}

	db.Students[studentIdx].Name = payload.Name
	db.Students[studentIdx].ClassName = payload.ClassName

	if userIdx < 0 {
		db.Users = append(db.Users, models.User{
			ID:        s.newID(),
			Username:  payload.Username,
			Password:  payload.Password,
			Role:      models.RoleStudent,
			StudentID: payload.ID,
		})
		return nil
	}

	db.Users[userIdx].Username = payload.Username
	db.Users[userIdx].Password = payload.Password
	return nil
}

func (s *recordService) DeleteStudent(ctx context.Context, id string) (err error) {
	defer func() { countMutation("delete_student", err) }()

	id = strings.TrimSpace(id)
	err = s.store.Update(ctx, func(db *models.Store) error {
		if _, ok := db.StudentByID(id); !ok {
			return errNothingChanged
		}

		users := db.Users[:0]
		for _, user := range db.Users {
			if user.StudentID != id {
				users = append(users, user)
			}
		}
		db.Users = users

		students := db.Students[:0]
		for _, student := range db.Students {
			if student.ID != id {
				students = append(students, student)
			}
		}
		db.Students = students
		return nil
	})
	if errors.Is(err, errNothingChanged) {
		s.logger.Debug().Str("student_id", id).Msg("delete skipped, student not found")
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info().Str("student_id", id).Msg("student deleted")
	return nil
}

func (s *recordService) SaveAttendance(ctx context.Context, payload dto.AttendanceSaveRequest) (response dto.AttendanceSaveResponse, err error) {
	defer func() { countMutation("save_attendance", err) }()

	payload.Normalize()
	if err := s.validator.Struct(payload); err != nil {
		return dto.AttendanceSaveResponse{}, validationFailure(err)
	}

	saved := 0
	err = s.store.Update(ctx, func(db *models.Store) error {
		kept := make([]models.AttendanceRecord, 0, len(db.Attendance))
		for _, record := range db.Attendance {
			if record.ClassName == payload.ClassName && record.Date == payload.Date {
				continue
			}
			kept = append(kept, record)
		}

		for _, studentID := range attendanceOrder(db, payload.ClassName, payload.Present) {
			kept = append(kept, models.AttendanceRecord{
				ID:        s.newID(),
				Date:      payload.Date,
				ClassName: payload.ClassName,
				StudentID: studentID,
				Present:   payload.Present[studentID],
			})
			saved++
		}
		db.Attendance = kept
		return nil
	})
	if err != nil {
		return dto.AttendanceSaveResponse{}, err
	}

	s.logger.Info().Str("class", payload.ClassName).Str("date", payload.Date).Int("records", saved).Msg("attendance saved")

	return dto.AttendanceSaveResponse{ClassName: payload.ClassName, Date: payload.Date, Saved: saved}, nil
}

// attendanceOrder lists the submitted student ids in roster order, followed by
// ids outside the current roster in lexical order.
func attendanceOrder(db *models.Store, className string, present map[string]bool) []string {
	order := make([]string, 0, len(present))
	seen := make(map[string]struct{}, len(present))
	for _, student := range classRoster(db, className) {
		if _, ok := present[student.ID]; ok {
			order = append(order, student.ID)
			seen[student.ID] = struct{}{}
		}
	}

	rest := make([]string, 0)
	for id := range present {
		if _, ok := seen[id]; !ok {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func (s *recordService) CreateAssessmentWithMarks(ctx context.Context, payload dto.AssessmentCreateRequest) (response dto.AssessmentCreatedResponse, err error) {
	defer func() { countMutation("create_assessment", err) }()

	payload.Normalize()
	payload.Name = s.clean(payload.Name)
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssessmentCreatedResponse{}, validationFailure(err)
	}

	err = s.store.Update(ctx, func(db *models.Store) error {
		roster := classRoster(db, payload.ClassName)
		if len(roster) == 0 {
			return newValidationError(ErrClassEmpty, FieldError{Field: "className", Message: "has no students"})
		}

		var outOfRange []FieldError
		for _, student := range roster {
			value := payload.Marks[student.ID].Value
			if value != nil && (*value < 0 || *value > payload.Total) {
				outOfRange = append(outOfRange, FieldError{Field: "marks." + student.ID, Message: "must be between 0 and the total"})
			}
		}
		if len(outOfRange) > 0 {
			return newValidationError(ErrMarkOutOfRange, outOfRange...)
		}

		assessment := models.Assessment{
			ID:        s.newID(),
			Name:      payload.Name,
			Subject:   payload.Subject,
			ClassName: payload.ClassName,
			Date:      payload.Date,
			Total:     payload.Total,
		}

		marks := make([]models.Mark, 0, len(roster))
		for _, student := range roster {
			score := 0.0
			if value := payload.Marks[student.ID].Value; value != nil {
				score = *value
			}
			marks = append(marks, models.Mark{
				ID:           s.newID(),
				AssessmentID: assessment.ID,
				StudentID:    student.ID,
				Marks:        &score,
				Total:        assessment.Total,
			})
		}

		db.Assessments = append(db.Assessments, assessment)
		db.Marks = append(db.Marks, marks...)

		response = dto.AssessmentCreatedResponse{Assessment: assessment, Marks: marks}
		return nil
	})
	if err != nil {
		return dto.AssessmentCreatedResponse{}, err
	}

	s.logger.Info().
		Str("assessment_id", response.Assessment.ID).
		Str("class", payload.ClassName).
		Int("marks", len(response.Marks)).
		Msg("assessment created")

	return response, nil
}

func (s *recordService) ReplaceStore(ctx context.Context, next models.Store) (err error) {
	defer func() { countMutation("replace_store", err) }()

	if next.Users == nil || next.Students == nil {
		return &FormatError{Err: ErrMissingCollections}
	}

	if err := s.store.Replace(ctx, next); err != nil {
		return err
	}

	s.logger.Info().Int("users", len(next.Users)).Int("students", len(next.Students)).Msg("store replaced")
	return nil
}

// clean strips markup from display names. Class names and subjects are
// matching keys shared with attendance and report filters, so they are only
// trimmed.
func (s *recordService) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(value)))
}

func countMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	observability.StoreMutations().WithLabelValues(operation, result).Inc()
}
