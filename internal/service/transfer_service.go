package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/samms-api/internal/datastore"
	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/models"
)

const (
	snapshotContentType = "application/json"
	workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	snapshotSchemaURL   = "samms://store.schema.json"
)

// snapshotSchema is the structural check applied to imported stores. Only the
// user and student collections are mandatory; unknown keys are allowed.
const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["users", "students"],
  "properties": {
    "version": {"type": "number"},
    "users": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "username": {"type": "string"},
          "password": {"type": "string"},
          "role": {"type": "string"},
          "studentId": {"type": "string"}
        }
      }
    },
    "students": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "className": {"type": "string"}
        }
      }
    },
    "subjects": {"type": ["array", "null"], "items": {"type": "string"}},
    "assessments": {"type": ["array", "null"], "items": {"type": "object"}},
    "marks": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {
          "marks": {"type": ["number", "null"]},
          "total": {"type": "number"}
        }
      }
    },
    "attendance": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "properties": {"present": {"type": "boolean"}}
      }
    }
  }
}`

// TransferService moves whole stores in and out of the application.
type TransferService interface {
	ExportSnapshot(ctx context.Context) (dto.ExportFile, error)
	ImportSnapshot(ctx context.Context, payload []byte) (dto.ImportResponse, error)
	ExportWorkbook(ctx context.Context) (dto.ExportFile, error)
}

type transferService struct {
	store   *datastore.DataStore
	records RecordService
	schema  *jsonschema.Schema
	logger  zerolog.Logger
	now     func() time.Time
}

// NewTransferService builds the import/export gateway.
func NewTransferService(store *datastore.DataStore, records RecordService, logger zerolog.Logger) (TransferService, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(snapshotSchemaURL, strings.NewReader(snapshotSchema)); err != nil {
		return nil, fmt.Errorf("failed to load snapshot schema: %w", err)
	}
	schema, err := compiler.Compile(snapshotSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile snapshot schema: %w", err)
	}

	return &transferService{
		store:   store,
		records: records,
		schema:  schema,
		logger:  logger.With().Str("component", "transfer_service").Logger(),
		now:     time.Now,
	}, nil
}

func (s *transferService) ExportSnapshot(_ context.Context) (dto.ExportFile, error) {
	var (
		payload []byte
		err     error
	)
	s.store.View(func(db *models.Store) {
		payload, err = json.MarshalIndent(db, "", "  ")
	})
	if err != nil {
		return dto.ExportFile{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return dto.ExportFile{
		Filename:    "samms_export_" + s.timestamp() + ".json",
		ContentType: snapshotContentType,
		Payload:     payload,
	}, nil
}

func (s *transferService) ImportSnapshot(ctx context.Context, payload []byte) (dto.ImportResponse, error) {
	next, err := s.parseSnapshot(payload)
	if err != nil {
		s.logger.Warn().Err(err).Int("bytes", len(payload)).Msg("rejected import")
		return dto.ImportResponse{}, err
	}

	if err := s.records.ReplaceStore(ctx, next); err != nil {
		return dto.ImportResponse{}, err
	}

	s.logger.Info().Int("students", len(next.Students)).Msg("snapshot imported")

	return dto.ImportResponse{
		Users:       len(next.Users),
		Students:    len(next.Students),
		Assessments: len(next.Assessments),
		Marks:       len(next.Marks),
		Attendance:  len(next.Attendance),
	}, nil
}

func (s *transferService) parseSnapshot(payload []byte) (models.Store, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return models.Store{}, &FormatError{Err: fmt.Errorf("empty payload")}
	}

	detected := mimetype.Detect(payload)
	if !detected.Is(snapshotContentType) && !strings.HasPrefix(detected.String(), "text/") {
		return models.Store{}, &FormatError{Err: fmt.Errorf("unsupported content type %s", detected.String())}
	}

	var document interface{}
	if err := json.Unmarshal(payload, &document); err != nil {
		return models.Store{}, &FormatError{Err: err}
	}
	if err := s.schema.Validate(document); err != nil {
		return models.Store{}, &FormatError{Err: err}
	}

	var next models.Store
	if err := json.Unmarshal(payload, &next); err != nil {
		return models.Store{}, &FormatError{Err: err}
	}
	return next, nil
}

func (s *transferService) ExportWorkbook(_ context.Context) (dto.ExportFile, error) {
	book := excelize.NewFile()
	defer book.Close()

	var err error
	s.store.View(func(db *models.Store) {
		if err = writeStudentSheet(book, db); err != nil {
			return
		}
		err = writeAssessmentSheet(book, db)
	})
	if err != nil {
		return dto.ExportFile{}, fmt.Errorf("failed to build workbook: %w", err)
	}

	buf, err := book.WriteToBuffer()
	if err != nil {
		return dto.ExportFile{}, fmt.Errorf("failed to write workbook: %w", err)
	}

	return dto.ExportFile{
		Filename:    "samms_report_" + s.timestamp() + ".xlsx",
		ContentType: workbookContentType,
		Payload:     buf.Bytes(),
	}, nil
}

func writeStudentSheet(book *excelize.File, db *models.Store) error {
	const sheet = "Students"
	if err := book.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	students := append(make([]models.Student, 0, len(db.Students)), db.Students...)
	sortStudentsByClassAndName(students)

	rates := attendanceRates(db, students, dto.AttendanceFilter{})
	averages := averageMarks(db, students, dto.MarksFilter{})

	if err := writeRow(book, sheet, 1, "Name", "Class", "Username", "Attendance %", "Average Marks"); err != nil {
		return err
	}
	for i, student := range students {
		err := writeRow(book, sheet, i+2,
			student.Name,
			student.ClassName,
			db.UsernameForStudent(student.ID),
			rates[i].Percent,
			averages[i].Average,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeAssessmentSheet(book *excelize.File, db *models.Store) error {
	const sheet = "Assessments"
	if _, err := book.NewSheet(sheet); err != nil {
		return err
	}

	averages := classAssessmentAverages(db, dto.MarksFilter{})
	index := db.AssessmentIndex()

	if err := writeRow(book, sheet, 1, "Date", "Assessment", "Subject", "Class", "Total", "Class Average"); err != nil {
		return err
	}
	for i, average := range averages {
		assessment := index[average.AssessmentID]
		err := writeRow(book, sheet, i+2,
			assessment.Date,
			assessment.Name,
			assessment.Subject,
			assessment.ClassName,
			assessment.Total,
			average.Average,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeRow(book *excelize.File, sheet string, row int, values ...interface{}) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := book.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *transferService) timestamp() string {
	return s.now().UTC().Format("2006-01-02-15-04-05")
}
