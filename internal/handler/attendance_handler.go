package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/service"
	"github.com/noah-isme/samms-api/internal/utils"
)

// AttendanceHandler exposes the daily attendance sheet.
type AttendanceHandler struct {
	records  service.RecordService
	reports  service.ReportService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewAttendanceHandler constructs the attendance handler.
func NewAttendanceHandler(records service.RecordService, reports service.ReportService, validate *validator.Validate, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		records:  records,
		reports:  reports,
		validate: validate,
		logger:   logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register wires attendance routes.
func (h *AttendanceHandler) Register(router fiber.Router) {
	router.Get("/attendance", h.sheet)
	router.Put("/attendance", h.save)
}

type attendanceSheetQuery struct {
	ClassName string `validate:"required"`
	Date      string `validate:"required,datetime=2006-01-02"`
}

func (h *AttendanceHandler) sheet(c *fiber.Ctx) error {
	query := attendanceSheetQuery{
		ClassName: strings.TrimSpace(c.Query("class")),
		Date:      strings.TrimSpace(c.Query("date")),
	}
	if err := h.validate.Struct(query); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "class and date (YYYY-MM-DD) are required", nil)
	}

	rows := h.reports.AttendanceSheet(c.UserContext(), query.ClassName, query.Date)
	meta := fiber.Map{"className": query.ClassName, "date": query.Date}
	return utils.OK(c, rows, "attendance sheet retrieved", meta)
}

func (h *AttendanceHandler) save(c *fiber.Ctx) error {
	var payload dto.AttendanceSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.records.SaveAttendance(c.UserContext(), payload)
	if err != nil {
		return respondServiceError(c, h.logger, err, "failed to save attendance")
	}

	return utils.SendSuccess(c, "attendance saved", response)
}
