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

// ReportHandler serves the teacher report bundle.
type ReportHandler struct {
	reports  service.ReportService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewReportHandler constructs the report handler.
func NewReportHandler(reports service.ReportService, validate *validator.Validate, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		validate: validate,
		logger:   logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register wires report routes.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Get("/reports", h.build)
}

func (h *ReportHandler) build(c *fiber.Ctx) error {
	var filter dto.ReportFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid filters")
	}
	filter.ClassName = strings.TrimSpace(filter.ClassName)
	filter.Subject = strings.TrimSpace(filter.Subject)
	filter.From = strings.TrimSpace(filter.From)
	filter.To = strings.TrimSpace(filter.To)

	if err := h.validate.Struct(filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "from and to must be formatted as YYYY-MM-DD")
	}

	reports := h.reports.BuildReports(c.UserContext(), filter)
	meta := fiber.Map{
		"filters": fiber.Map{
			"class":   filter.ClassName,
			"subject": filter.Subject,
			"from":    filter.From,
			"to":      filter.To,
		},
	}
	return utils.OK(c, reports, "reports generated", meta)
}
