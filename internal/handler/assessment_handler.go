package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/service"
	"github.com/noah-isme/samms-api/internal/utils"
)

// AssessmentHandler records assessments together with their marks.
type AssessmentHandler struct {
	records service.RecordService
	logger  zerolog.Logger
}

// NewAssessmentHandler constructs the assessment handler.
func NewAssessmentHandler(records service.RecordService, logger zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		records: records,
		logger:  logger.With().Str("component", "assessment_handler").Logger(),
	}
}

// Register wires assessment routes.
func (h *AssessmentHandler) Register(router fiber.Router) {
	router.Post("/assessments", h.create)
}

func (h *AssessmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssessmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.records.CreateAssessmentWithMarks(c.UserContext(), payload)
	if err != nil {
		return respondServiceError(c, h.logger, err, "failed to save assessment")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "assessment saved", response)
}
