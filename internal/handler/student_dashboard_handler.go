package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/service"
	"github.com/noah-isme/samms-api/internal/utils"
)

// StudentDashboardHandler exposes the student dashboard endpoint.
type StudentDashboardHandler struct {
	service service.StudentDashboardService
	logger  zerolog.Logger
}

// NewStudentDashboardHandler creates a new handler instance.
func NewStudentDashboardHandler(service service.StudentDashboardService, logger zerolog.Logger) *StudentDashboardHandler {
	return &StudentDashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "student_dashboard_handler").Logger(),
	}
}

// Register attaches the signed-in student's dashboard endpoint.
func (h *StudentDashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.getOwnDashboard)
}

// RegisterTeacherView lets teachers open any student's dashboard.
func (h *StudentDashboardHandler) RegisterTeacherView(router fiber.Router) {
	router.Get("/students/:id/dashboard", h.getStudentDashboard)
}

func (h *StudentDashboardHandler) getOwnDashboard(c *fiber.Ctx) error {
	studentID := studentIDFromContext(c)
	if studentID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing student context")
	}
	return h.respond(c, studentID)
}

func (h *StudentDashboardHandler) getStudentDashboard(c *fiber.Ctx) error {
	studentID := strings.TrimSpace(c.Params("id"))
	if studentID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	return h.respond(c, studentID)
}

func (h *StudentDashboardHandler) respond(c *fiber.Ctx, studentID string) error {
	dashboard, cacheHit, err := h.service.GetDashboard(c.UserContext(), studentID)
	if err != nil {
		return respondServiceError(c, h.logger, err, "failed to load dashboard")
	}

	return utils.OK(c, dashboard, "dashboard retrieved", fiber.Map{"cache_hit": cacheHit})
}
