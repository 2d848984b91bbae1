package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/service"
	"github.com/noah-isme/samms-api/internal/utils"
)

// StudentHandler exposes roster management for teachers.
type StudentHandler struct {
	records service.RecordService
	reports service.ReportService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the roster handler.
func NewStudentHandler(records service.RecordService, reports service.ReportService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		records: records,
		reports: reports,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student, class and subject routes to the teacher group.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/students", h.list)
	router.Post("/students", h.create)
	router.Put("/students/:id", h.update)
	router.Delete("/students/:id", h.delete)
	router.Get("/classes/default", h.defaultClass)
	router.Get("/classes/:class/students", h.classRoster)
	router.Get("/subjects", h.subjects)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	items := h.reports.ListStudents(c.UserContext(), strings.TrimSpace(c.Query("class")))
	return utils.OK(c, items, "students retrieved", fiber.Map{"count": len(items)})
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.ID = ""

	item, err := h.records.SaveStudent(c.UserContext(), payload)
	if err != nil {
		return respondServiceError(c, h.logger, err, "failed to save student")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", item)
}

func (h *StudentHandler) update(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.StudentUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	payload.ID = id

	item, err := h.records.SaveStudent(c.UserContext(), payload)
	if err != nil {
		return respondServiceError(c, h.logger, err, "failed to save student")
	}

	return utils.SendSuccess(c, "student updated", item)
}

func (h *StudentHandler) delete(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	if err := h.records.DeleteStudent(c.UserContext(), id); err != nil {
		return respondServiceError(c, h.logger, err, "failed to delete student")
	}

	return utils.SendSuccess(c, "student deleted", fiber.Map{"id": id})
}

func (h *StudentHandler) defaultClass(c *fiber.Ctx) error {
	className, ok := h.reports.MostCommonClass(c.UserContext())
	if !ok {
		return utils.SendError(c, fiber.StatusNotFound, "no classes found")
	}
	return utils.SendSuccess(c, "default class resolved", fiber.Map{"className": className})
}

func (h *StudentHandler) classRoster(c *fiber.Ctx) error {
	className := strings.TrimSpace(c.Params("class"))
	students := h.reports.StudentsInClass(c.UserContext(), className)
	return utils.OK(c, students, "class roster retrieved", fiber.Map{"count": len(students)})
}

func (h *StudentHandler) subjects(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "subjects retrieved", h.reports.Subjects(c.UserContext()))
}
