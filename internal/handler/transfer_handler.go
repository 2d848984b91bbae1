package handler

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/service"
	"github.com/noah-isme/samms-api/internal/utils"
)

// TransferHandler exposes store export and import.
type TransferHandler struct {
	service service.TransferService
	logger  zerolog.Logger
}

// NewTransferHandler constructs the transfer handler.
func NewTransferHandler(service service.TransferService, logger zerolog.Logger) *TransferHandler {
	return &TransferHandler{
		service: service,
		logger:  logger.With().Str("component", "transfer_handler").Logger(),
	}
}

// Register wires export/import routes.
func (h *TransferHandler) Register(router fiber.Router) {
	router.Get("/export", h.exportSnapshot)
	router.Get("/export.xlsx", h.exportWorkbook)
	router.Post("/import", h.importSnapshot)
}

func (h *TransferHandler) exportSnapshot(c *fiber.Ctx) error {
	file, err := h.service.ExportSnapshot(c.UserContext())
	if err != nil {
		return respondServiceError(c, h.logger, err, "failed to export data")
	}
	return sendFile(c, file)
}

func (h *TransferHandler) exportWorkbook(c *fiber.Ctx) error {
	file, err := h.service.ExportWorkbook(c.UserContext())
	if err != nil {
		return respondServiceError(c, h.logger, err, "failed to export report")
	}
	return sendFile(c, file)
}

func (h *TransferHandler) importSnapshot(c *fiber.Ctx) error {
	payload := c.Body()
	if fileHeader, err := c.FormFile("file"); err == nil {
		opened, openErr := fileHeader.Open()
		if openErr != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "unable to read uploaded file")
		}
		defer opened.Close()

		buf := make([]byte, fileHeader.Size)
		if _, readErr := io.ReadFull(opened, buf); readErr != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "unable to read uploaded file")
		}
		payload = buf
	}

	response, err := h.service.ImportSnapshot(c.UserContext(), payload)
	if err != nil {
		return respondServiceError(c, h.logger, err, "failed to import data")
	}

	requestLogger(h.logger, c).Info().Str("user_id", userIDFromContext(c)).Int("students", response.Students).Msg("store replaced by import")
	return utils.SendSuccess(c, "import successful", response)
}

func sendFile(c *fiber.Ctx, file dto.ExportFile) error {
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Status(fiber.StatusOK).Send(file.Payload)
}
