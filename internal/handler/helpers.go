package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/samms-api/internal/middleware"
	"github.com/noah-isme/samms-api/internal/service"
	"github.com/noah-isme/samms-api/internal/utils"
)

func localString(c *fiber.Ctx, key string) string {
	if v, ok := c.Locals(key).(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func userIDFromContext(c *fiber.Ctx) string {
	return localString(c, "user_id")
}

func studentIDFromContext(c *fiber.Ctx) string {
	return localString(c, "student_id")
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// respondServiceError maps service errors onto HTTP responses. Anything it does
// not recognise is logged and reported as a 500 with the fallback message.
func respondServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	var validationErr *service.ValidationError
	var formatErr *service.FormatError

	switch {
	case errors.As(err, &validationErr):
		return utils.Fail(c, fiber.StatusBadRequest, validationErr.Error(), validationErr.Fields)
	case errors.As(err, &formatErr):
		return utils.SendError(c, fiber.StatusBadRequest, formatErr.Error())
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	default:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
