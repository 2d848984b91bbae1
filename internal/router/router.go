package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/samms-api/internal/config"
	"github.com/noah-isme/samms-api/internal/handler"
	"github.com/noah-isme/samms-api/internal/middleware"
	"github.com/noah-isme/samms-api/internal/models"
	"github.com/noah-isme/samms-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler             *handler.AuthHandler
	StudentHandler          *handler.StudentHandler
	AttendanceHandler       *handler.AttendanceHandler
	AssessmentHandler       *handler.AssessmentHandler
	ReportHandler           *handler.ReportHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	TransferHandler         *handler.TransferHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	// Teacher dashboard
	teacher := api.Group("/teacher", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(teacher)
	}
	if deps.AttendanceHandler != nil {
		deps.AttendanceHandler.Register(teacher)
	}
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(teacher)
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(teacher)
	}

	// Student dashboard
	if deps.StudentDashboardHandler != nil {
		deps.StudentDashboardHandler.RegisterTeacherView(teacher)

		studentOnly := middleware.WithAuth(func(c *fiber.Ctx) error {
			return c.Next()
		}, middleware.AuthOptions{Role: middleware.AuthRoleStudent})
		student := api.Group("/student", jwtMiddleware, studentOnly)
		deps.StudentDashboardHandler.Register(student)
	}

	// Export/import is available from both dashboards.
	if deps.TransferHandler != nil {
		transfer := api.Group("/transfer", jwtMiddleware, middleware.RequireRole(models.RoleTeacher, models.RoleStudent))
		deps.TransferHandler.Register(transfer)
	}
}
