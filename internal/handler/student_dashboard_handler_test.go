package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/samms-api/internal/dto"
	"github.com/noah-isme/samms-api/internal/handler"
	"github.com/noah-isme/samms-api/internal/service"
)

type stubStudentDashboardService struct {
	response dto.StudentDashboardResponse
	err      error
	calls    int
	lastID   string
	cacheHit bool
}

func (s *stubStudentDashboardService) GetDashboard(_ context.Context, studentID string) (dto.StudentDashboardResponse, bool, error) {
	s.calls++
	s.lastID = studentID
	if s.err != nil {
		return dto.StudentDashboardResponse{}, false, s.err
	}
	return s.response, s.cacheHit, nil
}

func TestStudentDashboardHandler_Success(t *testing.T) {
	response := dto.StudentDashboardResponse{
		Student: dto.StudentProfile{ID: "stu_1", Name: "Alice Johnson", ClassName: "10A"},
		Summary: dto.StudentSummary{Present: 3, Total: 4, AttendancePercent: 75, OverallAverage: 9},
	}
	svc := &stubStudentDashboardService{response: response, cacheHit: true}
	logger := zerolog.Nop()

	app := fiber.New()
	group := app.Group("/api/v1/student", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		c.Locals("user_role", "student")
		c.Locals("student_id", "stu_1")
		return c.Next()
	})
	handler.NewStudentDashboardHandler(svc, logger).Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/dashboard", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool                         `json:"success"`
		Message string                       `json:"message"`
		Data    dto.StudentDashboardResponse `json:"data"`
		Meta    map[string]interface{}       `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()

	require.True(t, payload.Success)
	require.Equal(t, "dashboard retrieved", payload.Message)
	require.Equal(t, 75, payload.Data.Summary.AttendancePercent)
	require.Equal(t, "stu_1", svc.lastID)
	require.Equal(t, 1, svc.calls)
	require.Equal(t, true, payload.Meta["cache_hit"])
}

func TestStudentDashboardHandler_Unauthorized(t *testing.T) {
	svc := &stubStudentDashboardService{}
	logger := zerolog.Nop()

	app := fiber.New()
	handler.NewStudentDashboardHandler(svc, logger).Register(app.Group("/api/v1/student"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/dashboard", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()

	require.False(t, payload.Success)
	require.NotEmpty(t, payload.Message)
	require.Equal(t, 0, svc.calls)
}

func TestStudentDashboardHandler_TeacherViewNotFound(t *testing.T) {
	svc := &stubStudentDashboardService{err: service.ErrStudentNotFound}

	app := fiber.New()
	handler.NewStudentDashboardHandler(svc, zerolog.Nop()).RegisterTeacherView(app.Group("/api/v1/teacher"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teacher/students/ghost/dashboard", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "ghost", svc.lastID)
}

var _ service.StudentDashboardService = (*stubStudentDashboardService)(nil)
