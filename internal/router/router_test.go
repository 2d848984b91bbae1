package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/samms-api/internal/config"
	"github.com/noah-isme/samms-api/internal/datastore"
	"github.com/noah-isme/samms-api/internal/handler"
	"github.com/noah-isme/samms-api/internal/middleware"
	"github.com/noah-isme/samms-api/internal/repository"
	"github.com/noah-isme/samms-api/internal/router"
	"github.com/noah-isme/samms-api/internal/service"
)

const secret = "router-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := zerolog.Nop()

	slot, err := repository.NewFileSlot(t.TempDir())
	require.NoError(t, err)
	storeRepo := repository.NewStoreRepository(slot, repository.DefaultStoreKey, logger)

	data, err := storeRepo.Load(context.Background())
	require.NoError(t, err)

	store := datastore.New(data, storeRepo, logger)
	validate := service.NewValidator()
	records := service.NewRecordService(store, validate, logger)
	reports := service.NewReportService(store, logger)
	transfer, err := service.NewTransferService(store, records, logger)
	require.NoError(t, err)

	cfg := config.Config{AppName: "SAMMS API", AppEnv: "test", StorageDriver: config.StorageFile, LoginRateLimit: 100}

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:             handler.NewAuthHandler(service.NewAuthService(store, validate, secret, time.Hour, logger), logger),
		StudentHandler:          handler.NewStudentHandler(records, reports, logger),
		AttendanceHandler:       handler.NewAttendanceHandler(records, reports, validate, logger),
		AssessmentHandler:       handler.NewAssessmentHandler(records, logger),
		ReportHandler:           handler.NewReportHandler(reports, validate, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(service.NewStudentDashboardService(store, nil, time.Minute, logger), logger),
		TransferHandler:         handler.NewTransferHandler(transfer, logger),
		JWTMiddleware:           middleware.JWTProtected(secret),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var envelope map[string]json.RawMessage
	if json.Valid(raw) {
		require.NoError(t, json.Unmarshal(raw, &envelope))
	}
	return resp, envelope
}

func login(t *testing.T, app *fiber.App, username, role string) string {
	t.Helper()
	resp, envelope := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username, "password": "pass", "role": role,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(envelope["data"], &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	resp, _ := call(t, app, http.MethodGet, "/api/v1/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "SAMMS API", resp.Header.Get("X-Application"))
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))

	resp, _ = call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLoginRejectsWrongRole(t *testing.T) {
	app := newTestApp(t)

	resp, _ := call(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "s1", "password": "pass", "role": "teacher",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTeacherWorkflow(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "teacher1", "teacher")

	resp, envelope := call(t, app, http.MethodGet, "/api/v1/teacher/classes/default", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"className":"10A"}`, string(envelope["data"]))

	resp, _ = call(t, app, http.MethodPut, "/api/v1/teacher/attendance", token, map[string]interface{}{
		"className": "10A", "date": "2024-01-10", "present": map[string]bool{"stu_1": true, "stu_2": false},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, envelope = call(t, app, http.MethodGet, "/api/v1/teacher/attendance?class=10A&date=2024-01-10", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.JSONEq(t, `[{"studentId":"stu_1","name":"Alice Johnson","present":true},{"studentId":"stu_2","name":"Bob Smith","present":false}]`, string(envelope["data"]))

	resp, _ = call(t, app, http.MethodPost, "/api/v1/teacher/assessments", token, map[string]interface{}{
		"name": "Quiz1", "subject": "Math", "className": "10A", "date": "2024-02-01", "total": 20,
		"marks": map[string]interface{}{"stu_1": "18", "stu_2": ""},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, envelope = call(t, app, http.MethodGet, "/api/v1/teacher/reports?class=10A", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var reports struct {
		ClassAssessmentAverages []struct {
			Average float64 `json:"average"`
		} `json:"class_assessment_averages"`
		AttendanceByStudent []struct {
			Percent int `json:"percent"`
		} `json:"attendance_by_student"`
	}
	require.NoError(t, json.Unmarshal(envelope["data"], &reports))
	require.Equal(t, 9.0, reports.ClassAssessmentAverages[0].Average)
	require.Equal(t, 100, reports.AttendanceByStudent[0].Percent)

	resp, _ = call(t, app, http.MethodGet, "/api/v1/teacher/reports?from=yesterday", token, nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/v1/teacher/students/stu_1/dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/v1/teacher/students", token, map[string]string{
		"name": "Dana", "className": "10A", "username": "s1", "password": "pw",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = call(t, app, http.MethodDelete, "/api/v1/teacher/students/ghost", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestStudentAccess(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "s2", "student")

	resp, envelope := call(t, app, http.MethodGet, "/api/v1/student/dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var dashboard struct {
		Student struct {
			ID string `json:"id"`
		} `json:"student"`
	}
	require.NoError(t, json.Unmarshal(envelope["data"], &dashboard))
	require.Equal(t, "stu_2", dashboard.Student.ID)

	resp, _ = call(t, app, http.MethodGet, "/api/v1/teacher/students", token, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/v1/transfer/export", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "samms_export_")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/teacher/students", "/api/v1/student/dashboard", "/api/v1/transfer/export"} {
		resp, _ := call(t, app, http.MethodGet, path, "", nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}
