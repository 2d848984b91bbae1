package handler_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
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

type stubTransferService struct {
	imported []byte
	err      error
}

func (s *stubTransferService) ExportSnapshot(_ context.Context) (dto.ExportFile, error) {
	return dto.ExportFile{Filename: "samms_export_2024-01-01-00-00-00.json", ContentType: "application/json", Payload: []byte(`{"users":[]}`)}, s.err
}

func (s *stubTransferService) ImportSnapshot(_ context.Context, payload []byte) (dto.ImportResponse, error) {
	s.imported = payload
	if s.err != nil {
		return dto.ImportResponse{}, s.err
	}
	return dto.ImportResponse{Students: 3}, nil
}

func (s *stubTransferService) ExportWorkbook(_ context.Context) (dto.ExportFile, error) {
	return dto.ExportFile{Filename: "report.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Payload: []byte("PK")}, s.err
}

func newTransferApp(svc service.TransferService) *fiber.App {
	app := fiber.New()
	handler.NewTransferHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/transfer"))
	return app
}

func TestTransferHandler_ExportSetsAttachment(t *testing.T) {
	app := newTransferApp(&stubTransferService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/transfer/export", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, `attachment; filename="samms_export_2024-01-01-00-00-00.json"`, resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"users":[]}`, string(body))
}

func TestTransferHandler_ExportWorkbook(t *testing.T) {
	app := newTransferApp(&stubTransferService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/transfer/export.xlsx", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "report.xlsx")
}

func TestTransferHandler_ImportRawBody(t *testing.T) {
	svc := &stubTransferService{}
	app := newTransferApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/import", bytes.NewReader([]byte(`{"users":[],"students":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"users":[],"students":[]}`, string(svc.imported))
}

func TestTransferHandler_ImportMultipart(t *testing.T) {
	svc := &stubTransferService{}
	app := newTransferApp(svc)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "backup.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(`{"users":[],"students":[]}`))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"users":[],"students":[]}`, string(svc.imported))
}

func TestTransferHandler_ImportFormatError(t *testing.T) {
	svc := &stubTransferService{err: &service.FormatError{Err: errors.New("unexpected end of JSON input")}}
	app := newTransferApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfer/import", bytes.NewReader([]byte(`{`)))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &payload)
	require.False(t, payload.Success)
	require.Contains(t, payload.Message, "invalid store format")
}

var _ service.TransferService = (*stubTransferService)(nil)
