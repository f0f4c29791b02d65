package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyhq/academy-api/internal/service"
	appErrors "github.com/academyhq/academy-api/pkg/errors"
)

type stubExportService struct {
	file   *service.ExportFile
	err    error
	format string
}

func (s *stubExportService) StudentRoster(_ context.Context, format string) (*service.ExportFile, error) {
	s.format = format
	return s.file, s.err
}

func newExportRouter(svc *stubExportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/exports/students", NewExportHandler(svc).StudentRoster)
	return r
}

func TestStudentRosterDownload(t *testing.T) {
	svc := &stubExportService{file: &service.ExportFile{
		Content:     []byte("Student No,Username,Email,Status\n"),
		ContentType: "text/csv",
		Filename:    "students-2026-08-31.csv",
	}}
	router := newExportRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exports/students", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", svc.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="students-2026-08-31.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Student No")
}

func TestStudentRosterNormalisesFormat(t *testing.T) {
	svc := &stubExportService{file: &service.ExportFile{ContentType: "application/pdf", Filename: "students.pdf"}}
	router := newExportRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exports/students?format=%20PDF%20", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pdf", svc.format)
}

func TestStudentRosterUnknownFormat(t *testing.T) {
	svc := &stubExportService{err: appErrors.Clone(appErrors.ErrInvalidInput, "unsupported export format, use csv or pdf")}
	router := newExportRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/exports/students?format=xlsx", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
}
