package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/academyhq/academy-api/internal/service"
	"github.com/academyhq/academy-api/pkg/response"
)

type exportService interface {
	StudentRoster(ctx context.Context, format string) (*service.ExportFile, error)
}

// ExportHandler serves downloadable roster exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// StudentRoster godoc
// @Summary Export the student roster
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} map[string]interface{}
// @Router /exports/students [get]
func (h *ExportHandler) StudentRoster(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))

	file, err := h.service.StudentRoster(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
