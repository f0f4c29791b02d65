package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/academyhq/academy-api/internal/dto"
	"github.com/academyhq/academy-api/pkg/response"
)

type scheduleService interface {
	Schedule(ctx context.Context, branchID *int64, baseURL string) (dto.Schedule, error)
}

// DashboardHandler serves the aggregated weekly schedule view.
type DashboardHandler struct {
	service scheduleService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service scheduleService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Schedule godoc
// @Summary Aggregated weekly class schedule
// @Tags Dashboard
// @Produce json
// @Param branchId query int false "Restrict to one branch"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /dashboard [get]
func (h *DashboardHandler) Schedule(c *gin.Context) {
	var branchID *int64
	if raw := strings.TrimSpace(c.Query("branchId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, "Failed to fetch dashboard schedule", err)
			return
		}
		branchID = &id
	}

	schedule, err := h.service.Schedule(c.Request.Context(), branchID, requestBaseURL(c))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, "Failed to fetch dashboard schedule", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": schedule})
}

// requestBaseURL reconstructs scheme plus host of the incoming request,
// honoring the proxy protocol header.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
