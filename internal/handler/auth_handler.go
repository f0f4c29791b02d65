package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/academyhq/academy-api/internal/models"
	appErrors "github.com/academyhq/academy-api/pkg/errors"
	"github.com/academyhq/academy-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler serves staff authentication.
type AuthHandler struct {
	service authService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login godoc
// @Summary Staff login
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidInput, "invalid login payload"))
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
