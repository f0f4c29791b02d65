package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyhq/academy-api/internal/models"
	appErrors "github.com/academyhq/academy-api/pkg/errors"
)

type stubAuthService struct {
	result *models.LoginResponse
	err    error
	req    models.LoginRequest
}

func (s *stubAuthService) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	s.req = req
	return s.result, s.err
}

func newAuthRouter(svc *stubAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/login", NewAuthHandler(svc).Login)
	return r
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginHandlerSuccess(t *testing.T) {
	svc := &stubAuthService{result: &models.LoginResponse{
		AccessToken: "token-123",
		ExpiresIn:   3600,
		Staff:       models.StaffInfo{ID: 1, Email: "admin@academy.test", FullName: "Site Admin"},
	}}
	router := newAuthRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, loginRequest(`{"email":"admin@academy.test","password":"swordfish"}`))

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	data, ok := payload["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "token-123", data["access_token"])
	assert.Equal(t, "admin@academy.test", svc.req.Email)
}

func TestLoginHandlerBadPayload(t *testing.T) {
	svc := &stubAuthService{}
	router := newAuthRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, loginRequest(`{"email":`))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.req.Email)
}

func TestLoginHandlerInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: appErrors.ErrInvalidCredentials}
	router := newAuthRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, loginRequest(`{"email":"admin@academy.test","password":"guess"}`))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	payload := decodeBody(t, w)
	errObj, ok := payload["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "INVALID_CREDENTIALS", errObj["code"])
}
