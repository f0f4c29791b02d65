package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/academyhq/academy-api/internal/dto"
	"github.com/academyhq/academy-api/internal/models"
	"github.com/academyhq/academy-api/internal/service"
	appErrors "github.com/academyhq/academy-api/pkg/errors"
	"github.com/academyhq/academy-api/pkg/response"
)

type studentService interface {
	Register(ctx context.Context, form service.RegistrationForm) (*dto.RegistrationResult, error)
	CreateProfile(ctx context.Context, userID int64, form service.ProfileForm) (*dto.ProfileCreateResult, error)
	GetProfile(ctx context.Context, userID int64) (*models.StudentProfile, error)
	GetGrades(ctx context.Context, userID int64) ([]models.GradeSummary, error)
	GetBranches(ctx context.Context, userID int64) ([]models.BranchSummary, error)
	GetSlots(ctx context.Context, userID int64) ([]models.Slot, error)
	Update(ctx context.Context, form service.UpdateForm) (*dto.ProfileUpdateResult, error)
	UploadPhoto(ctx context.Context, userID int64, photo *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, userID int64) error
}

// StudentHandler exposes the student workflows over HTTP, reproducing the
// response shapes of the legacy panel API.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service studentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// Register godoc
// @Summary Register a student or teacher
// @Tags Students
// @Accept mpfd
// @Produce json
// @Param user formData string true "User payload (JSON string)"
// @Param student_details formData string false "Student details payload (JSON string)"
// @Param grade_ids formData string false "Grade id array (JSON string)"
// @Param slot_ids formData string false "Slot id array (JSON string)"
// @Param branch_ids formData string false "Branch id array (JSON string)"
// @Param photo formData file false "Student photo"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /students/register [post]
func (h *StudentHandler) Register(c *gin.Context) {
	form := service.RegistrationForm{
		UserJSON:           c.PostForm("user"),
		StudentDetailsJSON: c.PostForm("student_details"),
		GradeIDsJSON:       c.PostForm("grade_ids"),
		SlotIDsJSON:        c.PostForm("slot_ids"),
		BranchIDsJSON:      c.PostForm("branch_ids"),
	}
	if file, err := c.FormFile("photo"); err == nil {
		form.Photo = file
	}

	result, err := h.service.Register(c.Request.Context(), form)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Registration failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("%s registration completed successfully", capitalize(string(result.Role))),
		"user_id":   result.UserID,
		"id":        result.UserID,
		"role":      result.Role,
		"photo_url": result.PhotoURL,
	})
}

// CreateProfile godoc
// @Summary Create a student profile for an existing user
// @Tags Students
// @Accept mpfd
// @Produce json
// @Param userId path int true "User ID"
// @Param student_no formData string true "Student number"
// @Param salutation formData string false "Salutation"
// @Param ice_contact formData string false "Emergency contact"
// @Param photo formData file false "Student photo"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /students/{userId}/profile [post]
func (h *StudentHandler) CreateProfile(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Student profile creation failed"})
		return
	}

	form := service.ProfileForm{StudentNo: c.PostForm("student_no")}
	if v, ok := c.GetPostForm("salutation"); ok {
		form.Salutation = &v
	}
	if v, ok := c.GetPostForm("ice_contact"); ok {
		form.ICEContact = &v
	}
	if file, fileErr := c.FormFile("photo"); fileErr == nil {
		form.Photo = file
	}

	result, err := h.service.CreateProfile(c.Request.Context(), userID, form)
	if err != nil {
		// Only the student-number validation message is surfaced verbatim.
		msg := response.Message(err)
		if !strings.HasPrefix(msg, "Student number") {
			msg = "Student profile creation failed"
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"studentProfile": result.Profile,
		"photo_url":      result.PhotoURL,
		"next_step":      fmt.Sprintf("/students/%d/photo", userID),
	})
}

// GetProfile godoc
// @Summary Fetch a student with nested details
// @Tags Students
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} models.StudentProfile
// @Failure 404 {object} map[string]interface{}
// @Router /students/{userId} [get]
func (h *StudentHandler) GetProfile(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Err(c, http.StatusNotFound, appErrors.Clone(appErrors.ErrNotFound, "Student not found"))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Err(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetGrades godoc
// @Summary List a student's grade assignments
// @Tags Students
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {array} models.GradeSummary
// @Failure 404 {object} map[string]interface{}
// @Router /students/{userId}/grades [get]
func (h *StudentHandler) GetGrades(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Err(c, http.StatusNotFound, appErrors.Clone(appErrors.ErrNotFound, "Student not found"))
		return
	}

	grades, err := h.service.GetGrades(c.Request.Context(), userID)
	if err != nil {
		response.Err(c, http.StatusNotFound, err)
		return
	}
	if grades == nil {
		grades = []models.GradeSummary{}
	}
	c.JSON(http.StatusOK, grades)
}

// Update godoc
// @Summary Update a student or teacher profile
// @Tags Students
// @Accept mpfd
// @Produce json
// @Param userId path string true "User ID"
// @Param user formData string false "Partial user payload (JSON string)"
// @Param student_details formData string false "Partial details payload (JSON string)"
// @Param grade_ids formData string false "Replacement grade id array (JSON string)"
// @Param slot_ids formData string false "Replacement slot id array (JSON string)"
// @Param status formData string false "Account status"
// @Param photo formData file false "Replacement photo"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /students/{userId} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	form := service.UpdateForm{
		UserID:             c.Param("userId"),
		UserJSON:           c.PostForm("user"),
		StudentDetailsJSON: c.PostForm("student_details"),
		GradeIDsJSON:       c.PostForm("grade_ids"),
		SlotIDsJSON:        c.PostForm("slot_ids"),
		Status:             c.PostForm("status"),
	}
	// Without a student_details field the flat form fields act as the patch.
	if v, ok := c.GetPostForm("student_no"); ok {
		form.FallbackDetails.StudentNo = &v
	}
	if v, ok := c.GetPostForm("salutation"); ok {
		form.FallbackDetails.Salutation = &v
	}
	if v, ok := c.GetPostForm("ice_contact"); ok {
		form.FallbackDetails.ICEContact = &v
	}
	if v, ok := c.GetPostForm("photo_url"); ok {
		form.FallbackDetails.PhotoURL = &v
	}
	if file, err := c.FormFile("photo"); err == nil {
		form.Photo = file
	}

	result, err := h.service.Update(c.Request.Context(), form)
	if err != nil {
		response.Err(c, http.StatusBadRequest, err)
		return
	}

	photoURL := result.PhotoURL
	if photoURL == "" {
		photoURL = "unchanged"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"photo_url": photoURL,
		"role":      result.Role,
	})
}

// UploadPhoto godoc
// @Summary Replace a student's photo
// @Tags Students
// @Accept mpfd
// @Produce json
// @Param userId path int true "User ID"
// @Param photo formData file true "Student photo"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /students/{userId}/photo [post]
func (h *StudentHandler) UploadPhoto(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Err(c, http.StatusBadRequest, appErrors.Clone(appErrors.ErrNotFound, "Student not found"))
		return
	}

	var photo *multipart.FileHeader
	if file, fileErr := c.FormFile("photo"); fileErr == nil {
		photo = file
	}

	photoURL, err := h.service.UploadPhoto(c.Request.Context(), userID, photo)
	if err != nil {
		response.Err(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "photo_url": photoURL})
}

// Delete godoc
// @Summary Hard-delete a student and all related rows
// @Tags Students
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /students/{userId} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Student not found"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": response.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Student and all related data deleted permanently",
	})
}

// GetBranches godoc
// @Summary List a student's branches
// @Tags Students
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {array} models.BranchSummary
// @Failure 500 {object} map[string]interface{}
// @Router /students/{studentId}/branches [get]
func (h *StudentHandler) GetBranches(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Err(c, http.StatusInternalServerError, appErrors.Clone(appErrors.ErrInternal, "Failed to fetch branches"))
		return
	}

	branches, err := h.service.GetBranches(c.Request.Context(), userID)
	if err != nil {
		response.Err(c, http.StatusInternalServerError, appErrors.Clone(appErrors.ErrInternal, "Failed to fetch branches"))
		return
	}
	if branches == nil {
		branches = []models.BranchSummary{}
	}
	c.JSON(http.StatusOK, branches)
}

// GetSlots godoc
// @Summary List a student's slot enrolments
// @Tags Students
// @Produce json
// @Param studentId path int true "Student ID"
// @Success 200 {array} models.Slot
// @Failure 500 {object} map[string]interface{}
// @Router /students/{studentId}/slots [get]
func (h *StudentHandler) GetSlots(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Err(c, http.StatusInternalServerError, appErrors.Clone(appErrors.ErrInternal, "Failed to fetch slots"))
		return
	}

	slots, err := h.service.GetSlots(c.Request.Context(), userID)
	if err != nil {
		response.Err(c, http.StatusInternalServerError, appErrors.Clone(appErrors.ErrInternal, "Failed to fetch slots"))
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, slots)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
