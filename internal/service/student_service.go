package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"mime/multipart"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/academyhq/academy-api/internal/dto"
	"github.com/academyhq/academy-api/internal/models"
	"github.com/academyhq/academy-api/internal/repository"
	appErrors "github.com/academyhq/academy-api/pkg/errors"
)

// dashboardCachePattern matches every cached dashboard payload; any student
// mutation can change the schedule, so mutations drop them all.
const dashboardCachePattern = "dash:*"

// StudentRepository abstracts persistence for the student workflows.
type StudentRepository interface {
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	FindStudent(ctx context.Context, id int64) (*models.User, error)
	FindStudentProfile(ctx context.Context, id int64) (*models.StudentProfile, error)
	FindDetailsByUserID(ctx context.Context, userID int64) (*models.StudentDetails, error)
	Register(ctx context.Context, params models.RegistrationParams) (int64, error)
	CreateProfile(ctx context.Context, details *models.StudentDetails) error
	UpdateProfile(ctx context.Context, params models.ProfileUpdateParams) error
	UpdatePhoto(ctx context.Context, userID int64, photoURL string) error
	DeleteStudent(ctx context.Context, userID int64) (string, error)
	ListGrades(ctx context.Context, userID int64) ([]models.GradeSummary, error)
	ListBranches(ctx context.Context, userID int64) ([]models.BranchSummary, error)
	ListSlots(ctx context.Context, userID int64) ([]models.Slot, error)
}

// PhotoStore abstracts the on-disk photo storage.
type PhotoStore interface {
	SaveUpload(fh *multipart.FileHeader) (string, error)
	Remove(publicURL string) error
	DefaultURL() string
}

// StudentService implements the registration, update and delete workflows.
type StudentService struct {
	repo   StudentRepository
	photos PhotoStore
	cache  *CacheService
	logger *zap.Logger
}

// NewStudentService constructs a StudentService. Cache may be nil.
func NewStudentService(repo StudentRepository, photos PhotoStore, cache *CacheService, logger *zap.Logger) *StudentService {
	return &StudentService{repo: repo, photos: photos, cache: cache, logger: logger}
}

// RegistrationForm carries the raw multipart fields of the registration
// request. The structured fields arrive as JSON-encoded strings.
type RegistrationForm struct {
	UserJSON           string
	StudentDetailsJSON string
	GradeIDsJSON       string
	SlotIDsJSON        string
	BranchIDsJSON      string
	Photo              *multipart.FileHeader
}

// Register runs the full registration workflow: parse and validate the form,
// store the photo, then write every row in one transaction. The uploaded file
// is not removed when the transaction rolls back.
func (s *StudentService) Register(ctx context.Context, form RegistrationForm) (*dto.RegistrationResult, error) {
	var userPatch models.UserPatch
	if err := parseJSONField(form.UserJSON, "{}", &userPatch); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid user format")
	}

	role, ok := models.ParseRole(stringValue(userPatch.Role))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, `Invalid role. Must be "student" or "teacher".`)
	}

	var detailsPatch models.StudentDetailsPatch
	if err := parseJSONField(form.StudentDetailsJSON, "{}", &detailsPatch); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid student_details format")
	}
	if role == models.RoleStudent {
		if detailsPatch.StudentNo == nil || strings.TrimSpace(*detailsPatch.StudentNo) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student_no is required for students")
		}
	}

	gradeIDs, err := parseIDList(form.GradeIDsJSON)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid grade_ids format")
	}
	slotIDs, err := parseIDList(form.SlotIDsJSON)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid slot_ids format")
	}
	branchIDs, err := parseIDList(form.BranchIDsJSON)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid branch_ids format")
	}

	status := models.StatusActive
	if userPatch.Status != nil {
		status = models.Status(strings.ToLower(*userPatch.Status))
	}

	photoURL := s.photos.DefaultURL()
	if form.Photo != nil {
		photoURL, err = s.photos.SaveUpload(form.Photo)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded photo")
		}
		s.logger.Info("photo saved", zap.String("photo_url", photoURL))
	}

	params := models.RegistrationParams{
		User: models.User{
			Name:        userPatch.Name,
			FirstName:   userPatch.FirstName,
			LastName:    userPatch.LastName,
			Username:    userPatch.Username,
			Email:       userPatch.Email,
			PhnNum:      userPatch.PhnNum,
			Gender:      userPatch.Gender,
			DateOfBirth: userPatch.DateOfBirth,
			Address:     userPatch.Address,
			Role:        role,
			Status:      status,
		},
		GradeIDs:  gradeIDs,
		SlotIDs:   slotIDs,
		BranchIDs: branchIDs,
	}
	// Teachers never get a details row; an uploaded photo is stored on disk
	// but not persisted for them.
	if role == models.RoleStudent {
		params.Details = &models.StudentDetails{
			StudentNo:  strings.TrimSpace(*detailsPatch.StudentNo),
			Salutation: detailsPatch.Salutation,
			ICEContact: detailsPatch.ICEContact,
			PhotoURL:   photoURL,
		}
	}

	userID, err := s.repo.Register(ctx, params)
	if err != nil {
		s.logger.Error("registration transaction failed", zap.Error(err))
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return &dto.RegistrationResult{UserID: userID, Role: role, PhotoURL: photoURL}, nil
}

// ProfileForm carries the flat multipart fields of the profile-creation
// request.
type ProfileForm struct {
	StudentNo  string
	Salutation *string
	ICEContact *string
	Photo      *multipart.FileHeader
}

// CreateProfile adds a StudentDetails row to an existing student user.
func (s *StudentService) CreateProfile(ctx context.Context, userID int64, form ProfileForm) (*dto.ProfileCreateResult, error) {
	if _, err := s.repo.FindStudent(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User is not a student or does not exist")
		}
		return nil, err
	}

	if strings.TrimSpace(form.StudentNo) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Student number is required")
	}

	photoURL := s.photos.DefaultURL()
	if form.Photo != nil {
		var err error
		photoURL, err = s.photos.SaveUpload(form.Photo)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded photo")
		}
		s.logger.Info("photo saved", zap.String("photo_url", photoURL))
	}

	details := &models.StudentDetails{
		UserID:     userID,
		StudentNo:  form.StudentNo,
		Salutation: form.Salutation,
		ICEContact: form.ICEContact,
		PhotoURL:   photoURL,
	}
	if err := s.repo.CreateProfile(ctx, details); err != nil {
		s.logger.Error("profile creation failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return &dto.ProfileCreateResult{Profile: *details, PhotoURL: photoURL}, nil
}

// GetProfile returns a student user with its nested details.
func (s *StudentService) GetProfile(ctx context.Context, userID int64) (*models.StudentProfile, error) {
	profile, err := s.repo.FindStudentProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, err
	}
	return profile, nil
}

// GetGrades returns the grade assignments of a student.
func (s *StudentService) GetGrades(ctx context.Context, userID int64) ([]models.GradeSummary, error) {
	if _, err := s.repo.FindStudent(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return nil, err
	}
	return s.repo.ListGrades(ctx, userID)
}

// GetBranches returns the branch assignments of a student. Unknown ids yield
// an empty list.
func (s *StudentService) GetBranches(ctx context.Context, userID int64) ([]models.BranchSummary, error) {
	return s.repo.ListBranches(ctx, userID)
}

// GetSlots returns the slot enrolments of a student. Unknown ids yield an
// empty list.
func (s *StudentService) GetSlots(ctx context.Context, userID int64) ([]models.Slot, error) {
	return s.repo.ListSlots(ctx, userID)
}

// UpdateForm carries the raw multipart fields of the update request. UserID is
// the raw path parameter; it is validated after the JSON fields, preserving
// the error precedence of the endpoint. FallbackDetails holds the flat form
// fields used when no student_details JSON field was supplied.
type UpdateForm struct {
	UserID             string
	UserJSON           string
	StudentDetailsJSON string
	FallbackDetails    models.StudentDetailsPatch
	GradeIDsJSON       string
	SlotIDsJSON        string
	Status             string
	Photo              *multipart.FileHeader
}

// Update applies a partial update to the user and, for students, the details
// row plus any supplied grade/slot assignment replacement.
func (s *StudentService) Update(ctx context.Context, form UpdateForm) (*dto.ProfileUpdateResult, error) {
	detailsPatch := form.FallbackDetails
	if form.StudentDetailsJSON != "" {
		detailsPatch = models.StudentDetailsPatch{}
		if err := json.Unmarshal([]byte(form.StudentDetailsJSON), &detailsPatch); err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid student_details format")
		}
	}

	var userPatch models.UserPatch
	if err := parseJSONField(form.UserJSON, "{}", &userPatch); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid user format")
	}

	gradeIDs, err := parseIDList(form.GradeIDsJSON)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid grade_ids format")
	}
	slotIDs, err := parseIDList(form.SlotIDsJSON)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid slot_ids format")
	}

	userID, err := strconv.ParseInt(strings.TrimSpace(form.UserID), 10, 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, "Invalid user ID")
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, err
	}

	requestedRole := stringValue(userPatch.Role)
	asStudent := requestedRole == string(models.RoleStudent) || user.Role == models.RoleStudent
	if asStudent && detailsPatch.StudentNo != nil && *detailsPatch.StudentNo != "" && strings.TrimSpace(*detailsPatch.StudentNo) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Student number must be a non-empty string for students")
	}

	// Photo precedence: a new file wins, then an explicit photo_url key,
	// otherwise the stored value stays untouched.
	var photoApplied string
	if form.Photo != nil {
		saved, saveErr := s.photos.SaveUpload(form.Photo)
		if saveErr != nil {
			return nil, appErrors.Wrap(saveErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded photo")
		}
		s.logger.Info("photo saved", zap.String("photo_url", saved))
		detailsPatch.PhotoURL = &saved
		photoApplied = saved
	} else if detailsPatch.PhotoURL != nil {
		photoApplied = *detailsPatch.PhotoURL
	}

	effectiveStatus := user.Status
	if form.Status != "" {
		lowered := strings.ToLower(form.Status)
		if lowered != string(models.StatusActive) && lowered != string(models.StatusInactive) {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, `Invalid status value. Must be "active" or "inactive".`)
		}
		effectiveStatus = models.Status(lowered)
	}

	effectiveRole := user.Role
	if requestedRole != "" {
		parsed, ok := models.ParseRole(requestedRole)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, `Invalid role. Must be "student" or "teacher".`)
		}
		effectiveRole = parsed
	}

	params := models.ProfileUpdateParams{
		UserID:           userID,
		User:             userPatch,
		EffectiveRole:    effectiveRole,
		EffectiveStatus:  effectiveStatus,
		Details:          detailsPatch,
		AsStudent:        asStudent,
		PriorRoleStudent: user.Role == models.RoleStudent,
		GradeIDs:         gradeIDs,
		SlotIDs:          slotIDs,
		DefaultPhotoURL:  s.photos.DefaultURL(),
	}
	if err := s.repo.UpdateProfile(ctx, params); err != nil {
		if errors.Is(err, repository.ErrProfileMissing) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student profile not found")
		}
		s.logger.Error("profile update failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.invalidateDashboard(ctx)
	return &dto.ProfileUpdateResult{PhotoURL: photoApplied, Role: effectiveRole}, nil
}

// UploadPhoto replaces the photo of an existing student profile. The update is
// a single statement outside any wider transaction.
func (s *StudentService) UploadPhoto(ctx context.Context, userID int64, photo *multipart.FileHeader) (string, error) {
	if _, err := s.repo.FindStudent(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		}
		return "", err
	}
	if photo == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "No file uploaded")
	}

	photoURL, err := s.photos.SaveUpload(photo)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded photo")
	}

	if err := s.repo.UpdatePhoto(ctx, userID, photoURL); err != nil {
		if errors.Is(err, repository.ErrProfileMissing) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "Student profile not found")
		}
		return "", err
	}

	s.invalidateDashboard(ctx)
	return photoURL, nil
}

// Delete removes the student and every dependent row, then removes the photo
// file. A missing file is logged, never an error.
func (s *StudentService) Delete(ctx context.Context, userID int64) error {
	photoURL, err := s.repo.DeleteStudent(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStudentMissing):
			return appErrors.Clone(appErrors.ErrNotFound, "Student not found")
		case errors.Is(err, repository.ErrUserMissing):
			return appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		s.logger.Error("student delete failed", zap.Int64("user_id", userID), zap.Error(err))
		return err
	}

	if removeErr := s.photos.Remove(photoURL); removeErr != nil {
		if errors.Is(removeErr, os.ErrNotExist) {
			s.logger.Warn("photo file already missing", zap.String("photo_url", photoURL))
		} else {
			s.logger.Warn("failed to remove photo file", zap.String("photo_url", photoURL), zap.Error(removeErr))
		}
	}

	s.invalidateDashboard(ctx)
	return nil
}

func (s *StudentService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, dashboardCachePattern)
}

func parseJSONField(raw, fallback string, dest interface{}) error {
	if strings.TrimSpace(raw) == "" {
		raw = fallback
	}
	return json.Unmarshal([]byte(raw), dest)
}

// parseIDList decodes a JSON array of ids, tolerating string-encoded numbers.
func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			ids = append(ids, int64(v))
		case string:
			id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		default:
			return nil, errors.New("unsupported id element")
		}
	}
	return ids, nil
}

func stringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
