package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/academyhq/academy-api/internal/models"
	appErrors "github.com/academyhq/academy-api/pkg/errors"
)

type stubStaffRepo struct {
	account   *models.StaffAccount
	lastLogin *time.Time
}

func (s *stubStaffRepo) FindByEmail(_ context.Context, email string) (*models.StaffAccount, error) {
	if s.account == nil || s.account.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.account, nil
}

func (s *stubStaffRepo) UpdateLastLogin(_ context.Context, _ int64, ts time.Time) error {
	s.lastLogin = &ts
	return nil
}

func staffAccount(t *testing.T, password string, active bool) *models.StaffAccount {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.StaffAccount{
		ID:           1,
		Email:        "admin@academy.test",
		PasswordHash: string(hash),
		FullName:     "Site Admin",
		Active:       active,
	}
}

func newAuthService(repo StaffRepository) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), "test-secret", "academy-api", time.Hour)
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubStaffRepo{account: staffAccount(t, "swordfish", true)}
	svc := newAuthService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@academy.test",
		Password: "swordfish",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, int64(3600), result.ExpiresIn)
	assert.Equal(t, "Site Admin", result.Staff.FullName)
	assert.NotNil(t, repo.lastLogin)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.StaffID)
	assert.Equal(t, "admin@academy.test", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(&stubStaffRepo{account: staffAccount(t, "swordfish", true)})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@academy.test",
		Password: "guess",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials) || err == appErrors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(&stubStaffRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@academy.test",
		Password: "whatever",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc := newAuthService(&stubStaffRepo{account: staffAccount(t, "swordfish", false)})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@academy.test",
		Password: "swordfish",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc := newAuthService(&stubStaffRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: ""})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := newAuthService(&stubStaffRepo{account: staffAccount(t, "swordfish", true)})
	other := NewAuthService(&stubStaffRepo{}, validator.New(), zap.NewNop(), "other-secret", "academy-api", time.Hour)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@academy.test",
		Password: "swordfish",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(result.AccessToken)
	require.Error(t, err)
}
