package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/academyhq/academy-api/internal/models"
	appErrors "github.com/academyhq/academy-api/pkg/errors"
)

// StaffRepository abstracts staff account persistence.
type StaffRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.StaffAccount, error)
	UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error
}

// AuthService authenticates admin-panel staff and issues access tokens.
type AuthService struct {
	repo       StaffRepository
	validate   *validator.Validate
	logger     *zap.Logger
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo StaffRepository, validate *validator.Validate, logger *zap.Logger, secret, issuer string, expiration time.Duration) *AuthService {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &AuthService{
		repo:       repo,
		validate:   validate,
		logger:     logger,
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: expiration,
	}
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "email and password are required")
	}

	account, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		s.logger.Error("staff lookup failed", zap.String("email", req.Email), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "login failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	if !account.Active {
		return nil, appErrors.ErrInactiveAccount
	}

	now := time.Now().UTC()
	claims := models.JWTClaims{
		StaffID:  account.ID,
		Email:    account.Email,
		FullName: account.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   account.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	if err := s.repo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("staff_id", account.ID), zap.Error(err))
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.expiration.Seconds()),
		IssuedAt:    now,
		Staff: models.StaffInfo{
			ID:       account.ID,
			Email:    account.Email,
			FullName: account.FullName,
		},
	}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(token string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}
