package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foreningshub/backend/internal/models"
	"github.com/foreningshub/backend/pkg/crypto"
	apperrors "github.com/foreningshub/backend/pkg/errors"
	"github.com/foreningshub/backend/pkg/metrics"
	"github.com/foreningshub/backend/pkg/validate"
)

var (
	// ErrEmailRegistered is returned when signing up with a taken email.
	ErrEmailRegistered = apperrors.NewBadRequest("E-postadressen är redan registrerad")
	// ErrAccountDisabled is returned for deactivated accounts.
	ErrAccountDisabled = apperrors.NewForbidden("Kontot är inaktiverat")
)

// AuthService handles account registration and password authentication.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	return &AuthService{db: db}, nil
}

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
}

// Register creates a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	if email == "" {
		return nil, ErrInviteEmailRequired
	}
	if !validate.Email(email) {
		return nil, ErrInviteEmailInvalid
	}
	if len(input.Password) < minAcceptPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Phone != "" && !validate.Phone(input.Phone) {
		return nil, ErrInvitePhoneInvalid
	}
	if input.BirthDate != "" && !validate.PastDate(input.BirthDate) {
		return nil, ErrInviteBirthDateInvalid
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("auth service: check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailRegistered
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	user := models.User{
		Email:     email,
		Password:  hashed,
		FullName:  input.FullName,
		Phone:     input.Phone,
		BirthDate: input.BirthDate,
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}
	return &user, nil
}

// Authenticate verifies an email/password pair and returns the account.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normaliseEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: find user: %w", err)
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, ErrAccountDisabled
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &user, nil
}

// GetUser loads an account by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ensureContext(ctx)).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: get user: %w", err)
	}
	return &user, nil
}
