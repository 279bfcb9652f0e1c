package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harukim/task-tracker-api/internal/constants"
	"github.com/harukim/task-tracker-api/internal/models"
	"github.com/harukim/task-tracker-api/internal/repository"
	"github.com/harukim/task-tracker-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrNameRequired         = errors.New("name is required")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrPasswordMismatch     = errors.New("password confirmation does not match")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles registration, credential verification, and opaque
// bearer token issuance and revocation.
type AuthService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokenTTL:  tokenTTL,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Register creates a new user with the user role and issues a token. New
// users always get the user role; there is no self-elevation path.
func (s *AuthService) Register(input RegisterInput) (*models.User, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", ErrNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}
	if input.Password != input.PasswordConfirmation {
		return nil, "", ErrPasswordMismatch
	}

	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.userRepo.CreateWithRole(user, models.RoleUser); err != nil {
		return nil, "", fmt.Errorf("failed to complete registration: %w", err)
	}

	return s.finishAuth(user.ID)
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials, records the login time, and issues a token.
func (s *AuthService) Login(input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		return nil, "", fmt.Errorf("failed to record login: %w", err)
	}

	return s.finishAuth(user.ID)
}

// finishAuth reloads the user with roles and permissions and issues a token.
func (s *AuthService) finishAuth(userID uint64) (*models.User, string, error) {
	user, err := s.userRepo.FindByIDWithRoles(userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	plaintext, digest, err := utils.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	token := &models.AccessToken{
		UserID:      user.ID,
		TokenDigest: digest,
		ExpiresAt:   time.Now().Add(s.tokenTTL),
	}
	if err := s.tokenRepo.Create(token); err != nil {
		return nil, "", fmt.Errorf("failed to store token: %w", err)
	}

	return user, plaintext, nil
}

// Authenticate resolves a bearer token to a user. Role and permission state
// is loaded fresh on every call.
func (s *AuthService) Authenticate(plaintext string) (*models.User, error) {
	token, err := s.tokenRepo.FindByDigest(utils.DigestToken(plaintext))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if time.Now().After(token.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.FindByIDWithRoles(token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// Logout revokes the presented token so it can no longer authenticate.
func (s *AuthService) Logout(plaintext string) error {
	if err := s.tokenRepo.DeleteByDigest(utils.DigestToken(plaintext)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// ChangePasswordInput holds the fields for a password change.
type ChangePasswordInput struct {
	UserID               uint64
	CurrentPassword      string
	Password             string
	PasswordConfirmation string
}

// ChangePassword verifies the current password and replaces it.
func (s *AuthService) ChangePassword(input ChangePasswordInput) error {
	if len(input.Password) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if input.Password != input.PasswordConfirmation {
		return ErrPasswordMismatch
	}

	user, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return ErrWrongCurrentPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.UpdatePassword(user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// GetUser retrieves a user with roles and permissions by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByIDWithRoles(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
