package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"huddle_backend/internal/auth"
	"huddle_backend/internal/models"
	"huddle_backend/internal/repositories"
	"huddle_backend/pkg/apperrors"
)

// AuthService handles registration, login and identity lookups.
type AuthService struct {
	users  *repositories.UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users *repositories.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates an account and signs the first token. Emails are
// normalized to lowercase so the unique index is case-insensitive in
// practice.
func (s *AuthService) Register(name, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, apperrors.ErrAlreadyExists(nil, "auth", "Email already registered")
	} else if !apperrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the same error so the response does not confirm
// account existence.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid email or password")
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorizedError("Invalid email or password")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Me returns the current user's account row.
func (s *AuthService) Me(userID string) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "auth", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}
