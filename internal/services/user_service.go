package services

import (
	"strings"

	"gorm.io/gorm"

	"huddle_backend/internal/models"
	"huddle_backend/internal/repositories"
	"huddle_backend/pkg/apperrors"
)

// UserService backs the member directory.
type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List() ([]models.User, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return users, nil
}

func (s *UserService) Get(id string) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "users", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(id, name string, avatarURL *string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("Name required")
	}
	if err := s.users.UpdateProfile(id, name, avatarURL); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.Get(id)
}

func (s *UserService) Search(query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	users, err := s.users.SearchByName(query, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return users, nil
}
