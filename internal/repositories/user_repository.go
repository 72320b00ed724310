package repositories

import (
	"time"

	"gorm.io/gorm"

	"huddle_backend/internal/models"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.DB.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.DB.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByIDs loads users in one query; used to hydrate reaction user sets.
func (r *UserRepository) ListByIDs(ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	err := r.DB.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) List() ([]models.User, error) {
	var users []models.User
	err := r.DB.Order("name asc").Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateProfile(id string, name string, avatarURL *string) error {
	updates := map[string]interface{}{"name": name}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}
	return r.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// SetOnline flips the presence flag; going offline also stamps last_seen_at.
func (r *UserRepository) SetOnline(id string, online bool) error {
	updates := map[string]interface{}{"is_online": online}
	if !online {
		now := time.Now()
		updates["last_seen_at"] = &now
	}
	return r.DB.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

func (r *UserRepository) SearchByName(query string, limit int) ([]models.User, error) {
	var users []models.User
	err := r.DB.Where("name LIKE ?", "%"+query+"%").Limit(limit).Find(&users).Error
	return users, err
}
