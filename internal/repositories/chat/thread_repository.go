package chat

import (
	"gorm.io/gorm"

	chatmodels "huddle_backend/internal/models/chat"
)

type ThreadRepository struct {
	DB *gorm.DB
}

func NewThreadRepository(db *gorm.DB) *ThreadRepository {
	return &ThreadRepository{DB: db}
}

func (r *ThreadRepository) Create(thread *chatmodels.Thread) error {
	return r.DB.Create(thread).Error
}

func (r *ThreadRepository) GetByID(id string) (*chatmodels.Thread, error) {
	var thread chatmodels.Thread
	if err := r.DB.First(&thread, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *ThreadRepository) GetByParentMessage(parentMessageID string) (*chatmodels.Thread, error) {
	var thread chatmodels.Thread
	if err := r.DB.First(&thread, "parent_message_id = ?", parentMessageID).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// ListByParentMessages loads the threads rooted at any of the given
// messages in one query; history hydration uses it to stamp reply counts.
func (r *ThreadRepository) ListByParentMessages(parentMessageIDs []string) ([]chatmodels.Thread, error) {
	if len(parentMessageIDs) == 0 {
		return []chatmodels.Thread{}, nil
	}
	var threads []chatmodels.Thread
	err := r.DB.Where("parent_message_id IN ?", parentMessageIDs).Find(&threads).Error
	return threads, err
}
