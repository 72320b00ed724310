package chat

import (
	"gorm.io/gorm"

	chatmodels "huddle_backend/internal/models/chat"
)

type MessageReactionRepository struct {
	DB *gorm.DB
}

func NewMessageReactionRepository(db *gorm.DB) *MessageReactionRepository {
	return &MessageReactionRepository{DB: db}
}

func (r *MessageReactionRepository) Add(reaction *chatmodels.MessageReaction) error {
	return r.DB.Create(reaction).Error
}

func (r *MessageReactionRepository) Remove(messageID, userID, emoji string) error {
	return r.DB.
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&chatmodels.MessageReaction{}).Error
}

func (r *MessageReactionRepository) Exists(messageID, userID, emoji string) (bool, error) {
	var count int64
	err := r.DB.Model(&chatmodels.MessageReaction{}).
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Count(&count).Error
	return count > 0, err
}

// ListByMessage returns reactions in insertion order; the hydrated wire
// shape keeps emoji entries ordered by first reaction.
func (r *MessageReactionRepository) ListByMessage(messageID string) ([]chatmodels.MessageReaction, error) {
	var reactions []chatmodels.MessageReaction
	err := r.DB.
		Where("message_id = ?", messageID).
		Order("created_at asc").
		Find(&reactions).Error
	return reactions, err
}

// ListByMessages loads reactions for a whole history page in one query.
func (r *MessageReactionRepository) ListByMessages(messageIDs []string) ([]chatmodels.MessageReaction, error) {
	if len(messageIDs) == 0 {
		return []chatmodels.MessageReaction{}, nil
	}
	var reactions []chatmodels.MessageReaction
	err := r.DB.
		Where("message_id IN ?", messageIDs).
		Order("created_at asc").
		Find(&reactions).Error
	return reactions, err
}

func (r *MessageReactionRepository) DeleteByMessage(messageID string) error {
	return r.DB.Where("message_id = ?", messageID).Delete(&chatmodels.MessageReaction{}).Error
}
