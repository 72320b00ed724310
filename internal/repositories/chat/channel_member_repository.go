package chat

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	chatmodels "huddle_backend/internal/models/chat"
)

type ChannelMemberRepository struct {
	DB *gorm.DB
}

func NewChannelMemberRepository(db *gorm.DB) *ChannelMemberRepository {
	return &ChannelMemberRepository{DB: db}
}

// Add inserts a membership row, ignoring the conflict if it already exists.
func (r *ChannelMemberRepository) Add(member *chatmodels.ChannelMember) error {
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(member).Error
}

func (r *ChannelMemberRepository) Remove(channelID, userID string) error {
	return r.DB.
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Delete(&chatmodels.ChannelMember{}).Error
}

func (r *ChannelMemberRepository) IsMember(channelID, userID string) (bool, error) {
	var count int64
	err := r.DB.Model(&chatmodels.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListByChannel returns the member rows with users preloaded.
func (r *ChannelMemberRepository) ListByChannel(channelID string) ([]chatmodels.ChannelMember, error) {
	var members []chatmodels.ChannelMember
	err := r.DB.Preload("User").
		Where("channel_id = ?", channelID).
		Find(&members).Error
	return members, err
}

// FindOther returns the member of a DM channel that is not userID.
func (r *ChannelMemberRepository) FindOther(channelID, userID string) (*chatmodels.ChannelMember, error) {
	var member chatmodels.ChannelMember
	err := r.DB.Preload("User").
		Where("channel_id = ? AND user_id <> ?", channelID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}
