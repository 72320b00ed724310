package chat

import (
	"gorm.io/gorm"

	chatmodels "huddle_backend/internal/models/chat"
)

type ChannelRepository struct {
	DB *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{DB: db}
}

func (r *ChannelRepository) Create(channel *chatmodels.Channel) error {
	return r.DB.Create(channel).Error
}

func (r *ChannelRepository) GetByID(id string) (*chatmodels.Channel, error) {
	var channel chatmodels.Channel
	if err := r.DB.First(&channel, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

// ListVisible returns non-DM channels the user can see in the sidebar:
// every public channel plus private channels they are a member of.
func (r *ChannelRepository) ListVisible(userID string) ([]chatmodels.Channel, error) {
	var channels []chatmodels.Channel
	err := r.DB.
		Where("is_dm = ?", false).
		Where("is_private = ? OR id IN (?)",
			false,
			r.DB.Model(&chatmodels.ChannelMember{}).Select("channel_id").Where("user_id = ?", userID),
		).
		Order("created_at asc").
		Find(&channels).Error
	return channels, err
}

// ListDMs returns DM channels the user belongs to, newest first, with
// members preloaded so callers can pick out the other participant.
func (r *ChannelRepository) ListDMs(userID string) ([]chatmodels.Channel, error) {
	var channels []chatmodels.Channel
	err := r.DB.
		Preload("Members.User").
		Where("is_dm = ?", true).
		Where("id IN (?)",
			r.DB.Model(&chatmodels.ChannelMember{}).Select("channel_id").Where("user_id = ?", userID),
		).
		Order("created_at desc").
		Find(&channels).Error
	return channels, err
}

// FindDMBetween locates an existing DM channel that both users belong to.
func (r *ChannelRepository) FindDMBetween(userID, otherUserID string) (*chatmodels.Channel, error) {
	var channel chatmodels.Channel
	err := r.DB.
		Where("is_dm = ?", true).
		Where("id IN (?)",
			r.DB.Model(&chatmodels.ChannelMember{}).Select("channel_id").Where("user_id = ?", userID),
		).
		Where("id IN (?)",
			r.DB.Model(&chatmodels.ChannelMember{}).Select("channel_id").Where("user_id = ?", otherUserID),
		).
		First(&channel).Error
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

func (r *ChannelRepository) SearchByName(query string, limit int) ([]chatmodels.Channel, error) {
	var channels []chatmodels.Channel
	err := r.DB.
		Where("is_dm = ? AND is_private = ? AND name LIKE ?", false, false, "%"+query+"%").
		Limit(limit).
		Find(&channels).Error
	return channels, err
}
