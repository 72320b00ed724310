package chat

import (
	"time"

	"gorm.io/gorm"

	chatmodels "huddle_backend/internal/models/chat"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Create(message *chatmodels.Message) error {
	return r.DB.Create(message).Error
}

func (r *MessageRepository) GetByID(id string) (*chatmodels.Message, error) {
	var message chatmodels.Message
	if err := r.DB.First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) UpdateContent(id, content string) error {
	return r.DB.Model(&chatmodels.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"is_edited":  true,
			"updated_at": time.Now(),
		}).Error
}

func (r *MessageRepository) Delete(id string) error {
	return r.DB.Delete(&chatmodels.Message{}, "id = ?", id).Error
}

// SetPinned records who pinned and when; clearing passes nils.
func (r *MessageRepository) SetPinned(id string, pinned bool, pinnedBy *string, pinnedAt *time.Time) error {
	return r.DB.Model(&chatmodels.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"pinned":    pinned,
			"pinned_by": pinnedBy,
			"pinned_at": pinnedAt,
		}).Error
}

func (r *MessageRepository) ListByChannel(channelID string, limit int) ([]chatmodels.Message, error) {
	var messages []chatmodels.Message
	q := r.DB.Where("channel_id = ?", channelID).Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) ListPinned(channelID string) ([]chatmodels.Message, error) {
	var messages []chatmodels.Message
	err := r.DB.
		Where("channel_id = ? AND pinned = ?", channelID, true).
		Order("pinned_at asc").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) ListByThread(threadID string) ([]chatmodels.Message, error) {
	var messages []chatmodels.Message
	err := r.DB.
		Where("thread_parent_id = ?", threadID).
		Order("created_at asc").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) CountByThread(threadID string) (int64, error) {
	var count int64
	err := r.DB.Model(&chatmodels.Message{}).
		Where("thread_parent_id = ?", threadID).
		Count(&count).Error
	return count, err
}

// CountByThreads fetches reply counts for many threads in one query, keyed
// by thread id. Message history pages use this to avoid a count query per
// message.
func (r *MessageRepository) CountByThreads(threadIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(threadIDs))
	if len(threadIDs) == 0 {
		return counts, nil
	}

	type row struct {
		ThreadParentID string
		Total          int64
	}
	var rows []row
	err := r.DB.Model(&chatmodels.Message{}).
		Select("thread_parent_id, count(*) as total").
		Where("thread_parent_id IN ?", threadIDs).
		Group("thread_parent_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, rw := range rows {
		counts[rw.ThreadParentID] = rw.Total
	}
	return counts, nil
}

// SearchContent matches message text within the given channels only, so
// results never leak private channels the requester cannot read.
func (r *MessageRepository) SearchContent(query string, channelIDs []string, limit int) ([]chatmodels.Message, error) {
	if len(channelIDs) == 0 {
		return []chatmodels.Message{}, nil
	}
	var messages []chatmodels.Message
	err := r.DB.
		Where("channel_id IN ? AND content LIKE ? AND is_system = ?", channelIDs, "%"+query+"%", false).
		Order("created_at desc").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
