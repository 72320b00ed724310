package chat

import (
	"time"

	"huddle_backend/internal/models"
)

// ChannelMember is the membership join row. For private channels its
// existence gates send/read access; public channels track creator and
// joiners here too, so leave and sidebar notifications have a member set
// to work with.
type ChannelMember struct {
	ChannelID string `gorm:"primaryKey;type:uuid"`
	UserID    string `gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time

	User *models.User `gorm:"foreignKey:UserID"`
}

func (ChannelMember) TableName() string {
	return "channel_members"
}
