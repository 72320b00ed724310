package chat

import "time"

// MessageReaction is one user's reaction with one emoji on one message.
// The unique triple makes the count==len(users) invariant a schema property.
type MessageReaction struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	MessageID string `gorm:"uniqueIndex:idx_reaction_message_user_emoji;not null;type:uuid"`
	UserID    string `gorm:"uniqueIndex:idx_reaction_message_user_emoji;not null;type:uuid"`
	Emoji     string `gorm:"uniqueIndex:idx_reaction_message_user_emoji;type:varchar(32);not null"`
	CreatedAt time.Time
}

func (MessageReaction) TableName() string {
	return "message_reactions"
}
