package chat

import "time"

// Thread anchors a reply chain to its parent message. ChannelID is a
// denormalized copy of the parent's channel so replies resolve their
// channel in one hop. Created lazily on first reply; at most one per
// parent message.
type Thread struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	ParentMessageID string `gorm:"uniqueIndex;not null;type:uuid"`
	ChannelID       string `gorm:"index;not null;type:uuid"`
	CreatedAt       time.Time
}

func (Thread) TableName() string {
	return "threads"
}
