package chat

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// File describes one uploaded attachment as stored in the files JSON column.
type File struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

// ForwardProvenance records where a forwarded message originally came from.
type ForwardProvenance struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ChannelID   *string `json:"channel_id"`
	ChannelName *string `json:"channel_name"`
	ChannelIsDM bool    `json:"channel_is_dm"`
}

// Message rows carry either a channel_id (regular message) or a
// thread_parent_id (thread reply); a reply's effective channel is resolved
// through the parent Thread.
type Message struct {
	ID             string  `gorm:"primaryKey;type:uuid"`
	ChannelID      *string `gorm:"index;type:uuid"`
	SenderID       string  `gorm:"index;not null;type:uuid"`
	Content        *string `gorm:"type:text"`
	Files          datatypes.JSON
	Pinned         bool `gorm:"default:false"`
	PinnedBy       *string
	PinnedAt       *time.Time
	ThreadParentID *string `gorm:"index;type:uuid"`
	IsForwarded    bool    `gorm:"default:false"`
	ForwardedFrom  datatypes.JSON
	IsEdited       bool `gorm:"default:false"`
	IsSystem       bool `gorm:"default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Reactions []MessageReaction `gorm:"foreignKey:MessageID"`
}

func (Message) TableName() string {
	return "messages"
}

// FileList decodes the files column; a null or corrupt column yields an
// empty list rather than an error, matching the tolerant read the wire
// contract expects.
func (m *Message) FileList() []File {
	if len(m.Files) == 0 {
		return []File{}
	}
	var files []File
	if err := json.Unmarshal(m.Files, &files); err != nil {
		return []File{}
	}
	return files
}

// Provenance decodes the forwarded_from column, nil when absent.
func (m *Message) Provenance() *ForwardProvenance {
	if !m.IsForwarded || len(m.ForwardedFrom) == 0 {
		return nil
	}
	var p ForwardProvenance
	if err := json.Unmarshal(m.ForwardedFrom, &p); err != nil {
		return nil
	}
	return &p
}
