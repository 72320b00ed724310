package chat

import (
	"context"
	"time"

	"huddle_backend/internal/models"
	chatmodels "huddle_backend/internal/models/chat"
)

// Store contracts the mutation engine depends on. The gorm repositories
// under internal/repositories satisfy them; tests substitute in-memory
// fakes.

type MessageStore interface {
	Create(message *chatmodels.Message) error
	GetByID(id string) (*chatmodels.Message, error)
	UpdateContent(id, content string) error
	Delete(id string) error
	SetPinned(id string, pinned bool, pinnedBy *string, pinnedAt *time.Time) error
	CountByThread(threadID string) (int64, error)
}

type ReactionStore interface {
	Add(reaction *chatmodels.MessageReaction) error
	Remove(messageID, userID, emoji string) error
	Exists(messageID, userID, emoji string) (bool, error)
	ListByMessage(messageID string) ([]chatmodels.MessageReaction, error)
	DeleteByMessage(messageID string) error
}

type ThreadStore interface {
	Create(thread *chatmodels.Thread) error
	GetByID(id string) (*chatmodels.Thread, error)
	GetByParentMessage(parentMessageID string) (*chatmodels.Thread, error)
}

type ChannelStore interface {
	GetByID(id string) (*chatmodels.Channel, error)
}

type MemberStore interface {
	IsMember(channelID, userID string) (bool, error)
	ListByChannel(channelID string) ([]chatmodels.ChannelMember, error)
}

type UserStore interface {
	ListByIDs(ids []string) ([]models.User, error)
}

// FileRemover is the slice of the blob store the engine needs: best-effort
// cleanup of attachment objects on message deletion.
type FileRemover interface {
	Delete(ctx context.Context, path string) error
}

// Broadcaster delivers events to live connections. ws.Manager implements
// it; dispatcher tests use a recording fake.
type Broadcaster interface {
	// BroadcastToChannel emits to every connection in the channel's
	// viewing room.
	BroadcastToChannel(channelID, event string, payload any)

	// SendToUser emits to every connection in the user's home room.
	SendToUser(userID, event string, payload any)

	// ForceLeaveChannel evicts all of a user's live connections from a
	// channel's viewing room.
	ForceLeaveChannel(userID, channelID string)
}
