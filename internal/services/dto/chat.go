package dto

import (
	"time"

	chatmodels "huddle_backend/internal/models/chat"
)

// ReactionUser is one reacting user, hydrated with a display name.
type ReactionUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReactionEntry is the wire shape of one emoji's reactions. Count always
// equals len(Users); an entry with no users is never emitted.
type ReactionEntry struct {
	Emoji string         `json:"emoji"`
	Count int            `json:"count"`
	Users []ReactionUser `json:"users"`
}

// MessagePayload is the full message object broadcast to viewing rooms.
type MessagePayload struct {
	ID            string                        `json:"id"`
	ChannelID     string                        `json:"channel_id"`
	SenderID      string                        `json:"sender_id"`
	SenderName    string                        `json:"sender_name"`
	AvatarURL     *string                       `json:"avatar_url"`
	Content       *string                       `json:"content"`
	Files         []chatmodels.File             `json:"files"`
	Reactions     []ReactionEntry               `json:"reactions"`
	Pinned        bool                          `json:"pinned"`
	IsEdited      bool                          `json:"is_edited"`
	IsForwarded   bool                          `json:"is_forwarded"`
	ForwardedFrom *chatmodels.ForwardProvenance `json:"forwarded_from"`
	IsSystem      bool                          `json:"is_system"`
	ThreadCount   int64                         `json:"thread_count"`
	CreatedAt     time.Time                     `json:"created_at"`
	UpdatedAt     time.Time                     `json:"updated_at"`
}

// MessageEditedPayload echoes the result of an edit.
type MessageEditedPayload struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	ChannelID      string    `json:"channel_id"`
	IsEdited       bool      `json:"is_edited"`
	IsThreadReply  bool      `json:"is_thread_reply"`
	ThreadParentID *string   `json:"thread_parent_id"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type MessageDeletedPayload struct {
	ID            string `json:"id"`
	ChannelID     string `json:"channel_id"`
	IsThreadReply bool   `json:"is_thread_reply"`
}

type MessagePinnedPayload struct {
	MessageID string     `json:"message_id"`
	ChannelID string     `json:"channel_id"`
	Pinned    bool       `json:"pinned"`
	PinnedBy  *string    `json:"pinned_by"`
	PinnedAt  *time.Time `json:"pinned_at"`
}

type ReactionUpdatedPayload struct {
	MessageID string          `json:"message_id"`
	ChannelID string          `json:"channel_id"`
	Reactions []ReactionEntry `json:"reactions"`
}

// ThreadReplyPayload is broadcast when a reply lands in a thread.
// ReplyCount is the fresh total for the parent thread so clients update
// badges without another round trip.
type ThreadReplyPayload struct {
	ID              string            `json:"id"`
	ThreadID        string            `json:"thread_id"`
	ParentMessageID string            `json:"parent_message_id"`
	ChannelID       string            `json:"channel_id"`
	SenderID        string            `json:"sender_id"`
	SenderName      string            `json:"sender_name"`
	AvatarURL       *string           `json:"avatar_url"`
	Content         *string           `json:"content"`
	Files           []chatmodels.File `json:"files"`
	ReplyCount      int64             `json:"reply_count"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Notification is the reduced home-room summary for users not viewing the
// channel: enough for a sidebar badge, never the full message body.
type Notification struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	MessageID   string    `json:"message_id"`
	SenderID    string    `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	AvatarURL   *string   `json:"avatar_url"`
	Preview     string    `json:"preview"`
	IsDM        bool      `json:"is_dm"`
	IsThread    bool      `json:"is_thread"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberPayload is a channel member as shown in member lists.
type MemberPayload struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

type MemberAddedPayload struct {
	ChannelID string        `json:"channel_id"`
	Member    MemberPayload `json:"member"`
}

type MemberRemovedPayload struct {
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
}

type AddedToChannelPayload struct {
	ChannelID   string              `json:"channel_id"`
	ChannelName string              `json:"channel_name"`
	Channel     *chatmodels.Channel `json:"channel"`
}

type RemovedFromChannelPayload struct {
	ChannelID   string `json:"channel_id"`
	ChannelName string `json:"channel_name"`
}

// ChannelSummary is the sidebar shape of a channel.
type ChannelSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsPrivate bool      `json:"is_private"`
	IsDM      bool      `json:"is_dm"`
	CreatedBy string    `json:"created_by"`
	IsMember  bool      `json:"is_member"`
	CreatedAt time.Time `json:"created_at"`
}

// ChannelDetail adds the member list, and for DMs the other participant.
type ChannelDetail struct {
	ChannelSummary
	Members []MemberPayload `json:"members"`
	DMUser  *MemberPayload  `json:"dm_user,omitempty"`
}

// DMSummary is one DM conversation in the sidebar, keyed by the other
// participant.
type DMSummary struct {
	ChannelID string        `json:"channel_id"`
	User      MemberPayload `json:"user"`
	CreatedAt time.Time     `json:"created_at"`
}

type UserStatusPayload struct {
	UserID   string `json:"user_id"`
	IsOnline bool   `json:"is_online"`
}
