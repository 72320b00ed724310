package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"huddle_backend/internal/models"
	chatmodels "huddle_backend/internal/models/chat"
)

// In-memory store fakes backing the service tests.

type fakeMessageStore struct {
	rows map[string]*chatmodels.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{rows: make(map[string]*chatmodels.Message)}
}

func (s *fakeMessageStore) Create(message *chatmodels.Message) error {
	now := time.Now()
	message.CreatedAt = now
	message.UpdatedAt = now
	s.rows[message.ID] = message
	return nil
}

func (s *fakeMessageStore) GetByID(id string) (*chatmodels.Message, error) {
	message, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return message, nil
}

func (s *fakeMessageStore) UpdateContent(id, content string) error {
	message, ok := s.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	message.Content = &content
	message.IsEdited = true
	message.UpdatedAt = time.Now()
	return nil
}

func (s *fakeMessageStore) Delete(id string) error {
	delete(s.rows, id)
	return nil
}

func (s *fakeMessageStore) SetPinned(id string, pinned bool, pinnedBy *string, pinnedAt *time.Time) error {
	message, ok := s.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	message.Pinned = pinned
	message.PinnedBy = pinnedBy
	message.PinnedAt = pinnedAt
	return nil
}

func (s *fakeMessageStore) CountByThread(threadID string) (int64, error) {
	var count int64
	for _, message := range s.rows {
		if message.ThreadParentID != nil && *message.ThreadParentID == threadID {
			count++
		}
	}
	return count, nil
}

type fakeReactionStore struct {
	rows []chatmodels.MessageReaction
}

func (s *fakeReactionStore) Add(reaction *chatmodels.MessageReaction) error {
	s.rows = append(s.rows, *reaction)
	return nil
}

func (s *fakeReactionStore) Remove(messageID, userID, emoji string) error {
	kept := s.rows[:0]
	for _, row := range s.rows {
		if row.MessageID == messageID && row.UserID == userID && row.Emoji == emoji {
			continue
		}
		kept = append(kept, row)
	}
	s.rows = kept
	return nil
}

func (s *fakeReactionStore) Exists(messageID, userID, emoji string) (bool, error) {
	for _, row := range s.rows {
		if row.MessageID == messageID && row.UserID == userID && row.Emoji == emoji {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeReactionStore) ListByMessage(messageID string) ([]chatmodels.MessageReaction, error) {
	var out []chatmodels.MessageReaction
	for _, row := range s.rows {
		if row.MessageID == messageID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *fakeReactionStore) DeleteByMessage(messageID string) error {
	kept := s.rows[:0]
	for _, row := range s.rows {
		if row.MessageID != messageID {
			kept = append(kept, row)
		}
	}
	s.rows = kept
	return nil
}

type fakeThreadStore struct {
	rows map[string]*chatmodels.Thread
}

func newFakeThreadStore() *fakeThreadStore {
	return &fakeThreadStore{rows: make(map[string]*chatmodels.Thread)}
}

func (s *fakeThreadStore) Create(thread *chatmodels.Thread) error {
	thread.CreatedAt = time.Now()
	s.rows[thread.ID] = thread
	return nil
}

func (s *fakeThreadStore) GetByID(id string) (*chatmodels.Thread, error) {
	thread, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return thread, nil
}

func (s *fakeThreadStore) GetByParentMessage(parentMessageID string) (*chatmodels.Thread, error) {
	for _, thread := range s.rows {
		if thread.ParentMessageID == parentMessageID {
			return thread, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeChannelStore struct {
	rows map[string]*chatmodels.Channel
}

func newFakeChannelStore() *fakeChannelStore {
	return &fakeChannelStore{rows: make(map[string]*chatmodels.Channel)}
}

func (s *fakeChannelStore) GetByID(id string) (*chatmodels.Channel, error) {
	channel, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return channel, nil
}

type fakeMemberStore struct {
	rows []chatmodels.ChannelMember
}

func (s *fakeMemberStore) IsMember(channelID, userID string) (bool, error) {
	for _, row := range s.rows {
		if row.ChannelID == channelID && row.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeMemberStore) ListByChannel(channelID string) ([]chatmodels.ChannelMember, error) {
	var out []chatmodels.ChannelMember
	for _, row := range s.rows {
		if row.ChannelID == channelID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	rows map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{rows: make(map[string]models.User)}
}

func (s *fakeUserStore) ListByIDs(ids []string) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if user, ok := s.rows[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeFileRemover struct {
	deleted []string
	fail    bool
}

func (f *fakeFileRemover) Delete(_ context.Context, path string) error {
	if f.fail {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, path)
	return nil
}

type broadcastCall struct {
	ChannelID string
	Event     string
	Payload   any
}

type userCall struct {
	UserID  string
	Event   string
	Payload any
}

type evictCall struct {
	UserID    string
	ChannelID string
}

// recordingBroadcaster captures fan-out calls for assertions.
type recordingBroadcaster struct {
	broadcasts []broadcastCall
	userSends  []userCall
	evictions  []evictCall
}

func (b *recordingBroadcaster) BroadcastToChannel(channelID, event string, payload any) {
	b.broadcasts = append(b.broadcasts, broadcastCall{ChannelID: channelID, Event: event, Payload: payload})
}

func (b *recordingBroadcaster) SendToUser(userID, event string, payload any) {
	b.userSends = append(b.userSends, userCall{UserID: userID, Event: event, Payload: payload})
}

func (b *recordingBroadcaster) ForceLeaveChannel(userID, channelID string) {
	b.evictions = append(b.evictions, evictCall{UserID: userID, ChannelID: channelID})
}

func (b *recordingBroadcaster) broadcastEvents() []string {
	out := make([]string, 0, len(b.broadcasts))
	for _, call := range b.broadcasts {
		out = append(out, call.Event)
	}
	return out
}
