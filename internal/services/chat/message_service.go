package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"huddle_backend/internal/auth"
	"huddle_backend/internal/logger"
	chatmodels "huddle_backend/internal/models/chat"
	"huddle_backend/internal/services/dto"
	"huddle_backend/pkg/apperrors"
)

// MessageService executes every message-affecting command: validate,
// persist, hand the result to the dispatcher. A message moves
// absent -> active -> (edited)* -> deleted; pinned is an orthogonal flag.
type MessageService struct {
	messages   MessageStore
	reactions  ReactionStore
	threads    ThreadStore
	channels   ChannelStore
	members    MemberStore
	users      UserStore
	files      FileRemover
	dispatcher *Dispatcher
	locks      messageLocks
}

func NewMessageService(
	messages MessageStore,
	reactions ReactionStore,
	threads ThreadStore,
	channels ChannelStore,
	members MemberStore,
	users UserStore,
	files FileRemover,
	dispatcher *Dispatcher,
) *MessageService {
	return &MessageService{
		messages:   messages,
		reactions:  reactions,
		threads:    threads,
		channels:   channels,
		members:    members,
		users:      users,
		files:      files,
		dispatcher: dispatcher,
	}
}

type SendInput struct {
	ChannelID string
	Content   string
	Files     []chatmodels.File
}

type ThreadReplyInput struct {
	ParentMessageID string
	Content         string
	Files           []chatmodels.File
}

// Send persists a new channel message and fans it out. An empty send (no
// content, no files) is dropped without an error. Private channels require
// an active membership row at send time — a user removed mid-session is
// rejected even though their connection is still open.
func (s *MessageService) Send(sender *auth.Identity, in SendInput) (*dto.MessagePayload, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && len(in.Files) == 0 {
		return nil, nil
	}

	channel, err := s.channels.GetByID(in.ChannelID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channelNotFoundError(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if channel.IsPrivate {
		isMember, err := s.members.IsMember(channel.ID, sender.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if !isMember {
			return nil, notAMemberError()
		}
	}

	message := &chatmodels.Message{
		ID:        uuid.New().String(),
		ChannelID: &channel.ID,
		SenderID:  sender.ID,
	}
	if content != "" {
		message.Content = &content
	}
	if len(in.Files) > 0 {
		raw, err := json.Marshal(in.Files)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		message.Files = datatypes.JSON(raw)
	}

	if err := s.messages.Create(message); err != nil {
		return nil, apperrors.InternalError(err)
	}

	payload := s.buildMessagePayload(message, sender.Name, sender.AvatarURL)
	s.dispatcher.MessageCreated(channel, payload)
	return payload, nil
}

// Edit replaces a message's content. Only the original sender may edit;
// the effective channel of a thread reply is resolved through its parent
// thread so the broadcast reaches the right room.
func (s *MessageService) Edit(requesterID, messageID, content string) (*dto.MessageEditedPayload, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequestError("Content required")
	}

	message, err := s.messages.GetByID(messageID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messageNotFoundError(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if message.SenderID != requesterID {
		return nil, notOwnerError()
	}

	channelID, isReply, err := s.resolveChannel(message)
	if err != nil {
		return nil, err
	}

	if err := s.messages.UpdateContent(messageID, content); err != nil {
		return nil, apperrors.InternalError(err)
	}

	payload := &dto.MessageEditedPayload{
		ID:             messageID,
		Content:        content,
		ChannelID:      channelID,
		IsEdited:       true,
		IsThreadReply:  isReply,
		ThreadParentID: message.ThreadParentID,
		UpdatedAt:      time.Now(),
	}
	s.dispatcher.MessageEdited(channelID, payload)
	return payload, nil
}

// Delete removes a message after submitting its attachments to the blob
// store for cleanup. Storage failures are logged and ignored: a persisted
// deletion is never held hostage by a storage hiccup, and a message must
// never become undeletable because its files are.
func (s *MessageService) Delete(requesterID, messageID string) (*dto.MessageDeletedPayload, error) {
	message, err := s.messages.GetByID(messageID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messageNotFoundError(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if message.SenderID != requesterID {
		return nil, notOwnerError()
	}

	channelID, isReply, err := s.resolveChannel(message)
	if err != nil {
		return nil, err
	}

	for _, file := range message.FileList() {
		if file.Path == "" {
			continue
		}
		if err := s.files.Delete(context.Background(), file.Path); err != nil {
			logger.WithError(err).Warn("storage cleanup failed",
				"message_id", messageID, "path", file.Path)
		}
	}

	if err := s.reactions.DeleteByMessage(messageID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.messages.Delete(messageID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	payload := &dto.MessageDeletedPayload{
		ID:            messageID,
		ChannelID:     channelID,
		IsThreadReply: isReply,
	}
	s.dispatcher.MessageDeleted(channelID, payload)
	return payload, nil
}

// Pin marks a message pinned. Any member may pin; pinning an already
// pinned message is a no-op.
func (s *MessageService) Pin(requesterID, messageID string) (*dto.MessagePinnedPayload, error) {
	message, channel, _, err := s.loadWithChannel(messageID)
	if err != nil {
		return nil, err
	}

	if channel.IsPrivate {
		isMember, err := s.members.IsMember(channel.ID, requesterID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if !isMember {
			return nil, notAMemberError()
		}
	}

	if message.Pinned {
		return nil, nil
	}

	now := time.Now()
	if err := s.messages.SetPinned(messageID, true, &requesterID, &now); err != nil {
		return nil, apperrors.InternalError(err)
	}

	payload := &dto.MessagePinnedPayload{
		MessageID: messageID,
		ChannelID: channel.ID,
		Pinned:    true,
		PinnedBy:  &requesterID,
		PinnedAt:  &now,
	}
	s.dispatcher.MessagePinned(channel.ID, payload)
	return payload, nil
}

// Unpin clears the pinned flag. Only the user who pinned or the channel
// creator may unpin; unpinning an unpinned message is a no-op.
func (s *MessageService) Unpin(requesterID, messageID string) (*dto.MessagePinnedPayload, error) {
	message, channel, _, err := s.loadWithChannel(messageID)
	if err != nil {
		return nil, err
	}

	if !message.Pinned {
		return nil, nil
	}

	pinnedBySelf := message.PinnedBy != nil && *message.PinnedBy == requesterID
	if !pinnedBySelf && channel.CreatedBy != requesterID {
		return nil, notPinOwnerError()
	}

	if err := s.messages.SetPinned(messageID, false, nil, nil); err != nil {
		return nil, apperrors.InternalError(err)
	}

	payload := &dto.MessagePinnedPayload{
		MessageID: messageID,
		ChannelID: channel.ID,
		Pinned:    false,
	}
	s.dispatcher.MessageUnpinned(channel.ID, payload)
	return payload, nil
}

// React toggles the requester's reaction: absent adds it, present removes
// it, and an emoji entry whose user set empties disappears entirely. The
// per-message lock keeps two concurrent toggles from losing one another
// between the membership read and the write.
func (s *MessageService) React(requesterID, messageID, emoji string) (*dto.ReactionUpdatedPayload, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, nil
	}

	unlock := s.locks.lock(messageID)
	defer unlock()

	message, err := s.messages.GetByID(messageID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messageNotFoundError(err)
		}
		return nil, apperrors.InternalError(err)
	}

	channelID, _, err := s.resolveChannel(message)
	if err != nil {
		return nil, err
	}

	hasReacted, err := s.reactions.Exists(messageID, requesterID, emoji)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if hasReacted {
		err = s.reactions.Remove(messageID, requesterID, emoji)
	} else {
		err = s.reactions.Add(&chatmodels.MessageReaction{
			ID:        uuid.New().String(),
			MessageID: messageID,
			UserID:    requesterID,
			Emoji:     emoji,
		})
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	entries, err := s.hydrateReactions(messageID)
	if err != nil {
		return nil, err
	}

	payload := &dto.ReactionUpdatedPayload{
		MessageID: messageID,
		ChannelID: channelID,
		Reactions: entries,
	}
	s.dispatcher.ReactionUpdated(channelID, payload)
	return payload, nil
}

// AddThreadReply appends a reply under a parent message, creating the
// Thread row lazily with the parent's channel denormalized onto it. The
// reply itself carries no channel_id; its channel is always the thread's.
func (s *MessageService) AddThreadReply(sender *auth.Identity, in ThreadReplyInput) (*dto.ThreadReplyPayload, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && len(in.Files) == 0 {
		return nil, nil
	}

	parent, err := s.messages.GetByID(in.ParentMessageID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messageNotFoundError(err)
		}
		return nil, apperrors.InternalError(err)
	}

	thread, err := s.threads.GetByParentMessage(parent.ID)
	if err != nil {
		if !apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.InternalError(err)
		}

		parentChannelID, _, rerr := s.resolveChannel(parent)
		if rerr != nil {
			return nil, rerr
		}
		thread = &chatmodels.Thread{
			ID:              uuid.New().String(),
			ParentMessageID: parent.ID,
			ChannelID:       parentChannelID,
		}
		if err := s.threads.Create(thread); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	reply := &chatmodels.Message{
		ID:             uuid.New().String(),
		SenderID:       sender.ID,
		ThreadParentID: &thread.ID,
	}
	if content != "" {
		reply.Content = &content
	}
	if len(in.Files) > 0 {
		raw, err := json.Marshal(in.Files)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		reply.Files = datatypes.JSON(raw)
	}

	if err := s.messages.Create(reply); err != nil {
		return nil, apperrors.InternalError(err)
	}

	count, err := s.messages.CountByThread(thread.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	channel, err := s.channels.GetByID(thread.ChannelID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	payload := &dto.ThreadReplyPayload{
		ID:              reply.ID,
		ThreadID:        thread.ID,
		ParentMessageID: parent.ID,
		ChannelID:       channel.ID,
		SenderID:        sender.ID,
		SenderName:      sender.Name,
		AvatarURL:       sender.AvatarURL,
		Content:         reply.Content,
		Files:           reply.FileList(),
		ReplyCount:      count,
		CreatedAt:       reply.CreatedAt,
	}
	s.dispatcher.ThreadReplyAdded(channel, payload)
	return payload, nil
}

// HydrateReactions exposes the reaction wire shape for REST reads.
func (s *MessageService) HydrateReactions(messageID string) ([]dto.ReactionEntry, error) {
	return s.hydrateReactions(messageID)
}

// resolveChannel returns a message's effective channel: its own
// channel_id, or — for thread replies — the channel stored on the parent
// thread. Shared by Edit, Delete, Pin, Unpin and React so every path
// resolves identically.
func (s *MessageService) resolveChannel(message *chatmodels.Message) (string, bool, error) {
	if message.ChannelID != nil {
		return *message.ChannelID, false, nil
	}

	if message.ThreadParentID != nil {
		thread, err := s.threads.GetByID(*message.ThreadParentID)
		if err != nil {
			logger.Warn("thread reply with unresolvable parent thread",
				"message_id", message.ID, "thread_id", *message.ThreadParentID)
			return "", false, channelUnresolvedError(err)
		}
		return thread.ChannelID, true, nil
	}

	logger.Warn("message carries neither channel_id nor thread_parent_id", "message_id", message.ID)
	return "", false, channelUnresolvedError(nil)
}

// hydrateReactions materializes the wire shape from the join table.
// Emoji entries keep first-reaction order, and every referenced user id
// across all entries is resolved with one batched lookup.
func (s *MessageService) hydrateReactions(messageID string) ([]dto.ReactionEntry, error) {
	rows, err := s.reactions.ListByMessage(messageID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	order := make([]string, 0, len(rows))
	byEmoji := make(map[string][]string, len(rows))
	idSet := make(map[string]struct{}, len(rows))
	allIDs := make([]string, 0, len(rows))

	for _, row := range rows {
		if _, seen := byEmoji[row.Emoji]; !seen {
			order = append(order, row.Emoji)
		}
		byEmoji[row.Emoji] = append(byEmoji[row.Emoji], row.UserID)
		if _, seen := idSet[row.UserID]; !seen {
			idSet[row.UserID] = struct{}{}
			allIDs = append(allIDs, row.UserID)
		}
	}

	users, err := s.users.ListByIDs(allIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.ID] = user.Name
	}

	entries := make([]dto.ReactionEntry, 0, len(order))
	for _, emoji := range order {
		userIDs := byEmoji[emoji]
		reactors := make([]dto.ReactionUser, 0, len(userIDs))
		for _, id := range userIDs {
			name, ok := names[id]
			if !ok {
				name = "Unknown"
			}
			reactors = append(reactors, dto.ReactionUser{ID: id, Name: name})
		}
		entries = append(entries, dto.ReactionEntry{
			Emoji: emoji,
			Count: len(reactors),
			Users: reactors,
		})
	}
	return entries, nil
}

func (s *MessageService) loadWithChannel(messageID string) (*chatmodels.Message, *chatmodels.Channel, bool, error) {
	message, err := s.messages.GetByID(messageID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, messageNotFoundError(err)
		}
		return nil, nil, false, apperrors.InternalError(err)
	}

	channelID, isReply, err := s.resolveChannel(message)
	if err != nil {
		return nil, nil, false, err
	}

	channel, err := s.channels.GetByID(channelID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, false, channelNotFoundError(err)
		}
		return nil, nil, false, apperrors.InternalError(err)
	}
	return message, channel, isReply, nil
}

// buildMessagePayload hydrates the full wire object for a fresh message:
// sender identity stamped from the authenticated connection, parsed file
// list, reactions empty by construction.
func (s *MessageService) buildMessagePayload(message *chatmodels.Message, senderName string, avatarURL *string) *dto.MessagePayload {
	return &dto.MessagePayload{
		ID:            message.ID,
		ChannelID:     derefOrEmpty(message.ChannelID),
		SenderID:      message.SenderID,
		SenderName:    senderName,
		AvatarURL:     avatarURL,
		Content:       message.Content,
		Files:         message.FileList(),
		Reactions:     []dto.ReactionEntry{},
		Pinned:        message.Pinned,
		IsEdited:      message.IsEdited,
		IsForwarded:   message.IsForwarded,
		ForwardedFrom: message.Provenance(),
		IsSystem:      message.IsSystem,
		CreatedAt:     message.CreatedAt,
		UpdatedAt:     message.UpdatedAt,
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
