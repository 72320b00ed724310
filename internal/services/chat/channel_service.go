package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"huddle_backend/internal/auth"
	"huddle_backend/internal/logger"
	"huddle_backend/internal/models"
	chatmodels "huddle_backend/internal/models/chat"
	"huddle_backend/internal/repositories"
	chatrepo "huddle_backend/internal/repositories/chat"
	"huddle_backend/internal/services/dto"
	"huddle_backend/pkg/apperrors"
)

const defaultHistoryLimit = 200

// ChannelService owns the channel lifecycle: creation, membership,
// DM conversations, history reads and message forwarding. Membership
// transitions persist a system message and fan out through the
// dispatcher so every open client converges on the new member list.
type ChannelService struct {
	channels   *chatrepo.ChannelRepository
	members    *chatrepo.ChannelMemberRepository
	messages   *chatrepo.MessageRepository
	reactions  *chatrepo.MessageReactionRepository
	threads    *chatrepo.ThreadRepository
	users      *repositories.UserRepository
	dispatcher *Dispatcher
}

func NewChannelService(
	channels *chatrepo.ChannelRepository,
	members *chatrepo.ChannelMemberRepository,
	messages *chatrepo.MessageRepository,
	reactions *chatrepo.MessageReactionRepository,
	threads *chatrepo.ThreadRepository,
	users *repositories.UserRepository,
	dispatcher *Dispatcher,
) *ChannelService {
	return &ChannelService{
		channels:   channels,
		members:    members,
		messages:   messages,
		reactions:  reactions,
		threads:    threads,
		users:      users,
		dispatcher: dispatcher,
	}
}

// Create opens a new channel with the creator as its first member.
func (s *ChannelService) Create(creator *auth.Identity, name string, isPrivate bool) (*dto.ChannelSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequestError("Channel name required")
	}

	channel := &chatmodels.Channel{
		ID:        uuid.New().String(),
		Name:      name,
		IsPrivate: isPrivate,
		CreatedBy: creator.ID,
	}
	if err := s.channels.Create(channel); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.members.Add(&chatmodels.ChannelMember{ChannelID: channel.ID, UserID: creator.ID}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	summary := summarize(channel, true)
	return &summary, nil
}

// ListVisible returns the requester's sidebar channels: all public
// channels plus private ones they belong to, with membership stamped.
func (s *ChannelService) ListVisible(userID string) ([]dto.ChannelSummary, error) {
	channels, err := s.channels.ListVisible(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	summaries := make([]dto.ChannelSummary, 0, len(channels))
	for _, channel := range channels {
		isMember, err := s.members.IsMember(channel.ID, userID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		summaries = append(summaries, summarize(&channel, isMember))
	}
	return summaries, nil
}

// Get returns the full channel view. Private channels are invisible to
// non-members; DM channels carry the other participant as dm_user.
func (s *ChannelService) Get(requesterID, channelID string) (*dto.ChannelDetail, error) {
	channel, isMember, err := s.loadReadable(requesterID, channelID)
	if err != nil {
		return nil, err
	}

	memberRows, err := s.members.ListByChannel(channel.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	detail := &dto.ChannelDetail{
		ChannelSummary: summarize(channel, isMember),
		Members:        make([]dto.MemberPayload, 0, len(memberRows)),
	}
	for _, row := range memberRows {
		if row.User == nil {
			continue
		}
		payload := memberPayload(row.User)
		detail.Members = append(detail.Members, payload)
		if channel.IsDM && row.UserID != requesterID {
			detail.DMUser = &payload
		}
	}
	return detail, nil
}

// Join adds the requester to a public channel. Private channels are
// invite-only: joining one is forbidden regardless of visibility.
func (s *ChannelService) Join(user *auth.Identity, channelID string) (*dto.ChannelDetail, error) {
	channel, err := s.loadChannel(channelID)
	if err != nil {
		return nil, err
	}
	if channel.IsPrivate {
		return nil, apperrors.NewForbiddenError("chat", "This channel is invite-only")
	}

	if err := s.members.Add(&chatmodels.ChannelMember{ChannelID: channel.ID, UserID: user.ID}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.postSystemMessage(channel, user, fmt.Sprintf("<em>%s joined the channel</em>", user.Name))
	s.dispatcher.MemberAdded(channel, dto.MemberPayload{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	})

	return s.Get(user.ID, channel.ID)
}

// Leave removes the requester's own membership and evicts their live
// connections from the viewing room.
func (s *ChannelService) Leave(user *auth.Identity, channelID string) error {
	channel, err := s.loadChannel(channelID)
	if err != nil {
		return err
	}

	isMember, err := s.members.IsMember(channel.ID, user.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if !isMember {
		return notAMemberError()
	}

	if err := s.members.Remove(channel.ID, user.ID); err != nil {
		return apperrors.InternalError(err)
	}

	s.postSystemMessage(channel, user, fmt.Sprintf("<em>%s left the channel</em>", user.Name))
	s.dispatcher.MemberLeft(channel, user.ID, user.Name)
	return nil
}

// AddMember invites a user into a private channel. Public channels are
// self-serve via Join; only the creator manages a private roster. Adding
// an existing member is a no-op upsert.
func (s *ChannelService) AddMember(actor *auth.Identity, channelID, targetUserID string) error {
	channel, err := s.loadChannel(channelID)
	if err != nil {
		return err
	}

	if !channel.IsPrivate {
		return apperrors.NewBadRequestError("Channel is not private")
	}
	if channel.CreatedBy != actor.ID {
		return apperrors.NewForbiddenError("chat", "Only the channel creator can add members")
	}

	target, err := s.users.GetByID(targetUserID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound(err, "chat", "User not found")
		}
		return apperrors.InternalError(err)
	}

	if err := s.members.Add(&chatmodels.ChannelMember{ChannelID: channel.ID, UserID: target.ID}); err != nil {
		return apperrors.InternalError(err)
	}

	s.postSystemMessage(channel, actor, fmt.Sprintf("<em>%s added %s to the channel</em>", actor.Name, target.Name))
	s.dispatcher.MemberAdded(channel, memberPayload(target))
	return nil
}

// RemoveMember kicks a user out. Only the channel creator may remove
// others; the removed user's connections are force-evicted so in-flight
// subscriptions cannot outlive the membership.
func (s *ChannelService) RemoveMember(actor *auth.Identity, channelID, targetUserID string) error {
	channel, err := s.loadChannel(channelID)
	if err != nil {
		return err
	}
	if channel.CreatedBy != actor.ID {
		return apperrors.NewForbiddenError("chat", "Only the channel creator can remove members")
	}

	target, err := s.users.GetByID(targetUserID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound(err, "chat", "User not found")
		}
		return apperrors.InternalError(err)
	}

	if err := s.members.Remove(channel.ID, target.ID); err != nil {
		return apperrors.InternalError(err)
	}

	s.postSystemMessage(channel, actor, fmt.Sprintf("<em>%s removed %s from the channel</em>", actor.Name, target.Name))
	s.dispatcher.MemberRemoved(channel, target.ID, target.Name)
	return nil
}

// CreateOrGetDM returns the DM channel between the requester and the
// other user, creating it on first contact. DM channels are private,
// nameless from the user's point of view, and never listed publicly.
func (s *ChannelService) CreateOrGetDM(user *auth.Identity, otherUserID string) (*dto.DMSummary, error) {
	if otherUserID == user.ID {
		return nil, apperrors.NewBadRequestError("Cannot open a DM with yourself")
	}

	other, err := s.users.GetByID(otherUserID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound(err, "chat", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}

	channel, err := s.channels.FindDMBetween(user.ID, other.ID)
	if err != nil {
		if !apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.InternalError(err)
		}

		id := uuid.New().String()
		channel = &chatmodels.Channel{
			ID:        id,
			Name:      fmt.Sprintf("dm:%s:%s", user.ID, other.ID),
			IsPrivate: true,
			IsDM:      true,
			CreatedBy: user.ID,
			// Association rows ride the same insert, so a half-created DM
			// with one participant cannot exist.
			Members: []chatmodels.ChannelMember{
				{ChannelID: id, UserID: user.ID},
				{ChannelID: id, UserID: other.ID},
			},
		}
		if err := s.channels.Create(channel); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	return &dto.DMSummary{
		ChannelID: channel.ID,
		User:      memberPayload(other),
		CreatedAt: channel.CreatedAt,
	}, nil
}

// ListDMs returns the requester's DM conversations keyed by the other
// participant.
func (s *ChannelService) ListDMs(userID string) ([]dto.DMSummary, error) {
	channels, err := s.channels.ListDMs(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	summaries := make([]dto.DMSummary, 0, len(channels))
	for _, channel := range channels {
		for _, member := range channel.Members {
			if member.UserID == userID || member.User == nil {
				continue
			}
			summaries = append(summaries, dto.DMSummary{
				ChannelID: channel.ID,
				User:      memberPayload(member.User),
				CreatedAt: channel.CreatedAt,
			})
			break
		}
	}
	return summaries, nil
}

// History returns a channel's messages oldest-first, fully hydrated:
// sender identity, reactions and thread reply counts are each resolved
// with one batched query for the whole page.
func (s *ChannelService) History(requesterID, channelID string, limit int) ([]dto.MessagePayload, error) {
	channel, _, err := s.loadReadable(requesterID, channelID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	messages, err := s.messages.ListByChannel(channel.ID, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.hydrateMessages(messages)
}

// PinnedMessages returns a channel's pinned messages in pin order.
func (s *ChannelService) PinnedMessages(requesterID, channelID string) ([]dto.MessagePayload, error) {
	channel, _, err := s.loadReadable(requesterID, channelID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListPinned(channel.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.hydrateMessages(messages)
}

// ThreadReplies lists the replies under a parent message, oldest first.
// A parent with no thread yet simply has no replies.
func (s *ChannelService) ThreadReplies(requesterID, parentMessageID string) ([]dto.MessagePayload, error) {
	parent, err := s.messages.GetByID(parentMessageID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messageNotFoundError(err)
		}
		return nil, apperrors.InternalError(err)
	}

	thread, err := s.threads.GetByParentMessage(parent.ID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return []dto.MessagePayload{}, nil
		}
		return nil, apperrors.InternalError(err)
	}

	if _, _, err := s.loadReadable(requesterID, thread.ChannelID); err != nil {
		return nil, err
	}

	replies, err := s.messages.ListByThread(thread.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.hydrateMessages(replies)
}

// Forward copies a message into another channel under the forwarder's
// name, stamping provenance so clients can render the original source.
// Forwarding a forward carries the first source through unchanged; DM
// sources are labeled with the other participant's name.
func (s *ChannelService) Forward(actor *auth.Identity, messageID, targetChannelID string) (*dto.MessagePayload, error) {
	original, err := s.messages.GetByID(messageID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, messageNotFoundError(err)
		}
		return nil, apperrors.InternalError(err)
	}

	target, err := s.loadChannel(targetChannelID)
	if err != nil {
		return nil, err
	}
	if target.IsPrivate {
		isMember, err := s.members.IsMember(target.ID, actor.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		if !isMember {
			return nil, notAMemberError()
		}
	}

	// A re-forward keeps the original provenance; the chain always points
	// at the first source, not the intermediate forwarder.
	var provenance chatmodels.ForwardProvenance
	if existing := original.Provenance(); existing != nil {
		provenance = *existing
	} else {
		provenance = chatmodels.ForwardProvenance{
			ID:        original.SenderID,
			ChannelID: original.ChannelID,
		}
		if sender, err := s.users.GetByID(original.SenderID); err == nil {
			provenance.Name = sender.Name
		}
		if original.ChannelID != nil {
			if source, err := s.channels.GetByID(*original.ChannelID); err == nil {
				provenance.ChannelIsDM = source.IsDM
				if source.IsDM {
					// DM sources are shown by the other participant's name
					if other, err := s.members.FindOther(source.ID, original.SenderID); err == nil && other.User != nil {
						provenance.ChannelName = &other.User.Name
					}
				} else {
					provenance.ChannelName = &source.Name
				}
			}
		}
	}
	rawProvenance, err := json.Marshal(provenance)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	forwarded := &chatmodels.Message{
		ID:            uuid.New().String(),
		ChannelID:     &target.ID,
		SenderID:      actor.ID,
		Content:       original.Content,
		Files:         original.Files,
		IsForwarded:   true,
		ForwardedFrom: datatypes.JSON(rawProvenance),
	}
	if err := s.messages.Create(forwarded); err != nil {
		return nil, apperrors.InternalError(err)
	}

	payload := &dto.MessagePayload{
		ID:            forwarded.ID,
		ChannelID:     target.ID,
		SenderID:      actor.ID,
		SenderName:    actor.Name,
		AvatarURL:     actor.AvatarURL,
		Content:       forwarded.Content,
		Files:         forwarded.FileList(),
		Reactions:     []dto.ReactionEntry{},
		IsForwarded:   true,
		ForwardedFrom: &provenance,
		CreatedAt:     forwarded.CreatedAt,
		UpdatedAt:     forwarded.UpdatedAt,
	}
	s.dispatcher.MessageCreated(target, payload)
	return payload, nil
}

// Search matches message text across the channels the requester can
// read, so private conversations never leak through search results.
func (s *ChannelService) Search(requesterID, query string, limit int) ([]dto.MessagePayload, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.MessagePayload{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	visible, err := s.channels.ListVisible(requesterID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	dms, err := s.channels.ListDMs(requesterID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	channelIDs := make([]string, 0, len(visible)+len(dms))
	for _, channel := range visible {
		if channel.IsPrivate {
			isMember, err := s.members.IsMember(channel.ID, requesterID)
			if err != nil {
				return nil, apperrors.InternalError(err)
			}
			if !isMember {
				continue
			}
		}
		channelIDs = append(channelIDs, channel.ID)
	}
	for _, channel := range dms {
		channelIDs = append(channelIDs, channel.ID)
	}

	messages, err := s.messages.SearchContent(query, channelIDs, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.hydrateMessages(messages)
}

// SearchChannels matches public channel names; private channels never
// appear in channel search.
func (s *ChannelService) SearchChannels(query string, limit int) ([]dto.ChannelSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.ChannelSummary{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	channels, err := s.channels.SearchByName(query, limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	summaries := make([]dto.ChannelSummary, 0, len(channels))
	for i := range channels {
		summaries = append(summaries, summarize(&channels[i], false))
	}
	return summaries, nil
}

// postSystemMessage persists a membership system message and broadcasts
// it to the viewing room. A failure here is logged and swallowed: system
// chatter must never roll back the membership change it narrates.
func (s *ChannelService) postSystemMessage(channel *chatmodels.Channel, actor *auth.Identity, content string) {
	message := &chatmodels.Message{
		ID:        uuid.New().String(),
		ChannelID: &channel.ID,
		SenderID:  actor.ID,
		Content:   &content,
		IsSystem:  true,
	}
	if err := s.messages.Create(message); err != nil {
		logger.WithError(err).Warn("failed to persist system message", "channel_id", channel.ID)
		return
	}

	s.dispatcher.SystemMessage(channel.ID, &dto.MessagePayload{
		ID:         message.ID,
		ChannelID:  channel.ID,
		SenderID:   actor.ID,
		SenderName: actor.Name,
		AvatarURL:  actor.AvatarURL,
		Content:    message.Content,
		Files:      []chatmodels.File{},
		Reactions:  []dto.ReactionEntry{},
		IsSystem:   true,
		CreatedAt:  message.CreatedAt,
		UpdatedAt:  message.UpdatedAt,
	})
}

// hydrateMessages turns rows into wire payloads with three batched
// lookups: senders, reactions, thread reply counts.
func (s *ChannelService) hydrateMessages(messages []chatmodels.Message) ([]dto.MessagePayload, error) {
	if len(messages) == 0 {
		return []dto.MessagePayload{}, nil
	}

	messageIDs := make([]string, 0, len(messages))
	senderSet := make(map[string]struct{}, len(messages))
	senderIDs := make([]string, 0, len(messages))
	for _, message := range messages {
		messageIDs = append(messageIDs, message.ID)
		if _, seen := senderSet[message.SenderID]; !seen {
			senderSet[message.SenderID] = struct{}{}
			senderIDs = append(senderIDs, message.SenderID)
		}
	}

	reactionRows, err := s.reactions.ListByMessages(messageIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	reactorSet := make(map[string]struct{})
	for _, row := range reactionRows {
		if _, seen := reactorSet[row.UserID]; !seen {
			reactorSet[row.UserID] = struct{}{}
			if _, alsoSender := senderSet[row.UserID]; !alsoSender {
				senderIDs = append(senderIDs, row.UserID)
			}
		}
	}

	users, err := s.users.ListByIDs(senderIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	names := make(map[string]string, len(users))
	avatars := make(map[string]*string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].Name
		avatars[users[i].ID] = users[i].AvatarURL
	}

	reactionsByMessage := groupReactions(reactionRows, names)

	threads, err := s.threads.ListByParentMessages(messageIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	threadByParent := make(map[string]string, len(threads))
	threadIDs := make([]string, 0, len(threads))
	for _, thread := range threads {
		threadByParent[thread.ParentMessageID] = thread.ID
		threadIDs = append(threadIDs, thread.ID)
	}
	replyCounts, err := s.messages.CountByThreads(threadIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	payloads := make([]dto.MessagePayload, 0, len(messages))
	for i := range messages {
		message := &messages[i]
		name, ok := names[message.SenderID]
		if !ok {
			name = "Unknown"
		}

		entries, ok := reactionsByMessage[message.ID]
		if !ok {
			entries = []dto.ReactionEntry{}
		}

		var threadCount int64
		if threadID, ok := threadByParent[message.ID]; ok {
			threadCount = replyCounts[threadID]
		}

		payloads = append(payloads, dto.MessagePayload{
			ID:            message.ID,
			ChannelID:     derefOrEmpty(message.ChannelID),
			SenderID:      message.SenderID,
			SenderName:    name,
			AvatarURL:     avatars[message.SenderID],
			Content:       message.Content,
			Files:         message.FileList(),
			Reactions:     entries,
			Pinned:        message.Pinned,
			IsEdited:      message.IsEdited,
			IsForwarded:   message.IsForwarded,
			ForwardedFrom: message.Provenance(),
			IsSystem:      message.IsSystem,
			ThreadCount:   threadCount,
			CreatedAt:     message.CreatedAt,
			UpdatedAt:     message.UpdatedAt,
		})
	}
	return payloads, nil
}

// groupReactions buckets reaction rows per message into the wire shape,
// preserving first-reaction emoji order within each message.
func groupReactions(rows []chatmodels.MessageReaction, names map[string]string) map[string][]dto.ReactionEntry {
	type bucket struct {
		order   []string
		byEmoji map[string][]dto.ReactionUser
	}
	buckets := make(map[string]*bucket)

	for _, row := range rows {
		b, ok := buckets[row.MessageID]
		if !ok {
			b = &bucket{byEmoji: make(map[string][]dto.ReactionUser)}
			buckets[row.MessageID] = b
		}
		if _, seen := b.byEmoji[row.Emoji]; !seen {
			b.order = append(b.order, row.Emoji)
		}
		name, ok := names[row.UserID]
		if !ok {
			name = "Unknown"
		}
		b.byEmoji[row.Emoji] = append(b.byEmoji[row.Emoji], dto.ReactionUser{ID: row.UserID, Name: name})
	}

	result := make(map[string][]dto.ReactionEntry, len(buckets))
	for messageID, b := range buckets {
		entries := make([]dto.ReactionEntry, 0, len(b.order))
		for _, emoji := range b.order {
			users := b.byEmoji[emoji]
			entries = append(entries, dto.ReactionEntry{Emoji: emoji, Count: len(users), Users: users})
		}
		result[messageID] = entries
	}
	return result
}

func (s *ChannelService) loadChannel(channelID string) (*chatmodels.Channel, error) {
	channel, err := s.channels.GetByID(channelID)
	if err != nil {
		if apperrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channelNotFoundError(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return channel, nil
}

// loadReadable fetches a channel and enforces read visibility: private
// channels and DMs require membership.
func (s *ChannelService) loadReadable(requesterID, channelID string) (*chatmodels.Channel, bool, error) {
	channel, err := s.loadChannel(channelID)
	if err != nil {
		return nil, false, err
	}

	isMember, err := s.members.IsMember(channel.ID, requesterID)
	if err != nil {
		return nil, false, apperrors.InternalError(err)
	}
	if channel.IsPrivate && !isMember {
		return nil, false, notAMemberError()
	}
	return channel, isMember, nil
}

func summarize(channel *chatmodels.Channel, isMember bool) dto.ChannelSummary {
	return dto.ChannelSummary{
		ID:        channel.ID,
		Name:      channel.Name,
		IsPrivate: channel.IsPrivate,
		IsDM:      channel.IsDM,
		CreatedBy: channel.CreatedBy,
		IsMember:  isMember,
		CreatedAt: channel.CreatedAt,
	}
}

func memberPayload(user *models.User) dto.MemberPayload {
	return dto.MemberPayload{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
}
