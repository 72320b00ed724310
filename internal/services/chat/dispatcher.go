package chat

import (
	"huddle_backend/internal/logger"
	chatmodels "huddle_backend/internal/models/chat"
	"huddle_backend/internal/services/dto"
)

// Dispatcher computes the delivery set for a mutation result and emits the
// events. Two classes exist on purpose: viewers get the full payload to
// render immediately; everyone else in the member list gets a reduced
// notification so sidebars and badges update without paying for bodies,
// attachments, or reaction state of channels they are not looking at.
type Dispatcher struct {
	broadcaster Broadcaster
	members     MemberStore
}

func NewDispatcher(broadcaster Broadcaster, members MemberStore) *Dispatcher {
	return &Dispatcher{
		broadcaster: broadcaster,
		members:     members,
	}
}

// MessageCreated broadcasts the full message to the viewing room and a
// reduced summary to every other member's home room.
func (d *Dispatcher) MessageCreated(channel *chatmodels.Channel, msg *dto.MessagePayload) {
	d.broadcaster.BroadcastToChannel(channel.ID, EventReceiveMessage, msg)

	content := ""
	if msg.Content != nil {
		content = *msg.Content
	}
	d.notifyMembers(channel, msg.SenderID, EventNewMessageNotification, &dto.Notification{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		SenderName:  msg.SenderName,
		AvatarURL:   msg.AvatarURL,
		Preview:     MakePreview(content),
		IsDM:        channel.IsDM,
		IsThread:    false,
		CreatedAt:   msg.CreatedAt,
	})
}

// SystemMessage broadcasts a membership-lifecycle message to the viewing
// room only; system chatter never generates home-room notifications.
func (d *Dispatcher) SystemMessage(channelID string, msg *dto.MessagePayload) {
	d.broadcaster.BroadcastToChannel(channelID, EventReceiveMessage, msg)
}

func (d *Dispatcher) MessageEdited(channelID string, payload *dto.MessageEditedPayload) {
	d.broadcaster.BroadcastToChannel(channelID, EventMessageEdited, payload)
}

func (d *Dispatcher) MessageDeleted(channelID string, payload *dto.MessageDeletedPayload) {
	d.broadcaster.BroadcastToChannel(channelID, EventMessageDeleted, payload)
}

func (d *Dispatcher) MessagePinned(channelID string, payload *dto.MessagePinnedPayload) {
	d.broadcaster.BroadcastToChannel(channelID, EventMessagePinned, payload)
}

func (d *Dispatcher) MessageUnpinned(channelID string, payload *dto.MessagePinnedPayload) {
	d.broadcaster.BroadcastToChannel(channelID, EventMessageUnpinned, payload)
}

func (d *Dispatcher) ReactionUpdated(channelID string, payload *dto.ReactionUpdatedPayload) {
	d.broadcaster.BroadcastToChannel(channelID, EventReactionUpdated, payload)
}

// ThreadReplyAdded broadcasts the reply to the parent channel's viewing
// room and notifies other members' home rooms with a thread summary.
func (d *Dispatcher) ThreadReplyAdded(channel *chatmodels.Channel, reply *dto.ThreadReplyPayload) {
	d.broadcaster.BroadcastToChannel(channel.ID, EventThreadReplyAdded, reply)

	content := ""
	if reply.Content != nil {
		content = *reply.Content
	}
	d.notifyMembers(channel, reply.SenderID, EventNewThreadNotification, &dto.Notification{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		MessageID:   reply.ID,
		SenderID:    reply.SenderID,
		SenderName:  reply.SenderName,
		AvatarURL:   reply.AvatarURL,
		Preview:     MakePreview(content),
		IsDM:        channel.IsDM,
		IsThread:    true,
		CreatedAt:   reply.CreatedAt,
	})
}

// MemberAdded tells the viewing room to refresh its member list and tells
// the new member's home room the channel now belongs in their sidebar.
func (d *Dispatcher) MemberAdded(channel *chatmodels.Channel, member dto.MemberPayload) {
	d.broadcaster.BroadcastToChannel(channel.ID, EventMemberAdded, &dto.MemberAddedPayload{
		ChannelID: channel.ID,
		Member:    member,
	})
	d.broadcaster.SendToUser(member.ID, EventAddedToChannel, &dto.AddedToChannelPayload{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		Channel:     channel,
	})
}

// MemberRemoved notifies the room and the removed user, then evicts the
// removed user's live connections from the viewing room so stale
// subscriptions stop receiving broadcasts.
func (d *Dispatcher) MemberRemoved(channel *chatmodels.Channel, userID, userName string) {
	d.broadcaster.BroadcastToChannel(channel.ID, EventMemberRemoved, &dto.MemberRemovedPayload{
		ChannelID: channel.ID,
		UserID:    userID,
		UserName:  userName,
	})
	d.broadcaster.SendToUser(userID, EventRemovedFromChannel, &dto.RemovedFromChannelPayload{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
	})
	d.broadcaster.ForceLeaveChannel(userID, channel.ID)
}

// MemberLeft handles voluntary departure: the room updates its member
// list, and the leaver's own connections are dropped from the room.
func (d *Dispatcher) MemberLeft(channel *chatmodels.Channel, userID, userName string) {
	d.broadcaster.BroadcastToChannel(channel.ID, EventMemberRemoved, &dto.MemberRemovedPayload{
		ChannelID: channel.ID,
		UserID:    userID,
		UserName:  userName,
	})
	d.broadcaster.BroadcastToChannel(channel.ID, EventUserLeftChannel, &dto.MemberRemovedPayload{
		ChannelID: channel.ID,
		UserID:    userID,
		UserName:  userName,
	})
	d.broadcaster.ForceLeaveChannel(userID, channel.ID)
}

// notifyMembers fans a reduced notification out to every channel member's
// home room except the acting user. A membership lookup failure only costs
// notifications, never the already-broadcast mutation.
func (d *Dispatcher) notifyMembers(channel *chatmodels.Channel, actorID, event string, notification *dto.Notification) {
	members, err := d.members.ListByChannel(channel.ID)
	if err != nil {
		logger.WithError(err).Warn("failed to list members for notification fan-out", "channel_id", channel.ID)
		return
	}

	for _, member := range members {
		if member.UserID == actorID {
			continue
		}
		d.broadcaster.SendToUser(member.UserID, event, notification)
	}
}
