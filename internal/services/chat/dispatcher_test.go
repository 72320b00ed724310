package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatmodels "huddle_backend/internal/models/chat"
	"huddle_backend/internal/services/dto"
)

func strPtr(s string) *string { return &s }

func TestMessageCreatedDeliversBothClasses(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	members := &fakeMemberStore{rows: []chatmodels.ChannelMember{
		{ChannelID: "ch1", UserID: "alice"},
		{ChannelID: "ch1", UserID: "bob"},
	}}
	d := NewDispatcher(broadcaster, members)

	channel := &chatmodels.Channel{ID: "ch1", Name: "general"}
	d.MessageCreated(channel, &dto.MessagePayload{
		ID:         "m1",
		ChannelID:  "ch1",
		SenderID:   "alice",
		SenderName: "Alice",
		Content:    strPtr("<p>hello &amp; welcome</p>"),
		CreatedAt:  time.Now(),
	})

	require.Len(t, broadcaster.broadcasts, 1)
	assert.Equal(t, EventReceiveMessage, broadcaster.broadcasts[0].Event)

	require.Len(t, broadcaster.userSends, 1)
	assert.Equal(t, "bob", broadcaster.userSends[0].UserID)

	notification, ok := broadcaster.userSends[0].Payload.(*dto.Notification)
	require.True(t, ok)
	assert.Equal(t, "hello & welcome", notification.Preview)
	assert.Equal(t, "general", notification.ChannelName)
	assert.False(t, notification.IsThread)
}

func TestSystemMessageSkipsNotifications(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	members := &fakeMemberStore{rows: []chatmodels.ChannelMember{
		{ChannelID: "ch1", UserID: "bob"},
	}}
	d := NewDispatcher(broadcaster, members)

	d.SystemMessage("ch1", &dto.MessagePayload{ID: "m1", IsSystem: true})

	assert.Len(t, broadcaster.broadcasts, 1)
	assert.Empty(t, broadcaster.userSends)
}

func TestThreadReplyNotificationIsMarkedAsThread(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	members := &fakeMemberStore{rows: []chatmodels.ChannelMember{
		{ChannelID: "ch1", UserID: "alice"},
		{ChannelID: "ch1", UserID: "bob"},
	}}
	d := NewDispatcher(broadcaster, members)

	channel := &chatmodels.Channel{ID: "ch1", Name: "general"}
	d.ThreadReplyAdded(channel, &dto.ThreadReplyPayload{
		ID:       "r1",
		SenderID: "bob",
		Content:  strPtr("a reply"),
	})

	require.Len(t, broadcaster.broadcasts, 1)
	assert.Equal(t, EventThreadReplyAdded, broadcaster.broadcasts[0].Event)

	require.Len(t, broadcaster.userSends, 1)
	assert.Equal(t, "alice", broadcaster.userSends[0].UserID)
	assert.Equal(t, EventNewThreadNotification, broadcaster.userSends[0].Event)

	notification := broadcaster.userSends[0].Payload.(*dto.Notification)
	assert.True(t, notification.IsThread)
}

func TestMemberRemovedEvictsAndNotifies(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	d := NewDispatcher(broadcaster, &fakeMemberStore{})

	channel := &chatmodels.Channel{ID: "ch1", Name: "general"}
	d.MemberRemoved(channel, "bob", "Bob")

	require.Len(t, broadcaster.broadcasts, 1)
	assert.Equal(t, EventMemberRemoved, broadcaster.broadcasts[0].Event)

	require.Len(t, broadcaster.userSends, 1)
	assert.Equal(t, "bob", broadcaster.userSends[0].UserID)
	assert.Equal(t, EventRemovedFromChannel, broadcaster.userSends[0].Event)

	require.Len(t, broadcaster.evictions, 1)
	assert.Equal(t, evictCall{UserID: "bob", ChannelID: "ch1"}, broadcaster.evictions[0])
}

func TestMemberLeftBroadcastsDepartureAndEvicts(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	d := NewDispatcher(broadcaster, &fakeMemberStore{})

	channel := &chatmodels.Channel{ID: "ch1", Name: "general"}
	d.MemberLeft(channel, "bob", "Bob")

	assert.Equal(t, []string{EventMemberRemoved, EventUserLeftChannel}, broadcaster.broadcastEvents())
	assert.Empty(t, broadcaster.userSends)
	require.Len(t, broadcaster.evictions, 1)
}

func TestMemberAddedTellsRoomAndNewMember(t *testing.T) {
	broadcaster := &recordingBroadcaster{}
	d := NewDispatcher(broadcaster, &fakeMemberStore{})

	channel := &chatmodels.Channel{ID: "ch1", Name: "general"}
	d.MemberAdded(channel, dto.MemberPayload{ID: "carol", Name: "Carol"})

	require.Len(t, broadcaster.broadcasts, 1)
	assert.Equal(t, EventMemberAdded, broadcaster.broadcasts[0].Event)

	require.Len(t, broadcaster.userSends, 1)
	assert.Equal(t, "carol", broadcaster.userSends[0].UserID)
	assert.Equal(t, EventAddedToChannel, broadcaster.userSends[0].Event)
}
