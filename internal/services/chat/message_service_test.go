package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"huddle_backend/internal/auth"
	"huddle_backend/internal/models"
	chatmodels "huddle_backend/internal/models/chat"
	"huddle_backend/pkg/apperrors"
)

type fixture struct {
	messages    *fakeMessageStore
	reactions   *fakeReactionStore
	threads     *fakeThreadStore
	channels    *fakeChannelStore
	members     *fakeMemberStore
	users       *fakeUserStore
	files       *fakeFileRemover
	broadcaster *recordingBroadcaster
	svc         *MessageService
}

func newFixture() *fixture {
	fx := &fixture{
		messages:    newFakeMessageStore(),
		reactions:   &fakeReactionStore{},
		threads:     newFakeThreadStore(),
		channels:    newFakeChannelStore(),
		members:     &fakeMemberStore{},
		users:       newFakeUserStore(),
		files:       &fakeFileRemover{},
		broadcaster: &recordingBroadcaster{},
	}
	dispatcher := NewDispatcher(fx.broadcaster, fx.members)
	fx.svc = NewMessageService(
		fx.messages, fx.reactions, fx.threads, fx.channels, fx.members,
		fx.users, fx.files, dispatcher,
	)
	return fx
}

func (fx *fixture) seedChannel(id string, private bool, creator string, memberIDs ...string) *chatmodels.Channel {
	channel := &chatmodels.Channel{ID: id, Name: "general", IsPrivate: private, CreatedBy: creator}
	fx.channels.rows[id] = channel
	for _, userID := range memberIDs {
		fx.members.rows = append(fx.members.rows, chatmodels.ChannelMember{ChannelID: id, UserID: userID})
	}
	return channel
}

func (fx *fixture) seedUser(id, name string) {
	fx.users.rows[id] = models.User{ID: id, Name: name}
}

func (fx *fixture) seedMessage(id, channelID, senderID string, content string) *chatmodels.Message {
	message := &chatmodels.Message{ID: id, ChannelID: &channelID, SenderID: senderID, Content: &content}
	message.CreatedAt = time.Now()
	fx.messages.rows[id] = message
	return message
}

func identity(id, name string) *auth.Identity {
	return &auth.Identity{ID: id, Name: name, Email: name + "@example.com"}
}

func TestSendEmptyMessageIsDropped(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice")

	payload, err := fx.svc.Send(identity("alice", "Alice"), SendInput{ChannelID: "ch1", Content: "   "})

	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Empty(t, fx.messages.rows)
	assert.Empty(t, fx.broadcaster.broadcasts)
}

func TestSendToPrivateChannelRequiresMembership(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("secret", true, "alice", "alice")

	_, err := fx.svc.Send(identity("mallory", "Mallory"), SendInput{ChannelID: "secret", Content: "hi"})

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
}

func TestSendBroadcastsAndNotifiesOtherMembers(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice", "bob", "carol")

	payload, err := fx.svc.Send(identity("alice", "Alice"), SendInput{ChannelID: "ch1", Content: "<b>hello</b> world"})

	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.Equal(t, "Alice", payload.SenderName)

	require.Len(t, fx.broadcaster.broadcasts, 1)
	assert.Equal(t, EventReceiveMessage, fx.broadcaster.broadcasts[0].Event)
	assert.Equal(t, "ch1", fx.broadcaster.broadcasts[0].ChannelID)

	// reduced notifications go to the other members only
	require.Len(t, fx.broadcaster.userSends, 2)
	notified := map[string]bool{}
	for _, call := range fx.broadcaster.userSends {
		assert.Equal(t, EventNewMessageNotification, call.Event)
		notified[call.UserID] = true
	}
	assert.True(t, notified["bob"])
	assert.True(t, notified["carol"])
	assert.False(t, notified["alice"])
}

func TestEditByNonSenderIsRejected(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice", "bob")
	fx.seedMessage("m1", "ch1", "alice", "original")

	_, err := fx.svc.Edit("bob", "m1", "hijacked")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	assert.Equal(t, "original", *fx.messages.rows["m1"].Content)
}

func TestEditUpdatesContentAndBroadcasts(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice")
	fx.seedMessage("m1", "ch1", "alice", "original")

	payload, err := fx.svc.Edit("alice", "m1", "revised")

	require.NoError(t, err)
	assert.Equal(t, "revised", payload.Content)
	assert.True(t, payload.IsEdited)
	assert.False(t, payload.IsThreadReply)
	assert.Equal(t, "ch1", payload.ChannelID)
	assert.True(t, fx.messages.rows["m1"].IsEdited)
	assert.Equal(t, []string{EventMessageEdited}, fx.broadcaster.broadcastEvents())
}

func TestDeleteRemovesRowReactionsAndFiles(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice")
	message := fx.seedMessage("m1", "ch1", "alice", "with file")
	message.Files = datatypes.JSON(`[{"name":"a.png","path":"chat/a.png"}]`)
	fx.reactions.rows = append(fx.reactions.rows, chatmodels.MessageReaction{ID: "r1", MessageID: "m1", UserID: "alice", Emoji: "👍"})

	_, err := fx.svc.Delete("alice", "m1")

	require.NoError(t, err)
	assert.NotContains(t, fx.messages.rows, "m1")
	assert.Empty(t, fx.reactions.rows)
	assert.Equal(t, []string{"chat/a.png"}, fx.files.deleted)
	assert.Equal(t, []string{EventMessageDeleted}, fx.broadcaster.broadcastEvents())
}

func TestDeleteSurvivesStorageFailure(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice")
	message := fx.seedMessage("m1", "ch1", "alice", "with file")
	message.Files = datatypes.JSON(`[{"name":"a.png","path":"chat/a.png"}]`)
	fx.files.fail = true

	_, err := fx.svc.Delete("alice", "m1")

	require.NoError(t, err)
	assert.NotContains(t, fx.messages.rows, "m1")
}

func TestReactToggleAddsThenRemoves(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice")
	fx.seedMessage("m1", "ch1", "alice", "hello")
	fx.seedUser("alice", "Alice")

	payload, err := fx.svc.React("alice", "m1", "👍")
	require.NoError(t, err)
	require.Len(t, payload.Reactions, 1)
	assert.Equal(t, "👍", payload.Reactions[0].Emoji)
	assert.Equal(t, 1, payload.Reactions[0].Count)
	assert.Equal(t, "Alice", payload.Reactions[0].Users[0].Name)

	payload, err = fx.svc.React("alice", "m1", "👍")
	require.NoError(t, err)
	assert.Empty(t, payload.Reactions)

	assert.Equal(t, []string{EventReactionUpdated, EventReactionUpdated}, fx.broadcaster.broadcastEvents())
}

func TestReactCountMatchesUserList(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice", "bob")
	fx.seedMessage("m1", "ch1", "alice", "hello")
	fx.seedUser("alice", "Alice")
	fx.seedUser("bob", "Bob")

	_, err := fx.svc.React("alice", "m1", "🎉")
	require.NoError(t, err)
	payload, err := fx.svc.React("bob", "m1", "🎉")
	require.NoError(t, err)

	require.Len(t, payload.Reactions, 1)
	entry := payload.Reactions[0]
	assert.Equal(t, 2, entry.Count)
	assert.Len(t, entry.Users, entry.Count)
	assert.Equal(t, "Alice", entry.Users[0].Name)
	assert.Equal(t, "Bob", entry.Users[1].Name)
}

func TestReactUnknownUserGetsFallbackName(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice")
	fx.seedMessage("m1", "ch1", "alice", "hello")

	payload, err := fx.svc.React("ghost", "m1", "👻")

	require.NoError(t, err)
	require.Len(t, payload.Reactions, 1)
	assert.Equal(t, "Unknown", payload.Reactions[0].Users[0].Name)
}

func TestReactPreservesEmojiOrder(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice")
	fx.seedMessage("m1", "ch1", "alice", "hello")
	fx.seedUser("alice", "Alice")
	fx.seedUser("bob", "Bob")

	_, err := fx.svc.React("alice", "m1", "👍")
	require.NoError(t, err)
	_, err = fx.svc.React("bob", "m1", "🎉")
	require.NoError(t, err)
	payload, err := fx.svc.React("bob", "m1", "👍")
	require.NoError(t, err)

	require.Len(t, payload.Reactions, 2)
	assert.Equal(t, "👍", payload.Reactions[0].Emoji)
	assert.Equal(t, "🎉", payload.Reactions[1].Emoji)
}

func TestPinIsIdempotent(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice", "bob")
	fx.seedMessage("m1", "ch1", "alice", "important")

	payload, err := fx.svc.Pin("bob", "m1")
	require.NoError(t, err)
	require.NotNil(t, payload)
	assert.True(t, payload.Pinned)
	require.NotNil(t, payload.PinnedBy)
	assert.Equal(t, "bob", *payload.PinnedBy)

	payload, err = fx.svc.Pin("alice", "m1")
	require.NoError(t, err)
	assert.Nil(t, payload)

	// first pinner survives the second attempt
	require.NotNil(t, fx.messages.rows["m1"].PinnedBy)
	assert.Equal(t, "bob", *fx.messages.rows["m1"].PinnedBy)
	assert.Equal(t, []string{EventMessagePinned}, fx.broadcaster.broadcastEvents())
}

func TestUnpinRestrictedToPinnerOrCreator(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice", "bob", "carol")
	fx.seedMessage("m1", "ch1", "alice", "important")

	_, err := fx.svc.Pin("bob", "m1")
	require.NoError(t, err)

	_, err = fx.svc.Unpin("carol", "m1")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeForbidden, appErr.Code)
	assert.True(t, fx.messages.rows["m1"].Pinned)

	// channel creator may unpin someone else's pin
	payload, err := fx.svc.Unpin("alice", "m1")
	require.NoError(t, err)
	assert.False(t, payload.Pinned)
	assert.False(t, fx.messages.rows["m1"].Pinned)
}

func TestUnpinUnpinnedMessageIsNoOp(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice")
	fx.seedMessage("m1", "ch1", "alice", "plain")

	payload, err := fx.svc.Unpin("alice", "m1")

	require.NoError(t, err)
	assert.Nil(t, payload)
	assert.Empty(t, fx.broadcaster.broadcasts)
}

func TestThreadReplyCreatesThreadLazily(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice", "bob")
	fx.seedMessage("m1", "ch1", "alice", "parent")

	reply, err := fx.svc.AddThreadReply(identity("bob", "Bob"), ThreadReplyInput{
		ParentMessageID: "m1",
		Content:         "first reply",
	})

	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "m1", reply.ParentMessageID)
	assert.Equal(t, "ch1", reply.ChannelID)
	assert.Equal(t, int64(1), reply.ReplyCount)

	thread, err := fx.threads.GetByParentMessage("m1")
	require.NoError(t, err)
	assert.Equal(t, "ch1", thread.ChannelID)

	// the reply row has no channel of its own
	stored := fx.messages.rows[reply.ID]
	require.NotNil(t, stored)
	assert.Nil(t, stored.ChannelID)
	require.NotNil(t, stored.ThreadParentID)
	assert.Equal(t, thread.ID, *stored.ThreadParentID)
}

func TestSecondThreadReplyReusesThread(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice", "bob")
	fx.seedMessage("m1", "ch1", "alice", "parent")

	first, err := fx.svc.AddThreadReply(identity("alice", "Alice"), ThreadReplyInput{ParentMessageID: "m1", Content: "one"})
	require.NoError(t, err)
	second, err := fx.svc.AddThreadReply(identity("bob", "Bob"), ThreadReplyInput{ParentMessageID: "m1", Content: "two"})
	require.NoError(t, err)

	assert.Equal(t, first.ThreadID, second.ThreadID)
	assert.Equal(t, int64(2), second.ReplyCount)
	assert.Len(t, fx.threads.rows, 1)
}

func TestThreadReplyNotifiesMembersAsThread(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice", "bob")
	fx.seedMessage("m1", "ch1", "alice", "parent")

	_, err := fx.svc.AddThreadReply(identity("bob", "Bob"), ThreadReplyInput{ParentMessageID: "m1", Content: "reply"})

	require.NoError(t, err)
	require.Len(t, fx.broadcaster.userSends, 1)
	assert.Equal(t, "alice", fx.broadcaster.userSends[0].UserID)
	assert.Equal(t, EventNewThreadNotification, fx.broadcaster.userSends[0].Event)
}

func TestEditThreadReplyResolvesParentChannel(t *testing.T) {
	fx := newFixture()
	fx.seedChannel("ch1", false, "alice", "alice")
	fx.seedMessage("m1", "ch1", "alice", "parent")

	reply, err := fx.svc.AddThreadReply(identity("alice", "Alice"), ThreadReplyInput{ParentMessageID: "m1", Content: "reply"})
	require.NoError(t, err)

	payload, err := fx.svc.Edit("alice", reply.ID, "edited reply")

	require.NoError(t, err)
	assert.Equal(t, "ch1", payload.ChannelID)
	assert.True(t, payload.IsThreadReply)
}

func TestMutationOnMissingMessageReturnsNotFound(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.Edit("alice", "nope", "content")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
