package chat

// Outgoing socket event names. The dispatcher owns this vocabulary; the
// websocket layer reuses it for acknowledgments and errors.
const (
	EventAuthSuccess = "auth-success"

	EventReceiveMessage   = "receiveMessage"
	EventMessageAck       = "messageAck"
	EventMessageEdited    = "messageEdited"
	EventMessageDeleted   = "messageDeleted"
	EventMessagePinned    = "messagePinned"
	EventMessageUnpinned  = "messageUnpinned"
	EventReactionUpdated  = "reactionUpdated"
	EventThreadReplyAdded = "threadReplyAdded"

	EventNewMessageNotification = "newMessageNotification"
	EventNewThreadNotification  = "newThreadNotification"

	EventMemberAdded        = "memberAdded"
	EventMemberRemoved      = "memberRemoved"
	EventUserLeftChannel    = "userLeftChannel"
	EventAddedToChannel     = "addedToChannel"
	EventRemovedFromChannel = "removedFromChannel"

	EventUserStatus   = "userStatus"
	EventMessageError = "messageError"
)
