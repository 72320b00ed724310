package ws

// Incoming socket event names, the commands clients may issue.
const (
	eventJoinChannel    = "joinChannel"
	eventLeaveChannel   = "leaveChannel"
	eventSendMessage    = "sendMessage"
	eventEditMessage    = "editMessage"
	eventDeleteMessage  = "deleteMessage"
	eventPinMessage     = "pinMessage"
	eventUnpinMessage   = "unpinMessage"
	eventReactMessage   = "reactMessage"
	eventAddThreadReply = "addThreadReply"
)
