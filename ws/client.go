package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"huddle_backend/internal/auth"
	"huddle_backend/internal/logger"
	chatmodels "huddle_backend/internal/models/chat"
	chat "huddle_backend/internal/services/chat"
	"huddle_backend/pkg/apperrors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// incomingFrame is the envelope clients send: {"event": ..., "data": ...}.
type incomingFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// wsError is the messageError payload.
type wsError struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client is one websocket connection bound to an authenticated identity.
// The read pump parses command frames and runs each mutation in its own
// goroutine so a slow database call never blocks the connection; results
// come back through the manager's rooms, plus a direct ack or error to
// this connection.
type Client struct {
	manager  *Manager
	conn     *websocket.Conn
	send     chan Envelope
	identity *auth.Identity
	messages *chat.MessageService
}

func newClient(manager *Manager, conn *websocket.Conn, identity *auth.Identity, messages *chat.MessageService) *Client {
	return &Client{
		manager:  manager,
		conn:     conn,
		send:     make(chan Envelope, sendBufferSize),
		identity: identity,
		messages: messages,
	}
}

func (c *Client) UserID() string {
	return c.identity.ID
}

func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Debug("ws read failed", "user_id", c.identity.ID)
			}
			return
		}

		var frame incomingFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.sendError("", apperrors.NewBadRequestError("Malformed frame"))
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(envelope); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleFrame(frame incomingFrame) {
	switch frame.Event {
	case eventJoinChannel:
		c.handleJoin(frame.Data)
	case eventLeaveChannel:
		c.handleLeave(frame.Data)
	case eventSendMessage:
		go c.handleSend(frame.Data)
	case eventEditMessage:
		go c.handleEdit(frame.Data)
	case eventDeleteMessage:
		go c.handleDelete(frame.Data)
	case eventPinMessage:
		go c.handlePin(frame.Data)
	case eventUnpinMessage:
		go c.handleUnpin(frame.Data)
	case eventReactMessage:
		go c.handleReact(frame.Data)
	case eventAddThreadReply:
		go c.handleThreadReply(frame.Data)
	default:
		logger.Debug("unhandled ws event", "event", frame.Event, "user_id", c.identity.ID)
	}
}

// handleJoin subscribes this connection to a channel's viewing room. No
// access check happens here: joining a room grants delivery only, never
// access — mutations and REST reads enforce membership, and revocation
// evicts the room subscription through ForceLeaveChannel.
func (c *Client) handleJoin(data json.RawMessage) {
	var payload struct {
		ChannelID string `json:"channel_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.ChannelID == "" {
		c.sendError(eventJoinChannel, apperrors.NewBadRequestError("channel_id required"))
		return
	}
	c.manager.JoinRoom(c, payload.ChannelID)
}

func (c *Client) handleLeave(data json.RawMessage) {
	var payload struct {
		ChannelID string `json:"channel_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.ChannelID == "" {
		return
	}
	c.manager.LeaveRoom(c, payload.ChannelID)
}

// handleSend persists and fans out a message, acking the sending
// connection directly so the client can reconcile optimistic UI state.
func (c *Client) handleSend(data json.RawMessage) {
	var payload struct {
		ChannelID string            `json:"channel_id"`
		Content   string            `json:"content"`
		Files     []chatmodels.File `json:"files"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError(eventSendMessage, apperrors.NewBadRequestError("Malformed payload"))
		return
	}

	message, err := c.messages.Send(c.identity, chat.SendInput{
		ChannelID: payload.ChannelID,
		Content:   payload.Content,
		Files:     payload.Files,
	})
	if err != nil {
		c.sendError(eventSendMessage, err)
		return
	}
	if message == nil {
		return
	}
	c.enqueue(Envelope{Event: chat.EventMessageAck, Data: message})
}

func (c *Client) handleEdit(data json.RawMessage) {
	var payload struct {
		MessageID string `json:"message_id"`
		Content   string `json:"content"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError(eventEditMessage, apperrors.NewBadRequestError("Malformed payload"))
		return
	}
	if _, err := c.messages.Edit(c.identity.ID, payload.MessageID, payload.Content); err != nil {
		c.sendError(eventEditMessage, err)
	}
}

func (c *Client) handleDelete(data json.RawMessage) {
	var payload struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError(eventDeleteMessage, apperrors.NewBadRequestError("Malformed payload"))
		return
	}
	if _, err := c.messages.Delete(c.identity.ID, payload.MessageID); err != nil {
		c.sendError(eventDeleteMessage, err)
	}
}

func (c *Client) handlePin(data json.RawMessage) {
	var payload struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError(eventPinMessage, apperrors.NewBadRequestError("Malformed payload"))
		return
	}
	if _, err := c.messages.Pin(c.identity.ID, payload.MessageID); err != nil {
		c.sendError(eventPinMessage, err)
	}
}

func (c *Client) handleUnpin(data json.RawMessage) {
	var payload struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError(eventUnpinMessage, apperrors.NewBadRequestError("Malformed payload"))
		return
	}
	if _, err := c.messages.Unpin(c.identity.ID, payload.MessageID); err != nil {
		c.sendError(eventUnpinMessage, err)
	}
}

func (c *Client) handleReact(data json.RawMessage) {
	var payload struct {
		MessageID string `json:"message_id"`
		Emoji     string `json:"emoji"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError(eventReactMessage, apperrors.NewBadRequestError("Malformed payload"))
		return
	}
	if _, err := c.messages.React(c.identity.ID, payload.MessageID, payload.Emoji); err != nil {
		c.sendError(eventReactMessage, err)
	}
}

func (c *Client) handleThreadReply(data json.RawMessage) {
	var payload struct {
		ParentMessageID string            `json:"parent_message_id"`
		Content         string            `json:"content"`
		Files           []chatmodels.File `json:"files"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError(eventAddThreadReply, apperrors.NewBadRequestError("Malformed payload"))
		return
	}
	if _, err := c.messages.AddThreadReply(c.identity, chat.ThreadReplyInput{
		ParentMessageID: payload.ParentMessageID,
		Content:         payload.Content,
		Files:           payload.Files,
	}); err != nil {
		c.sendError(eventAddThreadReply, err)
	}
}

// sendError surfaces a failed command back to this connection only.
func (c *Client) sendError(sourceEvent string, err error) {
	payload := wsError{Event: sourceEvent, Message: "Internal server error"}

	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		payload.Code = string(appErr.Code)
		payload.Message = appErr.Message
	} else {
		logger.WithError(err).Error("ws command failed", "event", sourceEvent, "user_id", c.identity.ID)
	}

	c.enqueue(Envelope{Event: chat.EventMessageError, Data: payload})
}

// enqueue writes to this connection's own buffer via the manager, which
// guarantees the channel has not been closed by a concurrent unregister.
func (c *Client) enqueue(envelope Envelope) {
	c.manager.sendToClient(c, envelope)
}
