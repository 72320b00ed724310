package ws

import (
	"net/http"

	"github.com/gorilla/websocket"

	"huddle_backend/internal/auth"
	"huddle_backend/internal/logger"
	chat "huddle_backend/internal/services/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Token auth happens before the upgrade; cross-origin browsers
		// still need the handshake to succeed.
		return true
	},
}

// ServeWS upgrades an authenticated request to a websocket connection,
// registers it with the manager and confirms the session with
// auth-success before any other traffic.
func ServeWS(
	manager *Manager,
	messages *chat.MessageService,
	w http.ResponseWriter,
	r *http.Request,
	identity *auth.Identity,
) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Warn("websocket upgrade failed", "user_id", identity.ID)
		return
	}

	client := newClient(manager, conn, identity, messages)

	// Queued before registration so it is the first frame on the wire.
	client.send <- Envelope{Event: chat.EventAuthSuccess, Data: identity}
	manager.register <- client

	go client.writePump()
	go client.readPump()
}
