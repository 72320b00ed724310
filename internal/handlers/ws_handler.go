package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"huddle_backend/internal/auth"
	chat "huddle_backend/internal/services/chat"
	"huddle_backend/pkg/apperrors"
	"huddle_backend/ws"
)

// WSHandler authenticates the upgrade request and hands it to the socket
// layer. Browsers cannot set headers on websocket dials, so the token may
// arrive as a query parameter as well.
type WSHandler struct {
	manager  *ws.Manager
	messages *chat.MessageService
	tokens   *auth.TokenManager
}

func NewWSHandler(manager *ws.Manager, messages *chat.MessageService, tokens *auth.TokenManager) *WSHandler {
	return &WSHandler{manager: manager, messages: messages, tokens: tokens}
}

func (h *WSHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Missing token"))
		return
	}

	identity, err := h.tokens.Parse(token)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}

	ws.ServeWS(h.manager, h.messages, c.Writer, c.Request, identity)
}
