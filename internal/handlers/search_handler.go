package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"huddle_backend/internal/middleware"
	"huddle_backend/internal/services"
	chat "huddle_backend/internal/services/chat"
	"huddle_backend/pkg/apperrors"
)

// SearchHandler answers the global search box: messages, channels and
// people, each scoped to what the requester may see.
type SearchHandler struct {
	channels *chat.ChannelService
	users    *services.UserService
}

func NewSearchHandler(channels *chat.ChannelService, users *services.UserService) *SearchHandler {
	return &SearchHandler{channels: channels, users: users}
}

func (h *SearchHandler) Messages(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.channels.Search(identity.ID, c.Query("q"), limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *SearchHandler) Channels(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	channels, err := h.channels.SearchChannels(c.Query("q"), limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, channels)
}

func (h *SearchHandler) Users(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	users, err := h.users.Search(c.Query("q"), limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
