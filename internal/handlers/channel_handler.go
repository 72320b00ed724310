package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"huddle_backend/internal/middleware"
	chat "huddle_backend/internal/services/chat"
	"huddle_backend/internal/validator"
	"huddle_backend/pkg/apperrors"
)

type ChannelHandler struct {
	channels *chat.ChannelService
	validate *validator.Validator
}

func NewChannelHandler(channels *chat.ChannelService, validate *validator.Validator) *ChannelHandler {
	return &ChannelHandler{channels: channels, validate: validate}
}

type createChannelRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=80"`
	IsPrivate bool   `json:"is_private"`
}

type addMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (h *ChannelHandler) Create(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var req createChannelRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	channel, err := h.channels.Create(identity, req.Name, req.IsPrivate)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}

func (h *ChannelHandler) List(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	channels, err := h.channels.ListVisible(identity.ID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, channels)
}

func (h *ChannelHandler) Get(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	detail, err := h.channels.Get(identity.ID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ChannelHandler) Join(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	detail, err := h.channels.Join(identity, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *ChannelHandler) Leave(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	if err := h.channels.Leave(identity, c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChannelHandler) AddMember(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var req addMemberRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	if err := h.channels.AddMember(identity, c.Param("id"), req.UserID); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChannelHandler) RemoveMember(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	if err := h.channels.RemoveMember(identity, c.Param("id"), c.Param("userId")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChannelHandler) History(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.channels.History(identity.ID, c.Param("id"), limit)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *ChannelHandler) Pinned(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	messages, err := h.channels.PinnedMessages(identity.ID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
