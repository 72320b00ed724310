package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huddle_backend/internal/middleware"
	chatmodels "huddle_backend/internal/models/chat"
	chat "huddle_backend/internal/services/chat"
	"huddle_backend/internal/validator"
	"huddle_backend/pkg/apperrors"
)

// MessageHandler exposes message mutations over REST with the same
// semantics the socket commands have; both paths share the services, so
// a REST edit still fans out to open connections.
type MessageHandler struct {
	messages *chat.MessageService
	channels *chat.ChannelService
	validate *validator.Validator
}

func NewMessageHandler(messages *chat.MessageService, channels *chat.ChannelService, validate *validator.Validator) *MessageHandler {
	return &MessageHandler{messages: messages, channels: channels, validate: validate}
}

type sendMessageRequest struct {
	ChannelID string            `json:"channel_id" validate:"required"`
	Content   string            `json:"content"`
	Files     []chatmodels.File `json:"files"`
}

type editMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type reactRequest struct {
	Emoji string `json:"emoji" validate:"required,max=32"`
}

type threadReplyRequest struct {
	Content string            `json:"content"`
	Files   []chatmodels.File `json:"files"`
}

type forwardRequest struct {
	ChannelID string `json:"channel_id" validate:"required"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var req sendMessageRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	message, err := h.messages.Send(identity, chat.SendInput{
		ChannelID: req.ChannelID,
		Content:   req.Content,
		Files:     req.Files,
	})
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	if message == nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Message is empty"))
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *MessageHandler) Edit(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var req editMessageRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	payload, err := h.messages.Edit(identity.ID, c.Param("id"), req.Content)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	if _, err := h.messages.Delete(identity.ID, c.Param("id")); err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) Pin(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	payload, err := h.messages.Pin(identity.ID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	if payload == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *MessageHandler) Unpin(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	payload, err := h.messages.Unpin(identity.ID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	if payload == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *MessageHandler) React(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var req reactRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	payload, err := h.messages.React(identity.ID, c.Param("id"), req.Emoji)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *MessageHandler) ThreadReplies(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	replies, err := h.channels.ThreadReplies(identity.ID, c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, replies)
}

func (h *MessageHandler) AddThreadReply(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var req threadReplyRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	reply, err := h.messages.AddThreadReply(identity, chat.ThreadReplyInput{
		ParentMessageID: c.Param("id"),
		Content:         req.Content,
		Files:           req.Files,
	})
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	if reply == nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Reply is empty"))
		return
	}
	c.JSON(http.StatusCreated, reply)
}

func (h *MessageHandler) Forward(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var req forwardRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	message, err := h.channels.Forward(identity, c.Param("id"), req.ChannelID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}
