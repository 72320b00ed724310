package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huddle_backend/internal/middleware"
	chat "huddle_backend/internal/services/chat"
	"huddle_backend/internal/validator"
	"huddle_backend/pkg/apperrors"
)

type DMHandler struct {
	channels *chat.ChannelService
	validate *validator.Validator
}

func NewDMHandler(channels *chat.ChannelService, validate *validator.Validator) *DMHandler {
	return &DMHandler{channels: channels, validate: validate}
}

type openDMRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// Open returns the DM conversation with another user, creating it on
// first contact.
func (h *DMHandler) Open(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var req openDMRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	dm, err := h.channels.CreateOrGetDM(identity, req.UserID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dm)
}

func (h *DMHandler) List(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	dms, err := h.channels.ListDMs(identity.ID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dms)
}
