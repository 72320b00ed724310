package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huddle_backend/internal/middleware"
	"huddle_backend/internal/services"
	"huddle_backend/internal/validator"
	"huddle_backend/pkg/apperrors"
)

type UserHandler struct {
	users    *services.UserService
	validate *validator.Validator
}

func NewUserHandler(users *services.UserService, validate *validator.Validator) *UserHandler {
	return &UserHandler{users: users, validate: validate}
}

type updateProfileRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List()
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Param("id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	var req updateProfileRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	user, err := h.users.UpdateProfile(identity.ID, req.Name, req.AvatarURL)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
