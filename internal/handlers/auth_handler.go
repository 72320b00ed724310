package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"huddle_backend/internal/middleware"
	"huddle_backend/internal/services"
	"huddle_backend/internal/validator"
	"huddle_backend/pkg/apperrors"
)

type AuthHandler struct {
	auth     *services.AuthService
	validate *validator.Validator
}

func NewAuthHandler(auth *services.AuthService, validate *validator.Validator) *AuthHandler {
	return &AuthHandler{auth: auth, validate: validate}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	result, err := h.auth.Register(req.Name, req.Email, req.Password)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, h.validate, &req) {
		return
	}

	result, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	user, err := h.auth.Me(identity.ID)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
