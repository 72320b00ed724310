package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"huddle_backend/internal/config"
	chatmodels "huddle_backend/internal/models/chat"
	"huddle_backend/internal/storage"
	"huddle_backend/pkg/apperrors"
)

// UploadHandler accepts attachment uploads ahead of the message that
// will reference them. The returned File descriptor goes back to the
// client verbatim and into the message's files column on send.
type UploadHandler struct {
	store storage.Storage
	cfg   *config.Config
}

func NewUploadHandler(store storage.Storage, cfg *config.Config) *UploadHandler {
	return &UploadHandler{store: store, cfg: cfg}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("File required"))
		return
	}

	if fileHeader.Size > h.cfg.Upload.MaxSize {
		apperrors.HandleError(c, apperrors.NewBadRequestError("File too large"))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !h.typeAllowed(contentType) {
		apperrors.HandleError(c, apperrors.NewBadRequestError("File type not allowed"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	path := "chat/" + uuid.New().String() + ext

	ctx := c.Request.Context()
	if err := h.store.Save(ctx, path, src, contentType); err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}

	url, err := h.store.GetURL(ctx, path)
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}

	c.JSON(http.StatusCreated, chatmodels.File{
		Name:     fileHeader.Filename,
		Path:     path,
		MimeType: contentType,
		Size:     fileHeader.Size,
		URL:      url,
	})
}

const signedURLTTL = 15 * time.Minute

// FileURL hands out a time-limited URL for a stored attachment. With
// local storage the plain public URL comes back instead; private S3/R2
// buckets get a presigned one.
func (h *UploadHandler) FileURL(c *gin.Context) {
	path := c.Query("path")
	if !strings.HasPrefix(path, "chat/") || strings.Contains(path, "..") {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid file path"))
		return
	}

	url, err := h.store.GetSignedURL(c.Request.Context(), path, signedURLTTL)
	if err != nil {
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":        url,
		"expires_in": int(signedURLTTL.Seconds()),
	})
}

func (h *UploadHandler) typeAllowed(contentType string) bool {
	for _, allowed := range h.cfg.Upload.AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}
