package routes

import (
	"github.com/gin-gonic/gin"

	"huddle_backend/internal/auth"
	"huddle_backend/internal/handlers"
	"huddle_backend/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Users    *handlers.UserHandler
	Channels *handlers.ChannelHandler
	Messages *handlers.MessageHandler
	DMs      *handlers.DMHandler
	Search   *handlers.SearchHandler
	Uploads  *handlers.UploadHandler
	WS       *handlers.WSHandler
}

// Register mounts the full API surface on the engine.
func Register(r *gin.Engine, h Handlers, tokens *auth.TokenManager) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(tokens))
	{
		protected.GET("/auth/me", h.Auth.Me)

		protected.GET("/users", h.Users.List)
		protected.GET("/users/:id", h.Users.Get)
		protected.PUT("/users/me", h.Users.UpdateProfile)

		protected.POST("/channels", h.Channels.Create)
		protected.GET("/channels", h.Channels.List)
		protected.GET("/channels/:id", h.Channels.Get)
		protected.POST("/channels/:id/join", h.Channels.Join)
		protected.POST("/channels/:id/leave", h.Channels.Leave)
		protected.POST("/channels/:id/members", h.Channels.AddMember)
		protected.DELETE("/channels/:id/members/:userId", h.Channels.RemoveMember)
		protected.GET("/channels/:id/messages", h.Channels.History)
		protected.GET("/channels/:id/pins", h.Channels.Pinned)

		protected.POST("/messages", h.Messages.Send)
		protected.PUT("/messages/:id", h.Messages.Edit)
		protected.DELETE("/messages/:id", h.Messages.Delete)
		protected.POST("/messages/:id/pin", h.Messages.Pin)
		protected.POST("/messages/:id/unpin", h.Messages.Unpin)
		protected.POST("/messages/:id/reactions", h.Messages.React)
		protected.GET("/messages/:id/thread", h.Messages.ThreadReplies)
		protected.POST("/messages/:id/thread", h.Messages.AddThreadReply)
		protected.POST("/messages/:id/forward", h.Messages.Forward)

		protected.POST("/dms", h.DMs.Open)
		protected.GET("/dms", h.DMs.List)

		protected.GET("/search/messages", h.Search.Messages)
		protected.GET("/search/channels", h.Search.Channels)
		protected.GET("/search/users", h.Search.Users)

		protected.POST("/upload", h.Uploads.Upload)
		protected.GET("/upload/url", h.Uploads.FileURL)
	}

	// Socket auth reads the token itself (query param or header).
	r.GET("/ws", h.WS.Serve)
}
