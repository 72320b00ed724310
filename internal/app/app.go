package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"huddle_backend/database"
	"huddle_backend/internal/auth"
	"huddle_backend/internal/config"
	"huddle_backend/internal/handlers"
	"huddle_backend/internal/logger"
	"huddle_backend/internal/repositories"
	chatrepo "huddle_backend/internal/repositories/chat"
	"huddle_backend/internal/routes"
	"huddle_backend/internal/services"
	chat "huddle_backend/internal/services/chat"
	"huddle_backend/internal/storage"
	"huddle_backend/internal/validator"
	"huddle_backend/ws"
)

// App wires configuration, storage, services and transport together.
type App struct {
	cfg    *config.Config
	engine *gin.Engine
}

// New builds the application: database, migrations, repositories,
// services, the websocket manager and the router.
func New() (*App, error) {
	cfg := config.GetConfig()
	logger.Init(cfg.Server.Env)

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	store, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	validate := validator.New()

	userRepo := repositories.NewUserRepository(db)
	channelRepo := chatrepo.NewChannelRepository(db)
	memberRepo := chatrepo.NewChannelMemberRepository(db)
	messageRepo := chatrepo.NewMessageRepository(db)
	reactionRepo := chatrepo.NewMessageReactionRepository(db)
	threadRepo := chatrepo.NewThreadRepository(db)

	manager := ws.NewManager(userRepo)
	go manager.Run()

	dispatcher := chat.NewDispatcher(manager, memberRepo)
	messageService := chat.NewMessageService(
		messageRepo, reactionRepo, threadRepo, channelRepo, memberRepo,
		userRepo, store, dispatcher,
	)
	channelService := chat.NewChannelService(
		channelRepo, memberRepo, messageRepo, reactionRepo, threadRepo,
		userRepo, dispatcher,
	)
	authService := services.NewAuthService(userRepo, tokens)
	userService := services.NewUserService(userRepo)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	routes.Register(engine, routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, validate),
		Users:    handlers.NewUserHandler(userService, validate),
		Channels: handlers.NewChannelHandler(channelService, validate),
		Messages: handlers.NewMessageHandler(messageService, channelService, validate),
		DMs:      handlers.NewDMHandler(channelService, validate),
		Search:   handlers.NewSearchHandler(channelService, userService),
		Uploads:  handlers.NewUploadHandler(store, cfg),
		WS:       handlers.NewWSHandler(manager, messageService, tokens),
	}, tokens)

	// Local storage serves uploads straight from disk.
	if cfg.Storage.Type == "local" {
		engine.Static(cfg.Storage.BaseURL, cfg.Storage.BasePath)
	}

	return &App{cfg: cfg, engine: engine}, nil
}

// Run blocks serving HTTP until the process exits.
func (a *App) Run() error {
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	logger.Info("server listening", "addr", addr, "env", a.cfg.Server.Env)
	return a.engine.Run(addr)
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "mysql":
		return gorm.Open(mysql.Open(cfg.Database.DSN), &gorm.Config{})
	default:
		return gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	}
}
