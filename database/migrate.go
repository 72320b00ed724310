package database

import (
	"gorm.io/gorm"

	"huddle_backend/internal/models"
	chatmodels "huddle_backend/internal/models/chat"
)

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&chatmodels.Channel{},
		&chatmodels.ChannelMember{},
		&chatmodels.Message{},
		&chatmodels.MessageReaction{},
		&chatmodels.Thread{},
	)
}
