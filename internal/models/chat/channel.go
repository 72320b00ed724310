package chat

import "time"

type Channel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	Name      string `gorm:"not null"`
	IsPrivate bool   `gorm:"default:false"`
	IsDM      bool   `gorm:"column:is_dm;default:false"`
	CreatedBy string `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Members []ChannelMember `gorm:"foreignKey:ChannelID"`
}

func (Channel) TableName() string {
	return "channels"
}
