package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
 * 'ChatMessage' is one immutable message in a session's chat log.
 * It references GameSession; insertion order (created_at) is display order.
 */
type ChatMessage struct {
	ID       string `gorm:"primaryKey;size:50;not null"`
	GameID   string `gorm:"size:50;not null;index:idx_chat_messages_game"`
	Username string `gorm:"size:50;not null"`
	UserName string `gorm:"size:100"` // display-name snapshot at post time
	Message  string `gorm:"size:500;not null"`

	CreatedAt time.Time `gorm:"index:idx_chat_messages_game"`

	GameSession GameSession `gorm:"foreignKey:GameID"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
