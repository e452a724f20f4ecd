package mysql

import (
	"gorm.io/gorm"

	"aichat-backend/internal/model"
)

// messageRow keeps one chat message. Auto-increment ids give the append order.
type messageRow struct {
	ID             uint   `gorm:"primaryKey"`
	ConversationID uint   `gorm:"not null;index"`
	Role           string `gorm:"size:16;not null"`
	Text           string `gorm:"type:text;not null"`
}

func (messageRow) TableName() string { return "messages" }

func toMessageRows(conversationID uint, msgs []model.Message) []messageRow {
	rows := make([]messageRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, messageRow{
			ConversationID: conversationID,
			Role:           m.Role,
			Text:           m.Text,
		})
	}
	return rows
}

func toMessages(rows []messageRow) []model.Message {
	msgs := make([]model.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, model.Message{Role: r.Role, Text: r.Text})
	}
	return msgs
}

// Migrate creates or updates the tables used by this package.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &conversationRow{}, &messageRow{})
}
