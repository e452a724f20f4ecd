package model

import "time"

type Conversation struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LastMessages returns at most n trailing messages. The result shares the
// backing array with c.Messages.
func (c *Conversation) LastMessages(n int) []Message {
	if n <= 0 {
		return nil
	}
	if n >= len(c.Messages) {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}
