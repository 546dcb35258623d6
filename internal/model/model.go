package model

import (
	"fmt"
	"strings"
	"time"
)

// Message roles. The store only ever holds these two; "system" turns are
// synthesized at prompt-build time and never persisted.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TitleMaxLen is the number of runes a derived session title is cut to.
const TitleMaxLen = 30

// Message is a single turn half inside a chat session.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is one persisted conversation thread between a user and the
// assistant. Messages are kept in append order and are never reordered.
type ChatSession struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// DeriveTitle builds a session title from the first user message.
func DeriveTitle(firstMessage string) string {
	title := strings.TrimSpace(firstMessage)
	runes := []rune(title)
	if len(runes) > TitleMaxLen {
		title = string(runes[:TitleMaxLen])
	}
	if title == "" {
		title = "New chat"
	}
	return title
}

// Normalize cleans a session read back from the store. Documents written by
// older revisions of the app carried inconsistent shapes, so reads are
// validated and repaired into the one canonical schema here.
func (c *ChatSession) Normalize() error {
	if c.ID == "" {
		return fmt.Errorf("session has no id")
	}
	if c.OwnerID == "" {
		return fmt.Errorf("session %s has no owner", c.ID)
	}
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" && len(c.Messages) > 0 {
		c.Title = DeriveTitle(c.Messages[0].Content)
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		c.UpdatedAt = c.CreatedAt
	}
	for i := range c.Messages {
		m := &c.Messages[i]
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("session %s: message %d has unknown role %q", c.ID, i, m.Role)
		}
		if m.Timestamp.IsZero() {
			m.Timestamp = c.UpdatedAt
		}
	}
	return nil
}
