package models

import (
	"time"

	"gorm.io/datatypes"
)

// Message is one entry of a conversation. Messages are immutable once
// appended; Timestamp is the authoritative ordering key.
type Message struct {
	Role      string         `json:"role"`
	Type      string         `json:"type,omitempty"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Conversation holds an ordered message sequence for one user and engine.
// The message list is capped (config.MaxConversationMessages); the oldest
// entries are evicted first when an append would exceed the cap.
type Conversation struct {
	ConversationID string                       `gorm:"primaryKey;column:conversation_id" json:"conversationId"`
	UserID         string                       `gorm:"index:idx_conversations_user_created,priority:1" json:"userId"`
	EngineType     string                       `json:"engineType"`
	UserEngine     string                       `gorm:"index:idx_conversations_user_engine_created,priority:1" json:"-"`
	Title          string                       `json:"title"`
	Messages       datatypes.JSONSlice[Message] `json:"messages"`
	Metadata       datatypes.JSONMap            `json:"metadata,omitempty"`
	CreatedAt      time.Time                    `gorm:"index:idx_conversations_user_created,priority:2;index:idx_conversations_user_engine_created,priority:2" json:"createdAt"`
	UpdatedAt      time.Time                    `json:"updatedAt"`
}

// UserEngineKey builds the composite index value used for user+engine listing.
func UserEngineKey(userID, engineType string) string {
	return userID + "#" + engineType
}
