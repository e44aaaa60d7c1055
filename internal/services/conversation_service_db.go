package services

import (
	"errors"
	"time"

	"pressroom_ai_go_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultConversationStore implements ConversationStore over gorm
type DefaultConversationStore struct {
	db *gorm.DB
}

// NewConversationStore creates a new DefaultConversationStore
func NewConversationStore(db *gorm.DB) ConversationStore {
	return &DefaultConversationStore{db: db}
}

// FindByID retrieves a conversation by its primary key. A missing record is
// reported as (nil, nil), not as an error.
func (s *DefaultConversationStore) FindByID(conversationID string) (*models.Conversation, error) {
	var conversation models.Conversation
	result := s.db.Where("conversation_id = ?", conversationID).First(&conversation)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &conversation, nil
}

// FindByUser retrieves a user's conversations, newest first by creation time
func (s *DefaultConversationStore) FindByUser(userID string, limit int) ([]models.Conversation, error) {
	var conversations []models.Conversation
	result := s.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&conversations)
	if result.Error != nil {
		return nil, result.Error
	}
	return conversations, nil
}

// FindByUserAndEngine retrieves a user's conversations for one engine,
// newest first, using the user#engine composite index
func (s *DefaultConversationStore) FindByUserAndEngine(userID, engineType string, limit int) ([]models.Conversation, error) {
	var conversations []models.Conversation
	result := s.db.Where("user_engine = ?", models.UserEngineKey(userID, engineType)).
		Order("created_at desc").
		Limit(limit).
		Find(&conversations)
	if result.Error != nil {
		return nil, result.Error
	}
	return conversations, nil
}

// Save writes the full conversation record (create or overwrite)
func (s *DefaultConversationStore) Save(conversation *models.Conversation) error {
	conversation.UserEngine = models.UserEngineKey(conversation.UserID, conversation.EngineType)
	return s.db.Save(conversation).Error
}

// UpdateTitle updates only the title field
func (s *DefaultConversationStore) UpdateTitle(conversationID, title string) error {
	result := s.db.Model(&models.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Updates(map[string]interface{}{
			"title":      title,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateMessages replaces the message list wholesale
func (s *DefaultConversationStore) UpdateMessages(conversationID string, messages []models.Message) error {
	result := s.db.Model(&models.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Updates(map[string]interface{}{
			"messages":   datatypes.NewJSONSlice(messages),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a conversation
func (s *DefaultConversationStore) Delete(conversationID string) error {
	return s.db.Where("conversation_id = ?", conversationID).
		Delete(&models.Conversation{}).Error
}
