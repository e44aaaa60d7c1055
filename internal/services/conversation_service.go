package services

import (
	"sort"
	"time"

	"pressroom_ai_go_backend/cmd/api/config"
	"pressroom_ai_go_backend/internal/errors"
	"pressroom_ai_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConversationService exposes the conversation CRUD surface over the store.
type ConversationService struct {
	store ConversationStore
	cfg   *config.Config
}

// NewConversationService creates a new ConversationService
func NewConversationService(store ConversationStore, cfg *config.Config) *ConversationService {
	return &ConversationService{store: store, cfg: cfg}
}

// CreateConversation creates an empty conversation. Creation is idempotent
// on the supplied ID: when the record already exists it is returned as-is
// with its original title, never overwritten.
func (s *ConversationService) CreateConversation(conversationID, userID, engineType, title string) (*models.Conversation, error) {
	if userID == "" {
		return nil, errors.New400Error("userId is required")
	}
	if engineType == "" {
		engineType = s.cfg.DefaultEngineType
	}
	if conversationID != "" {
		existing, err := s.store.FindByID(conversationID)
		if err != nil {
			return nil, errors.New500Error(err)
		}
		if existing != nil {
			return existing, nil
		}
	} else {
		conversationID = uuid.NewString()
	}
	if title == "" {
		title = s.cfg.DefaultConversationTitle + " - " + time.Now().UTC().Format("2006-01-02 15:04")
	}
	conversation := &models.Conversation{
		ConversationID: conversationID,
		UserID:         userID,
		EngineType:     engineType,
		Title:          title,
		Messages:       datatypes.JSONSlice[models.Message]{},
	}
	if err := s.store.Save(conversation); err != nil {
		return nil, errors.New500Error(err)
	}
	return conversation, nil
}

// GetConversation retrieves one conversation, enforcing ownership.
func (s *ConversationService) GetConversation(conversationID, userID string) (*models.Conversation, error) {
	conversation, err := s.store.FindByID(conversationID)
	if err != nil {
		return nil, errors.New500Error(err)
	}
	if conversation == nil {
		return nil, errors.New404Error("Conversation not found")
	}
	if userID != "" && conversation.UserID != userID {
		return nil, errors.New403Error("Conversation belongs to another user")
	}
	return conversation, nil
}

// ListConversations retrieves a user's conversations, optionally filtered
// to one engine, most recently updated first.
func (s *ConversationService) ListConversations(userID, engineType string, limit int) ([]models.Conversation, error) {
	if userID == "" {
		return nil, errors.New400Error("userId is required")
	}
	if limit <= 0 {
		limit = s.cfg.DefaultHistoryLimit
	}
	var (
		conversations []models.Conversation
		err           error
	)
	if engineType != "" {
		conversations, err = s.store.FindByUserAndEngine(userID, engineType, limit)
	} else {
		conversations, err = s.store.FindByUser(userID, limit)
	}
	if err != nil {
		return nil, errors.New500Error(err)
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

// UpdateTitle renames a conversation.
func (s *ConversationService) UpdateTitle(conversationID, userID, title string) error {
	if title == "" {
		return errors.New400Error("title is required")
	}
	if _, err := s.GetConversation(conversationID, userID); err != nil {
		return err
	}
	if err := s.store.UpdateTitle(conversationID, title); err != nil {
		return errors.New500Error(err)
	}
	return nil
}

// DeleteConversation removes a conversation after an ownership check.
func (s *ConversationService) DeleteConversation(conversationID, userID string) error {
	if _, err := s.GetConversation(conversationID, userID); err != nil {
		return err
	}
	if err := s.store.Delete(conversationID); err != nil {
		return errors.New500Error(err)
	}
	return nil
}
