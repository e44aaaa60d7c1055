package services

import (
	"context"

	"pressroom_ai_go_backend/internal/models"

	"github.com/shopspring/decimal"
)

// ConversationStore is the conversation collection of the entity store.
//
// Save and UpdateMessages are read-modify-write from the caller's point of
// view: two concurrent turns against the same conversation are last-write-wins.
// This is an accepted tradeoff for the single-client-per-conversation usage
// pattern, not a guaranteed invariant.
type ConversationStore interface {
	FindByID(conversationID string) (*models.Conversation, error)
	FindByUser(userID string, limit int) ([]models.Conversation, error)
	FindByUserAndEngine(userID, engineType string, limit int) ([]models.Conversation, error)
	Save(conversation *models.Conversation) error
	UpdateTitle(conversationID, title string) error
	UpdateMessages(conversationID string, messages []models.Message) error
	Delete(conversationID string) error
}

// PromptStore is the prompts+files collection of the entity store. Prompts
// are keyed by engine selector; files by engine selector + file ID.
type PromptStore interface {
	GetPrompt(engineType string) (*models.EnginePrompt, error)
	GetPromptWithFiles(engineType string) (*models.EnginePrompt, []models.PromptFile, error)
	ListPrompts() ([]models.EnginePrompt, error)
	SavePrompt(prompt *models.EnginePrompt) error
	DeletePrompt(engineType string) error
	ListFiles(engineType string) ([]models.PromptFile, error)
	AddFile(file *models.PromptFile) error
	UpdateFile(engineType, fileID string, fileName, fileContent *string) error
	DeleteFile(engineType, fileID string) error
}

// UsageStore is the usage-ledger collection of the entity store. AddUsage
// must be an atomic in-place add, not a read-then-write cycle.
type UsageStore interface {
	GetOrCreate(userID, usageDate, engineType string) (*models.Usage, error)
	AddUsage(userID, usageDate, engineType string, inputTokens, outputTokens int64, cost decimal.Decimal) (*models.Usage, error)
	Find(userID, usageDate, engineType string) (*models.Usage, error)
	FindByUser(userID string) ([]models.Usage, error)
}

// ResponseStream yields text fragments produced by the generation backend.
// Next returns iterator.Done once the stream is exhausted. Fragments carry
// no linguistic alignment guarantee; callers treat them as opaque text.
type ResponseStream interface {
	Next() (string, error)
}

// Generator is the opaque streaming text backend.
type Generator interface {
	StreamGenerate(ctx context.Context, directive, userMessage string) (ResponseStream, error)
}

// ChannelSender delivers a payload to one live connection. Send returns an
// error wrapping ErrRecipientGone when the recipient has disconnected.
type ChannelSender interface {
	Send(connectionID string, payload any) error
}

// ConnectionRegistry removes a dead connection's record; cleanup is
// best-effort and never fails the surrounding turn.
type ConnectionRegistry interface {
	Remove(connectionID string)
}

// UsageRecorder accounts one completed turn.
type UsageRecorder interface {
	RecordTurn(userID, engineType, inputText, outputText, userPlan string) (*UsageUpdate, error)
}
