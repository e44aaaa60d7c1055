package services

import (
	"context"
	stderrors "errors"

	"pressroom_ai_go_backend/cmd/api/config"
	"pressroom_ai_go_backend/internal/errors"
	"pressroom_ai_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
)

// ErrRecipientGone reports that the target connection has disconnected.
// Senders wrap it so the orchestrator can tell a gone client apart from a
// transport fault; a gone client ends delivery without failing the turn.
var ErrRecipientGone = stderrors.New("recipient connection is gone")

const clearedConversationTitle = "Cleared conversation"

// TurnRequest carries one sendMessage submission through the orchestrator.
type TurnRequest struct {
	ConnectionID   string
	UserMessage    string
	EngineType     string
	ConversationID string
	UserID         string
	UserRole       string
	UserPlan       string
	ClientHistory  []models.Message
}

// TurnResult summarizes a completed turn for the closing frame.
type TurnResult struct {
	ConversationID string
	ChunksSent     int
	ResponseLength int
}

// ChatStreamService orchestrates one conversational turn: history merge,
// directive assembly, streaming generation, persistence and usage metering.
type ChatStreamService struct {
	conversations ConversationStore
	prompts       PromptStore
	usage         UsageRecorder
	generator     Generator
	assembler     *PromptAssembler
	sender        ChannelSender
	registry      ConnectionRegistry
	cfg           *config.Config
	log           zerolog.Logger
}

// NewChatStreamService creates a new ChatStreamService
func NewChatStreamService(
	conversations ConversationStore,
	prompts PromptStore,
	usage UsageRecorder,
	generator Generator,
	assembler *PromptAssembler,
	sender ChannelSender,
	registry ConnectionRegistry,
	cfg *config.Config,
	log zerolog.Logger,
) *ChatStreamService {
	return &ChatStreamService{
		conversations: conversations,
		prompts:       prompts,
		usage:         usage,
		generator:     generator,
		assembler:     assembler,
		sender:        sender,
		registry:      registry,
		cfg:           cfg,
		log:           log,
	}
}

// ProcessTurn runs one turn end to end. The user message is persisted before
// generation starts so it survives a mid-stream failure. Chunks are forwarded
// to the client in arrival order and accumulated; the persisted assistant
// message is the exact concatenation of the forwarded chunks. Usage metering
// failures are logged and never fail the turn.
func (s *ChatStreamService) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if req.UserID == "" {
		return nil, errors.New400Error("userId is required")
	}
	if req.UserMessage == "" {
		return nil, errors.New400Error("message is required")
	}
	engineType := req.EngineType
	if engineType == "" {
		engineType = s.cfg.DefaultEngineType
	}
	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	storeHistory, err := s.loadStoreHistory(conversationID)
	if err != nil {
		return nil, errors.New500Error(err)
	}
	merged := MergeConversationHistory(req.ClientHistory, storeHistory, s.cfg.MaxMergedMessages)

	userMsg := models.Message{
		Role:      "user",
		Content:   req.UserMessage,
		Timestamp: NowTimestamp(),
	}
	if err := s.saveMessage(conversationID, req.UserID, engineType, userMsg); err != nil {
		return nil, errors.New500Error(err)
	}
	merged = append(merged, userMsg)

	directive, err := s.buildDirective(engineType, req.UserRole, merged)
	if err != nil {
		return nil, errors.New500Error(err)
	}

	if err := s.sendFrame(req.ConnectionID, map[string]any{
		"type":      "ai_start",
		"engine":    engineType,
		"timestamp": NowTimestamp(),
	}); err != nil {
		return nil, errors.New500Error(err)
	}

	stream, err := s.generator.StreamGenerate(ctx, directive, req.UserMessage)
	if err != nil {
		s.signalError(req.ConnectionID, "Failed to start generation")
		return nil, errors.New500Error(err)
	}

	var response []byte
	chunkIndex := 0
	for {
		chunk, err := stream.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			s.signalError(req.ConnectionID, "Generation failed")
			return nil, errors.New500Error(err)
		}
		response = append(response, chunk...)
		if err := s.sendFrame(req.ConnectionID, map[string]any{
			"type":        "ai_chunk",
			"chunk":       chunk,
			"chunk_index": chunkIndex,
			"timestamp":   NowTimestamp(),
		}); err != nil {
			s.signalError(req.ConnectionID, "Failed to deliver response")
			return nil, errors.New500Error(err)
		}
		chunkIndex++
	}

	responseText := string(response)
	if responseText != "" {
		assistantMsg := models.Message{
			Role:      "assistant",
			Content:   responseText,
			Timestamp: NowTimestamp(),
		}
		if err := s.saveMessage(conversationID, req.UserID, engineType, assistantMsg); err != nil {
			s.log.Error().Err(err).
				Str("conversationId", conversationID).
				Msg("failed to persist assistant message")
		}
	}

	if _, err := s.usage.RecordTurn(req.UserID, engineType, req.UserMessage, responseText, req.UserPlan); err != nil {
		s.log.Error().Err(err).
			Str("userId", req.UserID).
			Str("engineType", engineType).
			Msg("failed to record usage")
	}

	if err := s.sendFrame(req.ConnectionID, map[string]any{
		"type":            "chat_end",
		"engine":          engineType,
		"conversationId":  conversationID,
		"total_chunks":    chunkIndex,
		"response_length": len(responseText),
		"message":         "Response complete",
		"timestamp":       NowTimestamp(),
	}); err != nil {
		return nil, errors.New500Error(err)
	}

	return &TurnResult{
		ConversationID: conversationID,
		ChunksSent:     chunkIndex,
		ResponseLength: len(responseText),
	}, nil
}

// ClearHistory empties a conversation's messages and resets its title.
// Returns false when the conversation does not exist.
func (s *ChatStreamService) ClearHistory(conversationID string) (bool, error) {
	conversation, err := s.conversations.FindByID(conversationID)
	if err != nil {
		return false, errors.New500Error(err)
	}
	if conversation == nil {
		return false, nil
	}
	if err := s.conversations.UpdateMessages(conversationID, []models.Message{}); err != nil {
		return false, errors.New500Error(err)
	}
	if err := s.conversations.UpdateTitle(conversationID, clearedConversationTitle); err != nil {
		return false, errors.New500Error(err)
	}
	return true, nil
}

func (s *ChatStreamService) loadStoreHistory(conversationID string) ([]models.Message, error) {
	conversation, err := s.conversations.FindByID(conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, nil
	}
	messages := []models.Message(conversation.Messages)
	if limit := s.cfg.DefaultHistoryLimit; limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages, nil
}

// saveMessage appends one message to the conversation, creating the record
// on first contact. The message list is capped FIFO; the title of a new
// conversation comes from the first user message.
func (s *ChatStreamService) saveMessage(conversationID, userID, engineType string, msg models.Message) error {
	conversation, err := s.conversations.FindByID(conversationID)
	if err != nil {
		return err
	}
	if conversation == nil {
		conversation = &models.Conversation{
			ConversationID: conversationID,
			UserID:         userID,
			EngineType:     engineType,
			Title:          titleFromMessage(msg.Content, s.cfg.MaxTitleLength),
		}
	}
	messages := append([]models.Message(conversation.Messages), msg)
	if max := s.cfg.MaxConversationMessages; max > 0 && len(messages) > max {
		messages = messages[len(messages)-max:]
	}
	conversation.Messages = messages
	return s.conversations.Save(conversation)
}

func (s *ChatStreamService) buildDirective(engineType, userRole string, merged []models.Message) (string, error) {
	prompt, files, err := s.prompts.GetPromptWithFiles(engineType)
	if err != nil {
		return "", err
	}
	input := DirectiveInput{Files: files}
	if prompt != nil {
		input.Description = prompt.Description
		input.Instruction = prompt.Instruction
	}
	// The current user message is already the last merged entry; context
	// covers everything before it.
	contextWindow := merged
	if len(contextWindow) > 0 {
		contextWindow = contextWindow[:len(contextWindow)-1]
	}
	conversationContext := FormatConversationContext(contextWindow, s.cfg.MaxContextMessages)
	return s.assembler.AssembleDirective(input, userRole, conversationContext), nil
}

// sendFrame delivers one frame. A gone recipient is cleaned up and treated
// as success; any other delivery failure is the caller's problem.
func (s *ChatStreamService) sendFrame(connectionID string, payload map[string]any) error {
	err := s.sender.Send(connectionID, payload)
	if err == nil {
		return nil
	}
	if stderrors.Is(err, ErrRecipientGone) {
		s.log.Info().
			Str("connectionId", connectionID).
			Msg("recipient gone, dropping connection")
		s.registry.Remove(connectionID)
		return nil
	}
	return err
}

// signalError pushes a best-effort error frame; its own failure is only logged.
func (s *ChatStreamService) signalError(connectionID, message string) {
	if err := s.sendFrame(connectionID, map[string]any{
		"type":      "error",
		"message":   message,
		"timestamp": NowTimestamp(),
	}); err != nil {
		s.log.Error().Err(err).
			Str("connectionId", connectionID).
			Msg("failed to deliver error frame")
	}
}

func titleFromMessage(content string, maxRunes int) string {
	runes := []rune(content)
	if maxRunes > 0 && len(runes) > maxRunes {
		return string(runes[:maxRunes])
	}
	return content
}
