package services_test

import (
	"context"
	"fmt"
	"sync"

	"pressroom_ai_go_backend/internal/models"
	"pressroom_ai_go_backend/internal/services"

	"google.golang.org/api/iterator"
	"gorm.io/datatypes"
)

// fakeConversationStore is an in-memory ConversationStore.
type fakeConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	saveCount     int
}

func newFakeConversationStore() *fakeConversationStore {
	return &fakeConversationStore{conversations: make(map[string]*models.Conversation)}
}

func (s *fakeConversationStore) FindByID(conversationID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[conversationID]; ok {
		copied := *conv
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeConversationStore) FindByUser(userID string, limit int) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Conversation
	for _, conv := range s.conversations {
		if conv.UserID == userID {
			out = append(out, *conv)
		}
	}
	return out, nil
}

func (s *fakeConversationStore) FindByUserAndEngine(userID, engineType string, limit int) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Conversation
	for _, conv := range s.conversations {
		if conv.UserID == userID && conv.EngineType == engineType {
			out = append(out, *conv)
		}
	}
	return out, nil
}

func (s *fakeConversationStore) Save(conversation *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *conversation
	s.conversations[conversation.ConversationID] = &copied
	s.saveCount++
	return nil
}

func (s *fakeConversationStore) UpdateTitle(conversationID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s not found", conversationID)
	}
	conv.Title = title
	return nil
}

func (s *fakeConversationStore) UpdateMessages(conversationID string, messages []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s not found", conversationID)
	}
	conv.Messages = datatypes.NewJSONSlice(messages)
	return nil
}

func (s *fakeConversationStore) Delete(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
	return nil
}

// fakePromptStore serves a single fixed prompt and file set.
type fakePromptStore struct {
	prompt *models.EnginePrompt
	files  []models.PromptFile
}

func (s *fakePromptStore) GetPrompt(engineType string) (*models.EnginePrompt, error) {
	return s.prompt, nil
}

func (s *fakePromptStore) GetPromptWithFiles(engineType string) (*models.EnginePrompt, []models.PromptFile, error) {
	return s.prompt, s.files, nil
}

func (s *fakePromptStore) ListPrompts() ([]models.EnginePrompt, error) { return nil, nil }
func (s *fakePromptStore) SavePrompt(prompt *models.EnginePrompt) error {
	s.prompt = prompt
	return nil
}
func (s *fakePromptStore) DeletePrompt(engineType string) error { return nil }
func (s *fakePromptStore) ListFiles(engineType string) ([]models.PromptFile, error) {
	return s.files, nil
}
func (s *fakePromptStore) AddFile(file *models.PromptFile) error { return nil }
func (s *fakePromptStore) UpdateFile(engineType, fileID string, fileName, fileContent *string) error {
	return nil
}
func (s *fakePromptStore) DeleteFile(engineType, fileID string) error { return nil }

// fakeUsageRecorder captures RecordTurn arguments.
type fakeUsageRecorder struct {
	mu         sync.Mutex
	calls      int
	lastInput  string
	lastOutput string
	err        error
}

func (r *fakeUsageRecorder) RecordTurn(userID, engineType, inputText, outputText, userPlan string) (*services.UsageUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.lastInput = inputText
	r.lastOutput = outputText
	if r.err != nil {
		return nil, r.err
	}
	return &services.UsageUpdate{}, nil
}

// fakeStream yields its chunks in order, then an optional error, then Done.
type fakeStream struct {
	chunks []string
	err    error
	pos    int
}

func (s *fakeStream) Next() (string, error) {
	if s.pos < len(s.chunks) {
		chunk := s.chunks[s.pos]
		s.pos++
		return chunk, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", iterator.Done
}

// fakeGenerator returns a fresh stream per call and records the directive.
type fakeGenerator struct {
	chunks        []string
	streamErr     error
	startErr      error
	lastDirective string
	lastMessage   string
}

func (g *fakeGenerator) StreamGenerate(ctx context.Context, directive, userMessage string) (services.ResponseStream, error) {
	g.lastDirective = directive
	g.lastMessage = userMessage
	if g.startErr != nil {
		return nil, g.startErr
	}
	return &fakeStream{chunks: g.chunks, err: g.streamErr}, nil
}

// recordingSender captures every frame in delivery order. When gone is set,
// all sends report a vanished recipient; failOn makes one frame type fail
// with a plain transport error while other frames still go through.
type recordingSender struct {
	mu     sync.Mutex
	frames []map[string]any
	gone   bool
	failOn string
}

func (s *recordingSender) Send(connectionID string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone {
		return fmt.Errorf("connection %s: %w", connectionID, services.ErrRecipientGone)
	}
	frame := payload.(map[string]any)
	if s.failOn != "" && frame["type"] == s.failOn {
		return fmt.Errorf("write to %s failed: broken pipe", connectionID)
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *recordingSender) framesOfType(frameType string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []map[string]any
	for _, frame := range s.frames {
		if frame["type"] == frameType {
			out = append(out, frame)
		}
	}
	return out
}

// recordingRegistry captures Remove calls.
type recordingRegistry struct {
	mu      sync.Mutex
	removed []string
}

func (r *recordingRegistry) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, connectionID)
}
