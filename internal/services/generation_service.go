package services

import (
	"context"

	"github.com/google/generative-ai-go/genai"
)

// GenAIGenerator implements Generator on top of the Google AI Studio client.
type GenAIGenerator struct {
	client    *genai.Client
	modelName string
}

// NewGenAIGenerator creates a new GenAIGenerator
func NewGenAIGenerator(client *genai.Client, modelName string) *GenAIGenerator {
	return &GenAIGenerator{client: client, modelName: modelName}
}

// StreamGenerate starts a streaming generation with the directive installed
// as the system instruction and the user message as the sole content part.
func (g *GenAIGenerator) StreamGenerate(ctx context.Context, directive, userMessage string) (ResponseStream, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(directive)},
	}
	iter := model.GenerateContentStream(ctx, genai.Text(userMessage))
	return &genaiStream{iter: iter}, nil
}

// genaiStream adapts the SDK's response iterator to ResponseStream. Each
// Next call surfaces the text of one response; responses carrying no text
// part (safety annotations, empty candidates) are skipped rather than
// returned as empty chunks.
type genaiStream struct {
	iter *genai.GenerateContentResponseIterator
}

func (s *genaiStream) Next() (string, error) {
	for {
		resp, err := s.iter.Next()
		if err != nil {
			return "", err
		}
		if text, ok := responseText(resp); ok {
			return text, nil
		}
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}
	if text, ok := content.Parts[0].(genai.Text); ok && text != "" {
		return string(text), true
	}
	return "", false
}
