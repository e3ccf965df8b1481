package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

type geminiClient struct {
	client    *genai.Client
	modelName string
}

func newGeminiClient(ctx context.Context, apiKey, modelName string) (*geminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty: %w", ErrModelUnavailable)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiClient{client: client, modelName: modelName}, nil
}

func (g *geminiClient) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, config)
	if err != nil {
		return "", &ServiceFailure{Op: "gemini generate", Err: err}
	}
	if resp == nil {
		return "", &ServiceFailure{Op: "gemini generate", Err: fmt.Errorf("nil response")}
	}

	text := resp.Text()
	if text == "" {
		return "", &ServiceFailure{Op: "gemini generate", Err: fmt.Errorf("no text content in response")}
	}

	return text, nil
}

// GeminiChatModel serves grading and assistant chat through the Gemini API.
// System messages become the request's system instruction.
type GeminiChatModel struct {
	gemini      *geminiClient
	temperature float32
}

var _ ChatModel = (*GeminiChatModel)(nil)

func NewGeminiChatModel(ctx context.Context, apiKey, modelName string) (*GeminiChatModel, error) {
	g, err := newGeminiClient(ctx, apiKey, modelName)
	if err != nil {
		return nil, err
	}
	return &GeminiChatModel{gemini: g, temperature: 0}, nil
}

func (m *GeminiChatModel) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	temperature := m.temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	var system []string
	var contents []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	return m.gemini.generate(ctx, contents, config)
}

const transcribeInstruction = "Transcribe the spoken audio verbatim. Return only the transcript text with no commentary."

// GeminiTranscriber sends the whole recording inline and asks for a verbatim
// transcript.
type GeminiTranscriber struct {
	gemini *geminiClient
}

var _ Transcriber = (*GeminiTranscriber)(nil)

func NewGeminiTranscriber(ctx context.Context, apiKey, modelName string) (*GeminiTranscriber, error) {
	g, err := newGeminiClient(ctx, apiKey, modelName)
	if err != nil {
		return nil, err
	}
	return &GeminiTranscriber{gemini: g}, nil
}

func (t *GeminiTranscriber) Ready() bool { return true }

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(transcribeInstruction),
		genai.NewPartFromBytes(data, audioMIMEType(audioPath)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	text, err := t.gemini.generate(ctx, contents, nil)
	if err != nil {
		return "", err
	}

	log.Printf("🎙️  Gemini transcription received: %d characters", len(text))
	return CleanTranscript(text), nil
}

func audioMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".m4a", ".aac":
		return "audio/aac"
	case ".webm":
		return "audio/webm"
	default:
		return "audio/wav"
	}
}
