package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// OllamaChatModel calls an OpenAI-compatible chat completions endpoint
// (Ollama, LM Studio, vLLM, ...).
type OllamaChatModel struct {
	url    string
	model  string
	client *http.Client
}

var _ ChatModel = (*OllamaChatModel)(nil)

func NewOllamaChatModel(url, model string, timeout time.Duration) *OllamaChatModel {
	return &OllamaChatModel{
		url:   url,
		model: model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OllamaChatModel) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		return "", &ServiceFailure{Op: "encode chat request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &ServiceFailure{Op: "create chat request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", &ServiceFailure{Op: "chat request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServiceFailure{Op: "chat request", Err: fmt.Errorf("LLM returned status %d", resp.StatusCode)}
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ServiceFailure{Op: "decode chat response", Err: err}
	}

	if len(out.Choices) == 0 {
		return "", &ServiceFailure{Op: "chat request", Err: fmt.Errorf("LLM returned no choices")}
	}

	content := out.Choices[0].Message.Content
	if content == "" {
		return "", &ServiceFailure{Op: "chat request", Err: fmt.Errorf("LLM returned empty content")}
	}

	return content, nil
}
