package services

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AssistantService answers single-turn help questions. Unlike grading it has
// no fallback text: model failures are returned to the caller.
type AssistantService interface {
	Reply(ctx context.Context, message string) (string, error)
}

type assistantService struct {
	model   ChatModel
	timeout time.Duration
}

func NewAssistantService(model ChatModel, timeout time.Duration) AssistantService {
	return &assistantService{model: model, timeout: timeout}
}

func (a *assistantService) Reply(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	reply, err := a.model.Complete(ctx, []ChatMessage{
		{Role: RoleSystem, Content: AssistantInstruction},
		{Role: RoleUser, Content: message},
	})
	if err != nil {
		return "", fmt.Errorf("assistant reply: %w", err)
	}
	return reply, nil
}
