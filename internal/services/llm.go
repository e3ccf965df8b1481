package services

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatModel sends a conversation to a chat-style language model and returns
// the raw text of its reply. Implementations return *ServiceFailure for
// transport, status and empty-reply problems.
type ChatModel interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}
