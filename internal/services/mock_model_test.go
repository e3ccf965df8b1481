package services

import (
	"context"
	"sync"

	"alfredoptarigan/smart-interviewer/internal/models"
)

// fakeChatModel returns a canned reply or error and records what it was sent.
type fakeChatModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	panicMsg string
	calls    [][]ChatMessage
	ctxErr   error
	block    bool
}

func (f *fakeChatModel) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.mu.Unlock()

	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.block {
		<-ctx.Done()
		f.mu.Lock()
		f.ctxErr = ctx.Err()
		f.mu.Unlock()
		return "", &ServiceFailure{Op: "chat request", Err: ctx.Err()}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeChatModel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []models.EvaluationLog
	err     error
}

func (f *fakeLogRepo) Record(_ context.Context, entry *models.EvaluationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}
