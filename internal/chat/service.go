// Package chat implements the conversation pipeline: context assembly,
// synchronous sends, and queued asynchronous replies.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/lmarquezt/chatvault/internal/ai"
	"github.com/lmarquezt/chatvault/internal/store"
)

type Service struct {
	store        *store.Store
	assembler    *Assembler
	registry     *ai.Registry
	provider     string
	model        string
	systemPrompt string
	jobs         *JobRepo
}

func NewService(st *store.Store, registry *ai.Registry, provider, model, systemPrompt string, jobs *JobRepo) *Service {
	return &Service{
		store:        st,
		assembler:    NewAssembler(st),
		registry:     registry,
		provider:     provider,
		model:        model,
		systemPrompt: systemPrompt,
		jobs:         jobs,
	}
}

func (s *Service) Assembler() *Assembler { return s.assembler }

// SendMessage persists the user's message, assembles the bounded context,
// calls the model, and persists the reply verbatim. The message counter is
// bumped once per user-authored message; assistant replies do not count.
func (s *Service) SendMessage(ctx context.Context, userID uint64, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty message", store.ErrValidation)
	}

	provider, err := s.registry.Get(ctx, s.provider, s.model)
	if err != nil {
		return "", err
	}

	if _, err := s.store.SaveMessage(ctx, userID, "user", content); err != nil {
		return "", err
	}
	if err := s.store.IncrementMessageCount(ctx, userID); err != nil {
		return "", err
	}

	seq, err := s.assembler.BuildContext(ctx, userID, content, s.systemPrompt)
	if err != nil {
		return "", err
	}

	reply, err := provider.Chat(ctx, seq)
	if err != nil {
		return "", err
	}

	if _, err := s.store.SaveMessage(ctx, userID, "assistant", reply); err != nil {
		return "", err
	}
	return reply, nil
}

// ClearConversation wipes the user's history and ticks the chat counter, so
// the next send starts a fresh conversation.
func (s *Service) ClearConversation(ctx context.Context, userID uint64) error {
	if err := s.store.ClearMessages(ctx, userID); err != nil {
		return err
	}
	return s.store.IncrementChatCount(ctx, userID)
}

// EnqueueMessage persists the user message and records a queued job. The
// publisher is invoked by the HTTP layer after this returns the job id.
func (s *Service) EnqueueMessage(ctx context.Context, userID uint64, content string, idempotencyKey *string) (*Job, bool, error) {
	if s.jobs == nil {
		return nil, false, fmt.Errorf("async sends are not configured")
	}
	if strings.TrimSpace(content) == "" {
		return nil, false, fmt.Errorf("%w: empty message", store.ErrValidation)
	}

	id, err := NewJobID()
	if err != nil {
		return nil, false, err
	}
	job := &Job{
		ID:             id,
		UserID:         userID,
		Prompt:         content,
		IdempotencyKey: idempotencyKey,
		Status:         JobQueued,
	}
	created, fresh, err := s.jobs.CreateOrGetExisting(ctx, job)
	if err != nil {
		return nil, false, err
	}
	if !fresh {
		return created, false, nil
	}

	if _, err := s.store.SaveMessage(ctx, userID, "user", content); err != nil {
		return nil, false, err
	}
	if err := s.store.IncrementMessageCount(ctx, userID); err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// GetJob fetches a job by id.
func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	if s.jobs == nil {
		return nil, fmt.Errorf("async sends are not configured")
	}
	return s.jobs.GetByID(ctx, jobID)
}

// GenerateReplyAndStore rebuilds the context from stored history (the user
// message is already the final row) and persists the model's reply. Used by
// the worker; the returned id feeds the job result column.
func (s *Service) GenerateReplyAndStore(ctx context.Context, userID uint64) (string, uint64, error) {
	provider, err := s.registry.Get(ctx, s.provider, s.model)
	if err != nil {
		return "", 0, err
	}

	seq, err := s.assembler.BuildStoredContext(ctx, userID, s.systemPrompt)
	if err != nil {
		return "", 0, err
	}

	reply, err := provider.Chat(ctx, seq)
	if err != nil {
		return "", 0, err
	}

	msg, err := s.store.SaveMessage(ctx, userID, "assistant", reply)
	if err != nil {
		return "", 0, err
	}
	return reply, msg.ID, nil
}
