package ai

import "context"

// Message is one role-tagged entry of the context sequence sent to the
// remote model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider executes one inference call over an ordered context sequence and
// returns the model's reply.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
