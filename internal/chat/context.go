package chat

import (
	"context"

	"github.com/lmarquezt/chatvault/internal/ai"
	"github.com/lmarquezt/chatvault/internal/store"
)

// Assembler reconstructs the ordered context sequence handed to the remote
// model for one inference call.
type Assembler struct {
	store *store.Store
}

func NewAssembler(st *store.Store) *Assembler {
	return &Assembler{store: st}
}

// BuildContext returns [system?, history..., newUserMessage]. The caller is
// expected to have persisted newUserMessage already; the final history entry
// is dropped so the message is not sent twice. History length is not
// truncated, so context grows with the conversation.
func (a *Assembler) BuildContext(ctx context.Context, userID uint64, newUserMessage, systemDirective string) ([]ai.Message, error) {
	history, err := a.store.GetMessages(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		// exclude the just-persisted copy of newUserMessage
		history = history[:len(history)-1]
	}

	out := make([]ai.Message, 0, len(history)+2)
	if systemDirective != "" {
		out = append(out, ai.Message{Role: "system", Content: systemDirective})
	}
	for _, m := range history {
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	out = append(out, ai.Message{Role: "user", Content: newUserMessage})
	return out, nil
}

// BuildStoredContext returns [system?, history...] with no extra entry
// appended. It serves the async path, where the user message is already the
// final stored row by the time the worker picks the job up.
func (a *Assembler) BuildStoredContext(ctx context.Context, userID uint64, systemDirective string) ([]ai.Message, error) {
	history, err := a.store.GetMessages(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]ai.Message, 0, len(history)+1)
	if systemDirective != "" {
		out = append(out, ai.Message{Role: "system", Content: systemDirective})
	}
	for _, m := range history {
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	return out, nil
}
