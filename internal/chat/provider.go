package chat

import "context"

// Provider completes a free-form prompt. The responder only falls back to
// it for queries its command matching cannot answer.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
