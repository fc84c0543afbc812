// Package llm provides LLM clients used for the weekly caregiving digest and
// for drafting agenda items from free text.
package llm

import (
	"context"
	"errors"
	"time"
)

// Chat roles shared by every provider. Unknown roles are sent as RoleUser.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyReply is returned when the model answers without any text, which
// would otherwise surface as a blank digest or an empty draft.
var ErrEmptyReply = errors.New("model returned an empty reply")

// Message is one turn of a digest or draft conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options selects a provider and how to reach it. Zero values fall back to
// the provider defaults. Timeout bounds a single request; zero leaves the
// caller's context alone.
type Options struct {
	Provider string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// Client is what the digester and the draft assistant need from a provider.
type Client interface {
	// Chat returns the model's plain-text reply.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ChatJSON asks for a JSON reply and decodes it into result.
	ChatJSON(ctx context.Context, messages []Message, result any) error
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
