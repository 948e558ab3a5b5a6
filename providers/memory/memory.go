// Package memory defines the Provider interface for conversation history.
// The orchestration loop appends user, assistant and tool messages through it
// between turns; implementations own storage and concurrency. Read methods
// return errors so database-backed implementations can surface failures. The
// bundled reference implementation lives in the sibling inmemory package.
package memory

import (
	"context"

	"github.com/routegate/routegate/providers/ai"
)

// Provider stores the ordered message history of one conversation.
type Provider interface {
	// AppendMessage stores message at the end of the history.
	AppendMessage(ctx context.Context, message *ai.Message)

	// AllMessages returns the full history in insertion order.
	AllMessages(ctx context.Context) ([]ai.Message, error)

	// Count returns the number of stored messages.
	Count(ctx context.Context) (int, error)

	// ClearMessages removes the entire history.
	ClearMessages(ctx context.Context)
}
