package store

import "context"

// Store keeps conversation records keyed by conversation id.
//
// Get returns (nil, nil) for an unknown id; callers create the conversation
// lazily. AppendTurn creates the conversation if it does not exist yet.
type Store interface {
	Get(ctx context.Context, id string) (*Conversation, error)
	Save(ctx context.Context, conversation *Conversation) error
	AppendTurn(ctx context.Context, id string, turn Turn) error
	UpdateAgentState(ctx context.Context, id string, state AgentState) error
	HealthCheck(ctx context.Context) error
}
