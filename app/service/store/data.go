package store

import "time"

const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

const StrategyNeutral = "neutral"

type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type AgentState struct {
	Trust         float64 `json:"trust_level"`
	Curiosity     float64 `json:"curiosity_level"`
	Strategy      string  `json:"strategy"`
	ScamConfirmed bool    `json:"scam_confirmed"`
}

func DefaultAgentState() AgentState {
	return AgentState{
		Trust:         0.5,
		Curiosity:     0.7,
		Strategy:      StrategyNeutral,
		ScamConfirmed: false,
	}
}

type Conversation struct {
	ID          string     `json:"conversation_id"`
	Turns       []Turn     `json:"turns"`
	AgentState  AgentState `json:"agent_state"`
	StartedAt   time.Time  `json:"started_at"`
	LastUpdated time.Time  `json:"last_updated"`
}

// NewConversation creates an empty conversation with the default agent state.
func NewConversation(id string) *Conversation {
	now := time.Now().UTC()

	return &Conversation{
		ID:          id,
		Turns:       []Turn{},
		AgentState:  DefaultAgentState(),
		StartedAt:   now,
		LastUpdated: now,
	}
}

func cloneConversation(c *Conversation) *Conversation {
	clone := *c
	clone.Turns = make([]Turn, len(c.Turns))
	copy(clone.Turns, c.Turns)

	return &clone
}
