package agent

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"scamtrap/app/client/llm"
	"scamtrap/app/config"
	"scamtrap/app/prompts"
	"scamtrap/app/service/store"

	"github.com/samber/do"
)

const (
	strategyTemperature = 0.4
	replyTemperature    = 0.8
	replyMaxTokens      = 300
	recentTurnsWindow   = 4
)

const (
	StrategyNeutral             = store.StrategyNeutral
	StrategyAskPaymentDetails   = "ask_payment_details"
	StrategyAskLinkAgain        = "ask_link_again"
	StrategyDelayResponse       = "delay_response"
	StrategyRequestConfirmation = "request_confirmation"
	StrategyExpressConcern      = "express_concern"
)

type StrategyChoice struct {
	Strategy  string `json:"strategy"`
	Reasoning string `json:"reasoning"`
}

var fallbackReplies = map[string]string{
	StrategyAskPaymentDetails:   "I'm a bit confused about the payment. Can you explain again?",
	StrategyAskLinkAgain:        "Sorry, I couldn't open that link. Could you send it again?",
	StrategyDelayResponse:       "Let me check with my family first. Can we continue later?",
	StrategyRequestConfirmation: "Just to be sure, can you confirm those details again?",
	StrategyExpressConcern:      "I'm a little worried. Is this really legitimate?",
	StrategyNeutral:             "I see. Can you tell me more about this?",
}

const unknownStrategyReply = "I'm not sure I understand. Could you explain?"

// Service is the engagement state machine: it picks a tactic per scam-positive
// turn, evolves trust/curiosity, and produces the agent's reply.
type Service struct {
	selector llm.Completer
	replier  llm.Completer
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(
		llm.NewClient(cfg.OpenAI.Classifier),
		llm.NewClient(cfg.OpenAI.Reply),
	), nil
}

func NewService(selector, replier llm.Completer) *Service {
	return &Service{
		selector: selector,
		replier:  replier,
	}
}

// SelectStrategy falls back to neutral on any failure.
func (s *Service) SelectStrategy(ctx context.Context, conversation *store.Conversation, state store.AgentState) StrategyChoice {
	fallback := StrategyChoice{
		Strategy:  StrategyNeutral,
		Reasoning: "Fallback to neutral",
	}

	turnCount := 0
	if conversation != nil {
		turnCount = len(conversation.Turns)
	}

	systemPrompt, err := prompts.Render(prompts.Strategy, map[string]any{
		"trust_level":       state.Trust,
		"curiosity_level":   state.Curiosity,
		"previous_strategy": state.Strategy,
		"turn_count":        turnCount,
	})
	if err != nil {
		slog.Warn("Strategy selection failed", "error", err)
		return fallback
	}

	var recentText strings.Builder
	if conversation != nil {
		recent := conversation.Turns
		if len(recent) > recentTurnsWindow {
			recent = recent[len(recent)-recentTurnsWindow:]
		}
		for _, turn := range recent {
			recentText.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
		}
	}

	result, err := s.selector.CompleteJSON(ctx, llm.JSONRequest{
		SystemPrompt: systemPrompt,
		UserMessage:  fmt.Sprintf("Recent conversation:\n%s\n\nSelect best strategy.", recentText.String()),
		Temperature:  strategyTemperature,
	})
	if err != nil {
		slog.Warn("Strategy selection failed", "error", err)
		return fallback
	}

	strategy, _ := result["strategy"].(string)
	if strategy == "" {
		strategy = StrategyNeutral
	}
	reasoning, _ := result["reasoning"].(string)

	slog.Debug("Selected strategy",
		"strategy", strategy,
		"reasoning", reasoning)

	return StrategyChoice{
		Strategy:  strategy,
		Reasoning: reasoning,
	}
}

// UpdateState evolves trust/curiosity for one scam-positive turn. Trust and
// curiosity stay clamped to [0, 1]; ScamConfirmed never reverts to false.
func (s *Service) UpdateState(current store.AgentState, choice StrategyChoice, scamDetected bool) store.AgentState {
	trust := current.Trust
	curiosity := current.Curiosity

	if scamDetected && !current.ScamConfirmed {
		curiosity = math.Min(1.0, curiosity+0.1)
	}

	switch choice.Strategy {
	case StrategyDelayResponse:
		trust = math.Max(0.0, trust-0.05)
	case StrategyRequestConfirmation:
		trust = math.Max(0.0, trust-0.03)
	case StrategyAskPaymentDetails, StrategyAskLinkAgain:
		trust = math.Min(1.0, trust+0.02)
	}

	return store.AgentState{
		Trust:         round2(trust),
		Curiosity:     round2(curiosity),
		Strategy:      choice.Strategy,
		ScamConfirmed: current.ScamConfirmed || scamDetected,
	}
}

// GenerateReply returns a canned per-strategy line when the model call fails.
func (s *Service) GenerateReply(ctx context.Context, message string, history []store.Turn, strategy string, state store.AgentState) string {
	systemPrompt, err := prompts.Render(prompts.Persona, map[string]any{
		"strategy": strategy,
	})
	if err != nil {
		slog.Warn("Failed to render persona prompt", "error", err)
		return fallbackReply(strategy)
	}

	systemPrompt += fmt.Sprintf(
		"\nCurrent internal state (do not reveal):\n- Trust: %.1f/1.0\n- Curiosity: %.1f/1.0\n- Strategy to use: %s\n",
		state.Trust, state.Curiosity, strategy)

	reply, err := s.replier.CompleteText(ctx, llm.TextRequest{
		SystemPrompt: systemPrompt,
		UserMessage:  message,
		History:      historyMessages(history),
		Temperature:  replyTemperature,
		MaxTokens:    replyMaxTokens,
	})
	if err != nil {
		slog.Error("Failed to generate reply",
			"strategy", strategy,
			"error", err)
		return fallbackReply(strategy)
	}

	reply = strings.Trim(strings.TrimSpace(reply), `"'`)

	slog.Info("Generated reply", "strategy", strategy)

	return reply
}

// NeutralReply is the fixed acknowledgement for non-scam messages.
func (s *Service) NeutralReply() string {
	return "Thank you for your message. How can I help you today?"
}

func fallbackReply(strategy string) string {
	if reply, ok := fallbackReplies[strategy]; ok {
		return reply
	}

	return unknownStrategyReply
}

func historyMessages(history []store.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(history))

	for _, turn := range history {
		role := "user"
		if turn.Role == store.RoleAgent {
			role = "assistant"
		}

		messages = append(messages, llm.Message{
			Role:    role,
			Content: turn.Content,
		})
	}

	return messages
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
