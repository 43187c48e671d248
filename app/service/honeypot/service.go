package honeypot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scamtrap/app/service/agent"
	"scamtrap/app/service/detect"
	"scamtrap/app/service/extract"
	"scamtrap/app/service/metrics"
	"scamtrap/app/service/store"

	"github.com/samber/do"
)

type Request struct {
	ConversationID string `json:"conversation_id" validate:"required,min=1"`
	Message        string `json:"message" validate:"required,min=1"`
}

type Response struct {
	ScamDetected      bool                 `json:"scam_detected"`
	EngagementMetrics metrics.Engagement   `json:"engagement_metrics"`
	Intelligence      extract.Intelligence `json:"intelligence"`
	Reply             string               `json:"reply"`
}

// Service runs the per-message pipeline: load conversation, detect, engage,
// persist both turns, extract intelligence, compute metrics.
type Service struct {
	conversations store.Store
	detectSvc     *detect.Service
	extractSvc    *extract.Service
	agentSvc      *agent.Service
	metricsSvc    *metrics.Service
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		do.MustInvoke[*store.Facade](di),
		do.MustInvoke[*detect.Service](di),
		do.MustInvoke[*extract.Service](di),
		do.MustInvoke[*agent.Service](di),
		do.MustInvoke[*metrics.Service](di),
	), nil
}

func NewService(
	conversations store.Store,
	detectSvc *detect.Service,
	extractSvc *extract.Service,
	agentSvc *agent.Service,
	metricsSvc *metrics.Service,
) *Service {
	return &Service{
		conversations: conversations,
		detectSvc:     detectSvc,
		extractSvc:    extractSvc,
		agentSvc:      agentSvc,
		metricsSvc:    metricsSvc,
	}
}

func (s *Service) ProcessMessage(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	conversation, err := s.conversations.Get(ctx, req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conversation == nil {
		conversation = store.NewConversation(req.ConversationID)
	}

	verdict := s.detectSvc.Detect(ctx, req.Message, conversation.Turns)

	userTurn := store.Turn{
		Role:      store.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now().UTC(),
	}
	if err = s.conversations.AppendTurn(ctx, req.ConversationID, userTurn); err != nil {
		slog.Warn("Failed to append user turn",
			"conversation_id", req.ConversationID,
			"error", err)
	}

	var reply string
	if verdict.IsScam {
		choice := s.agentSvc.SelectStrategy(ctx, conversation, conversation.AgentState)

		newState := s.agentSvc.UpdateState(conversation.AgentState, choice, verdict.IsScam)
		if err = s.conversations.UpdateAgentState(ctx, req.ConversationID, newState); err != nil {
			slog.Warn("Failed to update agent state",
				"conversation_id", req.ConversationID,
				"error", err)
		}

		// History excludes the current message; it is passed separately.
		reply = s.agentSvc.GenerateReply(ctx, req.Message, conversation.Turns, choice.Strategy, newState)
	} else {
		reply = s.agentSvc.NeutralReply()
	}

	agentTurn := store.Turn{
		Role:      store.RoleAgent,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	}
	if err = s.conversations.AppendTurn(ctx, req.ConversationID, agentTurn); err != nil {
		slog.Warn("Failed to append agent turn",
			"conversation_id", req.ConversationID,
			"error", err)
	}

	updated, err := s.conversations.Get(ctx, req.ConversationID)
	if err != nil || updated == nil {
		updated = conversation
	}

	intelligence := s.extractSvc.Extract(ctx, updated.Turns)
	engagement := s.metricsSvc.Calculate(updated)

	slog.Info("Processed message",
		"conversation_id", req.ConversationID,
		"scam_detected", verdict.IsScam,
		"confidence", verdict.Confidence,
		"turns", engagement.Turns,
		"entities", s.metricsSvc.EntityCount(intelligence),
		"duration", time.Since(start))

	return &Response{
		ScamDetected:      verdict.IsScam,
		EngagementMetrics: engagement,
		Intelligence:      intelligence,
		Reply:             reply,
	}, nil
}
