package metrics

import (
	"math"

	"scamtrap/app/service/extract"
	"scamtrap/app/service/store"

	"github.com/samber/do"
)

// Engagement score weights, each term individually capped.
const (
	turnWeight     = 2.0
	durationWeight = 0.01
	entityWeight   = 10.0

	turnCap     = 30.0
	durationCap = 20.0
	entityCap   = 50.0
	scoreCap    = 100.0
)

type Engagement struct {
	Turns           int `json:"turns"`
	DurationSeconds int `json:"duration_seconds"`
}

type Service struct{}

func New(_ *do.Injector) (*Service, error) {
	return &Service{}, nil
}

func (s *Service) Calculate(conversation *store.Conversation) Engagement {
	if conversation == nil {
		return Engagement{}
	}

	duration := 0
	if !conversation.StartedAt.IsZero() && !conversation.LastUpdated.IsZero() {
		duration = int(conversation.LastUpdated.Sub(conversation.StartedAt).Seconds())
	}
	if duration < 0 {
		duration = 0
	}

	return Engagement{
		Turns:           len(conversation.Turns),
		DurationSeconds: duration,
	}
}

func (s *Service) EntityCount(intelligence extract.Intelligence) int {
	return intelligence.EntityCount()
}

// EngagementScore rates an engagement 0-100; higher means the agent held the
// scammer longer and extracted more.
func (s *Service) EngagementScore(engagement Engagement, intelligence extract.Intelligence) float64 {
	turnScore := math.Min(float64(engagement.Turns)*turnWeight, turnCap)
	durationScore := math.Min(float64(engagement.DurationSeconds)*durationWeight, durationCap)
	entityScore := math.Min(float64(intelligence.EntityCount())*entityWeight, entityCap)

	total := turnScore + durationScore + entityScore

	return math.Min(scoreCap, math.Round(total*10)/10)
}
