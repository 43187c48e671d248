package detect

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"scamtrap/app/client/llm"
	"scamtrap/app/config"
	"scamtrap/app/prompts"
	"scamtrap/app/service/patterns"
	"scamtrap/app/service/store"

	"github.com/samber/do"
)

const (
	classifierTemperature = 0.1
	historyWindow         = 5
	shortenerBonus        = 2
)

type Source string

const (
	// SourceFused means the classifier answered and was fused with the
	// heuristic verdict.
	SourceFused Source = "fused"
	// SourceHeuristic means the classifier call failed and the heuristic
	// verdict was returned unchanged.
	SourceHeuristic Source = "heuristic"
)

type Verdict struct {
	IsScam     bool    `json:"is_scam"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"-"`
}

type Service struct {
	lib        *patterns.Library
	classifier llm.Completer
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(
		do.MustInvoke[*patterns.Library](di),
		llm.NewClient(cfg.OpenAI.Classifier),
	), nil
}

func NewService(lib *patterns.Library, classifier llm.Completer) *Service {
	return &Service{
		lib:        lib,
		classifier: classifier,
	}
}

// Detect never fails; when the classifier is unreachable it degrades to the
// heuristic verdict.
func (s *Service) Detect(ctx context.Context, message string, history []store.Turn) Verdict {
	heuristic := s.heuristic(message)

	external, err := s.classify(ctx, message, history)
	if err != nil {
		slog.Warn("Classifier call failed, using heuristics only", "error", err)
		return heuristic
	}

	verdict := fuse(heuristic, external)

	slog.Info("Scam detection result",
		"is_scam", verdict.IsScam,
		"confidence", verdict.Confidence,
		"llm_conf", external.Confidence,
		"heuristic_conf", heuristic.Confidence)

	return verdict
}

func (s *Service) heuristic(message string) Verdict {
	count := len(s.lib.MatchCategories(message))

	if s.lib.HasShortenedURL(message) {
		count += shortenerBonus
	}

	switch {
	case count >= 3:
		return Verdict{
			IsScam:     true,
			Confidence: math.Min(0.5+0.1*float64(count), 0.9),
			Source:     SourceHeuristic,
		}
	case count >= 1:
		return Verdict{
			IsScam:     true,
			Confidence: 0.3 + 0.1*float64(count),
			Source:     SourceHeuristic,
		}
	}

	return Verdict{
		IsScam:     false,
		Confidence: 0.1,
		Source:     SourceHeuristic,
	}
}

func (s *Service) classify(ctx context.Context, message string, history []store.Turn) (Verdict, error) {
	systemPrompt, err := prompts.Render(prompts.Detection, nil)
	if err != nil {
		return Verdict{}, err
	}

	var historyText strings.Builder
	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	for _, turn := range recent {
		historyText.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
	}

	userPrompt := fmt.Sprintf(
		"Conversation context:\n%s\nLatest message to analyze:\n%s\n\nClassify this message for scam intent.",
		historyText.String(), message)

	result, err := s.classifier.CompleteJSON(ctx, llm.JSONRequest{
		SystemPrompt: systemPrompt,
		UserMessage:  userPrompt,
		Temperature:  classifierTemperature,
	})
	if err != nil {
		return Verdict{}, err
	}

	isScam, _ := result["is_scam"].(bool)
	confidence := 0.5
	if value, ok := result["confidence"].(float64); ok {
		confidence = value
	}

	return Verdict{IsScam: isScam, Confidence: confidence}, nil
}

func fuse(heuristic, external Verdict) Verdict {
	var isScam bool
	var confidence float64

	switch {
	case heuristic.IsScam && external.IsScam:
		isScam = true
		confidence = math.Max(external.Confidence, heuristic.Confidence)
	case heuristic.IsScam || external.IsScam:
		isScam = true
		confidence = (external.Confidence + heuristic.Confidence) / 2
	default:
		isScam = false
		confidence = math.Min(external.Confidence, heuristic.Confidence)
	}

	return Verdict{
		IsScam:     isScam,
		Confidence: math.Round(confidence*100) / 100,
		Source:     SourceFused,
	}
}
