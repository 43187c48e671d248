package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scamtrap/app/client/llm"
	"scamtrap/app/config"
	"scamtrap/app/prompts"
	"scamtrap/app/service/patterns"
	"scamtrap/app/service/store"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

const extractorTemperature = 0.1

type Intelligence struct {
	UPIIDs       []string `json:"upi_ids"`
	BankAccounts []string `json:"bank_accounts"`
	URLs         []string `json:"urls"`
	Phones       []string `json:"phones"`
	IFSCCodes    []string `json:"ifsc_codes"`
}

func (i Intelligence) EntityCount() int {
	return len(i.UPIIDs) + len(i.BankAccounts) + len(i.URLs) + len(i.Phones) + len(i.IFSCCodes)
}

type Service struct {
	lib       *patterns.Library
	extractor llm.Completer
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewService(
		do.MustInvoke[*patterns.Library](di),
		llm.NewClient(cfg.OpenAI.Classifier),
	), nil
}

func NewService(lib *patterns.Library, extractor llm.Completer) *Service {
	return &Service{
		lib:       lib,
		extractor: extractor,
	}
}

// Extract never fails; when the extractor is unreachable it degrades to the
// regex-only result.
func (s *Service) Extract(ctx context.Context, history []store.Turn) Intelligence {
	contents := make([]string, 0, len(history))
	for _, turn := range history {
		contents = append(contents, turn.Content)
	}
	fullText := strings.Join(contents, "\n")

	regexIntel := s.regexExtraction(fullText)

	llmIntel, err := s.llmExtraction(ctx, history)
	if err != nil {
		slog.Warn("Extractor call failed, using regex only", "error", err)
		return regexIntel
	}

	combined := Intelligence{
		UPIIDs:       pie.Unique(append(regexIntel.UPIIDs, llmIntel.UPIIDs...)),
		BankAccounts: pie.Unique(append(regexIntel.BankAccounts, llmIntel.BankAccounts...)),
		URLs:         pie.Unique(append(regexIntel.URLs, llmIntel.URLs...)),
		Phones:       pie.Unique(append(regexIntel.Phones, llmIntel.Phones...)),
		IFSCCodes:    pie.Unique(append(regexIntel.IFSCCodes, llmIntel.IFSCCodes...)),
	}

	slog.Info("Extracted intelligence",
		"upi", len(combined.UPIIDs),
		"accounts", len(combined.BankAccounts),
		"urls", len(combined.URLs),
		"phones", len(combined.Phones))

	return combined
}

func (s *Service) regexExtraction(text string) Intelligence {
	return Intelligence{
		UPIIDs:       s.lib.FindUPIIDs(text),
		BankAccounts: s.lib.FindBankAccounts(text),
		URLs:         s.lib.FindURLs(text),
		Phones:       s.lib.FindPhones(text),
		IFSCCodes:    s.lib.FindIFSCCodes(text),
	}
}

func (s *Service) llmExtraction(ctx context.Context, history []store.Turn) (Intelligence, error) {
	systemPrompt, err := prompts.Render(prompts.Extraction, nil)
	if err != nil {
		return Intelligence{}, err
	}

	var transcript strings.Builder
	for _, turn := range history {
		transcript.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Content))
	}

	result, err := s.extractor.CompleteJSON(ctx, llm.JSONRequest{
		SystemPrompt: systemPrompt,
		UserMessage:  fmt.Sprintf("Extract intelligence from this conversation:\n\n%s", transcript.String()),
		Temperature:  extractorTemperature,
	})
	if err != nil {
		return Intelligence{}, err
	}

	return Intelligence{
		UPIIDs:       stringList(result["upi_ids"]),
		BankAccounts: stringList(result["bank_accounts"]),
		URLs:         stringList(result["urls"]),
		Phones:       stringList(result["phones"]),
		IFSCCodes:    stringList(result["ifsc_codes"]),
	}, nil
}

// stringList tolerates missing or malformed categories in the extractor
// response, treating them as empty.
func stringList(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	var values []string
	for _, item := range items {
		if value, ok := item.(string); ok {
			values = append(values, value)
		}
	}

	return values
}
