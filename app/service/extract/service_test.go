package extract

import (
	"context"
	"errors"
	"testing"

	"scamtrap/app/client/llm"
	"scamtrap/app/service/patterns"
	"scamtrap/app/service/store"

	"github.com/stretchr/testify/assert"
)

type fakeCompleter struct {
	jsonResult map[string]any
	err        error
}

func (f *fakeCompleter) CompleteText(_ context.Context, _ llm.TextRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, _ llm.JSONRequest) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.jsonResult, nil
}

func newService(fake *fakeCompleter) *Service {
	return NewService(patterns.NewLibrary(), fake)
}

func TestExtractRegexFallback(t *testing.T) {
	s := newService(&fakeCompleter{err: errors.New("timeout")})

	history := []store.Turn{
		{Role: store.RoleUser, Content: "send money to merchant@ybl"},
		{Role: store.RoleAgent, Content: "which link?"},
		{Role: store.RoleUser, Content: "http://bit.ly/xyz and call 98765-43210"},
	}

	intelligence := s.Extract(context.Background(), history)

	assert.Equal(t, []string{"merchant@ybl"}, intelligence.UPIIDs)
	assert.Equal(t, []string{"http://bit.ly/xyz"}, intelligence.URLs)
	assert.Equal(t, []string{"9876543210"}, intelligence.Phones)
	assert.Empty(t, intelligence.BankAccounts)
	assert.Empty(t, intelligence.IFSCCodes)
}

func TestExtractDedupAcrossTurns(t *testing.T) {
	s := newService(&fakeCompleter{err: errors.New("timeout")})

	history := []store.Turn{
		{Role: store.RoleUser, Content: "pay merchant@ybl now"},
		{Role: store.RoleUser, Content: "did you pay merchant@ybl?"},
	}

	intelligence := s.Extract(context.Background(), history)
	assert.Equal(t, []string{"merchant@ybl"}, intelligence.UPIIDs)
}

func TestExtractUnion(t *testing.T) {
	fake := &fakeCompleter{jsonResult: map[string]any{
		"upi_ids": []any{"other@paytm", "merchant@ybl"},
		"phones":  []any{"9123456789"},
	}}
	s := newService(fake)

	history := []store.Turn{
		{Role: store.RoleUser, Content: "pay merchant@ybl"},
	}

	intelligence := s.Extract(context.Background(), history)

	assert.ElementsMatch(t, []string{"merchant@ybl", "other@paytm"}, intelligence.UPIIDs)
	assert.Equal(t, []string{"9123456789"}, intelligence.Phones)
	// Categories missing from the extractor response stay empty.
	assert.Empty(t, intelligence.BankAccounts)
	assert.Empty(t, intelligence.URLs)
	assert.Empty(t, intelligence.IFSCCodes)
}

func TestExtractMalformedCategoryIgnored(t *testing.T) {
	fake := &fakeCompleter{jsonResult: map[string]any{
		"upi_ids":       "not-a-list",
		"bank_accounts": []any{42, "123456789"},
	}}
	s := newService(fake)

	intelligence := s.Extract(context.Background(), nil)

	assert.Empty(t, intelligence.UPIIDs)
	assert.Equal(t, []string{"123456789"}, intelligence.BankAccounts)
}

func TestEntityCount(t *testing.T) {
	intelligence := Intelligence{
		UPIIDs: []string{"a@ybl"},
		URLs:   []string{"http://x"},
		Phones: []string{"9876543210"},
	}

	assert.Equal(t, 3, intelligence.EntityCount())
}
