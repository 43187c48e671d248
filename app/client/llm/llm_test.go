package llm

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestUnwrapFenced(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no tag", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, unwrapFenced(tt.in))
		})
	}
}

func TestBuildMessages(t *testing.T) {
	messages := buildMessages("system", []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}, "latest")

	assert.Equal(t, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "system"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: openai.ChatMessageRoleUser, Content: "latest"},
	}, messages)
}

func TestBuildMessagesNoSystemPrompt(t *testing.T) {
	messages := buildMessages("", nil, "latest")

	assert.Len(t, messages, 1)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[0].Role)
}
