package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scamtrap/app/config"

	"github.com/sashabaranov/go-openai"
)

const (
	maxCompletionDuration = 30 * time.Second
	defaultJSONMaxTokens  = 1000
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TextRequest struct {
	SystemPrompt string
	UserMessage  string
	History      []Message
	Temperature  float32
	MaxTokens    int
}

type JSONRequest struct {
	SystemPrompt string
	UserMessage  string
	History      []Message
	Temperature  float32
}

// Completer is the completion contract the engines talk to.
type Completer interface {
	CompleteText(ctx context.Context, req TextRequest) (string, error)
	CompleteJSON(ctx context.Context, req JSONRequest) (map[string]any, error)
}

var _ Completer = (*Client)(nil)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(cfg config.ModelConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.Token)

	clientConfig.BaseURL = cfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: maxCompletionDuration,
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (c *Client) CompleteText(ctx context.Context, req TextRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, maxCompletionDuration)
	defer cancel()

	aiResponse, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:               c.model,
			Messages:            buildMessages(req.SystemPrompt, req.History, req.UserMessage),
			MaxCompletionTokens: req.MaxTokens,
			Temperature:         req.Temperature,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return strings.TrimSpace(aiResponse.Choices[0].Message.Content), nil
}

func (c *Client) CompleteJSON(ctx context.Context, req JSONRequest) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, maxCompletionDuration)
	defer cancel()

	aiResponse, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:               c.model,
			Messages:            buildMessages(req.SystemPrompt, req.History, req.UserMessage),
			MaxCompletionTokens: defaultJSONMaxTokens,
			Temperature:         req.Temperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return nil, fmt.Errorf("no chat completion found")
	}

	result := unwrapFenced(aiResponse.Choices[0].Message.Content)

	var response map[string]any
	if err = json.Unmarshal([]byte(result), &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return response, nil
}

func buildMessages(systemPrompt string, history []Message, userMessage string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)

	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}

	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})

	return messages
}

// Models sometimes wrap their JSON answer in a fenced code block.
func unwrapFenced(raw string) string {
	result := strings.TrimSpace(raw)
	result = strings.Trim(result, "`")
	result = strings.TrimSpace(result)
	result = strings.TrimPrefix(result, "json")

	return strings.TrimSpace(result)
}
