package ai

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// GitHub Models exposes OpenAI-compatible completions; the token comes
	// from the GITHUB_TOKEN environment variable.
	defaultBaseURL = "https://models.inference.ai.azure.com"
	defaultModel   = "gpt-4o-mini"
)

// Completer issues a single model completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client wraps the OpenAI-compatible completions endpoint.
type Client struct {
	api   openai.Client
	model string
}

// ModelToken returns the configured model credential, if any.
func ModelToken() string {
	return strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
}

// NewClient builds a completion client from the environment. The base URL and
// model are overridable via PLANNER_MODEL_BASE_URL and PLANNER_MODEL.
func NewClient(token string) *Client {
	baseURL := os.Getenv("PLANNER_MODEL_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := os.Getenv("PLANNER_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Client{
		api: openai.NewClient(
			option.WithAPIKey(token),
			option.WithBaseURL(baseURL),
		),
		model: model,
	}
}

// Complete sends one user prompt and returns the completion text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(prompt),
	})
}

// Message is one turn of an assistant conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Converse sends system framing plus a user/assistant transcript and returns
// the reply. Messages with unknown roles or empty content are skipped.
func (c *Client) Converse(ctx context.Context, system []string, messages []Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(system)+len(messages))
	for _, s := range system {
		params = append(params, openai.SystemMessage(s))
	}
	for _, m := range messages {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case "user":
			params = append(params, openai.UserMessage(m.Content))
		case "assistant":
			params = append(params, openai.AssistantMessage(m.Content))
		}
	}
	return c.Chat(ctx, params)
}

// Chat sends a full message sequence and returns the completion text.
func (c *Client) Chat(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("model returned an empty message")
	}
	return text, nil
}
