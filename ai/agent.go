package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// The research agent drives a tool-using model: the model decides which
// searches to run via the single search_google capability, and the loop is
// hard-capped at maxAgentRounds completion rounds to bound cost and latency.
// Tool-argument parse failures are absorbed into the conversation; model and
// search transport failures propagate to the caller.

const maxAgentRounds = 3

const searchToolName = "search_google"

// toolCall is one requested invocation of the search capability.
type toolCall struct {
	ID   string
	Args string
}

// toolRound is the outcome of one completion round.
type toolRound struct {
	Text  string
	Calls []toolCall
}

// toolConversation abstracts the model transcript so the loop logic does not
// depend on the wire client.
type toolConversation interface {
	Next(ctx context.Context) (toolRound, error)
	AddToolResult(id, content string)
}

// ResearchAgent runs the bounded research loop.
type ResearchAgent struct {
	client    *Client
	search    SearchFunc
	maxRounds int
}

func NewResearchAgent(client *Client, search SearchFunc) *ResearchAgent {
	return &ResearchAgent{
		client:    client,
		search:    search,
		maxRounds: maxAgentRounds,
	}
}

// Run executes the agent for one research instruction and returns the final
// text. When the round cap is reached without a conclusion, the best-effort
// text gathered so far is returned instead of an error.
func (a *ResearchAgent) Run(ctx context.Context, instruction string) (string, error) {
	return runToolLoop(ctx, a.client.newToolConversation(instruction), a.search, a.maxRounds)
}

type searchArgs struct {
	Query string `json:"query"`
}

func runToolLoop(ctx context.Context, conv toolConversation, search SearchFunc, maxRounds int) (string, error) {
	var bestEffort string
	var gathered []string

	for round := 0; round < maxRounds; round++ {
		reply, err := conv.Next(ctx)
		if err != nil {
			return "", err
		}

		if reply.Text != "" {
			bestEffort = reply.Text
		}
		if len(reply.Calls) == 0 {
			if reply.Text == "" {
				return "", errors.New("agent returned an empty round")
			}
			return reply.Text, nil
		}

		for _, call := range reply.Calls {
			var args searchArgs
			if err := json.Unmarshal([]byte(call.Args), &args); err != nil || strings.TrimSpace(args.Query) == "" {
				// Malformed tool arguments are fed back to the model
				// instead of failing the run.
				conv.AddToolResult(call.ID, fmt.Sprintf("could not parse search arguments %q; reply with your findings so far", call.Args))
				continue
			}
			result, err := search(ctx, args.Query)
			if err != nil {
				return "", fmt.Errorf("search %q failed: %w", args.Query, err)
			}
			gathered = append(gathered, fmt.Sprintf("Results for %q:\n%s", args.Query, result))
			conv.AddToolResult(call.ID, result)
		}
	}

	if bestEffort != "" {
		return bestEffort, nil
	}
	if len(gathered) > 0 {
		return "Research stopped at the round limit before a final summary was written. Raw findings:\n\n" + strings.Join(gathered, "\n\n"), nil
	}
	return "", errors.New("agent reached the round limit without producing any output")
}

// openaiConversation is the live transcript against the completions API.
type openaiConversation struct {
	client   *Client
	messages []openai.ChatCompletionMessageParamUnion
	tools    []openai.ChatCompletionToolParam
}

func (c *Client) newToolConversation(instruction string) *openaiConversation {
	return &openaiConversation{
		client: c,
		messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(instruction),
		},
		tools: []openai.ChatCompletionToolParam{
			{Function: shared.FunctionDefinitionParam{
				Name:        searchToolName,
				Description: openai.String("Searches for travel info related to destinations and activities."),
				Parameters: shared.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "The search query",
						},
					},
					"required": []string{"query"},
				},
			}},
		},
	}
}

func (c *openaiConversation) Next(ctx context.Context) (toolRound, error) {
	completion, err := c.client.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.client.model),
		Messages: c.messages,
		Tools:    c.tools,
	})
	if err != nil {
		return toolRound{}, err
	}
	if len(completion.Choices) == 0 {
		return toolRound{}, errors.New("model returned no choices")
	}

	message := completion.Choices[0].Message
	c.messages = append(c.messages, message.ToParam())

	round := toolRound{Text: strings.TrimSpace(message.Content)}
	for _, tc := range message.ToolCalls {
		if tc.Function.Name != searchToolName {
			continue
		}
		round.Calls = append(round.Calls, toolCall{ID: tc.ID, Args: tc.Function.Arguments})
	}
	return round, nil
}

func (c *openaiConversation) AddToolResult(id, content string) {
	c.messages = append(c.messages, openai.ToolMessage(content, id))
}
