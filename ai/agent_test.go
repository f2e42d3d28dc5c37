package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedConversation replays a fixed sequence of rounds and records the
// tool results fed back to the "model".
type scriptedConversation struct {
	rounds  []toolRound
	err     error
	next    int
	results map[string]string
}

func (c *scriptedConversation) Next(_ context.Context) (toolRound, error) {
	if c.err != nil {
		return toolRound{}, c.err
	}
	if c.next >= len(c.rounds) {
		return toolRound{}, errors.New("script exhausted")
	}
	r := c.rounds[c.next]
	c.next++
	return r, nil
}

func (c *scriptedConversation) AddToolResult(id, content string) {
	if c.results == nil {
		c.results = map[string]string{}
	}
	c.results[id] = content
}

func okSearch(results map[string]string) SearchFunc {
	return func(_ context.Context, query string) (string, error) {
		if r, ok := results[query]; ok {
			return r, nil
		}
		return "no results", nil
	}
}

func TestToolConversationDeclaresSearchTool(t *testing.T) {
	conv := NewClient("test-token").newToolConversation("research Goa")

	require.Len(t, conv.tools, 1)
	assert.Equal(t, searchToolName, conv.tools[0].Function.Name)
	require.Len(t, conv.messages, 1)
}

func TestToolLoopSearchesThenConcludes(t *testing.T) {
	conv := &scriptedConversation{rounds: []toolRound{
		{Calls: []toolCall{
			{ID: "c1", Args: `{"query":"goa hotels"}`},
			{ID: "c2", Args: `{"query":"goa activities"}`},
		}},
		{Text: "final research summary"},
	}}
	search := okSearch(map[string]string{
		"goa hotels":     "hotel digest",
		"goa activities": "activity digest",
	})

	out, err := runToolLoop(context.Background(), conv, search, maxAgentRounds)
	require.NoError(t, err)
	assert.Equal(t, "final research summary", out)
	assert.Equal(t, "hotel digest", conv.results["c1"])
	assert.Equal(t, "activity digest", conv.results["c2"])
}

func TestToolLoopAbsorbsMalformedArguments(t *testing.T) {
	conv := &scriptedConversation{rounds: []toolRound{
		{Calls: []toolCall{{ID: "c1", Args: `not json at all`}}},
		{Text: "best effort answer"},
	}}

	out, err := runToolLoop(context.Background(), conv, okSearch(nil), maxAgentRounds)
	require.NoError(t, err)
	assert.Equal(t, "best effort answer", out)
	assert.Contains(t, conv.results["c1"], "could not parse")
}

func TestToolLoopPropagatesSearchFailure(t *testing.T) {
	conv := &scriptedConversation{rounds: []toolRound{
		{Calls: []toolCall{{ID: "c1", Args: `{"query":"goa"}`}}},
	}}
	failing := func(_ context.Context, _ string) (string, error) {
		return "", errors.New("search api down")
	}

	_, err := runToolLoop(context.Background(), conv, failing, maxAgentRounds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search api down")
}

func TestToolLoopPropagatesModelFailure(t *testing.T) {
	conv := &scriptedConversation{err: errors.New("model unavailable")}
	_, err := runToolLoop(context.Background(), conv, okSearch(nil), maxAgentRounds)
	assert.ErrorContains(t, err, "model unavailable")
}

func TestToolLoopStopsAtRoundCapWithBestEffortText(t *testing.T) {
	// The model keeps asking for searches and never writes a final answer;
	// the cap forces the partial text out instead of an error.
	searching := toolRound{
		Text:  "gathering more data",
		Calls: []toolCall{{ID: "c", Args: `{"query":"again"}`}},
	}
	conv := &scriptedConversation{rounds: []toolRound{searching, searching, searching, searching}}

	out, err := runToolLoop(context.Background(), conv, okSearch(nil), maxAgentRounds)
	require.NoError(t, err)
	assert.Equal(t, "gathering more data", out)
	assert.Equal(t, maxAgentRounds, conv.next, "the loop must stop at the cap")
}

func TestToolLoopRoundCapWithoutTextReturnsGatheredResults(t *testing.T) {
	searching := toolRound{Calls: []toolCall{{ID: "c", Args: `{"query":"goa beaches"}`}}}
	conv := &scriptedConversation{rounds: []toolRound{searching, searching, searching}}
	search := okSearch(map[string]string{"goa beaches": "beach digest"})

	out, err := runToolLoop(context.Background(), conv, search, maxAgentRounds)
	require.NoError(t, err)
	assert.Contains(t, out, "beach digest")
	assert.Contains(t, out, "round limit")
}

func TestToolLoopEmptyRoundIsAnError(t *testing.T) {
	conv := &scriptedConversation{rounds: []toolRound{{}}}
	_, err := runToolLoop(context.Background(), conv, okSearch(nil), maxAgentRounds)
	assert.Error(t, err)
}
