package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
)

const serpAPIEndpoint = "https://serpapi.com/search.json"

// SearchFunc is the single web-search capability exposed to the research
// agent: query in, raw result text out.
type SearchFunc func(ctx context.Context, query string) (string, error)

// SearchClient queries SerpAPI's Google engine and flattens the response into
// plain text for the agent.
type SearchClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// SearchKey returns the configured search credential, if any.
func SearchKey() string {
	return strings.TrimSpace(os.Getenv("SERPAPI_API_KEY"))
}

func NewSearchClient(apiKey string) *SearchClient {
	return &SearchClient{
		apiKey:   apiKey,
		endpoint: serpAPIEndpoint,
		httpClient: &http.Client{
			Timeout: 45 * time.Second,
		},
	}
}

type serpResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

type serpResponse struct {
	AnswerBox struct {
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
	} `json:"answer_box"`
	OrganicResults []serpResult `json:"organic_results"`
	Error          string       `json:"error"`
}

// Search runs one query and returns a line-oriented digest of the results.
func (c *SearchClient) Search(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("search api error: %s", resp.Status)
	}

	var parsed serpResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("search api returned malformed response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("search api error: %s", parsed.Error)
	}

	lines := []string{}
	if parsed.AnswerBox.Answer != "" {
		lines = append(lines, "Answer: "+parsed.AnswerBox.Answer)
	}
	if parsed.AnswerBox.Snippet != "" {
		lines = append(lines, parsed.AnswerBox.Snippet)
	}
	lines = append(lines, lo.Map(parsed.OrganicResults, func(r serpResult, _ int) string {
		return fmt.Sprintf("%s - %s (%s)", r.Title, r.Snippet, r.Link)
	})...)

	if len(lines) == 0 {
		return "No results found for: " + query, nil
	}
	return strings.Join(lines, "\n"), nil
}
