package llm

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/freshspot/jobharvest/internal/ratelimit"
)

// Client wraps an OpenAI-compatible chat completion endpoint.
type Client struct {
	client   *resty.Client
	model    string
	endpoint string
}

// Config holds configuration for the completion client.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Result is a single successful completion together with its observed cost
// and the quota snapshot parsed from the response headers.
type Result struct {
	Content string
	Tokens  int
	Quota   ratelimit.Quota
}

// NewClient creates a completion client.
// Parameters:
//   - cfg: model, API key, and base URL (defaults to the Groq endpoint).
//
// Returns:
//   - *Client: initialized completion client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	client.SetTimeout(60 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	endpoint := baseURL + "/chat/completions"

	return &Client{
		client:   client,
		model:    cfg.Model,
		endpoint: endpoint,
	}
}

// GetModel returns the model name being used.
func (c *Client) GetModel() string {
	return c.model
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends one chat completion request.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - instruction: system message describing the writing task.
//   - prompt: user message carrying the posting details.
//
// Returns:
//   - *Result: completion text plus token usage and quota headers.
//   - error: *APIError for non-2xx responses, otherwise transport errors.
func (c *Client) Complete(ctx context.Context, instruction, prompt string) (*Result, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: prompt},
		},
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(c.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call completion API: %w", err)
	}

	quota := parseQuota(httpResp.Header())

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		apiErr := &APIError{
			Status:     httpResp.StatusCode(),
			RetryAfter: parseRetryAfter(httpResp.Header()),
			Quota:      quota,
		}
		if resp.Error != nil {
			apiErr.Message = resp.Error.Message
		} else if len(httpResp.Body()) > 0 {
			apiErr.Message = string(httpResp.Body())
		}
		return nil, apiErr
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("completion API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in completion response (status: %d)", httpResp.StatusCode())
	}

	content := resp.Choices[0].Message.Content
	tokens := resp.Usage.TotalTokens
	if tokens <= 0 {
		tokens = EstimateTokens(instruction + prompt + content)
	}

	return &Result{
		Content: content,
		Tokens:  tokens,
		Quota:   quota,
	}, nil
}

// EstimateTokens approximates the token cost of a piece of text. Used for
// pre-request budgeting and as a fallback when the response omits usage.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// parseQuota extracts the x-ratelimit-* quota headers. Missing or malformed
// headers are recorded as absent, never as errors.
func parseQuota(h http.Header) ratelimit.Quota {
	q := ratelimit.EmptyQuota()
	q.RemainingRequests = headerInt(h, "x-ratelimit-remaining-requests")
	q.RemainingTokens = headerInt(h, "x-ratelimit-remaining-tokens")
	q.LimitRequests = headerInt(h, "x-ratelimit-limit-requests")
	q.LimitTokens = headerInt(h, "x-ratelimit-limit-tokens")
	return q
}

func headerInt(h http.Header, key string) int {
	val := h.Get(key)
	if val == "" {
		return -1
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// parseRetryAfter reads the Retry-After header as a second count.
func parseRetryAfter(h http.Header) time.Duration {
	val := h.Get("Retry-After")
	if val == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(val, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
