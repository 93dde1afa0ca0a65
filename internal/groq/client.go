package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codepix/codepix/internal/apperrors"
	"github.com/codepix/codepix/internal/httpclient"
)

const DefaultBaseURL = "https://api.groq.com/openai/v1"

// Sampling parameters sent with every completion.
const (
	Temperature = 0.7
	MaxTokens   = 2048
	TopP        = 1.0
)

// ChatRequest is the body of an OpenAI-compatible chat completion call.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
	// Stop is always serialized so the upstream sees an explicit null.
	Stop []string `json:"stop"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the subset of the chat completion response we read.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorEnvelope struct {
	Error errorDetails `json:"error"`
}

type errorDetails struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"`
}

func (e errorDetails) codeString() string {
	if e.Code == nil {
		return ""
	}
	return fmt.Sprint(e.Code)
}

// Client calls the Groq chat completions endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client pinned to model. A nil httpClient uses the shared
// default client; an empty baseURL uses DefaultBaseURL.
func NewClient(apiKey, model, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends prompt as a single user message and returns the content of
// the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := ChatRequest{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		TopP:        TopP,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	body, resp, err := httpclient.DoAndRead(c.httpClient, httpReq)
	if err != nil {
		return "", apperrors.ProviderCallFailed("groq", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyGroqError(resp.StatusCode, parseErrorDetails(body))
	}

	var result ChatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperrors.ProviderCallFailed("groq", fmt.Errorf("failed to decode response: %w", err))
	}
	if len(result.Choices) == 0 {
		return "", apperrors.ProviderCallFailed("groq", fmt.Errorf("no choices in response"))
	}

	slog.Debug("Groq API Response", "status", resp.Status, "usage_total", result.Usage.TotalTokens, "response_id", result.ID)

	return result.Choices[0].Message.Content, nil
}

func parseErrorDetails(body []byte) errorDetails {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errorDetails{}
	}
	return envelope.Error
}

func classifyGroqError(statusCode int, details errorDetails) error {
	cause := fmt.Errorf("groq status=%d type=%s code=%s message=%s", statusCode, details.Type, details.codeString(), details.Message)

	var summary string
	switch {
	case statusCode == http.StatusTooManyRequests:
		summary = "rate limit exceeded (429)"
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		summary = fmt.Sprintf("authentication/authorization failed (%d)", statusCode)
	case statusCode == http.StatusNotFound && isModelNotFound(details):
		summary = "model does not exist or you do not have access to it (404)"
	case statusCode >= 500:
		summary = fmt.Sprintf("server error (%d)", statusCode)
	default:
		summary = fmt.Sprintf("API error (%d)", statusCode)
	}
	if msg := strings.TrimSpace(details.Message); msg != "" {
		summary += ": " + msg
	}
	return apperrors.New(apperrors.KindProviderCallFailed, "groq request failed: "+summary, cause)
}

func isModelNotFound(details errorDetails) bool {
	needle := strings.ToLower(details.codeString() + " " + details.Type + " " + details.Message)
	if strings.Contains(needle, "model_not_found") {
		return true
	}
	return strings.Contains(needle, "does not exist or you do not have access to it")
}
