package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codepix/codepix/internal/httpclient"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client sends single-turn prompts to the Gemini API.
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	timeout   time.Duration
}

// NewClient creates a Gemini client pinned to modelName. timeout bounds each
// call; zero selects httpclient.DefaultTimeout.
func NewClient(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: API key is empty")
	}
	// option.WithHTTPClient breaks the API key header injection in genai, so
	// timeouts are enforced through the call context instead.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if timeout <= 0 {
		timeout = httpclient.DefaultTimeout
	}
	return &Client{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
		timeout:   timeout,
	}, nil
}

// Close closes the underlying genai client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.modelName
}

// Complete sends prompt as a single user turn and returns the response text verbatim.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text, err := extractResponseText(resp)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if resp.UsageMetadata != nil {
		slog.Debug("Gemini usage",
			"model", c.modelName,
			"in", resp.UsageMetadata.PromptTokenCount,
			"out", resp.UsageMetadata.CandidatesTokenCount,
			"total", resp.UsageMetadata.TotalTokenCount,
		)
	}
	return text, nil
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
			return "", fmt.Errorf("prompt blocked by Gemini: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			continue
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			text, ok := part.(genai.Text)
			if !ok {
				continue
			}
			sb.WriteString(string(text))
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}
