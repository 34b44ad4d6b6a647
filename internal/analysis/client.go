// Package analysis sends assembled prompts to the hosted model endpoint and
// parses its structured response into a typed result.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/sukima/internal/models"
	"github.com/hyperjump/sukima/internal/prompt"
	"go.uber.org/zap"
)

// correctiveInstruction is sent on the single retry after a parse failure.
const correctiveInstruction = "Your previous reply was not valid JSON matching the requested schema. Respond again with ONLY a valid JSON object matching the exact structure requested, with no markdown fences and no surrounding text."

// Config holds the hosted model endpoint settings. Endpoint, APIKey, and
// Deployment are opaque strings validated only for non-emptiness.
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
	Timeout    time.Duration
}

// Validate checks that required fields are set.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.Deployment == "" {
		return fmt.Errorf("deployment is required")
	}
	return nil
}

// SetDefaults fills in defaults for optional fields.
func (c *Config) SetDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = "2024-06-01"
	}
	if c.Timeout == 0 {
		c.Timeout = 45 * time.Second
	}
}

// Client calls the hosted model's chat-completions deployment. It is safe for
// concurrent use across sessions; it holds no per-session state.
type Client struct {
	config Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a client for the configured deployment.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}
	cfg.SetDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Analyze sends the payload to the hosted model and parses the response into
// an AnalysisResult. A response that fails to parse triggers exactly one
// corrective retry before a parse error is surfaced. Analyze does not touch
// the session; the caller applies the result.
func (c *Client) Analyze(ctx context.Context, p prompt.Payload) (*models.AnalysisResult, error) {
	messages := []chatMessage{
		{Role: "system", Content: p.System},
		{Role: "user", Content: p.User},
	}

	raw, err := c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	result, parseErr := parseResult(raw)
	if parseErr == nil {
		return result, nil
	}

	c.logger.Warn("analysis response did not parse, retrying once",
		zap.Error(parseErr))

	// Hard cap of exactly one corrective retry.
	messages = append(messages,
		chatMessage{Role: "assistant", Content: raw},
		chatMessage{Role: "user", Content: correctiveInstruction},
	)
	raw, err = c.complete(ctx, messages)
	if err != nil {
		return nil, err
	}
	result, parseErr = parseResult(raw)
	if parseErr != nil {
		return nil, newParseError("model output did not match the result schema after retry", parseErr)
	}
	return result, nil
}

// complete performs a single chat-completion call and returns the raw text.
func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Messages:    messages,
		MaxTokens:   2000,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.config.Endpoint, "/"), c.config.Deployment, c.config.APIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.config.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("analysis request failed",
			zap.Duration("duration", time.Since(start)), zap.Error(err))
		return "", newTransportError(0, "request to model endpoint failed", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("analysis request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", newQuotaError(resp.StatusCode, "model endpoint rate limit exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", newTransportError(resp.StatusCode, strings.TrimSpace(string(msg)), nil)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", newTransportError(resp.StatusCode, "malformed completion envelope", err)
	}
	if cr.Error != nil {
		return "", newTransportError(0, cr.Error.Message, nil)
	}
	if len(cr.Choices) == 0 {
		return "", newTransportError(0, "no choices in response", nil)
	}
	return cr.Choices[0].Message.Content, nil
}

// parseResult strips markdown code fences and unmarshals the gap report.
// Some models wrap JSON in ```json fences despite instructions.
func parseResult(raw string) (*models.AnalysisResult, error) {
	clean := strings.TrimSpace(raw)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	clean = strings.TrimSpace(clean)

	if clean == "" {
		return nil, fmt.Errorf("empty model response")
	}
	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(clean), &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &result, nil
}
