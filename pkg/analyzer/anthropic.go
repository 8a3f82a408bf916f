package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jwalitptl/health-api/pkg/circuitbreaker"
	"github.com/jwalitptl/health-api/pkg/logger"
)

const (
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultModel      = "claude-3-5-sonnet-20241022"
	DefaultAPIVersion = "2023-06-01"
	DefaultMaxTokens  = 4096

	messagesPath = "/v1/messages"
	noTextAnswer = "Unable to generate analysis"
)

// placeholderKey is the value shipped in the sample env file.
const placeholderKey = "your_api_key_here"

type AnthropicConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	APIVersion string
	MaxTokens  int
	// Timeout bounds a single HTTP exchange. The caller's context may be shorter.
	Timeout time.Duration

	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// AnthropicClient calls the Messages API.
type AnthropicClient struct {
	cfg    AnthropicConfig
	http   *resty.Client
	cb     *circuitbreaker.CircuitBreaker
	logger *logger.Logger
	now    func() time.Time
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	StopReason string `json:"stop_reason"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewAnthropicClient(cfg AnthropicConfig, log *logger.Logger) *AnthropicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("anthropic-version", cfg.APIVersion)

	cb := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:             "anthropic",
		MaxRequests:      1,
		Timeout:          cfg.BreakerTimeout,
		FailureThreshold: cfg.BreakerFailures,
		// A caller going away says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrCanceled)
		},
	})

	return &AnthropicClient{
		cfg:    cfg,
		http:   client,
		cb:     cb,
		logger: log.With("component", "anthropic"),
		now:    time.Now,
	}
}

// Configured reports whether an API key is set.
func (c *AnthropicClient) Configured() bool {
	key := strings.TrimSpace(c.cfg.APIKey)
	return key != "" && key != placeholderKey
}

func (c *AnthropicClient) Analyze(ctx context.Context, req Request) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	userMessage, err := UserMessage(req)
	if err != nil {
		return nil, err
	}
	body := messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		System:    SystemPrompt(req),
		Messages:  []message{{Role: "user", Content: userMessage}},
	}

	start := c.now()
	var out messagesResponse
	err = c.cb.Execute(func() error {
		return c.send(ctx, body, &out)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		err = fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if err != nil {
		c.logger.Error(err, "analysis request failed", "model", c.cfg.Model)
		return nil, err
	}

	text := joinText(out.Content)
	if text == "" {
		text = noTextAnswer
	}

	model := out.Model
	if model == "" {
		model = c.cfg.Model
	}

	result := &Result{
		Text: text,
		Metadata: Metadata{
			Model:        model,
			Timestamp:    c.now().UTC(),
			InputTokens:  out.Usage.InputTokens,
			OutputTokens: out.Usage.OutputTokens,
			Duration:     c.now().Sub(start),
		},
	}

	c.logger.Info("analysis completed",
		"model", model,
		"input_tokens", result.Metadata.InputTokens,
		"output_tokens", result.Metadata.OutputTokens,
		"duration_ms", result.Metadata.Duration.Milliseconds(),
	)
	return result, nil
}

func (c *AnthropicClient) send(ctx context.Context, body messagesRequest, out *messagesResponse) error {
	var apiErr apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.cfg.APIKey).
		SetBody(body).
		SetResult(out).
		SetError(&apiErr).
		Post(messagesPath)
	if err != nil {
		if isTimeout(ctx, err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("%w: %v", ErrCanceled, err)
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode(), msg)
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func joinText(blocks []contentBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
