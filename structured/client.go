package structured

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/tripagent/progress"
)

const DefaultRetries = 3

var (
	ErrEmptyResponse = errors.New("empty model response")
	ErrNoJSON        = errors.New("no JSON found in model response")
)

// Client calls a chat model for structured output. Every failure is retried and finally
// replaced by a fallback value, so Generate never fails.
type Client struct {
	model    model.BaseChatModel
	reporter progress.Reporter
	retries  int
	toolMode bool
}

type Option func(*Client)

func WithReporter(r progress.Reporter) Option {
	return func(c *Client) {
		c.reporter = progress.OrNop(r)
	}
}

func WithRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithToolMode toggles forced tool calls for models that support them.
func WithToolMode(enabled bool) Option {
	return func(c *Client) {
		c.toolMode = enabled
	}
}

func NewClient(chatModel model.BaseChatModel, opts ...Option) *Client {
	c := &Client{
		model:    chatModel,
		reporter: progress.Nop,
		retries:  DefaultRetries,
		toolMode: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Retries() int {
	return c.retries
}

type Request struct {
	// Agent names the caller in status reports.
	Agent    string
	Prompt   string
	Messages []*schema.Message
	Schema   *Schema
	// Tool forces a tool call when there is no Schema. The arguments are only decoded.
	Tool *schema.ToolInfo
	// Retries overrides the client default when positive.
	Retries  int
	Fallback func() any

	decode func(v any) (any, error)
}

func (r *Request) toolInfo() *schema.ToolInfo {
	if r.Schema != nil {
		return r.Schema.ToolInfo()
	}
	return r.Tool
}

func (r *Request) messages() []*schema.Message {
	if len(r.Messages) > 0 {
		return r.Messages
	}
	return []*schema.Message{schema.UserMessage(r.Prompt)}
}

// Generate runs the request until one attempt succeeds or the retries are used up.
// With a schema the result is a validated map[string]any, without one it is the parsed
// JSON value or the raw text.
func (c *Client) Generate(ctx context.Context, req *Request) any {
	retries := c.retries
	if req.Retries > 0 {
		retries = req.Retries
	}
	agent := req.Agent
	if agent == "" {
		if info := req.toolInfo(); info != nil {
			agent = info.Name
		}
	}
	if agent == "" {
		agent = "structured"
	}

	c.reporter.Report(agent, "generating")
	for attempt := 1; attempt <= retries; attempt++ {
		out, err := c.attempt(ctx, req)
		if err == nil {
			c.reporter.Report(agent, progress.StatusDone)
			return out
		}
		slog.Warn("structured generation attempt failed",
			"agent", agent, "attempt", attempt, "retries", retries, "error", err)
		c.reporter.Report(agent, fmt.Sprintf("attempt %d/%d failed", attempt, retries))
		if ctx.Err() != nil {
			break
		}
	}
	c.reporter.Report(agent, "fallback")
	return c.fallback(req)
}

func (c *Client) fallback(req *Request) any {
	switch {
	case req.Fallback != nil:
		return req.Fallback()
	case req.Schema != nil:
		return req.Schema.Defaults()
	default:
		return ""
	}
}

func (c *Client) attempt(ctx context.Context, req *Request) (out any, err error) {
	defer func() {
		if e := recover(); e != nil {
			out, err = nil, fmt.Errorf("recover from panic: %v", e)
		}
	}()

	text, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Schema == nil {
		v, ok := ExtractJSON(text)
		if req.decode != nil {
			if !ok {
				return nil, ErrNoJSON
			}
			return req.decode(v)
		}
		if ok {
			return v, nil
		}
		return text, nil
	}

	v, ok := ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("%w: %.200s", ErrNoJSON, text)
	}
	validated, err := req.Schema.Validate(v)
	if err != nil {
		return nil, err
	}
	if req.decode != nil {
		return req.decode(validated)
	}
	return validated, nil
}

// call returns the tool arguments of a forced tool call, or the message text.
func (c *Client) call(ctx context.Context, req *Request) (string, error) {
	var opts []model.Option
	if _, ok := c.model.(model.ToolCallingChatModel); ok && c.toolMode && req.toolInfo() != nil {
		info := req.toolInfo()
		opts = append(opts,
			model.WithTools([]*schema.ToolInfo{info}),
			model.WithToolChoice(schema.ToolChoiceForced, info.Name),
		)
	}
	response, err := c.model.Generate(ctx, req.messages(), opts...)
	if err != nil {
		return "", fmt.Errorf("call model failed: %w", err)
	}
	if response == nil {
		return "", ErrEmptyResponse
	}
	if len(response.ToolCalls) > 0 {
		return response.ToolCalls[0].Function.Arguments, nil
	}
	if response.Content == "" {
		return "", ErrEmptyResponse
	}
	return response.Content, nil
}

// Invoke is Generate decoded into T. A value that does not decode counts as a failed attempt.
func Invoke[T any](ctx context.Context, c *Client, req Request, fallback func() T) T {
	if fallback == nil {
		fallback = func() T {
			var zero T
			return zero
		}
	}
	req.Fallback = func() any { return fallback() }
	req.decode = func(v any) (any, error) {
		raw, err := sonic.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
		}
		var out T
		if err := sonic.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
		}
		return out, nil
	}
	if typed, ok := c.Generate(ctx, &req).(T); ok {
		return typed
	}
	return fallback()
}
