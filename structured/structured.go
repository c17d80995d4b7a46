package structured

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type PromptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

// Chain pairs a prompt builder with a schema and a fallback factory.
type Chain[TInput, TOutput any] struct {
	PromptBuilder PromptBuilder[TInput]
	Client        *Client
	Schema        *Schema
	Tool          *schema.ToolInfo
	Agent         string
	Fallback      func() TOutput
}

func NewChain[TInput, TOutput any](
	client *Client,
	promptBuilder PromptBuilder[TInput],
	outputSchema *Schema,
	agent string,
	fallback func() TOutput,
) *Chain[TInput, TOutput] {
	return &Chain[TInput, TOutput]{
		PromptBuilder: promptBuilder,
		Client:        client,
		Schema:        outputSchema,
		Agent:         agent,
		Fallback:      fallback,
	}
}

// NewStructChain reflects the tool parameters from TOutput instead of a Schema. Values are
// decoded but not validated.
func NewStructChain[TInput, TOutput any](
	client *Client,
	promptBuilder PromptBuilder[TInput],
	toolName string,
	toolDesc string,
	fallback func() TOutput,
) (*Chain[TInput, TOutput], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	chain := NewChain(client, promptBuilder, nil, toolName, fallback)
	chain.Tool = toolInfo
	return chain, nil
}

func (s *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) TOutput {
	messages, err := s.PromptBuilder(ctx, input)
	if err != nil {
		slog.Error("build prompt failed", "agent", s.Agent, "error", err)
		if s.Fallback != nil {
			return s.Fallback()
		}
		var zero TOutput
		return zero
	}
	return Invoke(ctx, s.Client, Request{
		Agent:    s.Agent,
		Messages: messages,
		Schema:   s.Schema,
		Tool:     s.Tool,
	}, s.Fallback)
}

func (s *Chain[TInput, TOutput]) GetToolInfo() *schema.ToolInfo {
	if s.Schema == nil {
		return s.Tool
	}
	return s.Schema.ToolInfo()
}
