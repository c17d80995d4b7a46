// Package llmtest provides scripted chat models for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var ErrUnavailable = errors.New("model unavailable")

// Reply is one scripted model answer. Args produces a tool call, Content a text answer.
type Reply struct {
	Content string
	Args    string
	Err     error
	Panic   bool
}

// ScriptedModel answers with Replies in order and repeats the last one when exhausted.
type ScriptedModel struct {
	mu        sync.Mutex
	Replies   []Reply
	calls     int
	toolCalls int
	inputs    [][]*schema.Message
}

var _ model.ToolCallingChatModel = (*ScriptedModel)(nil)

func New(replies ...Reply) *ScriptedModel {
	return &ScriptedModel{Replies: replies}
}

// Failing returns a model whose every call fails.
func Failing() *ScriptedModel {
	return New(Reply{Err: ErrUnavailable})
}

func (m *ScriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	options := model.GetCommonOptions(nil, opts...)
	if len(options.Tools) > 0 {
		m.toolCalls++
	}
	m.inputs = append(m.inputs, input)
	if len(m.Replies) == 0 {
		m.calls++
		m.mu.Unlock()
		return nil, ErrUnavailable
	}
	idx := m.calls
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	}
	m.calls++
	reply := m.Replies[idx]
	m.mu.Unlock()

	if reply.Panic {
		panic("scripted panic")
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	msg := &schema.Message{Role: schema.Assistant, Content: reply.Content}
	if reply.Args != "" {
		name := "output"
		if len(options.Tools) > 0 {
			name = options.Tools[0].Name
		}
		msg.ToolCalls = []schema.ToolCall{{
			ID:       "call_1",
			Function: schema.FunctionCall{Name: name, Arguments: reply.Args},
		}}
	}
	return msg, nil
}

func (m *ScriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *ScriptedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// Calls is the number of Generate invocations so far.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ToolCalls is the number of invocations that carried tool definitions.
func (m *ScriptedModel) ToolCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toolCalls
}

// LastInput returns the messages of the most recent call.
func (m *ScriptedModel) LastInput() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return nil
	}
	return m.inputs[len(m.inputs)-1]
}

// TextModel hides tool support so callers take the free-text path.
type TextModel struct {
	Scripted *ScriptedModel
}

var _ model.BaseChatModel = TextModel{}

func Text(replies ...Reply) TextModel {
	return TextModel{Scripted: New(replies...)}
}

func (m TextModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return m.Scripted.Generate(ctx, input, opts...)
}

func (m TextModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return m.Scripted.Stream(ctx, input, opts...)
}
