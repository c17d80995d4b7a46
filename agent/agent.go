package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

var ErrNoUserMessage = errors.New("no user message in input")

var _ adk.Agent = (*Agent)(nil)

// Agent exposes a Conversation as an adk agent. Each run answers the latest user message
// of the input; earlier messages are ignored because the session state already holds them.
type Agent struct {
	name         string
	description  string
	conversation *Conversation
}

func NewAgent(name, description string, conversation *Conversation) *Agent {
	return &Agent{name: name, description: description, conversation: conversation}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer gen.Close()
		gen.Send(a.turn(ctx, input))
	}()
	return iter
}

// turn never panics; a panic in the flow becomes an error event.
func (a *Agent) turn(ctx context.Context, input *adk.AgentInput) (event *adk.AgentEvent) {
	defer func() {
		if e := recover(); e != nil {
			event = &adk.AgentEvent{AgentName: a.name, Err: fmt.Errorf("recover from panic: %v", e)}
		}
	}()
	var messages []adk.Message
	if input != nil {
		messages = input.Messages
	}
	text, ok := latestUserText(messages)
	if !ok {
		return &adk.AgentEvent{AgentName: a.name, Err: ErrNoUserMessage}
	}
	resp, err := a.conversation.Chat(ctx, text)
	if err != nil {
		return &adk.AgentEvent{AgentName: a.name, Err: err}
	}
	event = adk.EventFromMessage(schema.AssistantMessage(resp.Message, nil), nil, schema.Assistant, "")
	event.AgentName = a.name
	event.Output.CustomizedOutput = resp
	return event
}

func latestUserText(messages []adk.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if m := messages[i]; m != nil && m.Role == schema.User {
			return m.Content, true
		}
	}
	return "", false
}
