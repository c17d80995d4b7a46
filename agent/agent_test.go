package agent

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"github.com/tbxark/tripagent/internal/llmtest"
	"github.com/tbxark/tripagent/structured"
	"github.com/tbxark/tripagent/types"
)

func TestAgentRunsThroughRunner(t *testing.T) {
	client := structured.NewClient(llmtest.New(llmtest.Reply{
		Args: `{"destination":"青岛","start_date":"","end_date":""}`,
	}))
	flow := NewToolBasedTripFlow(client, nil)
	conv := NewConversation(flow, NewMemoryStateReadWriter("test"), nil)
	tripAgent := NewAgent("TripPlanner", "plans trips", conv)
	require.Equal(t, "TripPlanner", tripAgent.Name(context.Background()))

	ctx := WithStateKey(context.Background(), "runner")
	runner := adk.NewRunner(ctx, adk.RunnerConfig{Agent: tripAgent})
	iter := runner.Run(ctx, []*schema.Message{schema.UserMessage("我想去青岛")})

	var events []*adk.AgentEvent
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		events = append(events, event)
	}
	require.NotEmpty(t, events)
	require.NoError(t, events[0].Err)
	msg, err := events[0].Output.MessageOutput.GetMessage()
	require.NoError(t, err)
	require.Equal(t, schema.Assistant, msg.Role)

	resp, ok := events[0].Output.CustomizedOutput.(*Response)
	require.True(t, ok)
	require.Equal(t, KindQuestion, resp.Kind)
	require.Equal(t, types.FieldStartDate, resp.Field)
	require.Equal(t, resp.Message, msg.Content)
}

func TestAgentNeedsUserMessage(t *testing.T) {
	conv := NewConversation(NewTripFlow(nil, nil), NewMemoryStateReadWriter("test"), nil)
	tripAgent := NewAgent("TripPlanner", "plans trips", conv)
	iter := tripAgent.Run(context.Background(), &adk.AgentInput{
		Messages: []*schema.Message{schema.SystemMessage("system only")},
	})
	event, ok := iter.Next()
	require.True(t, ok)
	require.ErrorIs(t, event.Err, ErrNoUserMessage)
	_, ok = iter.Next()
	require.False(t, ok)
}
