package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tbxark/tripagent/clarify"
	"github.com/tbxark/tripagent/internal/llmtest"
	"github.com/tbxark/tripagent/intent"
	"github.com/tbxark/tripagent/progress"
	"github.com/tbxark/tripagent/structured"
	"github.com/tbxark/tripagent/types"
)

func TestClampMaxTurns(t *testing.T) {
	require.Equal(t, DefaultMaxTurns, ClampMaxTurns(0))
	require.Equal(t, DefaultMaxTurns, ClampMaxTurns(-3))
	require.Equal(t, 1, ClampMaxTurns(1))
	require.Equal(t, 7, ClampMaxTurns(7))
	require.Equal(t, MaxTurnsCeiling, ClampMaxTurns(50))
	require.Equal(t, 3, NewTripFlow(nil, nil, WithMaxTurns(3)).MaxTurns())
}

func TestFlowAsksForStartDate(t *testing.T) {
	client := structured.NewClient(llmtest.New(llmtest.Reply{
		Args: `{"destination":"青岛","start_date":"","end_date":"","preferences":{"activities":["吃海鲜"]}}`,
	}))
	tracker := progress.NewTracker()
	flow := NewToolBasedTripFlow(client, tracker)
	state := NewConversationState("test")

	resp, err := flow.Invoke(context.Background(), state, "我想去青岛玩3天，喜欢吃海鲜")
	require.NoError(t, err)
	require.Equal(t, KindQuestion, resp.Kind)
	require.Equal(t, types.FieldStartDate, resp.Field)
	require.Equal(t, clarify.Question(types.LanguageZH, types.FieldStartDate), resp.Message)
	require.Equal(t, []State{StateStart, StateIntent, StateClarify, StateHumanInput, StateEnd}, resp.Trace)

	require.Equal(t, "青岛", state.Request.Destination)
	require.Equal(t, []string{"吃海鲜"}, state.Request.ActivityPreferences)
	require.True(t, state.Metadata.NeedsClarification)
	require.Equal(t, types.FieldStartDate, state.Metadata.ClarifyField)
	require.Equal(t, 1, state.Metadata.UserTurns)
	require.Equal(t, StateHumanInput, state.Metadata.LastState)
	require.False(t, state.Done)
	require.Len(t, state.Messages, 2)

	status, ok := tracker.Status(flowAgentName)
	require.True(t, ok)
	require.Equal(t, progress.StatusDone, status)
}

func TestFlowCompleteRequestPlans(t *testing.T) {
	m := llmtest.New(llmtest.Reply{
		Args: `{"destination":"青岛","start_date":"2025-07-01","end_date":"2025-07-03","preferences":{}}`,
	})
	flow := NewToolBasedTripFlow(structured.NewClient(m), nil)
	state := NewConversationState("test")

	resp, err := flow.Invoke(context.Background(), state, "7月1日到3日去青岛")
	require.NoError(t, err)
	require.Equal(t, KindItinerary, resp.Kind)
	require.False(t, resp.Forced)
	require.True(t, resp.Final())
	require.Contains(t, resp.Message, intent.ConfirmMessage(types.LanguageZH))
	require.Contains(t, resp.Message, "# Travel Plan: 青岛")
	require.Equal(t, []State{StateStart, StateIntent, StateItinerary, StateEnd}, resp.Trace)
	require.True(t, state.Done)
	require.True(t, resp.Request.Confirmed)
	require.Equal(t, 1, m.Calls())
}

func TestFlowTurnCeilingForcesItinerary(t *testing.T) {
	m := llmtest.New(llmtest.Reply{
		Args: `{"destination":"青岛","start_date":"","end_date":""}`,
	})
	flow := NewToolBasedTripFlow(structured.NewClient(m), nil, WithMaxTurns(5))
	state := NewConversationState("test")
	ctx := context.Background()

	inputs := []string{"我想去青岛", "不知道", "不清楚", "还没想好", "随便"}
	for i, input := range inputs {
		resp, err := flow.Invoke(ctx, state, input)
		require.NoError(t, err)
		if i < len(inputs)-1 {
			require.Equal(t, KindQuestion, resp.Kind, "turn %d", i+1)
			require.Equal(t, types.FieldStartDate, resp.Field)
			continue
		}
		require.Equal(t, KindItinerary, resp.Kind)
		require.True(t, resp.Forced)
		require.False(t, resp.Request.Confirmed)
		require.Contains(t, resp.Message, "# Travel Plan: 青岛")
		require.NotContains(t, resp.Message, intent.ConfirmMessage(types.LanguageZH))
	}
	require.Equal(t, 5, state.Metadata.UserTurns)
	require.Equal(t, 5, m.Calls())
	require.True(t, state.Done)
}

func TestFlowDeclineKeepsRequest(t *testing.T) {
	resolver := &scriptedResolver{results: []func(*intent.Input) *intent.Result{noTravel()}}
	flow := NewTripFlow(resolver, localClarifier())
	state := NewConversationState("test")
	state.Request = types.TravelRequest{Destination: "东京"}

	resp, err := flow.Invoke(context.Background(), state, "今天天气怎么样")
	require.NoError(t, err)
	require.Equal(t, KindDecline, resp.Kind)
	require.Equal(t, intent.DeclineMessage(types.LanguageZH), resp.Message)
	require.Equal(t, []State{StateStart, StateIntent, StateEnd}, resp.Trace)
	require.Equal(t, "东京", state.Request.Destination)
	require.False(t, resp.Final())
	require.False(t, state.Done)
}

func TestFlowEmptyClarificationReusesResolution(t *testing.T) {
	resolver := &scriptedResolver{results: []func(*intent.Input) *intent.Result{
		resolveTo(types.TravelRequest{Destination: "成都"}),
	}}
	flow := NewTripFlow(resolver, silentClarifier{})
	state := NewConversationState("test")

	resp, err := flow.Invoke(context.Background(), state, "成都")
	require.NoError(t, err)
	require.Equal(t, KindItinerary, resp.Kind)
	require.True(t, resp.Forced)
	require.Equal(t, 1, resolver.Calls())
	require.Equal(t, []State{StateStart, StateIntent, StateClarify, StateIntent, StateItinerary, StateEnd}, resp.Trace)
}

func TestFlowPlannerFailureFallsBackToSummary(t *testing.T) {
	resolver := &scriptedResolver{results: []func(*intent.Input) *intent.Result{
		resolveTo(types.TravelRequest{Destination: "大理", StartDate: "明天", EndDate: "后天"}),
	}}
	flow := NewTripFlow(resolver, localClarifier(), WithPlanner(failingPlanner{}))

	resp, err := flow.Invoke(context.Background(), NewConversationState("test"), "明天去大理，后天回来")
	require.NoError(t, err)
	require.Equal(t, KindItinerary, resp.Kind)
	require.Contains(t, resp.Message, "# Travel Plan: 大理")
}

func TestFlowFailingModelStillAnswers(t *testing.T) {
	client := structured.NewClient(llmtest.Failing())
	flow := NewToolBasedTripFlow(client, nil)

	resp, err := flow.Invoke(context.Background(), NewConversationState("test"), "我想去旅行")
	require.NoError(t, err)
	require.Equal(t, KindDecline, resp.Kind)
}

func TestFlowEnglish(t *testing.T) {
	client := structured.NewClient(llmtest.New(llmtest.Reply{
		Args: `{"destination":"Lisbon","start_date":"","end_date":""}`,
	}))
	flow := NewToolBasedTripFlow(client, nil, WithLanguage(types.LanguageEN))

	resp, err := flow.Invoke(context.Background(), NewConversationState("test"), "Lisbon sounds nice")
	require.NoError(t, err)
	require.Equal(t, clarify.Question(types.LanguageEN, types.FieldStartDate), resp.Message)
}

func TestConversationStateAppend(t *testing.T) {
	state := NewConversationState("m")
	state.Append(nil)
	require.Empty(t, state.Messages)

	flow := NewTripFlow(&scriptedResolver{results: []func(*intent.Input) *intent.Result{noTravel()}}, localClarifier())
	_, err := flow.Invoke(context.Background(), state, "hi")
	require.NoError(t, err)
	_, err = flow.Invoke(context.Background(), state, "hello")
	require.NoError(t, err)
	require.Equal(t, []string{"hi", "hello"}, state.UserTurns())
	require.Equal(t, 2, state.Metadata.UserTurns)
}

func TestFlowForcedWithoutDestinationAsksForMore(t *testing.T) {
	req := types.TravelRequest{ActivityPreferences: []string{"徒步"}}
	resolver := &scriptedResolver{results: []func(*intent.Input) *intent.Result{resolveTo(req)}}
	flow := NewTripFlow(resolver, localClarifier(), WithMaxTurns(1))
	state := NewConversationState("test")

	resp, err := flow.Invoke(context.Background(), state, "想去徒步")
	require.NoError(t, err)
	require.Equal(t, KindItinerary, resp.Kind)
	require.True(t, resp.Forced)
	require.Equal(t, clarify.FollowUp(types.LanguageZH, types.MissingRequired(&req)), resp.Message)
	require.True(t, state.Done)
}
