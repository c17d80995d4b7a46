package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/tripagent/clarify"
	"github.com/tbxark/tripagent/intent"
	"github.com/tbxark/tripagent/itinerary"
	"github.com/tbxark/tripagent/progress"
	"github.com/tbxark/tripagent/structured"
	"github.com/tbxark/tripagent/types"
)

const (
	DefaultMaxTurns = 5
	MaxTurnsCeiling = 10
	maxSteps        = 16
	flowAgentName   = "workflow"
)

// TripFlow runs one user turn through intent resolution, clarification and planning.
type TripFlow struct {
	resolver  intent.Resolver
	clarifier clarify.Clarifier
	planner   itinerary.Planner
	fallback  itinerary.Planner
	reporter  progress.Reporter
	maxTurns  int
	language  types.Language
}

type FlowOption func(*TripFlow)

func WithMaxTurns(n int) FlowOption {
	return func(f *TripFlow) {
		f.maxTurns = ClampMaxTurns(n)
	}
}

func WithPlanner(p itinerary.Planner) FlowOption {
	return func(f *TripFlow) {
		if p != nil {
			f.planner = p
		}
	}
}

func WithFlowReporter(r progress.Reporter) FlowOption {
	return func(f *TripFlow) {
		f.reporter = progress.OrNop(r)
	}
}

func WithLanguage(lang types.Language) FlowOption {
	return func(f *TripFlow) {
		f.language = lang
	}
}

// ClampMaxTurns keeps the turn ceiling within 1..MaxTurnsCeiling, 0 means the default.
func ClampMaxTurns(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxTurns
	case n > MaxTurnsCeiling:
		return MaxTurnsCeiling
	default:
		return n
	}
}

func NewTripFlow(resolver intent.Resolver, clarifier clarify.Clarifier, opts ...FlowOption) *TripFlow {
	f := &TripFlow{
		resolver:  resolver,
		clarifier: clarifier,
		planner:   itinerary.SummaryPlanner{},
		fallback:  itinerary.SummaryPlanner{},
		reporter:  progress.Nop,
		maxTurns:  DefaultMaxTurns,
		language:  types.LanguageZH,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewToolBasedTripFlow wires the model backed resolver and the canned clarifier.
func NewToolBasedTripFlow(client *structured.Client, reporter progress.Reporter, opts ...FlowOption) *TripFlow {
	f := NewTripFlow(nil, nil, append([]FlowOption{WithFlowReporter(reporter)}, opts...)...)
	f.resolver = intent.NewToolBasedResolver(client, f.reporter, f.language)
	f.clarifier = clarify.NewLocalClarifier(f.language, f.reporter)
	return f
}

func (f *TripFlow) MaxTurns() int {
	return f.maxTurns
}

// turn holds what one invocation learned so far.
type turn struct {
	state        *ConversationState
	resolved     *intent.Result
	intentVisits int
	forced       bool
	response     *Response
}

// Invoke runs one turn. The state is mutated in place; on error the caller should discard it.
func (f *TripFlow) Invoke(ctx context.Context, state *ConversationState, userInput string) (*Response, error) {
	state.Append(schema.UserMessage(userInput))
	state.Metadata.UserTurns++

	run := &turn{state: state}
	cur, event := StateStart, EventBegin
	trace := []State{cur}
	for steps := 0; ; steps++ {
		if steps >= maxSteps {
			return nil, fmt.Errorf("%w: %v", ErrTooManySteps, trace)
		}
		next, err := Transition(cur, event)
		if err != nil {
			return nil, err
		}
		slog.Debug("workflow transition", "from", cur, "event", event, "to", next)
		cur = next
		trace = append(trace, cur)
		if cur == StateEnd {
			break
		}
		f.reporter.Report(flowAgentName, cur.String())
		event = f.step(ctx, cur, run)
	}

	if run.response == nil {
		return nil, fmt.Errorf("workflow ended without a response: %v", trace)
	}
	resp := run.response
	resp.Trace = trace
	resp.Request = state.Request.Clone()
	state.Metadata.LastState = trace[len(trace)-2]
	state.Append(schema.AssistantMessage(resp.Message, nil))
	f.reporter.Report(flowAgentName, progress.StatusDone)
	return resp, nil
}

func (f *TripFlow) step(ctx context.Context, s State, run *turn) Event {
	switch s {
	case StateIntent:
		return f.resolveIntent(ctx, run)
	case StateClarify:
		return f.clarify(ctx, run)
	case StateHumanInput:
		return EventSuspend
	case StateItinerary:
		return f.plan(ctx, run)
	default:
		return EventBegin
	}
}

func (f *TripFlow) resolveIntent(ctx context.Context, run *turn) Event {
	state := run.state
	run.intentVisits++
	if run.resolved == nil {
		run.resolved = f.resolver.Resolve(ctx, &intent.Input{
			UserTurns: state.UserTurns(),
			Current:   state.Request.Clone(),
			Model:     state.Metadata.Model,
		})
	}
	res := run.resolved
	atLimit := state.Metadata.UserTurns >= f.maxTurns
	if res.NoTravelIntent && !atLimit {
		run.response = &Response{Kind: KindDecline, Message: res.Message}
		return EventNoTravelIntent
	}

	state.Request = res.Request
	if state.Request.Confirm() {
		return EventComplete
	}
	if atLimit {
		slog.Info("turn limit reached, planning with partial request",
			"turns", state.Metadata.UserTurns, "max_turns", f.maxTurns)
		run.forced = true
		return EventTurnLimit
	}
	if run.intentVisits > 1 {
		slog.Warn("clarifier found nothing to ask for an incomplete request", "turns", state.Metadata.UserTurns)
		run.forced = true
		return EventTurnLimit
	}
	return EventIncomplete
}

func (f *TripFlow) clarify(ctx context.Context, run *turn) Event {
	state := run.state
	res := f.clarifier.Clarify(ctx, &state.Request)
	if !res.Needed {
		state.Metadata.NeedsClarification = false
		state.Metadata.ClarifyField = ""
		return EventNothingMissing
	}
	state.Metadata.NeedsClarification = true
	state.Metadata.ClarifyField = res.Field
	run.response = &Response{Kind: KindQuestion, Message: res.Question, Field: res.Field}
	return EventFieldSelected
}

func (f *TripFlow) plan(ctx context.Context, run *turn) Event {
	state := run.state
	f.reporter.Report(itinerary.AgentName, "planning")
	if err := itinerary.ValidateRequest(&state.Request); err != nil {
		slog.Info("cannot plan without a destination", "turns", state.Metadata.UserTurns)
		f.reporter.Report(itinerary.AgentName, progress.StatusError)
		state.Metadata.NeedsClarification = false
		state.Metadata.ClarifyField = ""
		state.Done = true
		run.response = &Response{
			Kind:    KindItinerary,
			Message: clarify.FollowUp(f.language, types.MissingRequired(&state.Request)),
			Forced:  run.forced,
		}
		return EventDelivered
	}
	text, err := f.planner.Plan(ctx, &state.Request)
	if err != nil {
		slog.Warn("itinerary planner failed, using summary", "error", err)
		f.reporter.Report(itinerary.AgentName, progress.StatusError)
		text, _ = f.fallback.Plan(ctx, &state.Request)
	} else {
		f.reporter.Report(itinerary.AgentName, progress.StatusDone)
	}
	if state.Request.Confirmed {
		text = intent.ConfirmMessage(f.language) + "\n\n" + text
	}
	state.Metadata.NeedsClarification = false
	state.Metadata.ClarifyField = ""
	state.Done = true
	run.response = &Response{Kind: KindItinerary, Message: text, Forced: run.forced}
	return EventDelivered
}
