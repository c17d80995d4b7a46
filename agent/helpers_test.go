package agent

import (
	"context"
	"sync"

	"github.com/tbxark/tripagent/clarify"
	"github.com/tbxark/tripagent/intent"
	"github.com/tbxark/tripagent/types"
)

// scriptedResolver returns results in order and repeats the last one.
type scriptedResolver struct {
	mu      sync.Mutex
	results []func(in *intent.Input) *intent.Result
	calls   int
}

func (r *scriptedResolver) Resolve(ctx context.Context, in *intent.Input) *intent.Result {
	r.mu.Lock()
	idx := r.calls
	if idx >= len(r.results) {
		idx = len(r.results) - 1
	}
	r.calls++
	fn := r.results[idx]
	r.mu.Unlock()
	return fn(in)
}

func (r *scriptedResolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func resolveTo(req types.TravelRequest) func(in *intent.Input) *intent.Result {
	return func(in *intent.Input) *intent.Result {
		return &intent.Result{Request: req.Clone(), Missing: types.MissingRequired(&req)}
	}
}

func noTravel() func(in *intent.Input) *intent.Result {
	return func(in *intent.Input) *intent.Result {
		return &intent.Result{NoTravelIntent: true, Request: in.Current, Message: intent.DeclineMessage(types.LanguageZH)}
	}
}

// silentClarifier never finds anything to ask.
type silentClarifier struct{}

func (silentClarifier) Clarify(context.Context, *types.TravelRequest) *clarify.Result {
	return &clarify.Result{}
}

type failingPlanner struct{}

func (failingPlanner) Plan(context.Context, *types.TravelRequest) (string, error) {
	return "", context.DeadlineExceeded
}

func localClarifier() clarify.Clarifier {
	return clarify.NewLocalClarifier(types.LanguageZH, nil)
}
