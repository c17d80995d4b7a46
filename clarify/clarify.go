package clarify

import (
	"context"

	"github.com/tbxark/tripagent/progress"
	"github.com/tbxark/tripagent/types"
)

const AgentName = "clarify_agent"

type Result struct {
	Needed   bool   `json:"needed"`
	Field    string `json:"field,omitempty"`
	Question string `json:"question,omitempty"`
}

type Clarifier interface {
	Clarify(ctx context.Context, req *types.TravelRequest) *Result
}

// LocalClarifier asks about the first unknown field in FieldPriority with a canned question.
type LocalClarifier struct {
	Language types.Language
	Reporter progress.Reporter
}

func NewLocalClarifier(lang types.Language, reporter progress.Reporter) *LocalClarifier {
	return &LocalClarifier{Language: lang, Reporter: progress.OrNop(reporter)}
}

func (c *LocalClarifier) Clarify(ctx context.Context, req *types.TravelRequest) *Result {
	reporter := progress.OrNop(c.Reporter)
	missing := types.Missing(req)
	if len(missing) == 0 {
		reporter.Report(AgentName, "nothing to clarify")
		return &Result{Needed: false}
	}
	field := missing[0].Name
	reporter.Report(AgentName, "asking "+field)
	return &Result{
		Needed:   true,
		Field:    field,
		Question: Question(c.Language, field),
	}
}
