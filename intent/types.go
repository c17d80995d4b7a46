package intent

import (
	"context"

	"github.com/tbxark/tripagent/types"
)

type Input struct {
	// UserTurns are every user message of the session, oldest first.
	UserTurns []string
	Current   types.TravelRequest
	Model     string
}

type Result struct {
	NoTravelIntent bool
	Request        types.TravelRequest
	Missing        []types.FieldInfo
	// Message is the decline text, or the confirmation text when nothing is missing.
	Message string
}

func (r *Result) Complete() bool {
	return !r.NoTravelIntent && len(r.Missing) == 0
}

type Resolver interface {
	Resolve(ctx context.Context, in *Input) *Result
}
