package patch

import (
	"fmt"
	"log/slog"

	"github.com/tbxark/tripagent/types"
)

// RequestPaths are the TravelRequest pointers an extraction may write. Confirmed is not one
// of them.
func RequestPaths() Allowlist {
	paths := make(Allowlist, 0, len(types.FieldPriority)*2)
	for _, name := range types.FieldPriority {
		paths = append(paths, "/"+name)
		if f, ok := types.LookupField(name); ok && f.Kind == types.KindList {
			paths = append(paths, "/"+name+"/*")
		}
	}
	return paths
}

// MergeRequest copies every known field of update onto current. The confirmed flag of
// current is kept.
func MergeRequest(current, update types.TravelRequest) (types.TravelRequest, error) {
	p, dropped := RequestPaths().Filter(Diff(current, update))
	if len(dropped) > 0 {
		slog.Debug("dropped patch operations", "ops", dropped.String())
	}
	merged, err := Apply(current.Clone(), p)
	if err != nil {
		return current, fmt.Errorf("merge request: %w", err)
	}
	merged.Confirmed = current.Confirmed
	return merged, nil
}
