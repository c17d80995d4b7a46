package patch

import (
	"reflect"

	"github.com/tbxark/tripagent/types"
)

// Diff returns the operations that copy every known field of update onto current, in
// field priority order. Unknown fields of update never clear what current has.
func Diff(current, update types.TravelRequest) Patch {
	have := current.ToMap()
	want := update.ToMap()
	var p Patch
	for _, f := range types.Fields() {
		value, ok := want[f.Name]
		if !ok {
			continue
		}
		path := "/" + escapeToken(f.Name)
		old, exists := have[f.Name]
		switch {
		case !exists:
			p = append(p, Operation{Op: OpAdd, Path: path, Value: value})
		case !reflect.DeepEqual(old, value):
			p = append(p, Operation{Op: OpReplace, Path: path, Value: value})
		}
	}
	return p
}
