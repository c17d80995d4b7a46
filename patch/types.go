// Package patch merges travel requests through RFC 6902 JSON patches.
package patch

import "strings"

type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
)

type Operation struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Patch is an ordered list of operations over the JSON form of a TravelRequest.
type Patch []Operation

func (p Patch) String() string {
	parts := make([]string, 0, len(p))
	for _, op := range p {
		parts = append(parts, string(op.Op)+" "+op.Path)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
