package patch

import "strings"

// Allowlist holds JSON pointer patterns. A "*" or "-" segment matches any single segment.
type Allowlist []string

func (a Allowlist) Allows(path string) bool {
	if len(a) == 0 {
		return true
	}
	segments := strings.Split(path, "/")
	for _, pattern := range a {
		if matchSegments(strings.Split(pattern, "/"), segments) {
			return true
		}
	}
	return false
}

// Filter splits p into the operations a allows and the ones it does not.
func (a Allowlist) Filter(p Patch) (kept, dropped Patch) {
	for _, op := range p {
		if a.Allows(op.Path) {
			kept = append(kept, op)
		} else {
			dropped = append(dropped, op)
		}
	}
	return kept, dropped
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, seg := range pattern {
		if seg == "*" || seg == "-" {
			continue
		}
		if seg != segments[i] {
			return false
		}
	}
	return true
}
