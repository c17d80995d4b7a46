package patch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Apply runs p against the JSON form of current and decodes the result back into T.
// Removing a missing path is a no-op and adding creates missing parents.
func Apply[T any](current T, p Patch) (T, error) {
	if len(p) == 0 {
		return current, nil
	}
	doc, err := sonic.Marshal(current)
	if err != nil {
		return current, fmt.Errorf("encode document: %w", err)
	}
	raw, err := sonic.Marshal(p.Normalize(doc))
	if err != nil {
		return current, fmt.Errorf("encode patch: %w", err)
	}
	decoded, err := jsonpatch.DecodePatch(raw)
	if err != nil {
		return current, fmt.Errorf("decode patch: %w", err)
	}
	options := jsonpatch.NewApplyOptions()
	options.AllowMissingPathOnRemove = true
	options.EnsurePathExistsOnAdd = true
	patched, err := decoded.ApplyWithOptions(doc, options)
	if err != nil {
		return current, fmt.Errorf("apply patch %s: %w", p, err)
	}
	var out T
	if err := sonic.Unmarshal(patched, &out); err != nil {
		return current, fmt.Errorf("patched document does not decode: %w", err)
	}
	return out, nil
}

// Normalize turns a replace of a path that doc lacks into an add.
func (p Patch) Normalize(doc []byte) Patch {
	out := make(Patch, 0, len(p))
	for _, op := range p {
		if op.Op == OpReplace && !pathExists(doc, op.Path) {
			op.Op = OpAdd
		}
		out = append(out, op)
	}
	return out
}

func pathExists(doc []byte, pointer string) bool {
	if pointer == "" {
		return true
	}
	if !strings.HasPrefix(pointer, "/") {
		return false
	}
	tokens := strings.Split(pointer[1:], "/")
	keys := make([]any, 0, len(tokens))
	for _, token := range tokens {
		token = unescapeToken(token)
		if i, err := strconv.Atoi(token); err == nil {
			keys = append(keys, i)
		} else {
			keys = append(keys, token)
		}
	}
	node, err := sonic.Get(doc, keys...)
	return err == nil && node.Exists()
}

func escapeToken(token string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
}

func unescapeToken(token string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(token)
}
