// Package jsondiff renders JSON values into a canonical text form and
// computes unified patches between two renderings. The output is for human
// display and audit, not programmatic replay.
package jsondiff

import (
	"encoding/json"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Canonical serializes v as deterministic, stably ordered JSON text with
// two-space indentation. The value is round-tripped through a generic tree
// so that map keys come out sorted regardless of the input type.
func Canonical(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal content: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return "", fmt.Errorf("normalize content: %w", err)
	}
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render content: %w", err)
	}
	return string(out) + "\n", nil
}

// Unified computes a unified patch between two canonical texts. The name is
// used for both the from- and to-file headers. An empty result means the
// texts are identical.
func Unified(name, before, after string) (string, error) {
	patch, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   name,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("compute diff: %w", err)
	}
	return patch, nil
}
