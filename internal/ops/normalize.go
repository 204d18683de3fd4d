package ops

import (
	"regexp"
	"strings"

	"github.com/bnomei/nereid/internal/model"
)

var mermaidIDPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// validateMermaidIDSyntax checks raw against `^[A-Za-z0-9_]+$`.
func validateMermaidIDSyntax(raw string) error {
	if raw == "" {
		return &InvalidFlowNodeMermaidIDError{ID: raw, Reason: "must not be empty"}
	}
	if !mermaidIDPattern.MatchString(raw) {
		return &InvalidFlowNodeMermaidIDError{ID: raw, Reason: "must match [A-Za-z0-9_]+"}
	}
	return nil
}

// normalizeArrow trims raw and drops it to nil when it equals the canonical
// arrow for kind, per spec.md §4.1's AddMessage contract.
func normalizeArrow(kind model.SequenceMessageKind, raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" || trimmed == kind.CanonicalArrow() {
		return nil
	}
	return &trimmed
}

// normalizeConnector trims raw; a `<` with no `>` has the `<` removed and a
// `>` appended after any trailing `o`/`x` decoration, then the result is
// dropped to nil when it equals the default connector "-->".
func normalizeConnector(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	if strings.Contains(trimmed, "<") && !strings.Contains(trimmed, ">") {
		trimmed = strings.Replace(trimmed, "<", "", 1)
		if n := len(trimmed); n > 0 && (trimmed[n-1] == 'o' || trimmed[n-1] == 'x') {
			trimmed = trimmed[:n-1] + ">" + trimmed[n-1:]
		} else {
			trimmed += ">"
		}
	}
	if trimmed == "-->" {
		return nil
	}
	return &trimmed
}
