// Package fastpath is the fast-path gate (component H): a cheap
// pre-check that lets the entry point skip the whole transform+sweep
// pipeline and return the input unchanged when every config leaf is truthy
// and the source contains no define-inline marker.
package fastpath

import "github.com/common-build/commonopt/internal/configval"

// inlineDefineMarkers mirrors internal/macro's "@common:"/legacy "@swc:"
// synonym handling: either prefix marks a define-inline the fast path
// cannot emulate by doing nothing.
var inlineDefineMarkers = [...]string{"@common:define-inline", "@swc:define-inline"}

// Eligible reports whether the fast path may activate: every leaf of the
// flattened config is truthy (so every condition built only from bare
// paths, && and || evaluates to true; conditions are not inspected, and one
// using ! or a string comparison can still evaluate to false), and the
// source contains no
// define-inline marker — the one substitution the fast path cannot
// emulate by doing nothing, per §4.H.
func Eligible(source string, cfg *configval.Value) bool {
	if containsMarker(source) {
		return false
	}
	return AllTruthy(cfg)
}

// AllTruthy reports whether every leaf value in cfg's flattened tree is
// truthy by the §3 rule. A nil or JSON-null config flattens to a single
// falsy leaf, so it is not all-truthy.
func AllTruthy(cfg *configval.Value) bool {
	for _, leaf := range configval.Flatten(cfg) {
		if !leaf.Truthy() {
			return false
		}
	}
	return true
}

// containsMarker is the "simple textual scan" §4.H calls for — cheaper
// than a full comment-aware lex, and sufficient because neither marker
// string legitimately occurs outside a `/* @common:define-inline ... */`
// (or legacy `@swc:define-inline`) comment in real source.
func containsMarker(source string) bool {
	for _, marker := range inlineDefineMarkers {
		if indexOf(source, marker) >= 0 {
			return true
		}
	}
	return false
}

func indexOf(s, substr string) int {
	n, m := len(s), len(substr)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == substr {
			return i
		}
	}
	return -1
}
