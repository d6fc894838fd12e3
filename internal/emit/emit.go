// Package emit holds the low-level text-splicing rules shared by the
// transform planner (component D) and the reachability sweeper (component
// F): the whitespace-collapse rule for whole-line removals, and the
// lexical-adjacency guard that keeps two splices from accidentally merging
// into a single token.
package emit

import (
	"github.com/common-build/commonopt/internal/logger"
)

func isSpaceByte(c byte) bool { return c == ' ' || c == '\t' }

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

// CollapseDropSpan extends a dropped span's boundaries to swallow the rest
// of its line(s) when the removed region occupied entire lines on both
// sides, per §4.G: "trailing/leading whitespace around removed regions is
// collapsed to a single newline when the removed region spanned entire
// lines." When only one side qualifies, or neither does, the span is
// returned unchanged and the caller splices in an empty string.
func CollapseDropSpan(text string, span logger.Range) logger.Range {
	start := int(span.Loc.Start)
	end := int(span.End())

	s := start
	for s > 0 && isSpaceByte(text[s-1]) {
		s--
	}
	leftIsLineStart := s == 0 || text[s-1] == '\n'

	e := end
	for e < len(text) && isSpaceByte(text[e]) {
		e++
	}
	rightIsLineEnd := e < len(text) && text[e] == '\n'

	if leftIsLineStart && rightIsLineEnd {
		return logger.Range{Loc: logger.Loc{Start: int32(s)}, Len: int32(e + 1 - s)}
	}
	return span
}

// Join returns the text to splice between left (the last byte already
// written) and right (the next byte that will follow the replacement),
// inserting one space when both are identifier characters so that, e.g.,
// substituting "foo" immediately before "bar" never silently produces the
// single identifier "foobar". It reports a fatal error for the one case
// that a single space cannot repair: two numeric runs merging into a
// different numeric literal.
func Join(before byte, hasBefore bool, replacement string, after byte, hasAfter bool, offset int32) (string, error) {
	if replacement == "" {
		return replacement, nil
	}
	out := replacement
	if hasBefore && isDigitByte(before) && isDigitByte(out[0]) {
		return "", logger.NewError(logger.KindEmit, offset, "substitution would merge adjacent numeric literals")
	}
	if hasBefore && isIdentByte(before) && isIdentByte(out[0]) {
		out = " " + out
	}
	last := out[len(out)-1]
	if hasAfter && isDigitByte(last) && isDigitByte(after) {
		return "", logger.NewError(logger.KindEmit, offset, "substitution would merge adjacent numeric literals")
	}
	if hasAfter && isIdentByte(last) && isIdentByte(after) {
		out = out + " "
	}
	return out, nil
}

// Edit is a single replacement of a span of the original text, used by the
// reachability sweeper to describe declaration/module removals.
type Edit struct {
	Span        logger.Range
	Replacement string
}

// Apply splices a sorted, non-overlapping set of edits into text, copying
// the untouched bytes between them verbatim and applying the identifier
// join guard at every splice boundary.
func Apply(text string, edits []Edit) (string, error) {
	if len(edits) == 0 {
		return text, nil
	}
	var out []byte
	pos := 0
	for _, e := range edits {
		start := int(e.Span.Loc.Start)
		end := int(e.Span.End())
		if start < pos {
			return "", logger.NewError(logger.KindEmit, e.Span.Loc.Start, "overlapping edits")
		}
		out = append(out, text[pos:start]...)

		var before byte
		hasBefore := len(out) > 0
		if hasBefore {
			before = out[len(out)-1]
		}
		var after byte
		hasAfter := end < len(text)
		if hasAfter {
			after = text[end]
		}
		joined, err := Join(before, hasBefore, e.Replacement, after, hasAfter, e.Span.Loc.Start)
		if err != nil {
			return "", err
		}
		out = append(out, joined...)
		pos = end
	}
	out = append(out, text[pos:]...)
	return string(out), nil
}
