// Package macro is the macro lexer (component B): it locates
// "@common:if" / "@common:endif" / "@common:define-inline" directives
// inside block comments, pairs if/endif markers with a pushdown automaton,
// and extracts each directive's attribute payload. The legacy "@swc:"
// prefix is accepted as a byte-for-byte synonym of "@common:".
package macro

import (
	"strings"

	"github.com/common-build/commonopt/internal/jsscan"
	"github.com/common-build/commonopt/internal/logger"
)

type Kind uint8

const (
	IfBlock Kind = iota
	InlineDefine
)

// AttributeMap holds the best-effort parsed key="value" pairs from a
// directive's bracketed payload, plus the raw interior text. Parsing never
// fails outright — a malformed payload simply yields an incomplete Values
// map, and it is the condition evaluator (component C) or the planner that
// turns that into a soft Unknown/unresolved outcome, not the lexer.
type AttributeMap struct {
	Values map[string]string
	Raw    string
}

func (a AttributeMap) Get(name string) (string, bool) {
	v, ok := a.Values[name]
	return v, ok
}

// Region is a MacroRegion: a contiguous span bounded by a pair of markers
// (IfBlock) or a marker and the expression it annotates (InlineDefine).
type Region struct {
	Kind      Kind
	Attrs     AttributeMap
	OuterSpan logger.Range
	InnerSpan logger.Range // only meaningful for IfBlock
	Parent    *Region
	Depth     int
	Children  []*Region
}

const (
	prefixCommon = "@common:"
	prefixLegacy = "@swc:"
)

// Parse scans tok for directive comments and returns the top-level regions
// (Parent == nil); descendants are reachable through Region.Children. An
// unbalanced if/endif pair is the only fatal condition this component
// raises — everything else about a malformed payload is left to later
// stages to treat as a soft Unknown.
func Parse(text string, toks []jsscan.Token) ([]*Region, error) {
	var stack []*Region
	var top []*Region

	appendChild := func(r *Region) {
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			r.Parent = parent
			parent.Children = append(parent.Children, r)
		} else {
			top = append(top, r)
		}
	}

	for i, tok := range toks {
		if tok.Kind != jsscan.BlockComment {
			continue
		}
		name, attrs, ok := parseDirectiveComment(tok.Text)
		if !ok {
			continue
		}
		switch name {
		case "if":
			r := &Region{
				Kind:      IfBlock,
				Attrs:     attrs,
				OuterSpan: tok.Range,
				Depth:     len(stack),
			}
			if len(stack) > 0 {
				r.Parent = stack[len(stack)-1]
			}
			stack = append(stack, r)

		case "endif":
			if len(stack) == 0 {
				return nil, logger.NewError(logger.KindLex, tok.Range.Loc.Start, "unmatched @common:endif with no open @common:if")
			}
			r := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			r.InnerSpan = logger.Range{
				Loc: logger.Loc{Start: r.OuterSpan.Loc.Start + r.OuterSpan.Len},
				Len: tok.Range.Loc.Start - (r.OuterSpan.Loc.Start + r.OuterSpan.Len),
			}
			r.OuterSpan.Len = tok.Range.End() - r.OuterSpan.Loc.Start
			if r.Parent != nil {
				r.Parent.Children = append(r.Parent.Children, r)
			} else {
				top = append(top, r)
			}

		case "define-inline":
			exprEnd := findExpressionEnd(toks, i+1)
			start := tok.Range.Loc.Start
			end := exprEnd
			if end < tok.Range.End() {
				end = tok.Range.End()
			}
			r := &Region{
				Kind:      InlineDefine,
				Attrs:     attrs,
				OuterSpan: logger.Range{Loc: logger.Loc{Start: start}, Len: end - start},
			}
			appendChild(r)
		}
	}

	if len(stack) > 0 {
		unclosed := stack[0]
		return nil, logger.NewError(logger.KindLex, unclosed.OuterSpan.Loc.Start, "unterminated @common:if with no matching @common:endif")
	}

	return top, nil
}

// parseDirectiveComment inspects one block comment's raw text (including
// its "/*"..."*/" delimiters) for a recognized directive. ok is false for
// any comment that is not one of the three recognized forms, in which case
// it is left entirely alone by the rest of the pipeline.
func parseDirectiveComment(commentText string) (name string, attrs AttributeMap, ok bool) {
	body := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(commentText, "/*"), "*/"))
	body = strings.TrimSpace(body)

	var rest string
	switch {
	case strings.HasPrefix(body, prefixCommon):
		rest = body[len(prefixCommon):]
	case strings.HasPrefix(body, prefixLegacy):
		rest = body[len(prefixLegacy):]
	default:
		return "", AttributeMap{}, false
	}

	for _, candidate := range []string{"define-inline", "endif", "if"} {
		if strings.HasPrefix(rest, candidate) {
			after := rest[len(candidate):]
			if after != "" && !isBoundary(after[0]) {
				continue
			}
			return candidate, parseAttributes(after), true
		}
	}
	return "", AttributeMap{}, false
}

func isBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '['
}

// parseAttributes extracts the bracketed "key=\"value\" ..." payload
// following a directive word. The raw interior is preserved verbatim; the
// parsed Values map is filled in on a best-effort basis and may be
// incomplete if the payload is malformed.
func parseAttributes(after string) AttributeMap {
	open := strings.IndexByte(after, '[')
	if open < 0 {
		return AttributeMap{Values: map[string]string{}}
	}
	i := open + 1
	depthQuote := byte(0)
	for i < len(after) {
		c := after[i]
		if depthQuote != 0 {
			if c == '\\' && i+1 < len(after) {
				i += 2
				continue
			}
			if c == depthQuote {
				depthQuote = 0
			}
			i++
			continue
		}
		if c == '\'' || c == '"' {
			depthQuote = c
			i++
			continue
		}
		if c == ']' {
			break
		}
		i++
	}
	raw := after[open+1 : min(i, len(after))]

	values := map[string]string{}
	j := 0
	for j < len(raw) {
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		keyStart := j
		for j < len(raw) && isIdentByte(raw[j]) {
			j++
		}
		if j == keyStart {
			break
		}
		key := raw[keyStart:j]
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		if j >= len(raw) || raw[j] != '=' {
			break
		}
		j++
		for j < len(raw) && isSpace(raw[j]) {
			j++
		}
		if j >= len(raw) || (raw[j] != '\'' && raw[j] != '"') {
			break
		}
		quote := raw[j]
		j++
		valStart := j
		var sb strings.Builder
		for j < len(raw) && raw[j] != quote {
			if raw[j] == '\\' && j+1 < len(raw) {
				sb.WriteByte(raw[j+1])
				j += 2
				continue
			}
			sb.WriteByte(raw[j])
			j++
		}
		_ = valStart
		if j >= len(raw) {
			break
		}
		j++ // closing quote
		values[key] = sb.String()
	}

	return AttributeMap{Values: values, Raw: raw}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isIdentByte(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// findExpressionEnd scans forward from toks[from:] for the span of "the
// immediately following expression": the smallest run of tokens, balanced
// over (), [] and template substitutions, that ends at the first
// unbalanced closer or a ';'/',' seen at depth 0. This covers the common
// cases directly (a literal, a dotted call chain) without needing a full
// expression grammar, which nothing downstream requires.
func findExpressionEnd(toks []jsscan.Token, from int) int32 {
	depth := 0
	end := int32(-1)
	started := false
	for i := from; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == jsscan.EOF {
			break
		}
		if t.Kind == jsscan.Punct {
			switch t.Text {
			case "(", "[", "{":
				depth++
				end = t.Range.End()
				started = true
				continue
			case ")", "]", "}":
				if depth == 0 {
					if started {
						return end
					}
					return t.Range.Loc.Start
				}
				depth--
				end = t.Range.End()
				started = true
				continue
			case ";", ",":
				if depth == 0 {
					if started {
						return end
					}
					return t.Range.Loc.Start
				}
			}
		}
		end = t.Range.End()
		started = true
	}
	if started {
		return end
	}
	return from2(toks, from)
}

func from2(toks []jsscan.Token, from int) int32 {
	if from < len(toks) {
		return toks[from].Range.Loc.Start
	}
	if len(toks) > 0 {
		return toks[len(toks)-1].Range.End()
	}
	return 0
}
