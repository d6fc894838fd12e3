// Package planner is the transform planner (component D). It walks the
// macro region tree bottom-up — by construction, since rendering a parent
// always recurses into its children first — evaluating each IfBlock's
// condition and resolving each InlineDefine's substitution, and produces
// the rewritten source text directly.
package planner

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/common-build/commonopt/internal/condexpr"
	"github.com/common-build/commonopt/internal/configval"
	"github.com/common-build/commonopt/internal/emit"
	"github.com/common-build/commonopt/internal/jsscan"
	"github.com/common-build/commonopt/internal/logger"
	"github.com/common-build/commonopt/internal/macro"
)

// Transform parses the macro regions in text and renders the fully
// substituted output: IfBlocks resolved to their kept body or dropped
// entirely, InlineDefines resolved to a literal or left unchanged.
func Transform(text string, toks []jsscan.Token, cfg *configval.Value) (string, error) {
	regions, err := macro.Parse(text, toks)
	if err != nil {
		return "", err
	}
	full := logger.Range{Loc: logger.Loc{Start: 0}, Len: int32(len(text))}
	return render(text, full, regions, cfg)
}

type plannedChild struct {
	span logger.Range
	text string
}

func render(text string, span logger.Range, children []*macro.Region, cfg *configval.Value) (string, error) {
	sorted := make([]*macro.Region, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OuterSpan.Loc.Start < sorted[j].OuterSpan.Loc.Start })

	var sb strings.Builder
	pos := span.Loc.Start

	for _, ch := range sorted {
		rc, err := planChild(text, ch, cfg)
		if err != nil {
			return "", err
		}
		s := rc.span
		if s.Loc.Start < pos {
			shrink := pos - s.Loc.Start
			s.Loc.Start = pos
			s.Len -= shrink
			if s.Len < 0 {
				s.Len = 0
			}
		}
		if s.Loc.Start > pos {
			sb.WriteString(text[pos:s.Loc.Start])
		}
		if rc.text != "" {
			cur := sb.String()
			var before byte
			hasBefore := len(cur) > 0
			if hasBefore {
				before = cur[len(cur)-1]
			}
			var after byte
			hasAfter := int(s.End()) < len(text)
			if hasAfter {
				after = text[s.End()]
			}
			joined, err := emit.Join(before, hasBefore, rc.text, after, hasAfter, s.Loc.Start)
			if err != nil {
				return "", err
			}
			sb.WriteString(joined)
		}
		if s.End() > pos {
			pos = s.End()
		}
	}
	if pos < span.End() {
		sb.WriteString(text[pos:span.End()])
	}
	return sb.String(), nil
}

func planChild(text string, r *macro.Region, cfg *configval.Value) (plannedChild, error) {
	switch r.Kind {
	case macro.IfBlock:
		cond, _ := r.Attrs.Get("condition")
		result := condexpr.EvalString(cond, cfg)
		if result == condexpr.False {
			span := extendForPropertyHole(text, r.OuterSpan)
			span = emit.CollapseDropSpan(text, span)
			return plannedChild{span: span, text: ""}, nil
		}
		inner, err := render(text, r.InnerSpan, r.Children, cfg)
		if err != nil {
			return plannedChild{}, err
		}
		return plannedChild{span: r.OuterSpan, text: inner}, nil

	case macro.InlineDefine:
		replacement, matched := resolveInline(r.Attrs, cfg)
		if !matched {
			return plannedChild{
				span: r.OuterSpan,
				text: text[r.OuterSpan.Loc.Start:r.OuterSpan.End()],
			}, nil
		}
		return plannedChild{span: r.OuterSpan, text: replacement}, nil

	default:
		return plannedChild{}, logger.NewError(logger.KindEval, r.OuterSpan.Loc.Start, "unknown macro region kind")
	}
}

// resolveInline implements §4.D's InlineDefine disposition: resolve
// "value" as a config path first; fall back to the raw "default" source
// fragment; otherwise matched is false and the caller leaves the original
// expression untouched.
func resolveInline(attrs macro.AttributeMap, cfg *configval.Value) (replacement string, matched bool) {
	if valuePath, ok := attrs.Get("value"); ok && valuePath != "" {
		segs := strings.Split(valuePath, ".")
		if v, found := cfg.Lookup(segs); found {
			return renderConfigValue(v), true
		}
	}
	if def, ok := attrs.Get("default"); ok {
		return def, true
	}
	return "", false
}

// renderConfigValue implements the value-emission rule: a string that
// already parses as a JS literal token is emitted verbatim; any other
// string, and any non-string value, is emitted as its JSON serialization.
func renderConfigValue(v *configval.Value) string {
	if s, ok := v.AsString(); ok {
		if looksLikeLiteral(s) {
			return s
		}
		b, _ := json.Marshal(s)
		return string(b)
	}
	b, err := json.Marshal(v.Raw())
	if err != nil {
		return "null"
	}
	return string(b)
}

func looksLikeLiteral(s string) bool {
	t := strings.TrimSpace(s)
	if t == "true" || t == "false" || t == "null" {
		return true
	}
	if len(t) >= 2 {
		if (t[0] == '"' && t[len(t)-1] == '"') || (t[0] == '\'' && t[len(t)-1] == '\'') {
			return true
		}
	}
	if _, err := strconv.ParseFloat(t, 64); err == nil && t != "" {
		return true
	}
	return false
}

// extendForPropertyHole implements the registry-object special case in
// §4.D: when a dropped IfBlock is the entire value of an object property
// ("key: <guarded-value>,"), the key and its colon (and one adjacent
// comma) are removed along with it, rather than leaving a dangling
// "key: ,".
func extendForPropertyHole(text string, span logger.Range) logger.Range {
	start := int(span.Loc.Start)
	end := int(span.End())

	i := start
	for i > 0 && isSpace(text[i-1]) {
		i--
	}
	if i == 0 || text[i-1] != ':' {
		return span
	}
	i--
	for i > 0 && isSpace(text[i-1]) {
		i--
	}

	keyEnd := i
	var keyStart int
	if keyEnd > 0 && (text[keyEnd-1] == '"' || text[keyEnd-1] == '\'') {
		quote := text[keyEnd-1]
		j := keyEnd - 2
		for j >= 0 && text[j] != quote {
			j--
		}
		if j < 0 {
			return span
		}
		keyStart = j
	} else {
		keyStart = keyEnd
		for keyStart > 0 && isIdentOrDigit(text[keyStart-1]) {
			keyStart--
		}
		if keyStart == keyEnd {
			return span
		}
	}

	j := keyStart
	for j > 0 && isSpace(text[j-1]) {
		j--
	}
	if j == 0 || (text[j-1] != '{' && text[j-1] != ',') {
		return span
	}

	newEnd := end
	k := end
	for k < len(text) && isSpace(text[k]) {
		k++
	}
	if k < len(text) && text[k] == ',' {
		newEnd = k + 1
	} else if !(k < len(text) && text[k] == '}') {
		return span
	}

	return logger.Range{Loc: logger.Loc{Start: int32(keyStart)}, Len: int32(newEnd - keyStart)}
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isIdentOrDigit(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
