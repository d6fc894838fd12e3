package refgraph

import (
	"github.com/common-build/commonopt/internal/jsscan"
	"github.com/common-build/commonopt/internal/logger"
)

// registryVarName and requireFnName are the bundler module-registry shape
// recognized by §4.F: a single top-level object literal mapping module
// names to loader functions, paired with a require function used to pull
// one module's loader into another's. The registry binding itself is
// always a root — deleting it would break the runtime even when every
// module inside it is unused — only its individual module properties are
// prunable.
const (
	registryVarName = "__webpack_modules__"
	requireFnName   = "__webpack_require__"
)

type ModuleRecord struct {
	Name      string
	Span      logger.Range // the whole "key: fn," property, including a trailing comma when present
	BodyStart int          // token index of the loader function's first token
	BodyEnd   int          // token index just past the loader function
}

type Registry struct {
	DeclIndex int // index into Program.Decls of the registry's own var declaration
	ObjSpan   logger.Range
	Modules   []*ModuleRecord
	ByName    map[string]*ModuleRecord
}

func detectRegistry(text string, toks []jsscan.Token, decls []TopDecl) *Registry {
	for idx, d := range decls {
		if d.Kind != DeclBinding || d.Name != registryVarName {
			continue
		}
		bodyStart, bodyEnd := d.BodyStart, d.BodyEnd
		// §9's Design Note shows the registry wrapped in a parenthesized
		// expression, "var __webpack_modules__ = ({ ... });" — an idiomatic
		// webpack bootstrap shape — so a single leading/trailing paren pair
		// is unwrapped before looking for the object literal itself.
		if bodyStart < bodyEnd && isPunct(toks[bodyStart], "(") && isPunct(toks[bodyEnd-1], ")") {
			bodyStart++
			bodyEnd--
		}
		if bodyStart >= bodyEnd || !isPunct(toks[bodyStart], "{") {
			continue
		}
		entries := parseRegistryEntries(toks, bodyStart, bodyEnd)
		if entries == nil {
			continue
		}
		reg := &Registry{DeclIndex: idx, ObjSpan: spanOf(toks, bodyStart, bodyEnd), ByName: map[string]*ModuleRecord{}}
		reg.Modules = entries
		for _, m := range entries {
			reg.ByName[m.Name] = m
		}
		return reg
	}
	return nil
}

// parseRegistryEntries parses a `{ "name": function(...) {...}, ... }`
// object literal into one ModuleRecord per property. It returns nil (not
// the registry shape after all) if any property's key or value doesn't
// match the expected loader-function form.
func parseRegistryEntries(toks []jsscan.Token, start, end int) []*ModuleRecord {
	i := start + 1
	var out []*ModuleRecord
	for i < end {
		if isPunct(toks[i], "}") {
			return out
		}
		if toks[i].Kind == jsscan.LineComment || toks[i].Kind == jsscan.BlockComment {
			i++
			continue
		}
		keyStart := i
		// §6: registry keys must be numeric or string literals — a bare
		// identifier key disqualifies the whole shape from module-level
		// pruning.
		var name string
		switch toks[i].Kind {
		case jsscan.String:
			name = unquote(toks[i].Text)
			i++
		case jsscan.Number:
			name = toks[i].Text
			i++
		default:
			return nil
		}
		if i >= end || !isPunct(toks[i], ":") {
			return nil
		}
		i++
		valStart := i
		valEnd := parseLoaderFunction(toks, i, end)
		if valEnd < 0 || valEnd >= end {
			return nil
		}
		entryEnd := valEnd
		if entryEnd < end && isPunct(toks[entryEnd], ",") {
			entryEnd++
		}
		out = append(out, &ModuleRecord{
			Name:      name,
			Span:      spanOf(toks, keyStart, entryEnd),
			BodyStart: valStart,
			BodyEnd:   valEnd,
		})
		i = entryEnd
	}
	return out
}

// parseLoaderFunction validates and skips the one value shape §6 permits
// for a registry property: a function expression (optionally async,
// optionally named, optionally a generator) taking exactly three simple
// parameters. Any other shape — an arrow function, a non-function value, a
// different parameter count — returns -1, which disqualifies the entire
// registry from module-level pruning.
func parseLoaderFunction(toks []jsscan.Token, i, end int) int {
	if i < end && isKeyword(toks[i], "async") {
		i++
	}
	if i >= end || !isKeyword(toks[i], "function") {
		return -1
	}
	i++
	if i < end && isPunct(toks[i], "*") {
		i++
	}
	if i < end && toks[i].Kind == jsscan.Ident {
		i++
	}
	if i >= end || !isPunct(toks[i], "(") {
		return -1
	}
	i++
	params := 0
	for i < end && !isPunct(toks[i], ")") {
		if toks[i].Kind == jsscan.Ident {
			params++
			i++
		} else if isPunct(toks[i], ",") {
			i++
		} else {
			return -1
		}
	}
	if i >= end || !isPunct(toks[i], ")") {
		return -1
	}
	i++
	if params != 3 {
		return -1
	}
	if i >= end || !isPunct(toks[i], "{") {
		return -1
	}
	depth := 1
	i++
	for i < end && depth > 0 {
		if isPunct(toks[i], "{") {
			depth++
		} else if isPunct(toks[i], "}") {
			depth--
		}
		i++
	}
	if depth != 0 {
		return -1
	}
	return i
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	quote := s[0]
	if quote != '"' && quote != '\'' {
		return s
	}
	inner := s[1 : len(s)-1]
	out := make([]byte, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			out = append(out, inner[i])
			continue
		}
		out = append(out, inner[i])
	}
	return string(out)
}

type requireCall struct {
	Module string
	At     int // token index of the require identifier, for outside-registry detection
}

// findRequireCalls locates every `requireFnName(id)` call in the given
// token range and resolves its numeric- or string-literal argument — the
// registry's module ids are either, per §6.
func findRequireCalls(toks []jsscan.Token, start, end int) []requireCall {
	var out []requireCall
	limit := end
	if limit > len(toks)-3 {
		limit = len(toks) - 3
	}
	for i := start; i < limit; i++ {
		if toks[i].Kind != jsscan.Ident || toks[i].Text != requireFnName {
			continue
		}
		if !isPunct(toks[i+1], "(") {
			continue
		}
		switch toks[i+2].Kind {
		case jsscan.String:
			out = append(out, requireCall{Module: unquote(toks[i+2].Text), At: i})
		case jsscan.Number:
			out = append(out, requireCall{Module: toks[i+2].Text, At: i})
		}
	}
	return out
}
