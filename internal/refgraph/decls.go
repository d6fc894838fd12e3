// Package refgraph is the reference graph builder and reachability
// sweeper (components E and F): it re-scans the already macro-transformed
// source, splits it into top-level declarations, recognizes the bundler
// module registry shape when present, and repeatedly marks and sweeps
// both graphs to a fixed point.
package refgraph

import (
	"github.com/common-build/commonopt/internal/jsscan"
	"github.com/common-build/commonopt/internal/logger"
)

type DeclKind uint8

const (
	DeclFunction DeclKind = iota
	DeclBinding
	DeclExprStatement
	DeclOther // import statements and anything else always kept verbatim
)

// TopDecl is one node of the BindingTable: a top-level (or, for registry
// properties, module-registry-scoped) declaration.
type TopDecl struct {
	Kind     DeclKind
	Name     string // "" for expression statements and DeclOther
	Exported bool
	Pure     bool // eligible for removal if also unreferenced
	Group    int  // declarators sharing one "var a = 1, b = 2;" statement share a Group id
	GroupLen int

	DeclSpan logger.Range // the whole declaration, including keyword and terminator — what gets removed

	BodyStart, BodyEnd int // token index range scanned for identifier "uses" and __webpack_require__ call sites
}

// Program is the post-transform source model the sweeper operates over.
type Program struct {
	Text     string
	Toks     []jsscan.Token
	Decls    []TopDecl
	Registry *Registry
}

func Build(text string) (*Program, error) {
	toks, err := jsscan.Scan(text)
	if err != nil {
		return nil, err
	}
	decls, exportNames := splitTopLevel(toks)
	for i := range decls {
		if decls[i].Name != "" {
			if _, ok := exportNames[decls[i].Name]; ok {
				decls[i].Exported = true
			}
		}
	}
	reg := detectRegistry(text, toks, decls)
	return &Program{Text: text, Toks: toks, Decls: decls, Registry: reg}, nil
}

func spanOf(toks []jsscan.Token, start, end int) logger.Range {
	if start >= end {
		if start < len(toks) {
			return logger.Range{Loc: toks[start].Range.Loc, Len: 0}
		}
		return logger.Range{}
	}
	s := toks[start].Range.Loc.Start
	e := toks[end-1].Range.End()
	return logger.Range{Loc: logger.Loc{Start: s}, Len: e - s}
}

func isPunct(t jsscan.Token, text string) bool {
	return t.Kind == jsscan.Punct && t.Text == text
}

func isKeyword(t jsscan.Token, text string) bool {
	return t.Kind == jsscan.Keyword && t.Text == text
}

// consumeStatement returns the end index (exclusive) of the statement
// starting at toks[start], tracking brace/paren/bracket depth. A
// brace-closed statement with no trailing "(" / "." / "[" continuation
// (a bare function declaration) ends without needing a semicolon; a
// continuation (an IIFE call immediately after its closing paren) is
// followed through to its own terminator.
func consumeStatement(toks []jsscan.Token, start int) int {
	depth := 0
	i := start
	for i < len(toks) {
		t := toks[i]
		if t.Kind == jsscan.EOF {
			return i
		}
		if t.Kind == jsscan.Punct {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
				if depth == 0 {
					if i+1 >= len(toks) {
						return i + 1
					}
					nxt := toks[i+1]
					if nxt.Kind == jsscan.Punct && (nxt.Text == "(" || nxt.Text == "." || nxt.Text == "[") {
						i++
						continue
					}
					if nxt.Kind == jsscan.Punct && nxt.Text == ";" {
						return i + 2
					}
					return i + 1
				}
			case ";":
				if depth == 0 {
					return i + 1
				}
			}
		}
		i++
	}
	return len(toks)
}

// splitTopLevel walks the token stream at brace depth 0 and classifies
// each statement. exportNames collects names that appear in an
// "export { a, b as c };" list so a second pass can mark the
// already-built declarations for those names as exported.
func splitTopLevel(toks []jsscan.Token) (decls []TopDecl, exportNames map[string]bool) {
	exportNames = map[string]bool{}
	group := 0
	n := len(toks)
	i := 0
	for i < n {
		t := toks[i]
		switch {
		case t.Kind == jsscan.EOF:
			i = n

		case t.Kind == jsscan.LineComment || t.Kind == jsscan.BlockComment:
			i++

		case isKeyword(t, "import"):
			end := consumeStatement(toks, i)
			decls = append(decls, TopDecl{Kind: DeclOther, DeclSpan: spanOf(toks, i, end)})
			i = end

		case isKeyword(t, "export"):
			i = parseExport(toks, i, &decls, exportNames, &group)

		case isKeyword(t, "function"):
			d, end := parseFunctionDecl(toks, i, false)
			decls = append(decls, d)
			i = end

		case isKeyword(t, "async") && i+1 < n && isKeyword(toks[i+1], "function"):
			d, end := parseFunctionDecl(toks, i, false)
			decls = append(decls, d)
			i = end

		case t.Kind == jsscan.Keyword && (t.Text == "var" || t.Text == "let" || t.Text == "const"):
			ds, end := parseVarDecl(toks, i, false, group)
			group++
			decls = append(decls, ds...)
			i = end

		default:
			end := consumeStatement(toks, i)
			decls = append(decls, TopDecl{
				Kind:      DeclExprStatement,
				DeclSpan:  spanOf(toks, i, end),
				BodyStart: i,
				BodyEnd:   end,
			})
			i = end
		}
	}
	return decls, exportNames
}

func parseExport(toks []jsscan.Token, start int, decls *[]TopDecl, exportNames map[string]bool, group *int) int {
	n := len(toks)
	i := start + 1 // past "export"

	if i < n && isKeyword(toks[i], "default") {
		j := i + 1
		if j < n && (isKeyword(toks[j], "function") || (isKeyword(toks[j], "async") && j+1 < n && isKeyword(toks[j+1], "function"))) {
			d, end := parseFunctionDecl(toks, j, true)
			*decls = append(*decls, d)
			return end
		}
		end := consumeStatement(toks, start)
		*decls = append(*decls, TopDecl{
			Kind:      DeclExprStatement,
			Exported:  true,
			DeclSpan:  spanOf(toks, start, end),
			BodyStart: j,
			BodyEnd:   end,
		})
		return end
	}

	if i < n && isPunct(toks[i], "{") {
		j := i + 1
		for j < n && !isPunct(toks[j], "}") {
			if toks[j].Kind == jsscan.Ident {
				name := toks[j].Text
				if j+2 < n && isKeyword(toks[j+1], "as") && toks[j+2].Kind == jsscan.Ident {
					j += 3
				} else {
					j++
				}
				exportNames[name] = true
			} else {
				j++
			}
			if j < n && isPunct(toks[j], ",") {
				j++
			}
		}
		end := consumeStatement(toks, start)
		return end
	}

	if i < n && (isKeyword(toks[i], "function") || (isKeyword(toks[i], "async") && i+1 < n && isKeyword(toks[i+1], "function"))) {
		d, end := parseFunctionDecl(toks, i, true)
		*decls = append(*decls, d)
		return end
	}

	if i < n && (toks[i].Text == "var" || toks[i].Text == "let" || toks[i].Text == "const") && toks[i].Kind == jsscan.Keyword {
		ds, end := parseVarDecl(toks, i, true, *group)
		*group++
		*decls = append(*decls, ds...)
		return end
	}

	// Unrecognized export form (e.g. "export class X {}"): keep as an
	// always-present, unnamed, exported root statement.
	end := consumeStatement(toks, start)
	*decls = append(*decls, TopDecl{Kind: DeclExprStatement, Exported: true, DeclSpan: spanOf(toks, start, end), BodyStart: start, BodyEnd: end})
	return end
}

func parseFunctionDecl(toks []jsscan.Token, start int, exported bool) (TopDecl, int) {
	n := len(toks)
	i := start
	if isKeyword(toks[i], "async") {
		i++
	}
	i++ // past "function"
	if i < n && isPunct(toks[i], "*") {
		i++
	}
	name := ""
	if i < n && toks[i].Kind == jsscan.Ident {
		name = toks[i].Text
		i++
	}
	// params
	if i < n && isPunct(toks[i], "(") {
		depth := 1
		i++
		for i < n && depth > 0 {
			if isPunct(toks[i], "(") {
				depth++
			} else if isPunct(toks[i], ")") {
				depth--
			}
			i++
		}
	}
	bodyStart := i
	if i < n && isPunct(toks[i], "{") {
		depth := 1
		i++
		for i < n && depth > 0 {
			if isPunct(toks[i], "{") {
				depth++
			} else if isPunct(toks[i], "}") {
				depth--
			}
			i++
		}
	}
	end := i
	if end < n && isPunct(toks[end], ";") {
		end++
	}
	return TopDecl{
		Kind:      DeclFunction,
		Name:      name,
		Exported:  exported,
		Pure:      true,
		DeclSpan:  spanOf(toks, start, end),
		BodyStart: bodyStart,
		BodyEnd:   end,
	}, end
}

func parseVarDecl(toks []jsscan.Token, start int, exported bool, group int) ([]TopDecl, int) {
	end := consumeStatement(toks, start)
	stmtEnd := end
	if stmtEnd > start && isPunct(toks[stmtEnd-1], ";") {
		stmtEnd--
	}

	span := spanOf(toks, start, end)
	var out []TopDecl
	i := start + 1
	var segments [][2]int
	depth := 0
	segStart := i
	for i < stmtEnd {
		t := toks[i]
		if t.Kind == jsscan.Punct {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ",":
				if depth == 0 {
					segments = append(segments, [2]int{segStart, i})
					segStart = i + 1
				}
			}
		}
		i++
	}
	segments = append(segments, [2]int{segStart, stmtEnd})

	for _, seg := range segments {
		lo, hi := seg[0], seg[1]
		if lo >= hi || toks[lo].Kind != jsscan.Ident {
			continue
		}
		name := toks[lo].Text
		initStart, initEnd := hi, hi
		if lo+1 < hi && isPunct(toks[lo+1], "=") {
			initStart = lo + 2
			initEnd = hi
		} else {
			initStart, initEnd = hi, hi
		}
		pure := true
		if initStart < initEnd {
			pure = isPureValue(toks, initStart, initEnd)
		}
		out = append(out, TopDecl{
			Kind:      DeclBinding,
			Name:      name,
			Exported:  exported,
			Pure:      pure,
			Group:     group,
			GroupLen:  len(segments),
			DeclSpan:  span,
			BodyStart: initStart,
			BodyEnd:   initEnd,
		})
	}
	return out, end
}
