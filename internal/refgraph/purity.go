package refgraph

import "github.com/common-build/commonopt/internal/jsscan"

// isPureValue implements the literal purity whitelist from the "Purity
// classification" design note: a binding's initializer is side-effect-free
// — and so prunable once unreferenced — only if it is, recursively, one of
// a function declaration/expression, an arrow function expression, a
// string/number/boolean/null literal, an object literal whose property
// values are all pure, or an array literal whose elements are all pure.
// Anything else, including a bare identifier reference or a call, is not
// in the whitelist and keeps the binding — conservative by construction,
// exactly as §7 requires: when unsure, treat the binding as a root.
func isPureValue(toks []jsscan.Token, start, end int) bool {
	ok, next := parsePureAtom(toks, start, end)
	return ok && next == end
}

func parsePureAtom(toks []jsscan.Token, i, end int) (bool, int) {
	if i >= end {
		return false, i
	}
	t := toks[i]

	switch {
	case t.Kind == jsscan.String || t.Kind == jsscan.Number:
		return true, i + 1

	case t.Kind == jsscan.Keyword && (t.Text == "true" || t.Text == "false" || t.Text == "null"):
		return true, i + 1

	case isKeyword(t, "async") && i+1 < end && isKeyword(toks[i+1], "function"):
		return true, skipFunction(toks, i+1, end)

	case isKeyword(t, "function"):
		return true, skipFunction(toks, i, end)

	case isPunct(t, "{"):
		return parsePureObject(toks, i, end)

	case isPunct(t, "["):
		return parsePureArray(toks, i, end)

	case isPunct(t, "("):
		// Only valid as the parameter list of an arrow expression; a bare
		// parenthesized expression is not in the whitelist.
		j := matchParen(toks, i, end)
		if j < 0 || j+1 >= end || !isPunct(toks[j+1], "=>") {
			return false, i
		}
		return true, skipArrowBody(toks, j+2, end)

	case t.Kind == jsscan.Ident:
		// A single-parameter arrow, "x => ...", is pure; a bare identifier
		// reference on its own is not in the whitelist.
		if i+1 < end && isPunct(toks[i+1], "=>") {
			return true, skipArrowBody(toks, i+2, end)
		}
		return false, i

	default:
		return false, i
	}
}

// matchParen returns the index of the "(" at i's matching ")", or -1 if
// it never closes within [i, end).
func matchParen(toks []jsscan.Token, i, end int) int {
	depth := 0
	for j := i; j < end; j++ {
		if isPunct(toks[j], "(") {
			depth++
		} else if isPunct(toks[j], ")") {
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func isPureKey(t jsscan.Token) bool {
	return t.Kind == jsscan.Ident || t.Kind == jsscan.String || t.Kind == jsscan.Number || t.Kind == jsscan.Keyword
}

func parsePureObject(toks []jsscan.Token, i, end int) (bool, int) {
	j := i + 1
	for {
		if j >= end {
			return false, j
		}
		if isPunct(toks[j], "}") {
			return true, j + 1
		}
		if toks[j].Kind == jsscan.LineComment || toks[j].Kind == jsscan.BlockComment {
			j++
			continue
		}
		if !isPureKey(toks[j]) {
			return false, j
		}
		j++
		if j >= end || !isPunct(toks[j], ":") {
			// Shorthand properties ("{ a }") and computed keys aren't in the
			// whitelist; treat the whole object as impure.
			return false, j
		}
		j++
		ok, nj := parsePureAtom(toks, j, end)
		if !ok {
			return false, nj
		}
		j = nj
		if j < end && isPunct(toks[j], ",") {
			j++
		}
	}
}

func parsePureArray(toks []jsscan.Token, i, end int) (bool, int) {
	j := i + 1
	for {
		if j >= end {
			return false, j
		}
		if isPunct(toks[j], "]") {
			return true, j + 1
		}
		ok, nj := parsePureAtom(toks, j, end)
		if !ok {
			return false, nj
		}
		j = nj
		if j < end && isPunct(toks[j], ",") {
			j++
		}
	}
}

// skipFunction advances past a whole "function name(params) { body }" unit
// starting at the "function" keyword, without inspecting the body — a
// function's side effects only run when called, never at declaration time.
func skipFunction(toks []jsscan.Token, i, end int) int {
	i++ // past "function"
	if i < end && isPunct(toks[i], "*") {
		i++
	}
	if i < end && toks[i].Kind == jsscan.Ident {
		i++
	}
	if i < end && isPunct(toks[i], "(") {
		depth := 1
		i++
		for i < end && depth > 0 {
			if isPunct(toks[i], "(") {
				depth++
			} else if isPunct(toks[i], ")") {
				depth--
			}
			i++
		}
	}
	if i < end && isPunct(toks[i], "{") {
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
	}
	return i
}

// skipArrowBody advances past an arrow function's body (block or single
// expression) starting right after its "=>", likewise without inspecting it.
func skipArrowBody(toks []jsscan.Token, i, end int) int {
	if i < end && isPunct(toks[i], "{") {
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
		return i
	}
	depth := 0
	for i < end {
		t := toks[i]
		if t.Kind == jsscan.Punct {
			switch t.Text {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				if depth == 0 {
					return i
				}
				depth--
			case ",", ";":
				if depth == 0 {
					return i
				}
			}
		}
		i++
	}
	return i
}
