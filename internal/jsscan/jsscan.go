// Package jsscan is the source model's token scanner (component A). It is
// not a full ECMAScript tokenizer — nothing downstream needs one, since the
// pipeline never type-checks or renames anything — but it is precise about
// the one thing that matters everywhere else: knowing which bytes are
// "inside" a comment, string, template literal or regex literal so that
// those bytes are never mistaken for a macro marker, a brace that changes
// nesting depth, or an identifier reference.
//
// The original source is scanned once and its token stream feeds the macro
// lexer; the reference graph builder scans the macro-transformed text
// again, once per sweep iteration, since every edit changes the text.
package jsscan

import (
	"strings"

	"github.com/common-build/commonopt/internal/logger"
)

type Kind uint8

const (
	EOF Kind = iota
	LineComment
	BlockComment
	String
	Template
	Regex
	Ident
	Keyword
	Number
	Punct
)

// Token is one lexical unit. Text is the raw source slice including any
// delimiters (quotes, comment markers, backticks).
type Token struct {
	Kind  Kind
	Range logger.Range
	Text  string
}

var keywords = map[string]bool{
	"var": true, "let": true, "const": true, "function": true, "class": true,
	"export": true, "import": true, "default": true, "return": true, "if": true,
	"else": true, "for": true, "while": true, "do": true, "switch": true,
	"case": true, "break": true, "continue": true, "new": true, "delete": true,
	"typeof": true, "instanceof": true, "in": true, "of": true, "void": true,
	"this": true, "super": true, "null": true, "true": true, "false": true,
	"async": true, "await": true, "yield": true, "try": true, "catch": true,
	"finally": true, "throw": true, "static": true, "get": true, "set": true,
	"extends": true, "enum": true,
}

// regexAllowedAfter reports whether a `/` seen right after this token kind
// could be the start of a regex literal rather than a division operator.
// Division is only possible after a value-producing token, so a regex is
// disallowed only after identifiers (non-keyword), numbers, strings,
// templates, regex literals, the keywords "this" and "super", "++"/"--",
// and the closing punctuation of a grouping.
func regexAllowedAfter(prev Token, havePrev bool) bool {
	if !havePrev {
		return true
	}
	switch prev.Kind {
	case Number, String, Template, Regex:
		return false
	case Ident:
		return false
	case Keyword:
		// Most keywords are statement-leading or operator-like and can be
		// followed by a regex ("return /x/", "typeof /x/"); "this" and
		// "super" behave like values.
		return prev.Text != "this" && prev.Text != "super"
	case Punct:
		switch prev.Text {
		case ")", "]", "}":
			return false
		case "++", "--":
			return false
		default:
			return true
		}
	default:
		return true
	}
}

// Scan tokenizes src, skipping insignificant whitespace. Comments are
// retained as tokens (the macro lexer depends on them); string, template
// and regex literals are retained as single opaque tokens.
func Scan(src string) ([]Token, error) {
	var toks []Token
	i := 0
	n := len(src)
	var prev Token
	havePrev := false

	emit := func(k Kind, start, end int) {
		t := Token{Kind: k, Range: logger.Range{Loc: logger.Loc{Start: int32(start)}, Len: int32(end - start)}, Text: src[start:end]}
		toks = append(toks, t)
		prev = t
		havePrev = true
	}

	for i < n {
		c := src[i]

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f':
			i++
			continue

		case c == '/' && i+1 < n && src[i+1] == '/':
			start := i
			i += 2
			for i < n && src[i] != '\n' {
				i++
			}
			emit(LineComment, start, i)

		case c == '/' && i+1 < n && src[i+1] == '*':
			start := i
			i += 2
			closed := false
			for i+1 < n {
				if src[i] == '*' && src[i+1] == '/' {
					i += 2
					closed = true
					break
				}
				i++
			}
			if !closed {
				return nil, logger.NewError(logger.KindLex, int32(start), "unterminated block comment")
			}
			emit(BlockComment, start, i)

		case c == '\'' || c == '"':
			start := i
			quote := c
			i++
			for i < n && src[i] != quote {
				if src[i] == '\\' && i+1 < n {
					i += 2
					continue
				}
				if src[i] == '\n' {
					break
				}
				i++
			}
			if i < n && src[i] == quote {
				i++
			}
			emit(String, start, i)

		case c == '`':
			start := i
			i++
			depth := 0 // nesting depth of ${ ... } substitutions currently open
			braceStack := []int{}
			for i < n {
				switch {
				case src[i] == '\\' && i+1 < n:
					i += 2
				case depth == 0 && src[i] == '`':
					i++
					goto templateDone
				case depth == 0 && src[i] == '$' && i+1 < n && src[i+1] == '{':
					i += 2
					depth++
					braceStack = append(braceStack, 1)
				case depth > 0 && src[i] == '{':
					braceStack[len(braceStack)-1]++
					i++
				case depth > 0 && src[i] == '}':
					braceStack[len(braceStack)-1]--
					if braceStack[len(braceStack)-1] == 0 {
						braceStack = braceStack[:len(braceStack)-1]
						depth--
					}
					i++
				case depth > 0 && (src[i] == '\'' || src[i] == '"'):
					quote := src[i]
					i++
					for i < n && src[i] != quote {
						if src[i] == '\\' && i+1 < n {
							i += 2
							continue
						}
						i++
					}
					if i < n {
						i++
					}
				default:
					i++
				}
			}
			return nil, logger.NewError(logger.KindLex, int32(start), "unterminated template literal")
		templateDone:
			emit(Template, start, i)

		case c == '/' && regexAllowedAfter(prev, havePrev):
			start := i
			ok, end := scanRegex(src, i)
			if ok {
				i = end
				emit(Regex, start, i)
			} else {
				i++
				emit(Punct, start, i)
			}

		case isIdentStart(c):
			start := i
			i++
			for i < n && isIdentPart(src[i]) {
				i++
			}
			text := src[start:i]
			if keywords[text] {
				emit(Keyword, start, i)
			} else {
				emit(Ident, start, i)
			}

		case c >= '0' && c <= '9':
			start := i
			i++
			for i < n && (isIdentPart(src[i]) || src[i] == '.') {
				i++
			}
			emit(Number, start, i)

		default:
			start := i
			i += puncLen(src, i)
			emit(Punct, start, i)
		}
	}

	emit(EOF, n, n)
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// puncLen returns the byte length of the punctuation/operator token that
// starts at src[i]. Multi-character operators are matched longest-first;
// anything not recognized falls back to a single byte so scanning always
// makes progress.
func puncLen(src string, i int) int {
	three := []string{"===", "!==", "**=", "...", "<<=", ">>=", "&&=", "||=", "??=", ">>>"}
	two := []string{"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "**"}
	rest := src[i:]
	for _, op := range three {
		if strings.HasPrefix(rest, op) {
			return len(op)
		}
	}
	for _, op := range two {
		if strings.HasPrefix(rest, op) {
			return len(op)
		}
	}
	return 1
}

// scanRegex attempts to scan a regex literal starting at src[start] == '/'.
// It returns ok=false if the content never terminates before end of input,
// in which case the caller falls back to treating '/' as a punctuation
// token (division).
func scanRegex(src string, start int) (ok bool, end int) {
	i := start + 1
	n := len(src)
	inClass := false
	for i < n {
		switch src[i] {
		case '\\':
			if i+1 < n {
				i += 2
				continue
			}
			return false, 0
		case '\n':
			return false, 0
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				i++
				for i < n && isIdentPart(src[i]) {
					i++
				}
				return true, i
			}
		}
		i++
	}
	return false, 0
}
