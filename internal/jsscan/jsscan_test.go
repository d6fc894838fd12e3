package jsscan_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/common-build/commonopt/internal/jsscan"
)

func kinds(t *testing.T, toks []jsscan.Token) []jsscan.Kind {
	t.Helper()
	out := make([]jsscan.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestScanBasicTokens(t *testing.T) {
	toks, err := jsscan.Scan(`const x = 1;`)
	require.NoError(t, err)
	require.Equal(t, []jsscan.Kind{
		jsscan.Keyword, jsscan.Ident, jsscan.Punct, jsscan.Number, jsscan.Punct, jsscan.EOF,
	}, kinds(t, toks))
}

func TestScanComments(t *testing.T) {
	toks, err := jsscan.Scan("// line\n/* block */\nx")
	require.NoError(t, err)
	require.Equal(t, jsscan.LineComment, toks[0].Kind)
	require.Equal(t, jsscan.BlockComment, toks[1].Kind)
	require.Equal(t, jsscan.Ident, toks[2].Kind)
}

func TestScanUnterminatedBlockComment(t *testing.T) {
	_, err := jsscan.Scan("/* oops")
	require.Error(t, err)
}

func TestScanStringsWithEscapes(t *testing.T) {
	toks, err := jsscan.Scan(`"a\"b"`)
	require.NoError(t, err)
	require.Equal(t, jsscan.String, toks[0].Kind)
	require.Equal(t, `"a\"b"`, toks[0].Text)
}

func TestScanTemplateLiteralWithNestedSubstitution(t *testing.T) {
	toks, err := jsscan.Scan("`a ${ `b ${c}` } d`")
	require.NoError(t, err)
	require.Equal(t, jsscan.Template, toks[0].Kind)
}

func TestScanRegexVsDivision(t *testing.T) {
	toks, err := jsscan.Scan("return /abc/;\nx / y;")
	require.NoError(t, err)
	require.Equal(t, jsscan.Regex, toks[1].Kind)

	// the second "/" is division, since it follows the identifier "x"
	var foundDivisionPunct bool
	for _, tok := range toks {
		if tok.Kind == jsscan.Punct && tok.Text == "/" {
			foundDivisionPunct = true
		}
	}
	require.True(t, foundDivisionPunct)
}

func TestScanMultiCharOperatorsLongestMatch(t *testing.T) {
	toks, err := jsscan.Scan("a === b !== c ?? d")
	require.NoError(t, err)
	var ops []string
	for _, tok := range toks {
		if tok.Kind == jsscan.Punct {
			ops = append(ops, tok.Text)
		}
	}
	require.Equal(t, []string{"===", "!==", "??"}, ops)
}
