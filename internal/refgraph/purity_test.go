package refgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/common-build/commonopt/internal/jsscan"
)

func scanExpr(t *testing.T, src string) []jsscan.Token {
	t.Helper()
	toks, err := jsscan.Scan(src)
	require.NoError(t, err)
	return toks
}

func TestIsPureValueAcceptsWhitelist(t *testing.T) {
	cases := []string{
		`"hello"`,
		`42`,
		`true`,
		`false`,
		`null`,
		`function() {}`,
		`function named(a, b) { return a + b; }`,
		`() => 1`,
		`x => x + 1`,
		`{ a: 1, b: "two", c: { d: [1, 2, function(){}] } }`,
		`[1, 2, "three", function(){}]`,
	}
	for _, src := range cases {
		toks := scanExpr(t, src)
		// strip the trailing EOF token
		require.True(t, isPureValue(toks, 0, len(toks)-1), src)
	}
}

func TestIsPureValueRejectsNonWhitelist(t *testing.T) {
	cases := []string{
		`someIdentifier`,
		`foo()`,
		`a.b.c`,
		`1 + 2`,
		`new Foo()`,
		`{ a: someIdentifier }`,
		`[1, foo()]`,
		`{ [computed]: 1 }`,
		`{ shorthand }`,
	}
	for _, src := range cases {
		toks := scanExpr(t, src)
		require.False(t, isPureValue(toks, 0, len(toks)-1), src)
	}
}

func TestBuildSplitsTopLevelDeclarationsAndPurity(t *testing.T) {
	src := `const a = 1;
let b = foo();
function f() {}
var c = 1, d = bar();
export { a };`
	prog, err := Build(src)
	require.NoError(t, err)

	byName := map[string]TopDecl{}
	for _, d := range prog.Decls {
		if d.Name != "" {
			byName[d.Name] = d
		}
	}

	require.True(t, byName["a"].Pure)
	require.True(t, byName["a"].Exported)
	require.False(t, byName["b"].Pure)
	require.True(t, byName["f"].Pure)
	require.True(t, byName["c"].Pure)
	require.False(t, byName["d"].Pure)
	require.Equal(t, byName["c"].Group, byName["d"].Group)
	require.Equal(t, 2, byName["c"].GroupLen)
}
