package condexpr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/common-build/commonopt/internal/condexpr"
	"github.com/common-build/commonopt/internal/configval"
)

func mustConfig(t *testing.T, json string) *configval.Value {
	t.Helper()
	v, err := configval.Parse(json)
	require.NoError(t, err)
	return v
}

func TestEvalBarePathMissing(t *testing.T) {
	cfg := mustConfig(t, `{}`)
	require.Equal(t, condexpr.False, condexpr.EvalString("foo.bar", cfg))
}

func TestEvalComparison(t *testing.T) {
	cases := []struct {
		config string
		expr   string
		want   condexpr.Tri
	}{
		{`{"x":"y"}`, `x === 'y'`, condexpr.True},
		{`{"x":"z"}`, `x === 'y'`, condexpr.False},
		{`{}`, `x === 'y'`, condexpr.False},
		{`{"x":"y"}`, `x !== 'y'`, condexpr.False},
		{`{"x":"z"}`, `x !== 'y'`, condexpr.True},
	}
	for _, c := range cases {
		got := condexpr.EvalString(c.expr, mustConfig(t, c.config))
		require.Equal(t, c.want, got, c.expr)
	}
}

func TestEvalAndShortCircuit(t *testing.T) {
	// false && anything => False; the right side is a comparison against a
	// string full of operator-like characters, and the false left side alone
	// decides the result
	cfg := mustConfig(t, `{"a":false}`)
	require.Equal(t, condexpr.False, condexpr.EvalString(`a && b === 'weird !! syntax ((('`, cfg))
}

func TestEvalOrShortCircuit(t *testing.T) {
	cfg := mustConfig(t, `{"a":true}`)
	require.Equal(t, condexpr.True, condexpr.EvalString(`a || b === 'weird !! syntax ((('`, cfg))
}

func TestEvalNegation(t *testing.T) {
	cfg := mustConfig(t, `{"a":false}`)
	require.Equal(t, condexpr.True, condexpr.EvalString(`!a`, cfg))
}

func TestEvalUnparseableIsUnknown(t *testing.T) {
	cfg := mustConfig(t, `{}`)
	require.Equal(t, condexpr.Unknown, condexpr.EvalString(`a ^^ b`, cfg))
	require.Equal(t, condexpr.Unknown, condexpr.EvalString(``, cfg))
}

func TestParsePathWidenedGrammar(t *testing.T) {
	cfg := mustConfig(t, `{"feature-flags":{"ab-test-2":true}}`)
	require.Equal(t, condexpr.True, condexpr.EvalString(`feature-flags.ab-test-2`, cfg))
}
