package planner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/common-build/commonopt/internal/configval"
	"github.com/common-build/commonopt/internal/jsscan"
	"github.com/common-build/commonopt/internal/planner"
	"github.com/common-build/commonopt/internal/test"
)

func transform(t *testing.T, src, cfgJSON string) string {
	t.Helper()
	cfg, err := configval.Parse(cfgJSON)
	require.NoError(t, err)
	toks, err := jsscan.Scan(src)
	require.NoError(t, err)
	out, err := planner.Transform(src, toks, cfg)
	require.NoError(t, err)
	return out
}

func TestTransformKeepsTrueBranch(t *testing.T) {
	src := "/* @common:if [condition=\"f.a\"] */KEEP\n/* @common:endif */"
	out := transform(t, src, `{"f":{"a":true}}`)
	require.Equal(t, "KEEP\n", out)
}

func TestTransformDropsFalseBranch(t *testing.T) {
	src := "before\n/* @common:if [condition=\"f.a\"] */\nDROP\n/* @common:endif */\nafter"
	out := transform(t, src, `{"f":{"a":false}}`)
	require.Equal(t, "before\nafter", out)
}

func TestTransformInlineSubstitutesConfigValue(t *testing.T) {
	src := `const x = /* @common:define-inline [value="b.t"] */ "placeholder";`
	out := transform(t, src, `{"b":{"t":"production"}}`)
	require.Equal(t, `const x = "production";`, out)
}

func TestTransformInlineFallsBackToDefaultWhenPathMissing(t *testing.T) {
	src := `const x = /* @common:define-inline [value="b.t" default="development"] */ "placeholder";`
	out := transform(t, src, `{}`)
	require.Equal(t, `const x = development;`, out)
}

func TestTransformInlineNonLiteralStringIsJSONEncoded(t *testing.T) {
	src := `const x = /* @common:define-inline [value="b.t"] */ 0;`
	out := transform(t, src, `{"b":{"t":"hello world"}}`)
	require.Equal(t, `const x = "hello world";`, out)
}

func TestTransformInlineNumericConfigValue(t *testing.T) {
	src := `const x = /* @common:define-inline [value="b.t"] */ 0;`
	out := transform(t, src, `{"b":{"t":42}}`)
	require.Equal(t, `const x = 42;`, out)
}

func TestTransformDroppedIfRemovesEnclosingObjectProperty(t *testing.T) {
	src := "const obj = {\n  keep: 1,\n  guarded: /* @common:if [condition=\"f.a\"] */(function(){})()/* @common:endif */,\n  other: 2,\n};"
	out := transform(t, src, `{"f":{"a":false}}`)
	require.NotContains(t, out, "guarded")
	require.Contains(t, out, "keep: 1")
	require.Contains(t, out, "other: 2")
}

func TestTransformNestedIfBlocksFiveLevels(t *testing.T) {
	src := "" +
		"/* @common:if [condition=\"a\"] */L1\n" +
		"/* @common:if [condition=\"b\"] */L2\n" +
		"/* @common:if [condition=\"c\"] */L3\n" +
		"/* @common:if [condition=\"d\"] */L4\n" +
		"/* @common:if [condition=\"e\"] */L5\n" +
		"/* @common:endif */\n" +
		"/* @common:endif */\n" +
		"/* @common:endif */\n" +
		"/* @common:endif */\n" +
		"/* @common:endif */"
	out := transform(t, src, `{"a":true,"b":true,"c":true,"d":true,"e":true}`)
	test.AssertEqualWithDiff(t, out, "L1\nL2\nL3\nL4\nL5\n")
}

func TestTransformNestedIfBlocksInnerFalseDropsOnlyInner(t *testing.T) {
	src := "" +
		"/* @common:if [condition=\"a\"] */OUTER\n" +
		"/* @common:if [condition=\"b\"] */INNER\n" +
		"/* @common:endif */\n" +
		"TAIL\n" +
		"/* @common:endif */"
	out := transform(t, src, `{"a":true,"b":false}`)
	require.Equal(t, "OUTER\nTAIL\n", out)
}

func TestTransformUnknownConditionKeepsBranchUnchanged(t *testing.T) {
	src := "/* @common:if [condition=\"a ^^ b\"] */KEEP\n/* @common:endif */"
	out := transform(t, src, `{}`)
	require.Contains(t, out, "KEEP")
}
