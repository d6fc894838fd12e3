package api_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/common-build/commonopt/pkg/api"
)

func TestOptimizeKeepsTrueBranchAndDropsFalseBranch(t *testing.T) {
	src := "/* @common:if [condition=\"f.a\"] */KEEP\n/* @common:endif */\n" +
		"/* @common:if [condition=\"f.b\"] */DROP\n/* @common:endif */"
	out, err := api.Optimize(src, `{"f":{"a":true,"b":false}}`)
	require.NoError(t, err)
	require.Contains(t, out, "KEEP")
	require.NotContains(t, out, "DROP")
}

func TestOptimizeResolvesInlineDefine(t *testing.T) {
	src := `const env = /* @common:define-inline [value="b.t" default="development"] */ "placeholder";`
	out, err := api.Optimize(src, `{"b":{"t":"production"}}`)
	require.NoError(t, err)
	require.Contains(t, out, `"production"`)
	require.NotContains(t, out, "placeholder")
}

func TestOptimizePrunesUnreferencedBindingAfterDeadBranchRemoval(t *testing.T) {
	src := `function onlyUsedWhenDebug() { return 1; }
/* @common:if [condition="debug"] */
console.log(onlyUsedWhenDebug());
/* @common:endif */
`
	out, err := api.Optimize(src, `{"debug":false}`)
	require.NoError(t, err)
	require.NotContains(t, out, "onlyUsedWhenDebug")
}

func TestOptimizeFastPathReturnsSourceUnchangedWhenAllTruthyAndNoDefine(t *testing.T) {
	src := "/* @common:if [condition=\"f.a\"] */KEEP\n/* @common:endif */"
	out, err := api.Optimize(src, `{"f":{"a":true}}`)
	require.NoError(t, err)
	require.Equal(t, src, out)
}

func TestOptimizePrunesRegistryModuleUnreachableAfterBranchRemoval(t *testing.T) {
	src := `var __webpack_modules__ = {
  153: function(module, exports, reqFn) {},
  418: function(module, exports, reqFn) {},
};
/* @common:if [condition="loadExtra"] */
__webpack_require__(418);
/* @common:endif */
__webpack_require__(153);
`
	out, err := api.Optimize(src, `{"loadExtra":false}`)
	require.NoError(t, err)
	require.Contains(t, out, "153")
	require.NotContains(t, out, "418")
}

func TestOptimizeInvalidConfigJSONIsError(t *testing.T) {
	_, err := api.Optimize("const x = 1;", `{not json`)
	require.Error(t, err)
}

func TestOptimizationInfoShape(t *testing.T) {
	src := "/* @common:if [condition=\"f.a\"] */KEEP\n/* @common:endif */"
	raw, err := api.OptimizationInfo(src, `{"f":{"a":false}}`)
	require.NoError(t, err)

	var info api.Info
	require.NoError(t, json.Unmarshal([]byte(raw), &info))

	require.False(t, info.FastPathUsed)
	require.True(t, info.ShouldOptimize)
	require.Equal(t, 1, info.TotalConfigValues)
	require.Equal(t, 0, info.EnabledCount)
	require.False(t, info.AllEnabled)
	require.NotEmpty(t, info.Recommendations)
}

func TestOptimizationInfoFastPathEligible(t *testing.T) {
	src := "const x = 1;"
	raw, err := api.OptimizationInfo(src, `{"a":true}`)
	require.NoError(t, err)

	var info api.Info
	require.NoError(t, json.Unmarshal([]byte(raw), &info))

	require.True(t, info.FastPathUsed)
	require.False(t, info.ShouldOptimize)
	require.True(t, info.AllEnabled)
}
