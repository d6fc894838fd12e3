package refgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/common-build/commonopt/internal/jsscan"
)

func TestDetectRegistryValidShape(t *testing.T) {
	src := `var __webpack_modules__ = {
  153: function(module, exports, require) { require(418); },
  418: function(module, exports, require) {},
  "78": function(module, exports, require) {},
};
__webpack_require__(153);
`
	prog, err := Build(src)
	require.NoError(t, err)
	require.NotNil(t, prog.Registry)
	require.Len(t, prog.Registry.Modules, 3)
	require.Contains(t, prog.Registry.ByName, "153")
	require.Contains(t, prog.Registry.ByName, "78")
}

func TestDetectRegistryAcceptsParenthesizedWrapper(t *testing.T) {
	src := `var __webpack_modules__ = ({
  153: function(module, exports, require) {},
  418: function(module, exports, require) {},
});
__webpack_require__(153);
`
	prog, err := Build(src)
	require.NoError(t, err)
	require.NotNil(t, prog.Registry)
	require.Len(t, prog.Registry.Modules, 2)
	require.Contains(t, prog.Registry.ByName, "153")
	require.Contains(t, prog.Registry.ByName, "418")
}

func TestDetectRegistryRejectsIdentifierKeys(t *testing.T) {
	src := `var __webpack_modules__ = {
  mod1: function(a, b, c) {},
};`
	prog, err := Build(src)
	require.NoError(t, err)
	require.Nil(t, prog.Registry)
}

func TestDetectRegistryRejectsWrongParamCount(t *testing.T) {
	src := `var __webpack_modules__ = {
  "1": function(a, b) {},
};`
	prog, err := Build(src)
	require.NoError(t, err)
	require.Nil(t, prog.Registry)
}

func TestDetectRegistryRejectsArrowFunctionValue(t *testing.T) {
	src := `var __webpack_modules__ = {
  "1": (a, b, c) => {},
};`
	prog, err := Build(src)
	require.NoError(t, err)
	require.Nil(t, prog.Registry)
}

func TestFindRequireCallsAcceptsStringAndNumberArgs(t *testing.T) {
	src := `__webpack_require__(153); __webpack_require__("name");`
	toks, err := jsscan.Scan(src)
	require.NoError(t, err)
	calls := findRequireCalls(toks, 0, len(toks))
	require.Len(t, calls, 2)
	require.Equal(t, "153", calls[0].Module)
	require.Equal(t, "name", calls[1].Module)
}
