package configval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/common-build/commonopt/internal/configval"
)

func TestLookupDottedPath(t *testing.T) {
	v, err := configval.Parse(`{"featureFlags":{"enableX":true}}`)
	require.NoError(t, err)

	found, ok := v.Lookup([]string{"featureFlags", "enableX"})
	require.True(t, ok)
	require.True(t, found.Truthy())
}

func TestLookupMissingIntermediateKeyIsAbsentNotUnknown(t *testing.T) {
	v, err := configval.Parse(`{"a":{}}`)
	require.NoError(t, err)

	_, ok := v.Lookup([]string{"a", "b", "c"})
	require.False(t, ok)
}

func TestTruthyFalsySet(t *testing.T) {
	v, err := configval.Parse(`{"a":false,"b":0,"c":"","d":null,"e":[],"f":{},"g":"x","h":1}`)
	require.NoError(t, err)

	falsy := []string{"a", "b", "c", "d", "e"}
	for _, k := range falsy {
		leaf, ok := v.Lookup([]string{k})
		require.True(t, ok)
		require.False(t, leaf.Truthy(), k)
	}

	truthy := []string{"f", "g", "h"}
	for _, k := range truthy {
		leaf, ok := v.Lookup([]string{k})
		require.True(t, ok)
		require.True(t, leaf.Truthy(), k)
	}
}

func TestAsStringStrictType(t *testing.T) {
	v, err := configval.Parse(`{"n":1,"s":"hi"}`)
	require.NoError(t, err)

	n, _ := v.Lookup([]string{"n"})
	_, ok := n.AsString()
	require.False(t, ok)

	s, _ := v.Lookup([]string{"s"})
	str, ok := s.AsString()
	require.True(t, ok)
	require.Equal(t, "hi", str)
}

func TestFlattenLeaves(t *testing.T) {
	v, err := configval.Parse(`{"a":1,"b":{"c":2,"d":[3,4]},"e":{}}`)
	require.NoError(t, err)

	leaves := configval.Flatten(v)
	require.Len(t, leaves, 4)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := configval.Parse(`{not json`)
	require.Error(t, err)
}
