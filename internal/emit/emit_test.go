package emit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/common-build/commonopt/internal/emit"
	"github.com/common-build/commonopt/internal/logger"
	"github.com/common-build/commonopt/internal/test"
)

func rng(start, length int32) logger.Range {
	return logger.Range{Loc: logger.Loc{Start: start}, Len: length}
}

func TestCollapseDropSpanWholeLineBothSides(t *testing.T) {
	text := "before\nDROP\nafter"
	start := int32(7) // start of "DROP"
	span := rng(start, 4)
	got := emit.CollapseDropSpan(text, span)
	require.Equal(t, "\nDROP\n", text[got.Loc.Start:got.End()])
}

func TestCollapseDropSpanOnlyOneSideQualifiesReturnsUnchanged(t *testing.T) {
	text := "before DROP\nafter"
	start := int32(7)
	span := rng(start, 4)
	got := emit.CollapseDropSpan(text, span)
	require.Equal(t, span, got)
}

func TestJoinInsertsSpaceBetweenIdentifiers(t *testing.T) {
	out, err := emit.Join('o', true, "bar", 'b', true, 0)
	require.NoError(t, err)
	require.Equal(t, " bar ", out)
}

func TestJoinNoSpaceNeededBetweenPunctuation(t *testing.T) {
	out, err := emit.Join('(', true, "bar", ')', true, 0)
	require.NoError(t, err)
	require.Equal(t, "bar", out)
}

func TestJoinEmptyReplacementPassesThrough(t *testing.T) {
	out, err := emit.Join('a', true, "", 'b', true, 0)
	require.NoError(t, err)
	require.Equal(t, "", out)
}

func TestJoinNumericMergeIsFatal(t *testing.T) {
	_, err := emit.Join('1', true, "23", '4', true, 0)
	require.Error(t, err)
}

func TestApplySequentialSplicing(t *testing.T) {
	text := "const a = 1; const b = 2;"
	edits := []emit.Edit{
		{Span: rng(0, 13), Replacement: ""},
	}
	out, err := emit.Apply(text, edits)
	require.NoError(t, err)
	test.AssertEqual(t, out, "const b = 2;")
}

func TestApplyRejectsOverlappingEdits(t *testing.T) {
	text := "abcdef"
	edits := []emit.Edit{
		{Span: rng(0, 3), Replacement: ""},
		{Span: rng(2, 2), Replacement: ""},
	}
	_, err := emit.Apply(text, edits)
	require.Error(t, err)
}
