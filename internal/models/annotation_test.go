package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPredictionRoundsHalfToEven(t *testing.T) {
	require.False(t, NewPrediction(ArtifactRuler, 0.5).Present)
	require.False(t, NewPrediction(ArtifactRuler, 0.49).Present)
	require.True(t, NewPrediction(ArtifactRuler, 0.51).Present)
	require.True(t, NewPrediction(ArtifactRuler, 1).Present)
	require.False(t, NewPrediction(ArtifactRuler, 0).Present)
}

func TestSuggestionApplyOnlyTouchesPredictedFlags(t *testing.T) {
	s := Suggestion{
		NewPrediction(ArtifactRuler, 0.9),
		NewPrediction(ArtifactBorder, 0.1),
		NewPrediction(ArtifactStain, 0.7),
	}

	a := Annotation{SubtleBorder: true, Comments: "keep"}
	s.Apply(&a)

	require.Equal(t, Annotation{
		Ruler:        true,
		Stain:        true,
		SubtleBorder: true,
		Comments:     "keep",
	}, a)
	require.True(t, s.Has(ArtifactRuler))
	require.False(t, s.Has(ArtifactBorder))
}

func TestAnnotationSetFlag(t *testing.T) {
	var a Annotation
	for _, col := range Columns[1:7] {
		require.True(t, a.SetFlag(col, true), col)
	}
	require.False(t, a.SetFlag(ColumnComments, true))
	require.False(t, a.SetFlag(ColumnImage, true))
	require.Equal(t, [6]bool{true, true, true, true, true, true}, a.Flags())
}
