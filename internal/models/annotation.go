package models

import "math"

type Artifact string

const (
	ArtifactRuler  Artifact = "ruler"
	ArtifactBorder Artifact = "border"
	ArtifactStain  Artifact = "stain"
)

var Artifacts = [...]Artifact{
	ArtifactRuler,
	ArtifactBorder,
	ArtifactStain,
}

const (
	ColumnImage        = "image"
	ColumnRuler        = "ruler"
	ColumnBorder       = "border"
	ColumnStain        = "stain"
	ColumnSubtleRuler  = "subtle_ruler"
	ColumnSubtleBorder = "subtle_border"
	ColumnSubtleStain  = "subtle_stain"
	ColumnComments     = "comments"
)

// Columns is the fixed column order of the annotation file.
var Columns = [...]string{
	ColumnImage,
	ColumnRuler,
	ColumnBorder,
	ColumnStain,
	ColumnSubtleRuler,
	ColumnSubtleBorder,
	ColumnSubtleStain,
	ColumnComments,
}

type Annotation struct {
	Ruler        bool   `json:"ruler"`
	Border       bool   `json:"border"`
	Stain        bool   `json:"stain"`
	SubtleRuler  bool   `json:"subtle_ruler"`
	SubtleBorder bool   `json:"subtle_border"`
	SubtleStain  bool   `json:"subtle_stain"`
	Comments     string `json:"comments"`
}

// Flags returns the six flags in column order.
func (a Annotation) Flags() [6]bool {
	return [6]bool{a.Ruler, a.Border, a.Stain, a.SubtleRuler, a.SubtleBorder, a.SubtleStain}
}

// SetFlag sets the flag stored under the given column name.
// Unknown columns are ignored and reported with false.
func (a *Annotation) SetFlag(column string, v bool) bool {
	switch column {
	case ColumnRuler:
		a.Ruler = v
	case ColumnBorder:
		a.Border = v
	case ColumnStain:
		a.Stain = v
	case ColumnSubtleRuler:
		a.SubtleRuler = v
	case ColumnSubtleBorder:
		a.SubtleBorder = v
	case ColumnSubtleStain:
		a.SubtleStain = v
	default:
		return false
	}
	return true
}

type Prediction struct {
	Artifact Artifact `json:"artifact"`
	Score    float32  `json:"score"`
	Present  bool     `json:"present"`
}

// NewPrediction rounds the sigmoid score half-to-even, so 0.5 is absent.
func NewPrediction(artifact Artifact, score float32) Prediction {
	return Prediction{
		Artifact: artifact,
		Score:    score,
		Present:  math.RoundToEven(float64(score)) >= 1,
	}
}

type Suggestion []Prediction

// Apply checks the non-subtle flags of every present prediction.
// Flags that are already set stay set.
func (s Suggestion) Apply(a *Annotation) {
	for _, p := range s {
		if p.Present {
			a.SetFlag(string(p.Artifact), true)
		}
	}
}

// Has reports whether the artifact was predicted as present.
func (s Suggestion) Has(artifact Artifact) bool {
	for _, p := range s {
		if p.Artifact == artifact {
			return p.Present
		}
	}
	return false
}

// RemoteResult is the reply of the remote inference server for one image.
type RemoteResult struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
}
