//go:build !gocv
// +build !gocv

package detector

import (
	"context"
	"fmt"
	"image"
)

// GoCVClassifier is unavailable without the gocv build tag.
type GoCVClassifier struct{}

func NewGoCVClassifier(modelPath string, width, height int) (*GoCVClassifier, error) {
	_, _, _ = modelPath, width, height
	return nil, fmt.Errorf("%w: gocv build tag is not enabled", ErrBackendUnavailable)
}

func (c *GoCVClassifier) Predict(ctx context.Context, img image.Image) (float32, error) {
	_, _ = ctx, img
	return 0, fmt.Errorf("%w: gocv build tag is not enabled", ErrBackendUnavailable)
}

func (c *GoCVClassifier) Close() error {
	return nil
}
