//go:build gocv
// +build gocv

package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// GoCVClassifier runs an ONNX export of a binary classifier through OpenCV DNN.
// The network is expected to end in a sigmoid with a single output.
type GoCVClassifier struct {
	mu     sync.Mutex
	net    gocv.Net
	width  int
	height int
}

func NewGoCVClassifier(modelPath string, width, height int) (*GoCVClassifier, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, err
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to read network from %s", modelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &GoCVClassifier{net: net, width: width, height: height}, nil
}

func (c *GoCVClassifier) Predict(ctx context.Context, img image.Image) (float32, error) {
	_ = ctx

	// ImageToMatRGB stores pixels in OpenCV's BGR order.
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return 0, err
	}
	defer mat.Close()

	if mat.Empty() {
		return 0, errors.New("empty image")
	}

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(c.width, c.height), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	if out.Empty() || out.Total() < 1 {
		return 0, errors.New("network returned no output")
	}

	return out.GetFloatAt(0, 0), nil
}

func (c *GoCVClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}
