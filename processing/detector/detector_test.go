package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"annotator/internal/config"
	applog "annotator/internal/log"
	"annotator/internal/models"
)

type fixedClassifier struct {
	score  float32
	err    error
	bounds image.Rectangle
	closed bool
}

func (f *fixedClassifier) Predict(ctx context.Context, img image.Image) (float32, error) {
	f.bounds = img.Bounds()
	return f.score, f.err
}

func (f *fixedClassifier) Close() error {
	f.closed = true
	return nil
}

func solidImage(w, h int) image.Image {
	return imaging.New(w, h, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
}

func TestSuggesterRoundsScoresAndResizes(t *testing.T) {
	ruler := &fixedClassifier{score: 0.93}
	border := &fixedClassifier{score: 0.5}
	stain := &fixedClassifier{score: 0.51}

	s := NewSuggester(Classifiers{
		models.ArtifactRuler:  ruler,
		models.ArtifactBorder: border,
		models.ArtifactStain:  stain,
	}, 300, 300, applog.Discard())

	suggestion, err := s.Suggest(context.Background(), solidImage(1024, 768))
	require.NoError(t, err)
	require.Len(t, suggestion, 3)
	require.True(t, suggestion.Has(models.ArtifactRuler))
	require.False(t, suggestion.Has(models.ArtifactBorder))
	require.True(t, suggestion.Has(models.ArtifactStain))

	require.Equal(t, image.Rect(0, 0, 300, 300), ruler.bounds)

	require.NoError(t, s.Close())
	require.True(t, ruler.closed)
	require.True(t, stain.closed)
}

func TestSuggesterPropagatesClassifierError(t *testing.T) {
	s := NewSuggester(Classifiers{
		models.ArtifactRuler:  &fixedClassifier{},
		models.ArtifactBorder: &fixedClassifier{err: errors.New("boom")},
		models.ArtifactStain:  &fixedClassifier{},
	}, 32, 32, applog.Discard())

	_, err := s.Suggest(context.Background(), solidImage(64, 64))
	require.ErrorContains(t, err, "border")
}

func TestSuggesterMissingClassifier(t *testing.T) {
	s := NewSuggester(Classifiers{models.ArtifactRuler: &fixedClassifier{}}, 32, 32, applog.Discard())

	_, err := s.Suggest(context.Background(), solidImage(8, 8))
	require.Error(t, err)
}

func TestLoadImageAndPreprocess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, imaging.Save(solidImage(40, 20), path))

	img, err := LoadImage(path)
	require.NoError(t, err)
	require.Equal(t, 40, img.Bounds().Dx())

	out := Preprocess(img, 300, 300)
	require.Equal(t, image.Rect(0, 0, 300, 300), out.Bounds())
}

func newInferenceServer(t *testing.T, score float32) *httptest.Server {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		label := filepath.Base(r.URL.Path)

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.BinaryMessage {
				return
			}
			if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
				return
			}

			reply, _ := json.Marshal(models.RemoteResult{Label: label, Confidence: score})
			if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestRemoteClassifierRoundTrip(t *testing.T) {
	srv := newInferenceServer(t, 0.8)
	host := strings.TrimPrefix(srv.URL, "http://")

	cl, err := DialRemoteClassifier(host, "/ws", models.ArtifactStain)
	require.NoError(t, err)
	defer cl.Close()

	require.Equal(t, "ws://"+host+"/ws/stain", cl.URL())

	for i := 0; i < 2; i++ {
		score, err := cl.Predict(context.Background(), solidImage(300, 300))
		require.NoError(t, err)
		require.InDelta(t, 0.8, score, 1e-6)
	}
}

func TestLoadClassifiersRemote(t *testing.T) {
	srv := newInferenceServer(t, 0.2)

	cfg := config.NewDefaultConfig()
	cfg.Backend = config.BackendRemote
	cfg.Remote.Host = strings.TrimPrefix(srv.URL, "http://")

	classifiers, err := LoadClassifiers(cfg)
	require.NoError(t, err)
	defer classifiers.Close()
	require.Len(t, classifiers, 3)

	s := NewSuggester(classifiers, cfg.InputWidth, cfg.InputHeight, applog.Discard())
	suggestion, err := s.Suggest(context.Background(), solidImage(50, 50))
	require.NoError(t, err)
	for _, p := range suggestion {
		require.False(t, p.Present)
		require.InDelta(t, 0.2, p.Score, 1e-6)
	}
}

func TestLoadClassifiersRemoteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	cfg := config.NewDefaultConfig()
	cfg.Backend = config.BackendRemote
	cfg.Remote.Host = host

	_, err := LoadClassifiers(cfg)
	require.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestLoadClassifiersLocalMissingWeights(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Models.Dir = t.TempDir()

	_, err := LoadClassifiers(cfg)
	require.Error(t, err)
}
