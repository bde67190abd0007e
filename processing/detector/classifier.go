package detector

import (
	"context"
	"errors"
	"fmt"
	"image"

	"annotator/internal/config"
	"annotator/internal/models"
)

var ErrBackendUnavailable = errors.New("classifier backend is not available")

// Classifier scores one preprocessed image for a single artifact.
// The score is the sigmoid output of the network, in [0, 1].
type Classifier interface {
	Predict(ctx context.Context, img image.Image) (float32, error)
	Close() error
}

// Classifiers holds one loaded classifier per artifact.
type Classifiers map[models.Artifact]Classifier

func (c Classifiers) Close() error {
	var errs []error
	for _, cl := range c {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadClassifiers loads the three classifiers for the configured backend.
// A failure on any of them closes the ones already loaded.
func LoadClassifiers(cfg *config.Config) (Classifiers, error) {
	out := make(Classifiers, len(models.Artifacts))

	for _, artifact := range models.Artifacts {
		var (
			cl  Classifier
			err error
		)

		switch cfg.Backend {
		case config.BackendLocal:
			cl, err = NewGoCVClassifier(cfg.ModelPath(string(artifact)), cfg.InputWidth, cfg.InputHeight)
		case config.BackendRemote:
			cl, err = DialRemoteClassifier(cfg.Remote.Host, cfg.Remote.Path, artifact)
		default:
			err = fmt.Errorf("unknown backend: %s", cfg.Backend)
		}

		if err != nil {
			out.Close()
			return nil, fmt.Errorf("load %s classifier: %w", artifact, err)
		}

		out[artifact] = cl
	}

	return out, nil
}
