package detector

import (
	"context"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"annotator/internal/models"
)

// Suggester turns the three classifier scores into checkbox suggestions.
type Suggester struct {
	classifiers Classifiers
	width       int
	height      int
	log         logrus.FieldLogger
}

func NewSuggester(classifiers Classifiers, width, height int, log logrus.FieldLogger) *Suggester {
	return &Suggester{
		classifiers: classifiers,
		width:       width,
		height:      height,
		log:         log,
	}
}

// Suggest resizes img once and runs every classifier on it in artifact order.
func (s *Suggester) Suggest(ctx context.Context, img image.Image) (models.Suggestion, error) {
	input := Preprocess(img, s.width, s.height)
	suggestion := make(models.Suggestion, 0, len(models.Artifacts))

	for _, artifact := range models.Artifacts {
		cl, ok := s.classifiers[artifact]
		if !ok {
			return nil, fmt.Errorf("no classifier loaded for %s", artifact)
		}

		score, err := cl.Predict(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("predict %s: %w", artifact, err)
		}

		p := models.NewPrediction(artifact, score)
		s.log.WithFields(logrus.Fields{
			"artifact": artifact,
			"score":    score,
			"present":  p.Present,
		}).Debug("prediction")

		suggestion = append(suggestion, p)
	}

	return suggestion, nil
}

func (s *Suggester) Close() error {
	return s.classifiers.Close()
}
