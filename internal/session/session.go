package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	applog "annotator/internal/log"
	"annotator/internal/models"
	"annotator/internal/storage"
	"annotator/processing/detector"
)

const DefaultAnnotationFile = "annotations.csv"

var (
	ErrNoImageDir    = errors.New("image directory is not set")
	ErrEmptyWorklist = errors.New("no images to annotate")
	ErrNoMoreImages  = errors.New("no more images left")
	ErrNoPrevImages  = errors.New("no previous images")
)

type Suggester interface {
	Suggest(ctx context.Context, img image.Image) (models.Suggestion, error)
}

type Options struct {
	ImageDir       string
	AnnotationFile string

	// Suggester may be nil, in which case new images start unchecked.
	Suggester Suggester
	LoadImage func(path string) (image.Image, error)
	Log       logrus.FieldLogger
}

// Session walks the worklist of one image directory and collects annotations.
// Nothing reaches disk until Save.
type Session struct {
	id       string
	imageDir string
	worklist []string
	index    int

	store     *storage.Store
	suggester Suggester
	loadImage func(path string) (image.Image, error)
	log       logrus.FieldLogger
}

// View is what the annotate screen shows for the current image.
type View struct {
	Index int
	Total int

	Image   string
	Path    string
	Picture image.Image

	Annotation models.Annotation
	// Restored is set when Annotation comes from the store rather than the classifiers.
	Restored   bool
	Suggestion models.Suggestion
	SuggestErr error
}

type Progress struct {
	Annotated int
	Total     int
}

// Start builds the worklist and the store. Images already listed in the
// annotation file are left out of the worklist.
func Start(opts Options) (*Session, error) {
	if opts.ImageDir == "" {
		return nil, ErrNoImageDir
	}

	if opts.Log == nil {
		opts.Log = applog.Discard()
	}
	if opts.LoadImage == nil {
		opts.LoadImage = detector.LoadImage
	}

	id := uuid.NewString()
	log := opts.Log.WithFields(logrus.Fields{"session_id": id, "image_dir": opts.ImageDir})

	worklist, err := BuildWorklist(opts.ImageDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", opts.ImageDir, err)
	}

	path := opts.AnnotationFile
	if !isFile(path) {
		if path != "" {
			log.WithField("annotation_file", path).Warn("annotation file not found, using default location")
		}
		path = filepath.Join(opts.ImageDir, DefaultAnnotationFile)
	}

	var store *storage.Store
	if isFile(path) {
		store, err = storage.Open(path)
		if err != nil {
			return nil, err
		}

		for _, name := range store.Images() {
			if !slices.Contains(worklist, name) {
				log.WithField("image", name).Warn("annotated image is not in the directory")
			}
		}
		worklist = exclude(worklist, store.Has)
	} else {
		store, err = storage.CreateEmpty(path)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
	}

	log.WithFields(logrus.Fields{
		"annotation_file": path,
		"pending":         len(worklist),
		"annotated":       store.Len(),
	}).Info("session started")

	return &Session{
		id:        id,
		imageDir:  opts.ImageDir,
		worklist:  worklist,
		store:     store,
		suggester: opts.Suggester,
		loadImage: opts.LoadImage,
		log:       log,
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Index() int {
	return s.index
}

func (s *Session) Len() int {
	return len(s.worklist)
}

func (s *Session) Worklist() []string {
	out := make([]string, len(s.worklist))
	copy(out, s.worklist)
	return out
}

func (s *Session) AnnotationFile() string {
	return s.store.Path()
}

func (s *Session) Store() *storage.Store {
	return s.store
}

// Current returns the filename under the cursor.
func (s *Session) Current() (string, bool) {
	if len(s.worklist) == 0 {
		return "", false
	}
	return s.worklist[s.index], true
}

// View loads the current image. A stored annotation is restored as is;
// otherwise the classifiers pre-fill the non-subtle flags.
// A suggestion failure is reported in View.SuggestErr and leaves the flags unchecked.
func (s *Session) View(ctx context.Context) (View, error) {
	name, ok := s.Current()
	if !ok {
		return View{}, ErrEmptyWorklist
	}

	v := View{
		Index: s.index,
		Total: len(s.worklist),
		Image: name,
		Path:  filepath.Join(s.imageDir, name),
	}

	log := s.log.WithField("image", name)

	pic, err := s.loadImage(v.Path)
	if err != nil {
		log.WithError(err).Error("failed to load image")
		v.Annotation, v.Restored = s.store.Get(name)
		return v, fmt.Errorf("load %s: %w", name, err)
	}
	v.Picture = pic

	if a, ok := s.store.Get(name); ok {
		v.Annotation = a
		v.Restored = true
		return v, nil
	}

	if s.suggester == nil {
		return v, nil
	}

	suggestion, err := s.suggester.Suggest(ctx, pic)
	if err != nil {
		log.WithError(err).Warn("suggestion failed")
		v.SuggestErr = err
		return v, nil
	}

	v.Suggestion = suggestion
	suggestion.Apply(&v.Annotation)
	return v, nil
}

// Next commits a for the current image and moves forward.
// On the last image the record is still committed and ErrNoMoreImages is returned.
func (s *Session) Next(a models.Annotation) error {
	name, ok := s.Current()
	if !ok {
		return ErrEmptyWorklist
	}

	s.store.Put(name, a)
	s.log.WithField("image", name).Debug("annotation committed")

	if s.index+1 >= len(s.worklist) {
		return ErrNoMoreImages
	}

	s.index++
	return nil
}

// Prev moves back without committing the current state.
func (s *Session) Prev() error {
	if len(s.worklist) == 0 {
		return ErrEmptyWorklist
	}
	if s.index == 0 {
		return ErrNoPrevImages
	}

	s.index--
	return nil
}

// Save overwrites the annotation file with the whole store.
func (s *Session) Save() (string, error) {
	path := s.store.Path()
	if err := s.store.Save(); err != nil {
		s.log.WithError(err).Error("save failed")
		return path, err
	}

	s.log.WithFields(logrus.Fields{"annotation_file": path, "records": s.store.Len()}).Info("annotations saved")
	return path, nil
}

// ExportXLSX writes the store next to the annotation file with an .xlsx extension.
func (s *Session) ExportXLSX() (string, error) {
	csvPath := s.store.Path()
	path := strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".xlsx"

	if err := storage.ExportXLSX(path, s.store); err != nil {
		return path, err
	}

	s.log.WithField("file", path).Info("annotations exported")
	return path, nil
}

func (s *Session) Progress() Progress {
	p := Progress{Total: len(s.worklist)}
	for _, name := range s.worklist {
		if s.store.Has(name) {
			p.Annotated++
		}
	}
	return p
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
