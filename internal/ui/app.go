package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"annotator/internal/config"
	"annotator/internal/session"
	"annotator/internal/ui/cwidget"
	"annotator/processing/detector"
)

const (
	MsgNoMoreImages  = "No more images left. Click save progress and close the app."
	MsgNoPrevImages  = "No previous images."
	MsgNoImages      = "No images left to annotate in this folder."
	MsgSavedAt       = "Annotations Saved at "
	MsgExportedTo    = "Annotations exported to "
	MsgNoSuggestions = "Suggestions unavailable: "
)

type AnnotateApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	config *config.Config
	log    logrus.FieldLogger

	loadClassifiers func(*config.Config) (detector.Classifiers, error)
	suggester       *detector.Suggester
	session         *session.Session

	// setup screen
	imageDirInput *cwidget.Input[string]
	annFileInput  *cwidget.Input[string]

	// annotate screen
	imageCanvas   *canvas.Image
	nameLabel     *widget.Label
	progressLabel *widget.Label
	statusLabel   *widget.Label
	checks        [6]*widget.Check
	comments      *widget.Entry
	prevButton    *widget.Button
	nextButton    *widget.Button
}

func CreateApp(cfg *config.Config, log logrus.FieldLogger) *AnnotateApp {
	return newAnnotateApp(app.NewWithID("io.annotator.artifacts"), cfg, log)
}

func newAnnotateApp(fa fyne.App, cfg *config.Config, log logrus.FieldLogger) *AnnotateApp {
	w := fa.NewWindow("Artifact Annotator")
	w.Resize(fyne.NewSize(cfg.WindowWidth, cfg.WindowHeight))

	return &AnnotateApp{
		fyneApp:         fa,
		mainWin:         w,
		config:          cfg,
		log:             log,
		loadClassifiers: detector.LoadClassifiers,
	}
}

func (a *AnnotateApp) Run() {
	a.mainWin.SetContent(a.buildSetupScreen())

	a.mainWin.SetCloseIntercept(func() {
		a.shutdown()
		a.mainWin.Close()
	})

	a.mainWin.CenterOnScreen()
	a.mainWin.ShowAndRun()
}

// shutdown remembers the last used paths and releases the classifiers.
// Unsaved annotations are not written; saving stays an explicit action.
func (a *AnnotateApp) shutdown() {
	if err := a.config.SaveByDefault(); err != nil {
		a.log.WithError(err).Warn("failed to save config")
	}

	if a.suggester != nil {
		if err := a.suggester.Close(); err != nil {
			a.log.WithError(err).Warn("failed to close classifiers")
		}
		a.suggester = nil
	}
}
