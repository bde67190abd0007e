package ui

import (
	"errors"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"annotator/internal/config"
	"annotator/internal/session"
	"annotator/internal/ui/cwidget"
	"annotator/processing/detector"
)

func (a *AnnotateApp) buildSetupScreen() fyne.CanvasObject {
	title := widget.NewLabelWithStyle("Annotation setup", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	a.imageDirInput = cwidget.NewPathInput(
		"Image folder",
		"/path/to/images",
		cwidget.PathDir,
		true,
		a.config.SetImageDir,
	)
	a.imageDirInput.OnBrowse = func(set func(string)) {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err == nil && uri != nil {
				set(uri.Path())
			}
		}, a.mainWin)
	}

	a.annFileInput = cwidget.NewPathInput(
		"Annotation file (optional)",
		"/path/to/annotations.csv",
		cwidget.PathFile,
		false,
		a.config.SetAnnotationFile,
	)
	a.annFileInput.OnBrowse = func(set func(string)) {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err == nil && reader != nil {
				set(reader.URI().Path())
				reader.Close()
			}
		}, a.mainWin)
	}

	a.imageDirInput.SetText(a.config.GetImageDir())
	a.annFileInput.SetText(a.config.GetAnnotationFile())

	backendSelect := widget.NewSelect(config.BackendsList[:], func(s string) {
		a.config.Backend = config.BackendType(s)
	})
	backendSelect.SetSelected(string(a.config.Backend))

	form := container.NewVBox(
		title,
		widget.NewSeparator(),
		a.imageDirInput,
		a.annFileInput,
		widget.NewLabel("Classifier backend:"),
		backendSelect,
		widget.NewSeparator(),
		widget.NewButtonWithIcon("Start annotating", theme.MediaPlayIcon(), a.startAnnotation),
	)

	return container.NewCenter(container.NewGridWrap(fyne.NewSize(560, 420), form))
}

// startAnnotation loads the classifiers and the session, then switches screens.
// An empty image folder is ignored without a message.
func (a *AnnotateApp) startAnnotation() {
	imageDir := strings.TrimSpace(a.config.GetImageDir())
	if imageDir == "" {
		return
	}

	classifiers, err := a.loadClassifiers(a.config)
	if err != nil {
		a.log.WithError(err).Error("failed to load classifiers")
		dialog.ShowError(err, a.mainWin)
		return
	}

	suggester := detector.NewSuggester(classifiers, a.config.InputWidth, a.config.InputHeight, a.log)

	sess, err := session.Start(session.Options{
		ImageDir:       imageDir,
		AnnotationFile: strings.TrimSpace(a.config.GetAnnotationFile()),
		Suggester:      suggester,
		Log:            a.log,
	})
	if err != nil {
		suggester.Close()
		if errors.Is(err, session.ErrNoImageDir) {
			return
		}
		a.log.WithError(err).Error("failed to start session")
		dialog.ShowError(err, a.mainWin)
		return
	}

	if a.suggester != nil {
		a.suggester.Close()
	}
	a.suggester = suggester
	a.session = sess
	a.config.SetAnnotationFile(sess.AnnotationFile())

	a.mainWin.SetContent(a.buildAnnotateScreen())
	a.showImage()
}
