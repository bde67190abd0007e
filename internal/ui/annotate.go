package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"annotator/internal/models"
	"annotator/internal/session"
)

const inferenceTimeout = 30 * time.Second

var checkLabels = [6]string{
	"Ruler",
	"Border",
	"Stain",
	"Subtle ruler",
	"Subtle border",
	"Subtle stain",
}

func (a *AnnotateApp) buildAnnotateScreen() fyne.CanvasObject {
	a.imageCanvas = canvas.NewImageFromImage(nil)
	a.imageCanvas.FillMode = canvas.ImageFillContain
	a.imageCanvas.SetMinSize(fyne.NewSize(640, 480))

	a.nameLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	a.progressLabel = widget.NewLabel("")
	a.statusLabel = widget.NewLabel("")
	a.statusLabel.Wrapping = fyne.TextWrapWord

	for i, label := range checkLabels {
		a.checks[i] = widget.NewCheck(label, nil)
	}

	a.comments = widget.NewEntry()
	a.comments.SetPlaceHolder("Comments")

	a.prevButton = widget.NewButtonWithIcon("Prev", theme.NavigateBackIcon(), a.showPrevImage)
	a.nextButton = widget.NewButtonWithIcon("Next", theme.NavigateNextIcon(), a.showNextImage)
	saveButton := widget.NewButtonWithIcon("Save progress", theme.DocumentSaveIcon(), a.saveAnnotations)
	exportButton := widget.NewButtonWithIcon("Export XLSX", theme.DownloadIcon(), a.exportAnnotations)

	imageContainer := container.NewBorder(a.nameLabel, nil, nil, nil, a.imageCanvas)

	sidebar := container.NewVBox(
		widget.NewLabelWithStyle("Artifacts", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.checks[0], a.checks[1], a.checks[2],
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Subtle", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		a.checks[3], a.checks[4], a.checks[5],
		widget.NewSeparator(),
		a.comments,
		widget.NewSeparator(),
		container.NewGridWithColumns(2, a.prevButton, a.nextButton),
		saveButton,
		exportButton,
		widget.NewSeparator(),
		a.progressLabel,
		a.statusLabel,
	)

	split := container.NewHSplit(
		container.NewPadded(imageContainer),
		container.NewPadded(sidebar),
	)
	split.SetOffset(0.75)

	a.bindShortcuts()

	return split
}

func (a *AnnotateApp) bindShortcuts() {
	c := a.mainWin.Canvas()

	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		a.saveAnnotations()
	})

	c.SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyRight:
			a.showNextImage()
		case fyne.KeyLeft:
			a.showPrevImage()
		}
	})
}

// showImage renders the current image and either its stored annotation
// or the classifier suggestions.
func (a *AnnotateApp) showImage() {
	a.updateProgress()

	ctx, cancel := context.WithTimeout(context.Background(), inferenceTimeout)
	defer cancel()

	v, err := a.session.View(ctx)
	if errors.Is(err, session.ErrEmptyWorklist) {
		a.prevButton.Disable()
		a.nextButton.Disable()
		a.nameLabel.SetText("")
		a.statusLabel.SetText(MsgNoImages)
		return
	}

	a.nameLabel.SetText(v.Image)
	a.setAnnotation(v.Annotation)

	a.imageCanvas.Image = v.Picture
	a.imageCanvas.Refresh()

	switch {
	case err != nil:
		a.statusLabel.SetText(err.Error())
	case v.SuggestErr != nil:
		a.statusLabel.SetText(MsgNoSuggestions + v.SuggestErr.Error())
	}
}

func (a *AnnotateApp) showNextImage() {
	if a.session == nil {
		return
	}

	err := a.session.Next(a.currentAnnotation())
	switch {
	case errors.Is(err, session.ErrNoMoreImages):
		a.updateProgress()
		a.statusLabel.SetText(MsgNoMoreImages)
		return
	case errors.Is(err, session.ErrEmptyWorklist):
		return
	}

	a.statusLabel.SetText("")
	a.showImage()
}

func (a *AnnotateApp) showPrevImage() {
	if a.session == nil {
		return
	}

	err := a.session.Prev()
	switch {
	case errors.Is(err, session.ErrNoPrevImages):
		a.statusLabel.SetText(MsgNoPrevImages)
		return
	case errors.Is(err, session.ErrEmptyWorklist):
		return
	}

	a.statusLabel.SetText("")
	a.showImage()
}

func (a *AnnotateApp) saveAnnotations() {
	if a.session == nil {
		return
	}

	path, err := a.session.Save()
	if err != nil {
		dialog.ShowError(err, a.mainWin)
		return
	}

	a.statusLabel.SetText(MsgSavedAt + path)
}

func (a *AnnotateApp) exportAnnotations() {
	if a.session == nil {
		return
	}

	path, err := a.session.ExportXLSX()
	if err != nil {
		dialog.ShowError(err, a.mainWin)
		return
	}

	a.statusLabel.SetText(MsgExportedTo + path)
}

func (a *AnnotateApp) currentAnnotation() models.Annotation {
	ann := models.Annotation{Comments: a.comments.Text}
	for i, check := range a.checks {
		ann.SetFlag(models.Columns[i+1], check.Checked)
	}
	return ann
}

func (a *AnnotateApp) setAnnotation(ann models.Annotation) {
	for i, flag := range ann.Flags() {
		a.checks[i].SetChecked(flag)
	}
	a.comments.SetText(ann.Comments)
}

func (a *AnnotateApp) updateProgress() {
	p := a.session.Progress()
	if p.Total == 0 {
		a.progressLabel.SetText("")
		return
	}
	a.progressLabel.SetText(fmt.Sprintf("Image %d of %d, %d annotated", a.session.Index()+1, p.Total, p.Annotated))
}
