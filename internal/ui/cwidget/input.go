package cwidget

import (
	"errors"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

var (
	ErrNotExist    = errors.New("path does not exist")
	ErrNotDir      = errors.New("not a directory")
	ErrNotFile     = errors.New("not a regular file")
	ErrPathMissing = errors.New("path is required")
)

type PathKind int

const (
	PathDir PathKind = iota
	PathFile
)

type Input[T any] struct {
	widget.BaseWidget

	labelWidget  *widget.Label
	entryWidget  *widget.Entry
	errorWidget  *widget.Label
	browseButton *widget.Button

	LabelText   string
	Placeholder string

	DefaultValue T
	Value        T

	OnChanged func(T)
	// OnBrowse opens a picker and hands the chosen value to set.
	OnBrowse func(set func(string))

	Validator func(string) (T, error)
}

// NewPathInput creates an entry for a directory or file path with a browse button.
// A required input rejects the empty string; an optional one accepts it as "unset".
func NewPathInput(label, placeholder string, kind PathKind, required bool, onChanged func(string)) *Input[string] {
	input := &Input[string]{
		LabelText:   label,
		Placeholder: placeholder,
		OnChanged:   onChanged,
	}

	input.labelWidget = widget.NewLabel(label)
	input.labelWidget.TextStyle = fyne.TextStyle{Bold: true}

	input.entryWidget = widget.NewEntry()
	input.entryWidget.SetPlaceHolder(placeholder)

	input.errorWidget = widget.NewLabel("")
	input.errorWidget.Hidden = true
	input.errorWidget.TextStyle = fyne.TextStyle{Italic: true}
	input.errorWidget.Importance = widget.DangerImportance

	input.browseButton = widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		if input.OnBrowse != nil {
			input.OnBrowse(input.SetText)
		}
	})

	input.Validator = func(s string) (string, error) {
		s = strings.TrimSpace(s)
		if s == "" {
			if required {
				return "", ErrPathMissing
			}
			return "", nil
		}

		info, err := os.Stat(s)
		if err != nil {
			return s, ErrNotExist
		}

		switch {
		case kind == PathDir && !info.IsDir():
			return s, ErrNotDir
		case kind == PathFile && !info.Mode().IsRegular():
			return s, ErrNotFile
		}

		return s, nil
	}

	input.entryWidget.OnChanged = func(s string) {
		res, err := input.Validator(s)
		input.SetError(err)

		// Invalid paths still propagate; the session decides what to do with them.
		input.Value = res
		if input.OnChanged != nil {
			input.OnChanged(res)
		}
	}

	input.ExtendBaseWidget(input)

	return input
}

func (item *Input[T]) CreateRenderer() fyne.WidgetRenderer {
	c := container.NewVBox(
		item.labelWidget,
		container.NewBorder(nil, nil, nil, item.browseButton, item.entryWidget),
		item.errorWidget,
	)

	return widget.NewSimpleRenderer(c)
}

func (item *Input[T]) SetError(err error) {
	item.errorWidget.Hidden = err == nil
	if err != nil {
		item.errorWidget.SetText(err.Error())
	}
	item.errorWidget.Refresh()
}

func (item *Input[T]) SetText(text string) {
	item.entryWidget.SetText(text)
}

func (item *Input[T]) Text() string {
	return item.entryWidget.Text
}

// Err returns the validation error of the current text, if any.
func (item *Input[T]) Err() error {
	_, err := item.Validator(item.entryWidget.Text)
	return err
}
