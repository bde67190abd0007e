package detector

import (
	"image"

	"github.com/disintegration/imaging"
)

// LoadImage decodes an image file, applying its EXIF orientation.
func LoadImage(path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// Preprocess resizes img to the fixed network input resolution.
func Preprocess(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Linear)
}
