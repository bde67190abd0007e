package session

import (
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const imagePattern = "*.{png,jpg,jpeg}"

// IsImage reports whether name has a png, jpg or jpeg extension, ignoring case.
func IsImage(name string) bool {
	ok, _ := doublestar.Match(imagePattern, strings.ToLower(name))
	return ok
}

// BuildWorklist lists the image files directly inside dir in lexicographic order.
func BuildWorklist(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	images := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		images = append(images, e.Name())
	}

	sort.Strings(images)
	return images, nil
}

func exclude(list []string, skip func(string) bool) []string {
	out := list[:0]
	for _, name := range list {
		if !skip(name) {
			out = append(out, name)
		}
	}
	return out
}
