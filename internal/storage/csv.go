package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"annotator/internal/models"
)

var (
	ErrSchema    = errors.New("annotation file does not match the expected columns")
	ErrDuplicate = errors.New("annotation file lists an image twice")
)

// Open reads an existing annotation file. Columns are matched by header name.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s.path = path
	return s, nil
}

// ReadCSV parses annotation rows from r into a store without a backing path.
func ReadCSV(r io.Reader) (*Store, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: missing header", ErrSchema)
		}
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}

	for _, col := range models.Columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: column %q not found", ErrSchema, col)
		}
	}

	s := NewStore("")
	line := 1

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d", ErrSchema, line, len(rec), len(header))
		}

		image := rec[index[models.ColumnImage]]
		if s.Has(image) {
			return nil, fmt.Errorf("%w: %q on line %d", ErrDuplicate, image, line)
		}

		a := models.Annotation{Comments: rec[index[models.ColumnComments]]}
		for _, col := range models.Columns[1:7] {
			v, err := parseFlag(rec[index[col]])
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, col, err)
			}
			a.SetFlag(col, v)
		}

		s.Put(image, a)
	}

	return s, nil
}

// WriteCSV overwrites path with the header and every record of s.
func WriteCSV(path string, s *Store) error {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func EncodeCSV(w io.Writer, s *Store) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(models.Columns[:]); err != nil {
		return err
	}

	for _, image := range s.order {
		if err := writer.Write(row(image, s.records[image])); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// CreateEmpty writes a header-only annotation file.
func CreateEmpty(path string) (*Store, error) {
	s := NewStore(path)
	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

func row(image string, a models.Annotation) []string {
	out := make([]string, 0, len(models.Columns))
	out = append(out, image)
	for _, f := range a.Flags() {
		out = append(out, formatFlag(f))
	}
	return append(out, a.Comments)
}

func formatFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func parseFlag(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false, fmt.Errorf("invalid flag value %q", s)
	}
	return f != 0, nil
}
