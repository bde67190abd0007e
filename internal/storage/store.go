package storage

import "annotator/internal/models"

// Store keeps one annotation per image filename in first-insertion order.
// It is not safe for concurrent use; the UI drives it from a single goroutine.
type Store struct {
	path    string
	order   []string
	records map[string]models.Annotation
}

func NewStore(path string) *Store {
	return &Store{
		path:    path,
		records: make(map[string]models.Annotation),
	}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) Has(image string) bool {
	_, ok := s.records[image]
	return ok
}

func (s *Store) Get(image string) (models.Annotation, bool) {
	a, ok := s.records[image]
	return a, ok
}

// Put stores a under image, replacing any previous record.
func (s *Store) Put(image string, a models.Annotation) {
	if _, ok := s.records[image]; !ok {
		s.order = append(s.order, image)
	}
	s.records[image] = a
}

// Images returns the stored filenames in serialization order.
func (s *Store) Images() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Save overwrites the store file with every record.
func (s *Store) Save() error {
	return WriteCSV(s.path, s)
}
