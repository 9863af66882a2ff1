package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrEmptyCatalog is returned when the artifact contains no records.
	ErrEmptyCatalog = errors.New("catalog artifact contains no records")
	// ErrMissingEmbedding is returned when a record carries no embedding.
	ErrMissingEmbedding = errors.New("record has no embedding")
)

// Store holds the full assessment catalog. It is built once at startup and is
// strictly read-only afterwards, so it is shared across requests without
// locking.
type Store struct {
	records []*AssessmentRecord
	byID    map[string]*AssessmentRecord
	dims    int
}

// Load reads the catalog artifact (a JSON array of records with inline
// embeddings) and builds the store. Any structural problem is a configuration
// error: the process must not serve requests with a half-loaded catalog.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog artifact %q: %w", path, err)
	}

	var records []*AssessmentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing catalog artifact %q: %w", path, err)
	}

	store, err := New(records)
	if err != nil {
		return nil, fmt.Errorf("catalog artifact %q: %w", path, err)
	}

	return store, nil
}

// New builds a store from already-decoded records, deriving categories and
// validating ids and embedding dimensionality.
func New(records []*AssessmentRecord) (*Store, error) {
	if len(records) == 0 {
		return nil, ErrEmptyCatalog
	}

	byID := make(map[string]*AssessmentRecord, len(records))
	dims := 0

	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("record at index %d is null", i)
		}
		if r.ID == "" {
			r.ID = r.URL
		}
		if r.ID == "" {
			return nil, fmt.Errorf("record at index %d has neither id nor url", i)
		}
		if _, exists := byID[r.ID]; exists {
			return nil, fmt.Errorf("duplicate record id %q", r.ID)
		}

		if len(r.Embedding) == 0 {
			return nil, fmt.Errorf("record %q: %w", r.ID, ErrMissingEmbedding)
		}
		if dims == 0 {
			dims = len(r.Embedding)
		} else if len(r.Embedding) != dims {
			return nil, fmt.Errorf("record %q has embedding dimensionality %d, expected %d",
				r.ID, len(r.Embedding), dims)
		}

		r.Category = Classify(r)
		byID[r.ID] = r
	}

	return &Store{records: records, byID: byID, dims: dims}, nil
}

// Records returns the catalog in its original order. Callers must treat the
// returned slice and records as read-only.
func (s *Store) Records() []*AssessmentRecord {
	return s.records
}

// ByID returns the record with the given id, or nil.
func (s *Store) ByID(id string) *AssessmentRecord {
	return s.byID[id]
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// Dimensions returns the embedding dimensionality shared by all records.
func (s *Store) Dimensions() int {
	return s.dims
}
