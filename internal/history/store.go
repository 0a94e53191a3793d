package history

import (
	"encoding/json"
	"errors"
	"fmt"

	"crudecast/internal/blob"
)

// Store persists the prediction history log.
type Store interface {
	Load() ([]PredictionRecord, error)
	Save(records []PredictionRecord) error
}

// BlobStore keeps the history as a single compact JSON object in the
// blob store. Read-modify-write is not guarded against concurrent
// writers; callers running concurrent jobs must serialize externally.
type BlobStore struct {
	store blob.Store
	path  string
}

// NewBlobStore creates a history store writing to path in store.
func NewBlobStore(store blob.Store, path string) *BlobStore {
	return &BlobStore{store: store, path: path}
}

// Load reads the history, tolerating both the bare-list and the
// wrapped {"records": [...]} layouts. A missing blob is an empty
// history, not an error.
func (s *BlobStore) Load() ([]PredictionRecord, error) {
	data, err := s.store.Get(s.path)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var records []PredictionRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Records []PredictionRecord `json:"records"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode history %s: %w", s.path, err)
	}
	return wrapped.Records, nil
}

// Save writes the history as compact JSON.
func (s *BlobStore) Save(records []PredictionRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return s.store.Put(s.path, data)
}
