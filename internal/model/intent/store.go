package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNoIntents is returned when an intents document holds no usable intent.
var ErrNoIntents = errors.New("no intents defined")

// Store exposes intent retrieval for the classifier and HTTP handlers.
type Store interface {
	List() []Intent
	FindByTag(tag string) (Intent, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Intent
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied intents.
func NewMemoryStore(items []Intent) *MemoryStore {
	return &MemoryStore{items: append([]Intent(nil), items...)}
}

// List returns the stored intents.
func (s *MemoryStore) List() []Intent {
	return append([]Intent(nil), s.items...)
}

// FindByTag looks up an intent by tag.
func (s *MemoryStore) FindByTag(tag string) (Intent, bool) {
	for _, item := range s.items {
		if item.Tag == tag {
			return item, true
		}
	}
	return Intent{}, false
}

type document struct {
	Intents []Intent `json:"intents"`
}

// Decode parses an intents document of the form {"intents": [...]}.
func Decode(data []byte) ([]Intent, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode intents: %w", err)
	}

	items := make([]Intent, 0, len(doc.Intents))
	for i, item := range doc.Intents {
		if item.Tag == "" {
			return nil, fmt.Errorf("intent #%d has no tag", i)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, ErrNoIntents
	}
	return items, nil
}

// LoadFile reads an intents document from disk.
func LoadFile(path string) ([]Intent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read intents file: %w", err)
	}
	return Decode(data)
}
