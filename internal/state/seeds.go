// Package state persists small pieces of generator state between runs.
package state

import (
	"encoding/json"
	"os"
	"sync"
)

// Seeds remembers the last successful seed per sample, so a good result can
// be regenerated exactly.
type Seeds struct {
	mu   sync.RWMutex
	data map[string]uint64
	path string
}

func NewSeeds(path string) (*Seeds, error) {
	s := &Seeds{
		data: make(map[string]uint64),
		path: path,
	}
	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return s, nil
}

func (s *Seeds) Get(sample string) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[sample]
	return v, ok
}

func (s *Seeds) Set(sample string, seed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sample] = seed
	s.save()
}

func (s *Seeds) All() map[string]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]uint64, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

func (s *Seeds) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &s.data)
}

func (s *Seeds) save() {
	data, _ := json.MarshalIndent(s.data, "", "  ")
	os.WriteFile(s.path, data, 0600)
}
