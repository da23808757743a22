package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore implements Store in memory for tests
type MemoryStore struct {
	values map[string][]byte
	mu     sync.RWMutex

	// Error injection for testing
	ExistsError error
	GetError    error
	PutError    error
	ListError   error
	// PutErrors fails Put for individual keys
	PutErrors map[string]error

	puts int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:    make(map[string][]byte),
		PutErrors: make(map[string]error),
	}
}

func (m *MemoryStore) Exists(key string) (bool, error) {
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.values[cleaned]
	return ok, nil
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.values[cleaned]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	// Return a copy to avoid external modifications
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Put(key string, data []byte) error {
	if m.PutError != nil {
		return m.PutError
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.PutErrors[cleaned]; err != nil {
		return err
	}
	m.values[cleaned] = append([]byte(nil), data...)
	m.puts++
	return nil
}

func (m *MemoryStore) List(prefix string) ([]Entry, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	cleaned, err := cleanPrefix(prefix)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	dirPrefix := ""
	if cleaned != "" {
		dirPrefix = cleaned + "/"
	}

	children := make(map[string]bool)
	for key := range m.values {
		if !strings.HasPrefix(key, dirPrefix) {
			continue
		}
		rest := strings.TrimPrefix(key, dirPrefix)
		name, _, nested := strings.Cut(rest, "/")
		children[name] = children[name] || nested
	}

	if len(children) == 0 && cleaned != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}

	entries := make([]Entry, 0, len(children))
	for name, isDir := range children {
		entries = append(entries, Entry{Name: name, IsDir: isDir})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Keys returns every stored key in sorted order
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PutCount returns how many successful writes the store has seen
func (m *MemoryStore) PutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}
