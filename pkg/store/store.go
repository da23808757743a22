package store

import (
	"errors"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned when a key or listing prefix does not exist
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey is returned for empty, absolute or escaping keys
	ErrInvalidKey = errors.New("invalid key")
)

// Entry is one child of a listed prefix
type Entry struct {
	Name  string
	IsDir bool
}

// Store is the persistence contract used by every stage
type Store interface {
	// Exists reports whether a value is stored under key
	Exists(key string) (bool, error)
	// Get returns the value stored under key, or ErrNotFound
	Get(key string) ([]byte, error)
	// Put stores data under key, replacing any previous value in one step
	Put(key string, data []byte) error
	// List returns the direct children of prefix sorted by name. The empty
	// prefix lists the root.
	List(prefix string) ([]Entry, error)
}

// Join builds a key from its segments
func Join(parts ...string) string {
	return path.Join(parts...)
}

// cleanKey normalises key and rejects anything that would leave the root
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// cleanPrefix is cleanKey that also accepts the root
func cleanPrefix(prefix string) (string, error) {
	if prefix == "" || prefix == "." {
		return "", nil
	}
	return cleanKey(prefix)
}
