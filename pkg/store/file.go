package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	errs "diuresults/pkg/errors"
)

// FileStore stores each key as a file below a root directory
type FileStore struct {
	root string
}

// NewFileStore creates root if needed and returns a store over it
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "failed to create store root %s", root)
	}
	return &FileStore{root: root}, nil
}

// Root returns the directory the store writes under
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) filename(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// Exists checks for the file backing key
func (s *FileStore) Exists(key string) (bool, error) {
	filename, err := s.filename(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errs.Wrap(errs.ErrorTypeStorage, err, "failed to stat %s", key)
	}
	return !info.IsDir(), nil
}

// Get reads the file backing key
func (s *FileStore) Get(key string) ([]byte, error) {
	filename, err := s.filename(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "failed to read %s", key)
	}
	return data, nil
}

// Put writes data to a temporary file next to the target, syncs it and
// renames it into place
func (s *FileStore) Put(key string, data []byte) error {
	filename, err := s.filename(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to create directory for %s", key)
	}

	// the leading dot and .tmp suffix keep partial files out of *.json scans
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+"-*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to create temporary file for %s", key)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to write %s", key)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to sync %s", key)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to close %s", key)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to set permissions on %s", key)
	}

	if err := os.Rename(tempPath, filename); err != nil {
		os.Remove(tempPath)
		return errs.Wrap(errs.ErrorTypeStorage, err, "failed to replace %s", key)
	}
	return nil
}

// List reads the directory for prefix. Hidden entries, including in-flight
// temporary files, are omitted.
func (s *FileStore) List(prefix string) ([]Entry, error) {
	cleaned, err := cleanPrefix(prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, prefix)
	}
	dir := filepath.Join(s.root, filepath.FromSlash(cleaned))

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, errs.Wrap(errs.ErrorTypeStorage, err, "failed to list %s", dir)
	}

	// os.ReadDir already returns entries sorted by filename
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), IsDir: de.IsDir()})
	}
	return entries, nil
}
