// Package kvstore implements the flat key-value persistence used for chat
// state. A value is always a whole serialized record; there is no partial
// update at a finer granularity than a key.
package kvstore

import (
	"os"
	"path"

	"github.com/pkg/errors"

	"gemchat/internal/file"
)

// KV is the persistence port: load, save and remove string values by key.
type KV interface {
	// Load returns the value for key, and whether it was present.
	Load(key string) (string, bool, error)
	// Save writes the value for key, replacing any previous value.
	Save(key, value string) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error
}

// FileKV stores each key as a file under a directory.
type FileKV struct {
	directory string
}

// NewFileKV opens a file-backed store rooted at directory.
func NewFileKV(directory string) (*FileKV, error) {
	if err := file.CreateDirectoryIfNotExist(directory); err != nil {
		return nil, errors.Wrap(err, "creating directory")
	}
	return &FileKV{directory: directory}, nil
}

// Load implements KV.
func (s *FileKV) Load(key string) (string, bool, error) {
	bytes, err := os.ReadFile(path.Join(s.directory, key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "reading value file")
	}
	return string(bytes), true, nil
}

// Save implements KV.
func (s *FileKV) Save(key, value string) error {
	if err := os.WriteFile(path.Join(s.directory, key), []byte(value), 0644); err != nil {
		return errors.Wrap(err, "writing value file")
	}
	return nil
}

// Remove implements KV.
func (s *FileKV) Remove(key string) error {
	err := os.Remove(path.Join(s.directory, key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing value file")
	}
	return nil
}
