// Package files stores raw media bytes on local disk behind opaque path
// handles.
package files

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrFileNotExist is returned by Read for a path with no stored file.
var ErrFileNotExist = errors.New("file does not exist")

// DiskStore writes media files under a base directory, one subdirectory per
// owner. File names are random, the returned path is the only handle.
type DiskStore struct {
	logger  *zap.SugaredLogger
	baseDir string
}

// NewDiskStore creates the base directory if needed and returns a store
// writing beneath it.
func NewDiskStore(logger *zap.SugaredLogger, baseDir string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{
		logger:  logger,
		baseDir: baseDir,
	}, nil
}

// Save writes data into the owner's subdirectory and returns the stored
// file's path.
func (s *DiskStore) Save(data []byte, ownerID string) (string, error) {
	dir := filepath.Join(s.baseDir, ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, uuid.New().String())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	s.logger.Debugf("Saved %d bytes to %s", len(data), path)

	return path, nil
}

// Read returns the bytes stored at path.
func (s *DiskStore) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotExist
		}
		return nil, err
	}
	return data, nil
}
