// Package assets stores favicon and preview image bytes per link, outside
// the record store. Files live under assets_dir/links/<link_uuid>/.
//
// Assets are a cache, not a correctness-bearing value: saves are best-effort
// and loads return nil on any failure.
package assets

import (
	"os"
	"path/filepath"

	"github.com/mowens/linkvault/internal/logger"
)

const (
	faviconFile = "favicon.jpg"
	previewFile = "preview.jpg"
)

// Store is a file-based binary side store keyed by link UUID.
type Store struct {
	baseDir string
	log     logger.Logger
}

// New creates a Store rooted at baseDir.
func New(baseDir string, log logger.Logger) *Store {
	return &Store{baseDir: baseDir, log: log}
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// LinkDir returns the canonical directory for a link's assets.
// Path: assets_dir/links/<link_uuid>
func (s *Store) LinkDir(linkUUID string) string {
	return filepath.Join(s.baseDir, "links", linkUUID)
}

// Save writes favicon and/or preview bytes for a link. Failures are logged
// and swallowed; asset loss never aborts a link mutation.
func (s *Store) Save(linkUUID string, favicon, preview []byte) {
	dir := s.LinkDir(linkUUID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.log.Warn("failed to create asset directory",
			logger.String("link", linkUUID), logger.Error(err))
		return
	}

	if favicon != nil {
		if err := writeAtomic(filepath.Join(dir, faviconFile), favicon); err != nil {
			s.log.Warn("failed to save favicon",
				logger.String("link", linkUUID), logger.Error(err))
		}
	}
	if preview != nil {
		if err := writeAtomic(filepath.Join(dir, previewFile), preview); err != nil {
			s.log.Warn("failed to save preview image",
				logger.String("link", linkUUID), logger.Error(err))
		}
	}
}

// LoadFavicon returns the stored favicon bytes, or nil if absent or unreadable.
func (s *Store) LoadFavicon(linkUUID string) []byte {
	data, err := os.ReadFile(filepath.Join(s.LinkDir(linkUUID), faviconFile))
	if err != nil {
		return nil
	}
	return data
}

// LoadPreview returns the stored preview image bytes, or nil if absent or
// unreadable.
func (s *Store) LoadPreview(linkUUID string) []byte {
	data, err := os.ReadFile(filepath.Join(s.LinkDir(linkUUID), previewFile))
	if err != nil {
		return nil
	}
	return data
}

// DeleteLinkDir removes a link's asset directory. Used when a link is
// deleted so asset files don't outlive their record.
func (s *Store) DeleteLinkDir(linkUUID string) error {
	if err := os.RemoveAll(s.LinkDir(linkUUID)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// writeAtomic writes data to a temp file in the same directory and renames
// it into place, so readers never observe a partial file.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
