// Package cache memoizes parsed catalog day pages between runs, so repeated
// crawls of overlapping date ranges skip refetching pages that already parsed
// cleanly.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"git.mills.io/prologic/bitcask"
	log "github.com/sirupsen/logrus"

	"phenofetch/internal/models"
)

// ErrNotFound is returned when a day has no cached catalog.
var ErrNotFound = errors.New("day not found in cache")

// A catalog page for a busy day serializes to a few hundred KB; raise the
// value limit well above bitcask's 64KB default.
const maxValueSize = 1 << 20

// Store wraps a bitcask key/value store of DayCatalog JSON keyed by site and
// date.
type Store struct {
	db        *bitcask.Bitcask
	closeOnce sync.Once
	closeErr  error
}

// Open initializes the cache at path, creating parent directories as needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
	}

	db, err := bitcask.Open(path, bitcask.WithMaxValueSize(maxValueSize))
	if err != nil {
		return nil, fmt.Errorf("opening catalog cache at %s: %w", path, err)
	}
	log.Debugf("Catalog cache opened at %s", path)
	return &Store{db: db}, nil
}

// GetDay returns the cached catalog for a site/date, or ErrNotFound.
func (s *Store) GetDay(siteID string, date time.Time) (*models.DayCatalog, error) {
	raw, err := s.db.Get(dayKey(siteID, date))
	if err != nil {
		if errors.Is(err, bitcask.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	var catalog models.DayCatalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("unmarshalling cached catalog: %w", err)
	}
	return &catalog, nil
}

// PutDay stores the parsed catalog for a site/date.
func (s *Store) PutDay(siteID string, date time.Time, catalog *models.DayCatalog) error {
	raw, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("marshalling catalog for cache: %w", err)
	}
	if err := s.db.Put(dayKey(siteID, date), raw); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying store. Safe to call twice.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func dayKey(siteID string, date time.Time) []byte {
	return []byte(fmt.Sprintf("%s/%s", siteID, date.Format("2006-01-02")))
}
