// Package storage provides flat-file JSON persistence with atomic writes.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/interfaces"
	"github.com/bobmcallan/rebal/internal/models"
)

// FileStore reads and writes JSON documents under a base directory.
type FileStore struct {
	basePath string
	logger   *common.Logger
}

// NewFileStore creates a FileStore and ensures the base directory exists.
func NewFileStore(logger *common.Logger, path string) (*FileStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	logger.Debug().Str("path", path).Msg("FileStore opened")
	return &FileStore{basePath: path, logger: logger}, nil
}

// filePath returns the full path for a named document.
func (fs *FileStore) filePath(name string) string {
	return filepath.Join(fs.basePath, name)
}

// readJSON reads and unmarshals a JSON file. A missing file is reported via
// os.IsNotExist on the wrapped error so callers can treat it as "no data".
func (fs *FileStore) readJSON(name string, dest interface{}) error {
	path := fs.filePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%s is empty", path)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON marshals data to indented JSON and writes it atomically:
// temp file in the same directory, then rename.
func (fs *FileStore) writeJSON(name string, data interface{}) error {
	target := fs.filePath(name)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	tmpFile, err := os.CreateTemp(fs.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// deleteFile removes a named document. Missing files are not an error.
func (fs *FileStore) deleteFile(name string) error {
	err := os.Remove(fs.filePath(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

// --- Session state ---

// StateFile persists the trade journal, holdings, and saved analysis.
type StateFile struct {
	fs     *FileStore
	name   string
	logger *common.Logger
}

// NewStateFile creates a state store writing to the named file.
func NewStateFile(fs *FileStore, name string, logger *common.Logger) *StateFile {
	return &StateFile{fs: fs, name: name, logger: logger}
}

func (s *StateFile) LoadState(ctx context.Context) (*models.PortfolioState, error) {
	var state models.PortfolioState
	if err := s.fs.readJSON(s.name, &state); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if state.Holdings == nil {
		state.Holdings = map[string]models.Holding{}
	}
	if state.Trades == nil {
		state.Trades = []models.Trade{}
	}
	return &state, nil
}

func (s *StateFile) SaveState(ctx context.Context, state *models.PortfolioState) error {
	if err := s.fs.writeJSON(s.name, state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	s.logger.Debug().Int("trades", len(state.Trades)).Int("holdings", len(state.Holdings)).Msg("State saved")
	return nil
}

func (s *StateFile) DeleteState(ctx context.Context) error {
	if err := s.fs.deleteFile(s.name); err != nil {
		return err
	}
	s.logger.Debug().Str("file", s.name).Msg("State deleted")
	return nil
}

// --- Price cache ---

// CacheFile persists resolved prices and exchange rates.
type CacheFile struct {
	fs     *FileStore
	name   string
	logger *common.Logger
}

// NewCacheFile creates a cache store writing to the named file.
func NewCacheFile(fs *FileStore, name string, logger *common.Logger) *CacheFile {
	return &CacheFile{fs: fs, name: name, logger: logger}
}

func (s *CacheFile) LoadCache(ctx context.Context) (*models.PriceCacheFile, error) {
	var cache models.PriceCacheFile
	if err := s.fs.readJSON(s.name, &cache); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if cache.Prices == nil {
		cache.Prices = map[string]models.CachedPrice{}
	}
	if cache.ExchangeRates == nil {
		cache.ExchangeRates = map[string]models.ExchangeRateEntry{}
	}
	return &cache, nil
}

func (s *CacheFile) SaveCache(ctx context.Context, cache *models.PriceCacheFile) error {
	if err := s.fs.writeJSON(s.name, cache); err != nil {
		return fmt.Errorf("failed to save price cache: %w", err)
	}
	s.logger.Debug().Int("prices", len(cache.Prices)).Int("rates", len(cache.ExchangeRates)).Msg("Price cache saved")
	return nil
}

func (s *CacheFile) DeleteCache(ctx context.Context) error {
	if err := s.fs.deleteFile(s.name); err != nil {
		return err
	}
	s.logger.Debug().Str("file", s.name).Msg("Price cache deleted")
	return nil
}

// Interface assertions
var (
	_ interfaces.StateStore = (*StateFile)(nil)
	_ interfaces.CacheStore = (*CacheFile)(nil)
)
