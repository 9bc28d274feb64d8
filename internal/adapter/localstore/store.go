// Package localstore is the append-only file store used when the ledger is
// unreachable. The file holds a JSON array of incidents in insertion order and
// is rewritten wholesale on every append.
//
// Every read and read-modify-write holds an advisory lock on a ".lock" file
// next to the store, so the server and one-shot CLI commands sharing a path
// never lose each other's appends.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/couchcryptid/zyra-incident-service/internal/domain"
)

// Store is a JSON file of incidents guarded by a mutex within the process and
// a file lock across processes.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
	lock   *flock.Flock
}

// New creates a store backed by the file at path. The file is created on first append.
func New(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger, lock: flock.New(path + ".lock")}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Append adds inc after every existing record.
func (s *Store) Append(inc domain.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create local store directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock local store: %w", err)
	}
	defer s.unlock()

	incs, err := s.load()
	if err != nil {
		return err
	}
	incs = append(incs, inc)
	if err := s.save(incs); err != nil {
		return err
	}
	s.logger.Info("incident stored locally", "incident_id", inc.IncidentID, "total", len(incs))
	return nil
}

// LoadAll returns every stored incident in insertion order. A missing file is an empty store.
func (s *Store) LoadAll() ([]domain.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, fs.ErrNotExist) {
		return []domain.Incident{}, nil
	}
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock local store: %w", err)
	}
	defer s.unlock()
	return s.load()
}

func (s *Store) unlock() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("unlock local store", "path", s.path, "error", err)
	}
}

// FindByID returns the first stored incident with the given id.
func (s *Store) FindByID(id string) (domain.Incident, bool, error) {
	incs, err := s.LoadAll()
	if err != nil {
		return domain.Incident{}, false, err
	}
	for _, inc := range incs {
		if inc.IncidentID == id {
			return inc, true, nil
		}
	}
	return domain.Incident{}, false, nil
}

// LoadByLga returns stored incidents whose LGA matches lga exactly.
func (s *Store) LoadByLga(lga string) ([]domain.Incident, error) {
	incs, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	return FilterByLga(incs, lga), nil
}

// CheckReadiness reports whether the store's directory is usable.
func (s *Store) CheckReadiness() error {
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		// Created on first append.
		return nil
	}
	if err != nil {
		return fmt.Errorf("local store directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("local store directory %s is not a directory", dir)
	}
	return nil
}

// FilterByLga keeps incidents whose LGA equals lga exactly. Matching is case-sensitive.
func FilterByLga(incs []domain.Incident, lga string) []domain.Incident {
	out := []domain.Incident{}
	for _, inc := range incs {
		if inc.LGA == lga {
			out = append(out, inc)
		}
	}
	return out
}

func (s *Store) load() ([]domain.Incident, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Incident{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local store: %w", err)
	}
	if len(data) == 0 {
		return []domain.Incident{}, nil
	}
	var incs []domain.Incident
	if err := json.Unmarshal(data, &incs); err != nil {
		return nil, fmt.Errorf("parse local store %s: %w", s.path, err)
	}
	if incs == nil {
		incs = []domain.Incident{}
	}
	return incs, nil
}

// save writes to a temp file in the same directory and renames it over the
// store so readers never see a partial file.
func (s *Store) save(incs []domain.Incident) error {
	dir := filepath.Dir(s.path)
	data, err := json.MarshalIndent(incs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal local store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".incidents-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace local store: %w", err)
	}
	return nil
}
