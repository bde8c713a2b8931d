package emailstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStore persists records as a single JSON array. The whole
// load/check/append/persist cycle runs under a cross-process exclusive file
// lock, and the rewrite goes through a temp file plus rename so a crashed
// writer never leaves a torn store behind.
type FileStore struct {
	path   string
	lock   *flock.Flock
	limits Limits
}

// NewFileStore creates the parent directory as needed. The store file itself
// is created lazily on first save.
func NewFileStore(path string, limits Limits) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("email store dir: %w", err)
	}
	return &FileStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		limits: limits,
	}, nil
}

func (s *FileStore) Save(ctx context.Context, rec Record) (SaveStatus, error) {
	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return 0, fmt.Errorf("email store lock: %w", err)
	}
	defer s.lock.Unlock()

	if s.limits.MaxBytes > 0 {
		info, err := os.Stat(s.path)
		if err == nil && info.Size() > s.limits.MaxBytes {
			return StatusDropped, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("email store stat: %w", err)
		}
	}

	records, err := s.load()
	if err != nil {
		return 0, err
	}

	if s.limits.MaxRecords > 0 && len(records) >= s.limits.MaxRecords {
		return StatusDropped, nil
	}

	for _, existing := range records {
		if strings.EqualFold(existing.Email, rec.Email) {
			return StatusDuplicate, nil
		}
	}

	records = append(records, rec)
	if err := s.persist(records); err != nil {
		return 0, err
	}
	return StatusStored, nil
}

func (s *FileStore) Count(ctx context.Context) (int, error) {
	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return 0, fmt.Errorf("email store lock: %w", err)
	}
	defer s.lock.Unlock()

	records, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("email store read: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("email store decode: %w", err)
	}
	return records, nil
}

func (s *FileStore) persist(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("email store encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".emails-*")
	if err != nil {
		return fmt.Errorf("email store temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("email store write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("email store close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("email store rename: %w", err)
	}
	return nil
}
