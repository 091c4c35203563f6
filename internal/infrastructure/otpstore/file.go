package otpstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ngo-verify-api/internal/domain"
)

// FileStore keeps the OTP mapping in a single JSON flat file, overwritten
// wholesale on every mutation. By default a mutex guards the load-modify-save
// sequence; NewUnsafeFileStore skips the lock to reproduce the historical
// last-save-wins behavior for compatibility testing.
type FileStore struct {
	path string
	mu   sync.Mutex
	lock bool
}

// NewFileStore returns a mutex-guarded flat-file store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, lock: true}
}

// NewUnsafeFileStore returns a store with no mutual exclusion. Concurrent
// requests can lose each other's updates, even for different contacts,
// because Save replaces the entire mapping.
func NewUnsafeFileStore(path string) *FileStore {
	return &FileStore{path: path, lock: false}
}

func (s *FileStore) acquire() func() {
	if !s.lock {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Load reads the full mapping. A missing or unreadable file yields an empty
// map; the failure is logged, never surfaced.
func (s *FileStore) Load(ctx context.Context) (map[string]domain.OTPRecord, error) {
	defer s.acquire()()
	return s.load(), nil
}

// Save persists the full mapping, replacing prior contents. Best-effort:
// write failures are logged, not returned.
func (s *FileStore) Save(ctx context.Context, records map[string]domain.OTPRecord) error {
	defer s.acquire()()
	s.save(records)
	return nil
}

// CleanExpired drops records whose expiry has passed, persists the filtered
// mapping and returns it.
func (s *FileStore) CleanExpired(ctx context.Context) (map[string]domain.OTPRecord, error) {
	defer s.acquire()()
	records := s.load()
	now := time.Now()
	clean := make(map[string]domain.OTPRecord, len(records))
	for email, rec := range records {
		if !rec.ExpiredAt(now) {
			clean[email] = rec
		}
	}
	s.save(clean)
	return clean, nil
}

// Put stores a record for the contact, overwriting any prior pending record.
func (s *FileStore) Put(ctx context.Context, email string, rec domain.OTPRecord) error {
	defer s.acquire()()
	records := s.load()
	records[email] = rec
	s.save(records)
	return nil
}

// Get returns the pending record for the contact, or (nil, nil) if none.
func (s *FileStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	defer s.acquire()()
	records := s.load()
	rec, ok := records[email]
	if !ok {
		return nil, nil
	}
	rec.Email = email
	return &rec, nil
}

// Delete removes the contact's record and persists the result.
func (s *FileStore) Delete(ctx context.Context, email string) error {
	defer s.acquire()()
	records := s.load()
	delete(records, email)
	s.save(records)
	return nil
}

func (s *FileStore) load() map[string]domain.OTPRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not read otp store", "path", s.path, "err", err)
		}
		return map[string]domain.OTPRecord{}
	}
	var records map[string]domain.OTPRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("could not parse otp store", "path", s.path, "err", err)
		return map[string]domain.OTPRecord{}
	}
	if records == nil {
		records = map[string]domain.OTPRecord{}
	}
	return records
}

func (s *FileStore) save(records map[string]domain.OTPRecord) {
	data, err := json.Marshal(records)
	if err != nil {
		slog.Warn("could not marshal otp store", "path", s.path, "err", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		slog.Warn("could not write otp store", "path", s.path, "err", err)
	}
}
