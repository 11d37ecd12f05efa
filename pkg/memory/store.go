package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the interface for memory collection persistence. The whole
// collection is read and written as one document; backends guard their
// own save path so concurrent writers cannot interleave a single write.
type Store interface {
	// Load returns the collection sorted newest-first. A missing or
	// unparsable document yields an empty collection, never an error.
	Load(ctx context.Context) ([]*Memory, error)

	// Save persists the collection, truncating to the PersistedCap most
	// recent entries first. The truncation is a deliberate retention
	// policy, not a defect.
	Save(ctx context.Context, memories []*Memory) error

	Close() error
}

// storeLogger is the minimal logger interface used by store backends.
type storeLogger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopStoreLogger struct{}

func (nopStoreLogger) Debug(msg string, args ...any) {}
func (nopStoreLogger) Warn(msg string, args ...any)  {}

// collectionDoc is the persisted document shape. There is no schema
// versioning: records missing required fields are skipped on load.
type collectionDoc struct {
	Memories []*Memory `json:"memories"`
}

// SortNewestFirst orders memories by Created descending, in place.
func SortNewestFirst(memories []*Memory) {
	sort.SliceStable(memories, func(i, j int) bool {
		return memories[i].Created.After(memories[j].Created)
	})
}

// Truncate returns at most cap entries, keeping the most recent.
// The input must already be sorted newest-first.
func Truncate(memories []*Memory, cap int) []*Memory {
	if len(memories) <= cap {
		return memories
	}
	return memories[:cap]
}

// NextSessionID returns the session ID a new memory should join: the most
// recent memory's session when its age is under SessionWindow, otherwise
// a freshly minted ID. The input must be sorted newest-first.
func NextSessionID(memories []*Memory, now time.Time) string {
	if len(memories) > 0 && memories[0].SessionID != "" {
		if now.Sub(memories[0].Created) < SessionWindow {
			return memories[0].SessionID
		}
	}
	return uuid.New().String()
}

// sanitize drops records that lost required fields (no id or content),
// treating them as absent data rather than a parse error.
func sanitize(memories []*Memory) []*Memory {
	out := memories[:0]
	for _, m := range memories {
		if m == nil || m.ID == "" || m.Content == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FileStore persists the collection as a single JSON document on disk.
// Saves are atomic (write temp file, rename over) and serialized by a
// mutex, which is the concurrency decision for the load-then-save race:
// a single writer per store instance.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger storeLogger
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string, logger storeLogger) *FileStore {
	if logger == nil {
		logger = nopStoreLogger{}
	}
	return &FileStore{path: path, logger: logger}
}

// Load reads the collection document. Missing or corrupt storage is
// recovered as an empty collection.
func (s *FileStore) Load(ctx context.Context) ([]*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		s.logger.Warn("memory store unreadable, starting empty", "path", s.path, "error", err)
		return nil, nil
	}

	var doc collectionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("memory store unparsable, starting empty", "path", s.path, "error", err)
		return nil, nil
	}

	memories := sanitize(doc.Memories)
	SortNewestFirst(memories)
	return memories, nil
}

// Save writes the collection document atomically, truncated to the
// PersistedCap most recent entries.
func (s *FileStore) Save(ctx context.Context, memories []*Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := append([]*Memory(nil), memories...)
	SortNewestFirst(ordered)
	ordered = Truncate(ordered, PersistedCap)

	data, err := json.MarshalIndent(collectionDoc{Memories: ordered}, "", "  ")
	if err != nil {
		return fmt.Errorf("memory: marshal collection: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("memory: create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".memories-*.json")
	if err != nil {
		return fmt.Errorf("memory: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("memory: write collection: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("memory: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("memory: replace collection: %w", err)
	}

	s.logger.Debug("memory collection saved", "path", s.path, "entries", len(ordered))
	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}
