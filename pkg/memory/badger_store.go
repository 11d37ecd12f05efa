package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// collectionKey is the single key the whole memory document lives under.
// The collection never exceeds PersistedCap entries, so one value per
// save keeps reads and writes atomic.
var collectionKey = []byte("mnemo:memories")

// BadgerStore persists the memory collection in a Badger database.
// Like FileStore, saves are serialized by a mutex; Badger gives us an
// atomic value swap on top.
type BadgerStore struct {
	mu     sync.Mutex
	db     *badger.DB
	owned  bool
	logger storeLogger
}

// NewBadgerStore opens a Badger-backed store at the given directory.
func NewBadgerStore(path string, logger storeLogger) (*BadgerStore, error) {
	if logger == nil {
		logger = nopStoreLogger{}
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("memory: open badger store: %w", err)
	}
	return &BadgerStore{db: db, owned: true, logger: logger}, nil
}

// NewBadgerStoreFromDB wraps an externally managed Badger database.
// Close becomes a no-op; the owner closes the database.
func NewBadgerStoreFromDB(db *badger.DB, logger storeLogger) *BadgerStore {
	if logger == nil {
		logger = nopStoreLogger{}
	}
	return &BadgerStore{db: db, logger: logger}
}

// Load reads the collection document. A missing key or corrupt value is
// recovered as an empty collection.
func (s *BadgerStore) Load(ctx context.Context) ([]*Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc collectionDoc
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(collectionKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			s.logger.Warn("memory collection unreadable, starting empty", "error", err)
		}
		return nil, nil
	}

	memories := sanitize(doc.Memories)
	SortNewestFirst(memories)
	return memories, nil
}

// Save writes the collection document, truncated to PersistedCap.
func (s *BadgerStore) Save(ctx context.Context, memories []*Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := append([]*Memory(nil), memories...)
	SortNewestFirst(ordered)
	ordered = Truncate(ordered, PersistedCap)

	data, err := json.Marshal(collectionDoc{Memories: ordered})
	if err != nil {
		return fmt.Errorf("memory: marshal collection: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(collectionKey, data)
	}); err != nil {
		return fmt.Errorf("memory: save collection: %w", err)
	}

	s.logger.Debug("memory collection saved", "entries", len(ordered))
	return nil
}

// Close closes the underlying database when owned by this store.
func (s *BadgerStore) Close() error {
	if !s.owned || s.db == nil {
		return nil
	}
	return s.db.Close()
}
