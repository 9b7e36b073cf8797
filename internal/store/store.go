package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/culler/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSeen = []byte("seen")
)

// SeenStore implements domain.Store using BoltDB.
type SeenStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewSeenStore opens (or creates) the database at dbPath.
// An empty path selects memory-only mode.
func NewSeenStore(dbPath string) (*SeenStore, error) {
	if dbPath == "" {
		// Memory-only mode (no persistence)
		return &SeenStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSeen)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SeenStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *SeenStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SeenStore) get(bucket []byte, key string, dest interface{}) (bool, error) {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return true, json.Unmarshal(data, dest)
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if data == nil {
		return false, nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return true, json.Unmarshal(data, dest)
}

func (s *SeenStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.db != nil {
		err = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucket).Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	// Cache only after the write is durable so a failed save is not visible
	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	return nil
}

func (s *SeenStore) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// === Seen sets ===

// Load returns the persisted seen set for kind (empty if never saved)
func (s *SeenStore) Load(kind domain.Kind) (domain.IDSet, error) {
	var ids []string
	if _, err := s.get(bucketSeen, domain.SeenKey(kind), &ids); err != nil {
		return nil, fmt.Errorf("loading seen %s: %w", kind.Plural(), err)
	}
	return domain.NewIDSet(ids...), nil
}

// Save overwrites the seen set for kind
func (s *SeenStore) Save(kind domain.Kind, ids domain.IDSet) error {
	list := ids.Slice()
	sort.Strings(list) // Stable bytes on disk; order carries no meaning
	if err := s.set(bucketSeen, domain.SeenKey(kind), list); err != nil {
		return fmt.Errorf("saving seen %s: %w", kind.Plural(), err)
	}
	return nil
}

// Reset forgets every reviewed item of kind
func (s *SeenStore) Reset(kind domain.Kind) error {
	return s.delete(bucketSeen, domain.SeenKey(kind))
}
