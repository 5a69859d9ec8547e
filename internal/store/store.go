package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sift-cli/sift/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketTriage = []byte("triage")
)

// TriageStateStore implements domain.TriageStore using BoltDB. One record per
// folder id, stored as JSON. Reads go through an in-memory cache promoted on
// access; writes are full-record overwrites (last writer wins, no merge).
type TriageStateStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	cache map[string][]byte
}

// NewTriageStateStore opens (or creates) the triage database under baseDir.
// An empty baseDir yields a memory-only store with no persistence.
func NewTriageStateStore(baseDir string) (*TriageStateStore, error) {
	if baseDir == "" {
		return &TriageStateStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(baseDir, "sift.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTriage)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &TriageStateStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *TriageStateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the triage state for a folder. A missing or corrupt record
// yields the default empty state; persistence problems never surface here.
func (s *TriageStateStore) Load(folderID string) domain.TriageState {
	state := domain.NewTriageState()

	// Check memory cache first
	s.mu.RLock()
	data, ok := s.cache[folderID]
	s.mu.RUnlock()

	if !ok && s.db != nil {
		s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucketTriage)
			if b == nil {
				return nil
			}
			if v := b.Get([]byte(folderID)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if data != nil {
			// Promote to memory cache
			s.mu.Lock()
			s.cache[folderID] = data
			s.mu.Unlock()
		}
	}

	if data == nil {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		// Corrupt record: fall back to defaults rather than failing triage
		return domain.NewTriageState()
	}
	state.Normalize()
	return state
}

// Save overwrites the folder's record with the given state.
func (s *TriageStateStore) Save(folderID string, state domain.TriageState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[folderID] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTriage)
		return b.Put([]byte(folderID), data)
	})
}

// SetMark sets an explicit keep/decline mark, or clears it when mark is
// empty. Clearing never touches the soft-touch flag. The read-modify-write
// happens in one synchronous step so overlapping user actions cannot drop
// each other's marks.
func (s *TriageStateStore) SetMark(folderID, itemID string, mark domain.Mark) error {
	state := s.Load(folderID)
	if mark == "" {
		if _, ok := state.Marks[itemID]; !ok {
			return nil // Clearing an absent mark is a no-op
		}
		delete(state.Marks, itemID)
	} else {
		if existing, ok := state.Marks[itemID]; ok && existing == mark {
			return nil // Idempotent: identical persisted state
		}
		state.Marks[itemID] = mark
	}
	return s.Save(folderID, state)
}

// SetSoft flags an item as looked at. Explicit marks always win: the flag is
// only recorded when no mark exists.
func (s *TriageStateStore) SetSoft(folderID, itemID string) error {
	state := s.Load(folderID)
	if _, ok := state.Marks[itemID]; ok {
		return nil
	}
	if state.SoftTouched[itemID] {
		return nil
	}
	state.SoftTouched[itemID] = true
	return s.Save(folderID, state)
}
