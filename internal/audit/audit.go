// Package audit implements the bounded, append-only record of governance
// evaluations: a fixed-capacity FIFO ring keyed by audit_id, with optional
// bbolt-backed persistence so the ring survives a process restart.
package audit

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/hyperjump/govretrieve/internal/models"
)

var bucketName = []byte("audit_records")

// Store holds the most recent records up to Capacity, oldest evicted first.
// Reads and appends are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	capacity int
	order    []string // audit_id insertion order, oldest first
	byID     map[string]models.AuditRecord

	db *bbolt.DB // nil when persistence is disabled
}

// Open builds a Store with the given capacity. If persistencePath is
// non-empty, records are additionally durably appended to a bbolt database
// at that path and the most recent (up to capacity) records are replayed
// into memory on startup.
func Open(capacity int, persistencePath string) (*Store, error) {
	if capacity <= 0 {
		capacity = 1024
	}
	s := &Store{
		capacity: capacity,
		byID:     make(map[string]models.AuditRecord, capacity),
	}

	if persistencePath == "" {
		return s, nil
	}

	db, err := bbolt.Open(persistencePath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit bucket: %w", err)
	}
	s.db = db

	if err := s.replay(); err != nil {
		db.Close()
		return nil, fmt.Errorf("replay audit db: %w", err)
	}
	return s, nil
}

// replay loads the most recent `capacity` records from bbolt into memory,
// oldest first. bbolt iterates in audit_id key order, which does not follow
// insertion, so records are ordered by Timestamp before the ring is filled.
func (s *Store) replay() error {
	var all []models.AuditRecord
	if err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.ForEach(func(k, v []byte) error {
			var rec models.AuditRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode audit record %s: %w", k, err)
			}
			all = append(all, rec)
			return nil
		})
	}); err != nil {
		return err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	if len(all) > s.capacity {
		all = all[len(all)-s.capacity:]
	}
	for _, rec := range all {
		s.order = append(s.order, rec.AuditID)
		s.byID[rec.AuditID] = rec
	}
	return nil
}

// Append adds a record, evicting the oldest if the store is at capacity.
// If persistence is enabled, the record is durably written before the
// in-memory ring is updated; eviction from the in-memory ring never deletes
// the bbolt copy, so the durable log is a complete history even though the
// in-memory ring is bounded.
func (s *Store) Append(rec models.AuditRecord) error {
	if s.db != nil {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal audit record: %w", err)
		}
		if err := s.db.Update(func(tx *bbolt.Tx) error {
			return tx.Bucket(bucketName).Put([]byte(rec.AuditID), data)
		}); err != nil {
			return fmt.Errorf("persist audit record: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[rec.AuditID]; !exists {
		s.order = append(s.order, rec.AuditID)
	}
	s.byID[rec.AuditID] = rec
	for len(s.order) > s.capacity {
		evictID := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, evictID)
	}
	return nil
}

// Get returns the record for audit_id, if it is still in the in-memory ring.
func (s *Store) Get(auditID string) (models.AuditRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[auditID]
	return rec, ok
}

// Len returns the number of records currently held in the in-memory ring.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// All returns a snapshot of every record currently in the in-memory ring,
// most recent last (insertion order). Used by verify_governance_compliance,
// which needs to scan the whole ring for the best match rather than the
// first match above a fixed bar.
func (s *Store) All() []models.AuditRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditRecord, len(s.order))
	for i, id := range s.order {
		out[i] = s.byID[id]
	}
	return out
}

// Close releases the underlying bbolt database, if persistence is enabled.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
