// Package store implements the OID Store: a sorted map from OID to
// StoreEntry, queried on every SNMP varbind. Entries are held in a slice
// kept sorted by OID at all times, since the store is built once at
// startup and mutated only by SET / row-create / row-destroy — a sorted
// array plus binary search is the right representation when writes are
// rare and reads dominate.
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/vpbank/snmp_agent/models"
)

// ErrNotFound is returned by Lookup when no entry exists at the given OID.
type notFoundError struct{}

func (notFoundError) Error() string { return "store: not found" }

var ErrNotFound error = notFoundError{}

// Store is the lexicographic OID -> StoreEntry map. Zero value is not
// usable; construct with New.
type Store struct {
	mu      sync.RWMutex
	entries []*models.StoreEntry // always sorted by OID
	byOID   map[string]*models.StoreEntry

	sysUpTimeOID models.OID
	startTime    time.Time
}

// New constructs an empty Store. agentStartTime anchors the dynamic
// sysUpTime.0 computation: sysUpTime.0's value on every read is
// now() - agentStartTime in centiseconds, so the store needs to know when
// the agent started rather than caching a stale value.
func New(sysUpTimeOID models.OID, agentStartTime time.Time) *Store {
	return &Store{
		byOID:        make(map[string]*models.StoreEntry),
		sysUpTimeOID: sysUpTimeOID.Clone(),
		startTime:    agentStartTime,
	}
}

// Lookup returns the entry at oid, or ErrNotFound. sysUpTime.0 is computed
// fresh on every call rather than read from the stored entry.
func (s *Store) Lookup(oid models.OID) (*models.StoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(oid)
}

func (s *Store) lookupLocked(oid models.OID) (*models.StoreEntry, error) {
	e, ok := s.byOID[oid.String()]
	if !ok {
		return nil, ErrNotFound
	}
	if s.sysUpTimeOID != nil && oid.Equal(s.sysUpTimeOID) {
		return s.liveSysUpTime(e), nil
	}
	return e, nil
}

func (s *Store) liveSysUpTime(e *models.StoreEntry) *models.StoreEntry {
	elapsed := time.Since(s.startTime)
	centiseconds := int64(elapsed / (10 * time.Millisecond))
	clone := *e
	clone.Value = centiseconds
	return &clone
}

// Successor returns the smallest entry strictly greater than oid in
// lexicographic order, or ErrNotFound at end-of-MIB. not-accessible and
// accessible-for-notify entries are skipped, though by construction the
// store never holds one: the check is kept as a defensive second line.
func (s *Store) Successor(oid models.OID) (*models.StoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := sort.Search(len(s.entries), func(i int) bool {
		return models.Compare(s.entries[i].OID, oid) > 0
	})
	for idx < len(s.entries) {
		e := s.entries[idx]
		if e.Access.Readable() {
			if s.sysUpTimeOID != nil && e.OID.Equal(s.sysUpTimeOID) {
				return s.liveSysUpTime(e), nil
			}
			return e, nil
		}
		idx++
	}
	return nil, ErrNotFound
}

// Insert adds a new entry, keeping entries sorted. It is an error to
// insert at an OID that already exists.
func (s *Store) Insert(e *models.StoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(e)
}

func (s *Store) insertLocked(e *models.StoreEntry) error {
	key := e.OID.String()
	if _, exists := s.byOID[key]; exists {
		return &duplicateOIDError{oid: key}
	}
	idx := sort.Search(len(s.entries), func(i int) bool {
		return models.Compare(s.entries[i].OID, e.OID) >= 0
	})
	s.entries = append(s.entries, nil)
	copy(s.entries[idx+1:], s.entries[idx:])
	s.entries[idx] = e
	s.byOID[key] = e
	return nil
}

type duplicateOIDError struct{ oid string }

func (d *duplicateOIDError) Error() string { return "store: duplicate OID " + d.oid }

// Remove deletes the entry at oid, if present. Removing a non-existent OID
// is a no-op.
func (s *Store) Remove(oid models.OID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(oid)
}

func (s *Store) removeLocked(oid models.OID) {
	key := oid.String()
	if _, ok := s.byOID[key]; !ok {
		return
	}
	delete(s.byOID, key)
	idx := sort.Search(len(s.entries), func(i int) bool {
		return models.Compare(s.entries[i].OID, oid) >= 0
	})
	if idx < len(s.entries) && s.entries[idx].OID.Equal(oid) {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	}
}

// IterateFrom returns every readable entry with OID strictly greater than
// start, in order, for full walks such as snapshot baking. The returned
// slice is a copy, so concurrent inserts and removals do not change it; the
// entries it points to are shared with the store.
func (s *Store) IterateFrom(start models.OID) []*models.StoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := sort.Search(len(s.entries), func(i int) bool {
		return models.Compare(s.entries[i].OID, start) > 0
	})
	out := make([]*models.StoreEntry, 0, len(s.entries)-idx)
	for ; idx < len(s.entries); idx++ {
		if s.entries[idx].Access.Readable() {
			out = append(out, s.entries[idx])
		}
	}
	return out
}

// Len returns the number of entries currently in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// WithLock runs fn while holding the write lock, for callers (SET
// orchestration, row lifecycle) that must perform several Insert/Remove
// calls as a single atomic unit. fn must use the *_locked helpers exposed
// via the Txn type, not the public Lookup/Insert/Remove (which would
// deadlock by re-acquiring the lock).
func (s *Store) WithLock(fn func(txn *Txn)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&Txn{s: s})
}

// Txn is a handle to the store usable only from within WithLock's
// callback; every method assumes the write lock is already held.
type Txn struct{ s *Store }

func (t *Txn) Lookup(oid models.OID) (*models.StoreEntry, error) { return t.s.lookupLocked(oid) }
func (t *Txn) Insert(e *models.StoreEntry) error                 { return t.s.insertLocked(e) }
func (t *Txn) Remove(oid models.OID)                              { t.s.removeLocked(oid) }

// SetValue overwrites an existing entry's value in place, recording it as a
// runtime write. The entry must already exist; callers validate reachability
// and writability before calling this.
func (t *Txn) SetValue(oid models.OID, value any) error {
	e, err := t.s.lookupLocked(oid)
	if err != nil {
		return err
	}
	e.Value = value
	e.Source = models.SourceRuntimeSet
	e.LastWriteTime = time.Now()
	return nil
}
