// Package store defines the abstract key/value persistence contract
// consumed by the DAG Store (spec.md §6), grounded on the teacher's
// infrastructure/db/database.DataAccessor interface. The persistence
// format itself is out of scope (spec.md §1); this package only fixes the
// contract and ships an in-memory reference implementation.
package store

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Namespace partitions keys, mirroring spec.md §6's
// {blocks, height_index, children, finalized, meta}.
type Namespace string

const (
	NamespaceBlocks      Namespace = "blocks"
	NamespaceHeightIndex Namespace = "height_index"
	NamespaceChildren    Namespace = "children"
	NamespaceFinalized   Namespace = "finalized"
	NamespaceMeta        Namespace = "meta"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("store: key not found")

// KVStore is the abstract persistence contract of spec.md §6.
type KVStore interface {
	Put(ns Namespace, key []byte, value []byte) error
	Get(ns Namespace, key []byte) ([]byte, error)
	Has(ns Namespace, key []byte) (bool, error)
	Delete(ns Namespace, key []byte) error
	IteratePrefix(ns Namespace, prefix []byte, fn func(key, value []byte) error) error
}

// memStore is an in-memory reference KVStore — sufficient for the
// abstract contract; real backends are deliberately out of this core's
// scope.
type memStore struct {
	mu   sync.RWMutex
	data map[Namespace]map[string][]byte
}

// NewMemStore constructs an in-memory KVStore.
func NewMemStore() KVStore {
	return &memStore{data: make(map[Namespace]map[string][]byte)}
}

func (m *memStore) bucket(ns Namespace) map[string][]byte {
	b, ok := m.data[ns]
	if !ok {
		b = make(map[string][]byte)
		m.data[ns] = b
	}
	return b
}

func (m *memStore) Put(ns Namespace, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	m.bucket(ns)[string(key)] = cp
	return nil
}

func (m *memStore) Get(ns Namespace, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.bucket(ns)[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (m *memStore) Has(ns Namespace, key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.bucket(ns)[string(key)]
	return ok, nil
}

func (m *memStore) Delete(ns Namespace, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bucket(ns), string(key))
	return nil
}

func (m *memStore) IteratePrefix(ns Namespace, prefix []byte, fn func(key, value []byte) error) error {
	m.mu.RLock()
	type kv struct {
		k string
		v []byte
	}
	var matches []kv
	for k, v := range m.bucket(ns) {
		if len(k) >= len(prefix) && k[:len(prefix)] == string(prefix) {
			matches = append(matches, kv{k, v})
		}
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].k < matches[j].k })
	for _, e := range matches {
		if err := fn([]byte(e.k), e.v); err != nil {
			return err
		}
	}
	return nil
}
