package merkletree

import (
	"context"
	"sync"

	"github.com/ccoin/privacypool/internal/field"
)

// nodeKey identifies a single tree node by level and index, grounded on
// the teacher's internal/zkp/merkle.go TreeStore key scheme.
type nodeKey struct {
	level int
	index uint64
}

// InMemoryStore is a process-local Store, suitable for tests and for
// ephemeral/scanning-only tree instances that never need to survive a
// restart. Adapted directly from the teacher's InMemoryTreeStore, with
// root-history bookkeeping added (the teacher's tree has no history/root
// aging concept at all) so InMemoryStore exercises the same
// RecordRoot/LatestPosition/RecentRoots contract storage.PostgresStore
// does, for tests that want in-process restart-recovery coverage
// without a database.
type InMemoryStore struct {
	mu    sync.RWMutex
	nodes map[nodeKey]field.Element

	positions []uint64
	roots     []field.Element
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nodes: make(map[nodeKey]field.Element)}
}

func (s *InMemoryStore) GetNode(_ context.Context, level int, index uint64) (field.Element, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.nodes[nodeKey{level, index}]
	return v, ok, nil
}

func (s *InMemoryStore) SetNode(_ context.Context, level int, index uint64, value field.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[nodeKey{level, index}] = value
	return nil
}

// RecordRoot persists the root observed after the append that brought
// the tree to position leaves, satisfying merkletree.Store.
func (s *InMemoryStore) RecordRoot(_ context.Context, position uint64, root field.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = append(s.positions, position)
	s.roots = append(s.roots, root)
	return nil
}

// LatestPosition returns the highest recorded append position and its
// root, mirroring storage.PostgresStore.LatestPosition for a
// restart-recovery test that doesn't need a real database.
func (s *InMemoryStore) LatestPosition(_ context.Context) (uint64, field.Element, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.positions) == 0 {
		return 0, field.Element{}, false, nil
	}
	last := len(s.positions) - 1
	return s.positions[last], s.roots[last], true, nil
}

// RecentRoots returns the `limit` most recently recorded roots, oldest
// first, mirroring storage.PostgresStore.RecentRoots.
func (s *InMemoryStore) RecentRoots(_ context.Context, limit int) ([]field.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit > len(s.roots) {
		limit = len(s.roots)
	}
	start := len(s.roots) - limit
	out := make([]field.Element, limit)
	copy(out, s.roots[start:])
	return out, nil
}
