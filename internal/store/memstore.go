package store

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	cerrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/google/uuid"
)

var _ ProductStore = (*MemStore)(nil)

// MemStore implements ProductStore in process memory. Mutations are
// linearizable per key through compare-and-swap loops on a sync.Map;
// operations on unrelated keys never contend on a shared lock.
type MemStore struct {
	records sync.Map // uuid.UUID -> *memRecord
	seq     atomic.Uint64
}

// memRecord is immutable once stored; overwrites install a fresh record
// so readers never observe a partially applied product.
type memRecord struct {
	product Product
	seq     uint64
}

// NewMemStore creates an empty in-memory product store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Put inserts or overwrites the record at p.ID. An overwrite keeps the
// original insertion sequence so listing order stays stable.
func (s *MemStore) Put(_ context.Context, p Product) error {
	for {
		if cur, ok := s.records.Load(p.ID); ok {
			rec := &memRecord{product: p, seq: cur.(*memRecord).seq}
			if s.records.CompareAndSwap(p.ID, cur, rec) {
				return nil
			}
			// Lost a race on this key, retry against the new state.
			continue
		}
		rec := &memRecord{product: p, seq: s.seq.Add(1)}
		if _, loaded := s.records.LoadOrStore(p.ID, rec); !loaded {
			return nil
		}
	}
}

// Get returns a copy of the live record for the given ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *MemStore) Get(_ context.Context, id uuid.UUID) (*Product, error) {
	v, ok := s.records.Load(id)
	if !ok {
		return nil, cerrors.ErrProductNotFound
	}
	p := v.(*memRecord).product
	return &p, nil
}

// Delete removes the live record for the given ID. A second delete of
// the same ID returns ErrProductNotFound.
func (s *MemStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, loaded := s.records.LoadAndDelete(id); !loaded {
		return cerrors.ErrProductNotFound
	}
	return nil
}

// All returns every live record in insertion order. Each record is
// observed atomically; the slice is a fresh snapshot per call.
func (s *MemStore) All(_ context.Context) ([]Product, error) {
	recs := make([]*memRecord, 0)
	s.records.Range(func(_, v any) bool {
		recs = append(recs, v.(*memRecord))
		return true
	})
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	list := make([]Product, len(recs))
	for i, r := range recs {
		list[i] = r.product
	}
	return list, nil
}
