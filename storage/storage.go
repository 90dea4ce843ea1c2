// Package storage implements the hy-chain block storage interface and its
// reference in-memory backend: a dual id/sequence index kept in lock-step,
// atomic-or-nothing inserts, and a best-effort dispose-callback registry
// (spec.md §4.G).
package storage

import (
	"sort"
	"sync"

	"github.com/outofthegrid-st/hy-chain/errs"
)

// Record is the minimal shape Storage needs from a block type: enough to
// index it, validate it structurally, and order it. chain.Block[P]
// implements this without storage needing to import chain, which would
// otherwise create an import cycle (chain.Pipeline calls into storage).
type Record interface {
	// Valid reports whether the receiver is non-nil / not a zero record.
	Valid() bool
	RecordID() string
	RecordPublicID() string
	RecordSequence() int64
	RecordContentSignature() []byte
	RecordBlockSignature() []byte
}

// Storage is the block storage contract of spec.md §4.G. Every operation
// other than Dispose and OnDispose fails with ERR_RESOURCE_DISPOSED after
// Dispose.
type Storage[B Record] interface {
	// PutBlock returns true if b was newly inserted, false if its id
	// already exists or it fails validation.
	PutBlock(b B) (bool, error)
	GetBlock(id string) (B, bool, error)
	HasBlock(id string) (bool, error)
	GetBlockBySequence(seq int64) (B, bool, error)
	GetLatestBlock() (B, bool, error)
	// GetAllBlocks returns every stored block ordered by ascending sequence.
	GetAllBlocks() ([]B, error)
	Dispose() error
	// OnDispose registers cb to run best-effort (panics swallowed) when
	// Dispose is called. Registering after disposal runs cb immediately.
	OnDispose(cb func())
}

type inMemory[B Record] struct {
	mu        sync.Mutex
	byID      map[string]B
	bySeq     map[int64]B
	onDispose []func()
	disposed  bool
}

// NewInMemory constructs the reference in-memory Storage backend.
func NewInMemory[B Record]() Storage[B] {
	return &inMemory[B]{
		byID:  make(map[string]B),
		bySeq: make(map[int64]B),
	}
}

func (s *inMemory[B]) checkAlive() error {
	if s.disposed {
		return errs.New(errs.ResourceDisposed, "storage: storage handle disposed")
	}
	return nil
}

// validateBlock is a real structural validator (see SPEC_FULL.md §6 for why
// this departs from spec.md's documented always-false reference bug):
// b must be non-nil/non-zero, carry non-empty ids, a non-negative
// sequence, and non-empty content/block signatures. When the store already
// holds a predecessor, sequence must be contiguous; an empty store accepts
// only sequence 0.
func validateBlock[B Record](s *inMemory[B], b B) bool {
	if !b.Valid() {
		return false
	}
	if b.RecordID() == "" || b.RecordPublicID() == "" {
		return false
	}
	if b.RecordSequence() < 0 {
		return false
	}
	if len(b.RecordContentSignature()) == 0 || len(b.RecordBlockSignature()) == 0 {
		return false
	}
	if latest, ok := s.latestLocked(); ok {
		if b.RecordSequence() != latest.RecordSequence()+1 {
			return false
		}
	} else if b.RecordSequence() != 0 {
		return false
	}
	return true
}

func (s *inMemory[B]) latestLocked() (B, bool) {
	var zero B
	var best B
	found := false
	var bestSeq int64
	for seq, blk := range s.bySeq {
		if !found || seq > bestSeq {
			best, bestSeq, found = blk, seq, true
		}
	}
	if !found {
		return zero, false
	}
	return best, true
}

func (s *inMemory[B]) PutBlock(b B) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return false, err
	}
	if _, exists := s.byID[b.RecordID()]; exists {
		return false, nil
	}
	if !validateBlock(s, b) {
		return false, nil
	}
	// Atomic-or-nothing: both indexes gain the entry or neither does.
	s.byID[b.RecordID()] = b
	s.bySeq[b.RecordSequence()] = b
	return true, nil
}

func (s *inMemory[B]) GetBlock(id string) (B, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero B
	if err := s.checkAlive(); err != nil {
		return zero, false, err
	}
	b, ok := s.byID[id]
	return b, ok, nil
}

func (s *inMemory[B]) HasBlock(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return false, err
	}
	_, ok := s.byID[id]
	return ok, nil
}

func (s *inMemory[B]) GetBlockBySequence(seq int64) (B, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero B
	if err := s.checkAlive(); err != nil {
		return zero, false, err
	}
	b, ok := s.bySeq[seq]
	return b, ok, nil
}

func (s *inMemory[B]) GetLatestBlock() (B, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero B
	if err := s.checkAlive(); err != nil {
		return zero, false, err
	}
	b, ok := s.latestLocked()
	if !ok {
		return zero, false, nil
	}
	return b, true, nil
}

func (s *inMemory[B]) GetAllBlocks() ([]B, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkAlive(); err != nil {
		return nil, err
	}
	seqs := make([]int64, 0, len(s.bySeq))
	for seq := range s.bySeq {
		seqs = append(seqs, seq)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	out := make([]B, len(seqs))
	for i, seq := range seqs {
		out[i] = s.bySeq[seq]
	}
	return out, nil
}

func (s *inMemory[B]) Dispose() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	s.byID = nil
	s.bySeq = nil
	callbacks := s.onDispose
	s.onDispose = nil
	s.mu.Unlock()

	for _, cb := range callbacks {
		runSwallowingPanic(cb)
	}
	return nil
}

func (s *inMemory[B]) OnDispose(cb func()) {
	s.mu.Lock()
	disposed := s.disposed
	if !disposed {
		s.onDispose = append(s.onDispose, cb)
	}
	s.mu.Unlock()

	if disposed {
		runSwallowingPanic(cb)
	}
}

func runSwallowingPanic(cb func()) {
	defer func() { recover() }()
	cb()
}
