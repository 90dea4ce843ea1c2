package storage

import "testing"

type testBlock struct {
	id       string
	publicID string
	sequence int64
	content  []byte
	sig      []byte
	nilRecv  bool
}

func (b *testBlock) Valid() bool                    { return b != nil && !b.nilRecv }
func (b *testBlock) RecordID() string               { return b.id }
func (b *testBlock) RecordPublicID() string         { return b.publicID }
func (b *testBlock) RecordSequence() int64          { return b.sequence }
func (b *testBlock) RecordContentSignature() []byte { return b.content }
func (b *testBlock) RecordBlockSignature() []byte   { return b.sig }

func genesis() *testBlock {
	return &testBlock{id: "id-0", publicID: "pub-0", sequence: 0, content: []byte("c"), sig: []byte("s")}
}

func next(prev *testBlock) *testBlock {
	return &testBlock{
		id: prev.id + "-next", publicID: prev.publicID + "-next",
		sequence: prev.sequence + 1, content: []byte("c"), sig: []byte("s"),
	}
}

func TestPutBlockAcceptsGenesisThenContiguousSequence(t *testing.T) {
	s := NewInMemory[*testBlock]()
	g := genesis()
	ok, err := s.PutBlock(g)
	if err != nil || !ok {
		t.Fatalf("PutBlock(genesis) = (%v, %v), want (true, nil)", ok, err)
	}

	n := next(g)
	ok, err = s.PutBlock(n)
	if err != nil || !ok {
		t.Fatalf("PutBlock(next) = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestPutBlockRejectsDuplicateID(t *testing.T) {
	s := NewInMemory[*testBlock]()
	g := genesis()
	if ok, err := s.PutBlock(g); err != nil || !ok {
		t.Fatalf("first PutBlock failed: (%v, %v)", ok, err)
	}
	if ok, err := s.PutBlock(g); err != nil || ok {
		t.Fatalf("PutBlock(duplicate id) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestPutBlockRejectsNonGenesisFirstBlock(t *testing.T) {
	s := NewInMemory[*testBlock]()
	b := &testBlock{id: "id-1", publicID: "pub-1", sequence: 1, content: []byte("c"), sig: []byte("s")}
	ok, err := s.PutBlock(b)
	if err != nil || ok {
		t.Fatalf("PutBlock(sequence=1 as first block) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestPutBlockRejectsNonContiguousSequence(t *testing.T) {
	s := NewInMemory[*testBlock]()
	g := genesis()
	if ok, _ := s.PutBlock(g); !ok {
		t.Fatalf("PutBlock(genesis) failed")
	}
	skip := &testBlock{id: "id-skip", publicID: "pub-skip", sequence: 5, content: []byte("c"), sig: []byte("s")}
	ok, err := s.PutBlock(skip)
	if err != nil || ok {
		t.Fatalf("PutBlock(non-contiguous) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestPutBlockRejectsMissingSignatures(t *testing.T) {
	s := NewInMemory[*testBlock]()
	b := &testBlock{id: "id-0", publicID: "pub-0", sequence: 0}
	ok, err := s.PutBlock(b)
	if err != nil || ok {
		t.Fatalf("PutBlock(missing signatures) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestDualIndexStaysInLockStep(t *testing.T) {
	s := NewInMemory[*testBlock]()
	g := genesis()
	if ok, _ := s.PutBlock(g); !ok {
		t.Fatalf("PutBlock failed")
	}

	byID, ok, err := s.GetBlock(g.id)
	if err != nil || !ok || byID != g {
		t.Fatalf("GetBlock(%q) = (%v, %v, %v), want (genesis, true, nil)", g.id, byID, ok, err)
	}
	bySeq, ok, err := s.GetBlockBySequence(0)
	if err != nil || !ok || bySeq != g {
		t.Fatalf("GetBlockBySequence(0) = (%v, %v, %v), want (genesis, true, nil)", bySeq, ok, err)
	}
}

func TestGetLatestBlockReturnsMaxSequence(t *testing.T) {
	s := NewInMemory[*testBlock]()
	g := genesis()
	n1 := next(g)
	n2 := next(n1)
	for _, b := range []*testBlock{g, n1, n2} {
		if ok, err := s.PutBlock(b); err != nil || !ok {
			t.Fatalf("PutBlock(%q) failed: (%v, %v)", b.id, ok, err)
		}
	}
	latest, ok, err := s.GetLatestBlock()
	if err != nil || !ok || latest != n2 {
		t.Fatalf("GetLatestBlock() = (%v, %v, %v), want (%v, true, nil)", latest, ok, err, n2)
	}
}

func TestGetAllBlocksOrderedBySequence(t *testing.T) {
	s := NewInMemory[*testBlock]()
	g := genesis()
	n1 := next(g)
	n2 := next(n1)
	for _, b := range []*testBlock{g, n1, n2} {
		if ok, err := s.PutBlock(b); err != nil || !ok {
			t.Fatalf("PutBlock(%q) failed: (%v, %v)", b.id, ok, err)
		}
	}
	all, err := s.GetAllBlocks()
	if err != nil {
		t.Fatalf("GetAllBlocks error = %v", err)
	}
	if len(all) != 3 || all[0] != g || all[1] != n1 || all[2] != n2 {
		t.Fatalf("GetAllBlocks() did not return blocks in ascending sequence order")
	}
}

func TestDisposeIsIdempotentAndFailsFurtherAccess(t *testing.T) {
	s := NewInMemory[*testBlock]()
	if ok, _ := s.PutBlock(genesis()); !ok {
		t.Fatalf("PutBlock failed")
	}
	if err := s.Dispose(); err != nil {
		t.Fatalf("Dispose error = %v", err)
	}
	if err := s.Dispose(); err != nil {
		t.Fatalf("second Dispose error = %v, want nil (idempotent)", err)
	}
	if _, _, err := s.GetBlock("id-0"); err == nil {
		t.Fatalf("expected ERR_RESOURCE_DISPOSED after dispose")
	}
}

func TestOnDisposeCallbacksRunBestEffort(t *testing.T) {
	s := NewInMemory[*testBlock]()
	ran := false
	s.OnDispose(func() { ran = true })
	s.OnDispose(func() { panic("boom") }) // must not prevent other callbacks or Dispose itself

	if err := s.Dispose(); err != nil {
		t.Fatalf("Dispose error = %v", err)
	}
	if !ran {
		t.Fatalf("expected onDispose callback to run")
	}
}

func TestOnDisposeAfterDisposeRunsImmediately(t *testing.T) {
	s := NewInMemory[*testBlock]()
	if err := s.Dispose(); err != nil {
		t.Fatalf("Dispose error = %v", err)
	}
	ran := false
	s.OnDispose(func() { ran = true })
	if !ran {
		t.Fatalf("expected OnDispose registered after disposal to run immediately")
	}
}
