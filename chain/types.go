// Package chain implements the hy-chain block data model and assembly
// pipeline: Transaction/BlockHeaders/Block (spec.md §3), the genesis and
// follow-on block pipeline (spec.md §4.H), and three supplemented
// concrete adapters (CancelToken, Entropy, MutexRegistry) for contracts
// spec.md only names (§1, §5).
package chain

import (
	"github.com/outofthegrid-st/hy-chain/hashutil"
)

// BlockHeaders carries per-block metadata fixed at assembly time.
type BlockHeaders struct {
	TS            uint64
	Timestamp     string
	ContentLength uint32
	MerkleRoot    *hashutil.HashEntity
	Version       uint32
	Nonce         uint32
}

// Transaction is the single payload a block carries, immutable after
// construction.
type Transaction[P any] struct {
	Payload  P
	Sequence uint32
}

// Block is one entry of the ledger: a transaction, its headers, chaining
// and content signatures, and free-form metadata. See spec.md §3 for the
// field invariants (globally unique ids, contiguous sequence, content
// length agreement, previousHash chaining, blockSignature coverage).
type Block[P any] struct {
	ID               string
	PublicBlockID    string
	PreviousHash     *hashutil.HashEntity
	Sequence         uint32
	Transaction      Transaction[P]
	Headers          BlockHeaders
	Metadata         map[string]any
	ContentSignature *hashutil.HashEntity
	BlockSignature   *hashutil.HashEntity
}

// The following thin accessors implement storage.Record so Block[P] can be
// stored by storage.Storage[*Block[P]] without storage importing chain.

// Valid reports whether the receiver is a non-nil block.
func (b *Block[P]) Valid() bool { return b != nil }

// RecordID returns the block's opaque storage id.
func (b *Block[P]) RecordID() string { return b.ID }

// RecordPublicID returns the block's public-facing id.
func (b *Block[P]) RecordPublicID() string { return b.PublicBlockID }

// RecordSequence returns the block's sequence number as int64, the width
// storage.Record standardizes on.
func (b *Block[P]) RecordSequence() int64 { return int64(b.Sequence) }

// RecordContentSignature returns the content signature's raw bytes, or
// nil if the signature is unset or disposed.
func (b *Block[P]) RecordContentSignature() []byte {
	if b.ContentSignature == nil {
		return nil
	}
	bs, err := b.ContentSignature.Bytes()
	if err != nil {
		return nil
	}
	return bs
}

// RecordBlockSignature returns the chaining signature's raw bytes, or nil
// if the signature is unset or disposed.
func (b *Block[P]) RecordBlockSignature() []byte {
	if b.BlockSignature == nil {
		return nil
	}
	bs, err := b.BlockSignature.Bytes()
	if err != nil {
		return nil
	}
	return bs
}
