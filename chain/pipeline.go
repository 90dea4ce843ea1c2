package chain

import (
	"time"

	"github.com/outofthegrid-st/hy-chain/errs"
	"github.com/outofthegrid-st/hy-chain/hashutil"
	"github.com/outofthegrid-st/hy-chain/ids"
	"github.com/outofthegrid-st/hy-chain/keyobj"
	"github.com/outofthegrid-st/hy-chain/merkle"
	"github.com/outofthegrid-st/hy-chain/storage"
	"github.com/outofthegrid-st/hy-chain/wire"
)

// cancelChecker is the same single-method contract hashutil.CancelChecker
// and keyobj.CancelChecker name; *CancelToken satisfies it structurally, as
// does a nil interface value, which every check below tolerates.
type cancelChecker interface {
	Cancelled() bool
}

// Pipeline assembles and persists blocks, per spec.md §4.H. The signing
// key backs both signatures a block carries: its 32-byte Master() buffer
// doubles as an Ed25519 seed for the content signature and, reinterpreted,
// a secp256k1 scalar for the chaining block signature — see
// hashutil.parseEd25519Key and hashutil.parseECDSAKey.
type Pipeline[P any] struct {
	Store   storage.Storage[*Block[P]]
	SignKey *keyobj.KeyObject
}

// NewPipeline constructs a Pipeline writing to store and signing with key.
func NewPipeline[P any](store storage.Storage[*Block[P]], key *keyobj.KeyObject) *Pipeline[P] {
	return &Pipeline[P]{Store: store, SignKey: key}
}

// BuildGenesisBlock assembles and persists the ledger's first block:
// sequence 0, previousHash fixed to hashutil.GenesisPreviousHash().
func (p *Pipeline[P]) BuildGenesisBlock(token cancelChecker, tx Transaction[P], metadata map[string]any) (*Block[P], error) {
	return p.buildBlock(token, nil, tx, metadata)
}

// BuildNextBlock assembles and persists the block following previous:
// sequence previous.Sequence+1, previousHash = previous.BlockSignature.
func (p *Pipeline[P]) BuildNextBlock(token cancelChecker, previous *Block[P], tx Transaction[P], metadata map[string]any) (*Block[P], error) {
	if previous == nil {
		return nil, errs.New(errs.InvalidArgument, "chain: BuildNextBlock requires a previous block")
	}
	return p.buildBlock(token, previous, tx, metadata)
}

// buildBlock runs steps 1-12 of the assembly sequence of spec.md §4.H for
// both the genesis case (previous == nil) and the general case. It does not
// dispose p.Store; the store stays open for further blocks and is disposed
// by the caller.
func (p *Pipeline[P]) buildBlock(token cancelChecker, previous *Block[P], tx Transaction[P], metadata map[string]any) (*Block[P], error) {
	// 1. Check token; on cancellation fail TOKENCANCELLED.
	if token != nil && token.Cancelled() {
		return nil, errs.New(errs.TokenCancelled, "chain: block assembly cancelled")
	}

	// 2. Capture current millisecond timestamp.
	now := time.Now().UTC()
	ts := uint64(now.UnixMilli())

	// 3. Extract signing-key bytes from the key object.
	signKey, err := p.SignKey.Master()
	if err != nil {
		return nil, err
	}

	// 4. Compute the Merkle root over the whole transaction.
	merkleRoot, err := merkle.CreateRoot(tx)
	if err != nil {
		return nil, err
	}

	// 5. Initialize headers, content length as a placeholder until step 6.
	headers := BlockHeaders{
		TS:            ts,
		Version:       1,
		Nonce:         0,
		ContentLength: ^uint32(0),
		MerkleRoot:    merkleRoot,
		Timestamp:     now.Format(time.RFC3339Nano),
	}

	// 6. Serialize the payload and fix up the real content length.
	serializedPayload, err := wire.Serialize(tx.Payload)
	if err != nil {
		return nil, err
	}
	headers.ContentLength = uint32(len(serializedPayload))

	// 7. Sign the serialized payload with Ed25519.
	contentSignature, err := hashutil.Sign(hashutil.Ed25519Alg, serializedPayload, signKey, true, token)
	if err != nil {
		return nil, err
	}

	// 8. Assemble the block.
	id, err := ids.LongID()
	if err != nil {
		return nil, err
	}
	publicID, err := ids.PublicBlockID()
	if err != nil {
		return nil, err
	}

	var previousHash *hashutil.HashEntity
	var sequence uint32
	if previous == nil {
		previousHash = hashutil.GenesisPreviousHash()
		sequence = 0
	} else {
		previousHash = previous.BlockSignature
		sequence = previous.Sequence + 1
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	block := &Block[P]{
		ID:               id,
		PublicBlockID:    publicID,
		PreviousHash:     previousHash,
		Sequence:         sequence,
		Transaction:      tx,
		Headers:          headers,
		Metadata:         metadata,
		ContentSignature: contentSignature,
	}

	// 9. Serialize the block, minus BlockSignature, under the canonical codec.
	view, err := p.signingView(block)
	if err != nil {
		return nil, err
	}
	serializedBlock, err := wire.Serialize(view)
	if err != nil {
		return nil, err
	}

	// 10. Sign the whole block with ECDSA-SHA512, chaining it to the next.
	blockSignature, err := hashutil.Sign(hashutil.ECDSASHA512, serializedBlock, signKey, false, token)
	if err != nil {
		return nil, err
	}
	block.BlockSignature = blockSignature

	// 11. Re-check token before committing.
	if token != nil && token.Cancelled() {
		return nil, errs.New(errs.TokenCancelled, "chain: block assembly cancelled")
	}

	// 12. Commit.
	ok, err := p.Store.PutBlock(block)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.New(errs.StorageWriteRejected, "chain: storage rejected block write")
	}

	return block, nil
}

// signingView builds the plain-data view of block that step 9 serializes:
// every field but BlockSignature, with HashEntity fields reduced to their
// raw bytes so the signed bytes actually carry their content instead of an
// opaque disposable-resource handle.
func (p *Pipeline[P]) signingView(block *Block[P]) (map[string]any, error) {
	previousHashBytes, err := block.PreviousHash.Bytes()
	if err != nil {
		return nil, err
	}
	merkleRootBytes, err := block.Headers.MerkleRoot.Bytes()
	if err != nil {
		return nil, err
	}
	contentSignatureBytes, err := block.ContentSignature.Bytes()
	if err != nil {
		return nil, err
	}
	payloadBytes, err := wire.Serialize(block.Transaction.Payload)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"id":            block.ID,
		"publicBlockId": block.PublicBlockID,
		"previousHash":  previousHashBytes,
		"sequence":      block.Sequence,
		"transaction": map[string]any{
			"payload":  payloadBytes,
			"sequence": block.Transaction.Sequence,
		},
		"headers": map[string]any{
			"ts":            block.Headers.TS,
			"timestamp":     block.Headers.Timestamp,
			"contentLength": block.Headers.ContentLength,
			"merkleRoot":    merkleRootBytes,
			"version":       block.Headers.Version,
			"nonce":         block.Headers.Nonce,
		},
		"metadata":         block.Metadata,
		"contentSignature": contentSignatureBytes,
	}, nil
}
