// Package merkle implements the hy-chain Merkle digest engine: root
// construction over a chunked payload (spec.md §4.D), proof generation, and
// proof verification.
package merkle

import (
	"bytes"

	"github.com/outofthegrid-st/hy-chain/errs"
	"github.com/outofthegrid-st/hy-chain/hashutil"
	"github.com/outofthegrid-st/hy-chain/wire"
)

// leafChunkBytes is the fixed chunk size createRoot splits a serialized
// payload into before hashing each chunk into a leaf digest.
const leafChunkBytes = 1024

// leafAlgorithm is the digest algorithm used for every hash in the Merkle
// construction — leaves, internal nodes, and the empty-payload root.
const leafAlgorithm = hashutil.SHA384

// Side records which side of the running hash a proof step's sibling sits
// on, so VerifyProof can fold correctly regardless of whether the target
// leaf's index was even or odd at a given level.
type Side int

const (
	Right Side = iota
	Left
)

// ProofStep is one level of a Merkle inclusion proof: the sibling digest at
// that level, and the side it sits on relative to the running hash.
type ProofStep struct {
	Sibling *hashutil.HashEntity
	Side    Side
}

// Proof is an ordered list of proof steps, root-ward from the leaf.
type Proof []ProofStep

func hashPair(left, right []byte) ([]byte, error) {
	buf := make([]byte, 0, len(left)+len(right))
	buf = append(buf, left...)
	buf = append(buf, right...)
	e, err := hashutil.HashData(buf, leafAlgorithm, nil)
	if err != nil {
		return nil, err
	}
	return e.Bytes()
}

// computeLevel hashes level pairwise up one level, duplicating the last
// element first if level has odd length, per spec.md §4.D step 3.
func computeLevel(level [][]byte) ([][]byte, error) {
	if len(level)%2 == 1 {
		level = append(level, level[len(level)-1])
	}
	next := make([][]byte, 0, len(level)/2)
	for i := 0; i < len(level); i += 2 {
		h, err := hashPair(level[i], level[i+1])
		if err != nil {
			return nil, err
		}
		next = append(next, h)
	}
	return next, nil
}

// ComputeRoot builds the Merkle root over an ordered list of leaf digests.
// An empty list yields the SHA-384 digest of the empty byte sequence.
func ComputeRoot(leaves []*hashutil.HashEntity) (*hashutil.HashEntity, error) {
	if len(leaves) == 0 {
		return hashutil.HashData(nil, leafAlgorithm, nil)
	}

	level := make([][]byte, len(leaves))
	for i, l := range leaves {
		b, err := l.Bytes()
		if err != nil {
			return nil, err
		}
		level[i] = b
	}

	// Always pair at least once, even for a single leaf: the lone leaf must
	// still be duplicated against itself (spec.md §8 scenario 4), not
	// returned unchanged.
	for {
		next, err := computeLevel(level)
		if err != nil {
			return nil, err
		}
		level = next
		if len(level) == 1 {
			break
		}
	}
	return hashutil.NewHashEntity(level[0]), nil
}

// chunk splits b into fixed leafChunkBytes-sized segments; the final chunk
// may be shorter, and an empty b yields exactly one (empty) chunk.
func chunk(b []byte) [][]byte {
	if len(b) == 0 {
		return [][]byte{{}}
	}
	chunks := make([][]byte, 0, (len(b)+leafChunkBytes-1)/leafChunkBytes)
	for start := 0; start < len(b); start += leafChunkBytes {
		end := start + leafChunkBytes
		if end > len(b) {
			end = len(b)
		}
		chunks = append(chunks, b[start:end])
	}
	return chunks
}

// CreateRoot serializes payload under the canonical wire codec, chunks the
// resulting bytes into 1024-byte segments, hashes each chunk, and returns
// the Merkle root over those leaf digests. This is what makes the root
// deterministic and reproducible by any implementation agreeing on the
// codec, per spec.md §4.D.
func CreateRoot(payload any) (*hashutil.HashEntity, error) {
	body, err := wire.Serialize(payload)
	if err != nil {
		return nil, err
	}
	chunks := chunk(body)
	leaves := make([]*hashutil.HashEntity, len(chunks))
	for i, c := range chunks {
		e, err := hashutil.HashData(c, leafAlgorithm, nil)
		if err != nil {
			return nil, err
		}
		leaves[i] = e
	}
	return ComputeRoot(leaves)
}

// GenerateProof builds an inclusion proof for target within leaves.
func GenerateProof(leaves []*hashutil.HashEntity, target *hashutil.HashEntity) (Proof, error) {
	targetBytes, err := target.Bytes()
	if err != nil {
		return nil, err
	}

	level := make([][]byte, len(leaves))
	index := -1
	for i, l := range leaves {
		b, err := l.Bytes()
		if err != nil {
			return nil, err
		}
		level[i] = b
		if index == -1 && bytes.Equal(b, targetBytes) {
			index = i
		}
	}
	if index == -1 {
		return nil, errs.New(errs.MissingObject, "merkle: target leaf not found")
	}

	var proof Proof
	pos := index
	// Pair at least once, as ComputeRoot does, so a single leaf's proof
	// carries the leaf itself as its right-hand sibling.
	for first := true; first || len(level) > 1; first = false {
		working := level
		if len(working)%2 == 1 {
			working = append(append([][]byte{}, working...), working[len(working)-1])
		}

		var siblingIdx int
		var side Side
		if pos%2 == 0 {
			siblingIdx = pos + 1
			side = Right
		} else {
			siblingIdx = pos - 1
			side = Left
		}
		proof = append(proof, ProofStep{
			Sibling: hashutil.NewHashEntity(working[siblingIdx]),
			Side:    side,
		})

		next := make([][]byte, 0, len(working)/2)
		for i := 0; i < len(working); i += 2 {
			h, err := hashPair(working[i], working[i+1])
			if err != nil {
				return nil, err
			}
			next = append(next, h)
		}
		level = next
		pos = pos / 2
	}

	return proof, nil
}

// VerifyProof folds target's hash with each proof sibling in order and
// compares the result to root byte-for-byte. It never returns an error for
// a mismatch — only false.
func VerifyProof(target *hashutil.HashEntity, proof Proof, root *hashutil.HashEntity) (bool, error) {
	cur, err := target.Bytes()
	if err != nil {
		return false, err
	}
	for _, step := range proof {
		sib, err := step.Sibling.Bytes()
		if err != nil {
			return false, err
		}
		switch step.Side {
		case Right:
			cur, err = hashPair(cur, sib)
		case Left:
			cur, err = hashPair(sib, cur)
		default:
			return false, errs.New(errs.InvalidArgument, "merkle: unknown proof step side")
		}
		if err != nil {
			return false, err
		}
	}
	rootBytes, err := root.Bytes()
	if err != nil {
		return false, err
	}
	return bytes.Equal(cur, rootBytes), nil
}
