package merkle

import (
	"testing"

	"github.com/outofthegrid-st/hy-chain/hashutil"
	"github.com/outofthegrid-st/hy-chain/wire"
)

func mustLeaf(t *testing.T, s string) *hashutil.HashEntity {
	t.Helper()
	e, err := hashutil.HashData([]byte(s), hashutil.SHA384, nil)
	if err != nil {
		t.Fatalf("HashData error = %v", err)
	}
	return e
}

func TestComputeRootEmptyIsDigestOfEmpty(t *testing.T) {
	root, err := ComputeRoot(nil)
	if err != nil {
		t.Fatalf("ComputeRoot error = %v", err)
	}
	want, err := hashutil.HashData(nil, hashutil.SHA384, nil)
	if err != nil {
		t.Fatalf("HashData error = %v", err)
	}
	if !root.Equal(want) {
		t.Fatalf("empty root did not match digest of empty input")
	}
}

func TestComputeRootSingleLeafDuplicatesItself(t *testing.T) {
	leaf := mustLeaf(t, "only")
	root, err := ComputeRoot([]*hashutil.HashEntity{leaf})
	if err != nil {
		t.Fatalf("ComputeRoot error = %v", err)
	}
	leafBytes, _ := leaf.Bytes()
	want, err := hashPair(leafBytes, leafBytes)
	if err != nil {
		t.Fatalf("hashPair error = %v", err)
	}
	got, _ := root.Bytes()
	if string(got) != string(want) {
		t.Fatalf("single-leaf root did not duplicate the leaf before hashing")
	}
}

func TestComputeRootIsDeterministic(t *testing.T) {
	leaves := []*hashutil.HashEntity{
		mustLeaf(t, "a"), mustLeaf(t, "b"), mustLeaf(t, "c"),
	}
	r1, err := ComputeRoot(leaves)
	if err != nil {
		t.Fatalf("ComputeRoot error = %v", err)
	}
	r2, err := ComputeRoot(leaves)
	if err != nil {
		t.Fatalf("ComputeRoot error = %v", err)
	}
	if !r1.Equal(r2) {
		t.Fatalf("ComputeRoot was not deterministic across calls")
	}
}

func TestComputeRootOddLeafCountDuplicatesLast(t *testing.T) {
	a, b, c := mustLeaf(t, "a"), mustLeaf(t, "b"), mustLeaf(t, "c")
	withThree, err := ComputeRoot([]*hashutil.HashEntity{a, b, c})
	if err != nil {
		t.Fatalf("ComputeRoot error = %v", err)
	}
	withDuplicatedFourth, err := ComputeRoot([]*hashutil.HashEntity{a, b, c, c})
	if err != nil {
		t.Fatalf("ComputeRoot error = %v", err)
	}
	if !withThree.Equal(withDuplicatedFourth) {
		t.Fatalf("odd leaf count did not duplicate the last leaf to pair")
	}
}

func TestCreateRootChunksEmptyPayloadToOneLeaf(t *testing.T) {
	root, err := CreateRoot("")
	if err != nil {
		t.Fatalf("CreateRoot error = %v", err)
	}
	n, err := root.ByteLength()
	if err != nil || n != 48 {
		t.Fatalf("ByteLength() = (%d, %v), want 48 (SHA-384)", n, err)
	}

	body, err := wire.Serialize("")
	if err != nil {
		t.Fatalf("Serialize error = %v", err)
	}
	want, err := ComputeRoot([]*hashutil.HashEntity{mustLeaf(t, string(body))})
	if err != nil {
		t.Fatalf("ComputeRoot error = %v", err)
	}
	if !root.Equal(want) {
		t.Fatalf("CreateRoot(\"\") did not equal the root over its single leaf")
	}
}

func TestGenerateProofRoundTripsThroughVerifyProof(t *testing.T) {
	leaves := []*hashutil.HashEntity{
		mustLeaf(t, "a"), mustLeaf(t, "b"), mustLeaf(t, "c"), mustLeaf(t, "d"), mustLeaf(t, "e"),
	}
	root, err := ComputeRoot(leaves)
	if err != nil {
		t.Fatalf("ComputeRoot error = %v", err)
	}

	for _, leaf := range leaves {
		proof, err := GenerateProof(leaves, leaf)
		if err != nil {
			t.Fatalf("GenerateProof error = %v", err)
		}
		ok, err := VerifyProof(leaf, proof, root)
		if err != nil {
			t.Fatalf("VerifyProof error = %v", err)
		}
		if !ok {
			t.Fatalf("VerifyProof rejected a valid proof")
		}
	}
}

func TestVerifyProofRejectsWrongRoot(t *testing.T) {
	leaves := []*hashutil.HashEntity{mustLeaf(t, "a"), mustLeaf(t, "b"), mustLeaf(t, "c")}
	proof, err := GenerateProof(leaves, leaves[1])
	if err != nil {
		t.Fatalf("GenerateProof error = %v", err)
	}
	ok, err := VerifyProof(leaves[1], proof, mustLeaf(t, "not the root"))
	if err != nil {
		t.Fatalf("VerifyProof error = %v", err)
	}
	if ok {
		t.Fatalf("VerifyProof accepted a proof against the wrong root")
	}
}

func TestGenerateProofMissingLeafFails(t *testing.T) {
	leaves := []*hashutil.HashEntity{mustLeaf(t, "a"), mustLeaf(t, "b")}
	if _, err := GenerateProof(leaves, mustLeaf(t, "absent")); err == nil {
		t.Fatalf("expected error for a leaf not present in the tree")
	}
}
