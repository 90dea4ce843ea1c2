package hashutil

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

type fakeToken struct{ cancelled bool }

func (f *fakeToken) Cancelled() bool { return f.cancelled }

func TestHashDataDefaultAlgorithm(t *testing.T) {
	a, err := HashData([]byte("abc"), "", nil)
	if err != nil {
		t.Fatalf("HashData error = %v", err)
	}
	b, err := HashData([]byte("abc"), SHA384, nil)
	if err != nil {
		t.Fatalf("HashData error = %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("default algorithm did not match SHA384")
	}
}

func TestHashDataHMACUsesFirst64BytesOfKey(t *testing.T) {
	longKey := bytes.Repeat([]byte{0x01}, 100)
	truncated := longKey[:64]

	a, err := HashData([]byte("Test content"), SHA256, longKey)
	if err != nil {
		t.Fatalf("HashData error = %v", err)
	}
	b, err := HashData([]byte("Test content"), SHA256, truncated)
	if err != nil {
		t.Fatalf("HashData error = %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("HMAC with a long key did not match HMAC with its first 64 bytes")
	}
}

func TestSignHMACReturns32ByteEntityForSHA256(t *testing.T) {
	key := bytes.Repeat([]byte{0xAB}, 32)
	e, err := Sign(HMACSHA256, []byte("Test content"), key, false, nil)
	if err != nil {
		t.Fatalf("Sign error = %v", err)
	}
	n, err := e.ByteLength()
	if err != nil || n != 32 {
		t.Fatalf("ByteLength() = (%d, %v), want 32", n, err)
	}
}

func TestSignCancelledBeforeDrain(t *testing.T) {
	_, err := Sign(HMACSHA256, []byte("Test content"), []byte("key"), false, &fakeToken{cancelled: true})
	if err == nil {
		t.Fatalf("expected ERR_TOKEN_CANCELLED")
	}
}

func TestSignEd25519RawVsDER(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey error = %v", err)
	}
	_ = pub

	raw, err := Sign(Ed25519Alg, []byte("payload"), priv, true, nil)
	if err != nil {
		t.Fatalf("Sign(raw) error = %v", err)
	}
	rawBytes, _ := raw.Bytes()
	if len(rawBytes) != ed25519.SignatureSize {
		t.Fatalf("raw signature length = %d, want %d", len(rawBytes), ed25519.SignatureSize)
	}

	der, err := Sign(Ed25519Alg, []byte("payload"), priv, false, nil)
	if err != nil {
		t.Fatalf("Sign(der) error = %v", err)
	}
	derBytes, _ := der.Bytes()
	if len(derBytes) <= ed25519.SignatureSize {
		t.Fatalf("expected DER encoding to be longer than raw R||S form")
	}
}

func TestSignECDSAProducesVerifiableDERSignature(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey error = %v", err)
	}

	e, err := Sign(ECDSASHA512, []byte("block bytes"), priv.Serialize(), false, nil)
	if err != nil {
		t.Fatalf("Sign error = %v", err)
	}
	sigBytes, err := e.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	sig, err := dcrecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		t.Fatalf("ParseDERSignature error = %v", err)
	}
	digest, _, err := digestFor(ECDSASHA512, []byte("block bytes"))
	if err != nil {
		t.Fatalf("digestFor error = %v", err)
	}
	if !sig.Verify(digest, priv.PubKey()) {
		t.Fatalf("signature failed to verify against the signing key's public key")
	}
}

func TestSignECDSARejectsWrongKeyLength(t *testing.T) {
	if _, err := Sign(ECDSASHA256, []byte("x"), []byte("too-short"), false, nil); err == nil {
		t.Fatalf("expected error for a non-32-byte ecdsa key")
	}
}

func TestHashEntityDisposal(t *testing.T) {
	e, err := HashData([]byte("x"), SHA256, nil)
	if err != nil {
		t.Fatalf("HashData error = %v", err)
	}
	e.Dispose()
	if _, err := e.Bytes(); err == nil {
		t.Fatalf("expected error reading disposed entity")
	}
}

func TestGenesisPreviousHash(t *testing.T) {
	g := GenesisPreviousHash()
	b, err := g.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if len(b) != 64 {
		t.Fatalf("len = %d, want 64", len(b))
	}
	for _, c := range b {
		if c != '0' {
			t.Fatalf("expected all ASCII '0' bytes, got %q", b)
		}
	}
}
