// Package hashutil implements the hy-chain digest and signature primitives:
// a disposable, byte-exact HashEntity container (spec.md §3), one-shot and
// HMAC hashing (spec.md §4.C "hashData"), and the multi-algorithm signer
// dispatcher (spec.md §4.C "sign").
package hashutil

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/outofthegrid-st/hy-chain/errs"
)

// HashEntity owns an immutable byte sequence representing a digest or
// signature. Its bytes never mutate after construction; equality is
// byte-exact. It is a scoped resource — once disposed, every accessor
// fails with ERR_RESOURCE_DISPOSED.
type HashEntity struct {
	b        []byte
	disposed bool
}

// NewHashEntity wraps b, copying it so the caller's slice may be reused.
func NewHashEntity(b []byte) *HashEntity {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &HashEntity{b: cp}
}

// GenesisPreviousHash returns the fixed genesis marker: the ASCII bytes of
// "0" repeated 64 times, per spec.md §6. This is the single constructor for
// that value so the zeroed-digest representation spec.md §9 warns against
// never coexists with it.
func GenesisPreviousHash() *HashEntity {
	zeros := make([]byte, 64)
	for i := range zeros {
		zeros[i] = '0'
	}
	return NewHashEntity(zeros)
}

// ByteLength reports the number of bytes this entity holds.
func (h *HashEntity) ByteLength() (int, error) {
	if h == nil || h.disposed {
		return 0, errs.New(errs.ResourceDisposed, "hashutil: hash entity disposed")
	}
	return len(h.b), nil
}

// Bytes returns a copy of the entity's raw bytes.
func (h *HashEntity) Bytes() ([]byte, error) {
	if h == nil || h.disposed {
		return nil, errs.New(errs.ResourceDisposed, "hashutil: hash entity disposed")
	}
	out := make([]byte, len(h.b))
	copy(out, h.b)
	return out, nil
}

// Hex returns the entity's bytes hex-encoded.
func (h *HashEntity) Hex() (string, error) {
	b, err := h.Bytes()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Base64 returns the entity's bytes standard-base64-encoded.
func (h *HashEntity) Base64() (string, error) {
	b, err := h.Bytes()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Read returns n bytes starting at cursor, without mutating the entity.
func (h *HashEntity) Read(cursor, n int) ([]byte, error) {
	if h == nil || h.disposed {
		return nil, errs.New(errs.ResourceDisposed, "hashutil: hash entity disposed")
	}
	if cursor < 0 || n < 0 || cursor+n > len(h.b) {
		return nil, errs.New(errs.InvalidArgument, "hashutil: read window out of range")
	}
	out := make([]byte, n)
	copy(out, h.b[cursor:cursor+n])
	return out, nil
}

// Equal reports whether h and other hold byte-identical content.
func (h *HashEntity) Equal(other *HashEntity) bool {
	if h == nil || other == nil || h.disposed || other.disposed {
		return false
	}
	if len(h.b) != len(other.b) {
		return false
	}
	for i := range h.b {
		if h.b[i] != other.b[i] {
			return false
		}
	}
	return true
}

// Dispose releases the entity's bytes. Idempotent.
func (h *HashEntity) Dispose() {
	if h == nil {
		return
	}
	h.b = nil
	h.disposed = true
}
