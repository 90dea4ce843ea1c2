package hashutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/outofthegrid-st/hy-chain/errs"
)

// Algorithm names the digest algorithms hashData supports, per spec.md §4.C.
type Algorithm string

const (
	SHA256 Algorithm = "SHA256"
	SHA384 Algorithm = "SHA384"
	SHA512 Algorithm = "SHA512"

	// DefaultAlgorithm is used when callers pass the zero value.
	DefaultAlgorithm Algorithm = SHA384
)

// hmacKeyMaxBytes is the HMAC key truncation window per spec.md §4.C
// ("HMAC using the first 64 bytes of the key").
const hmacKeyMaxBytes = 64

func newHasher(alg Algorithm) (func() hash.Hash, error) {
	switch alg {
	case SHA256:
		return sha256.New, nil
	case SHA384:
		return sha512.New384, nil
	case SHA512:
		return sha512.New, nil
	case "":
		return newHasher(DefaultAlgorithm)
	default:
		return nil, errs.Newf(errs.InvalidType, "hashutil: unknown hash algorithm %q", alg)
	}
}

// HashData returns the digest of data under algorithm. With no key, it is a
// plain digest; with a key, it is an HMAC using the first 64 bytes of key.
func HashData(data []byte, algorithm Algorithm, key []byte) (*HashEntity, error) {
	newH, err := newHasher(algorithm)
	if err != nil {
		return nil, err
	}

	if len(key) == 0 {
		h := newH()
		h.Write(data)
		return NewHashEntity(h.Sum(nil)), nil
	}

	hmacKey := key
	if len(hmacKey) > hmacKeyMaxBytes {
		hmacKey = hmacKey[:hmacKeyMaxBytes]
	}
	mac := hmac.New(newH, hmacKey)
	mac.Write(data)
	return NewHashEntity(mac.Sum(nil)), nil
}
