// Package keyobj implements the hy-chain key-material container: KeyObject
// loads key bytes from multiple envelope formats, slices them into
// algorithm-defined regions, and re-emits itself under the armor envelope
// (spec.md §4.F).
package keyobj

import "github.com/outofthegrid-st/hy-chain/errs"

// Alg names an algorithm whose key-material layout KeyObject understands.
type Alg string

const (
	SHA256      Alg = "SHA256"
	SHA384      Alg = "SHA384"
	SHA512      Alg = "SHA512"
	AESCBC128   Alg = "AES-CBC-128"
	AESCBC256   Alg = "AES-CBC-256"
	AESGCM128   Alg = "AES-GCM-128"
	AESCCM128   Alg = "AES-CCM-128"
	AESGCM256   Alg = "AES-GCM-256"
	AESCCM256   Alg = "AES-CCM-256"
	CHACHA20Alg Alg = "CHACHA20"
)

// layout is the (length, ivLength, authTagLength) triple of spec.md §4.F's
// algorithm length table.
type layout struct {
	length        int
	ivLength      int
	authTagLength int
}

var layouts = map[Alg]layout{
	SHA256:      {length: 64},
	SHA384:      {length: 64},
	SHA512:      {length: 64},
	AESCBC128:   {length: 16, ivLength: 16},
	AESCBC256:   {length: 32, ivLength: 16},
	AESGCM128:   {length: 16, ivLength: 12, authTagLength: 16},
	AESCCM128:   {length: 16, ivLength: 12, authTagLength: 16},
	AESGCM256:   {length: 32, ivLength: 12, authTagLength: 16},
	AESCCM256:   {length: 32, ivLength: 12, authTagLength: 16},
	CHACHA20Alg: {length: 32, ivLength: 12},
}

func layoutFor(alg Alg) (layout, error) {
	l, ok := layouts[alg]
	if !ok {
		return layout{}, errs.Newf(errs.InvalidType, "keyobj: unknown algorithm %q", alg)
	}
	return l, nil
}

// AsymAlg names an asymmetric key-pair family.
type AsymAlg string

const (
	RSA     AsymAlg = "RSA"
	ECDSA   AsymAlg = "ECDSA"
	Ed25519 AsymAlg = "Ed25519"
)

// Format names the wire representation a KeyObject's bytes may be loaded
// from or currently carry.
type Format string

const (
	FormatRaw     Format = "raw"
	FormatBase64  Format = "base64"
	FormatHex     Format = "hex"
	FormatPEM     Format = "pem"
	FormatArmored Format = "armored"
)

// Kind distinguishes symmetric secret material from asymmetric public or
// private key material; region accessors (Master/IV/AuthTag/LeftBuffer)
// only apply to KindSecret.
type Kind string

const (
	KindSecret  Kind = "secret"
	KindPublic  Kind = "public"
	KindPrivate Kind = "private"
)
