package hashutil

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"io"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/outofthegrid-st/hy-chain/errs"
)

// SignAlgorithm names the signing algorithms sign supports, per spec.md
// §4.C: HMAC-SHAxxx, ECDSA-SHAxxx, RSA-SHAxxx, and Ed25519.
type SignAlgorithm string

const (
	HMACSHA256  SignAlgorithm = "HMAC-SHA256"
	HMACSHA384  SignAlgorithm = "HMAC-SHA384"
	HMACSHA512  SignAlgorithm = "HMAC-SHA512"
	ECDSASHA256 SignAlgorithm = "ECDSA-SHA256"
	ECDSASHA384 SignAlgorithm = "ECDSA-SHA384"
	ECDSASHA512 SignAlgorithm = "ECDSA-SHA512"
	RSASHA256   SignAlgorithm = "RSA-SHA256"
	RSASHA384   SignAlgorithm = "RSA-SHA384"
	RSASHA512   SignAlgorithm = "RSA-SHA512"
	Ed25519Alg  SignAlgorithm = "Ed25519"
)

// CancelChecker is the minimal cancellation-token contract sign consumes:
// "observable boolean", per spec.md §1. A concrete implementation lives in
// the chain package; this package only depends on the interface so it has
// no dependency on chain.
type CancelChecker interface {
	Cancelled() bool
}

func checkCancelled(token CancelChecker) error {
	if token != nil && token.Cancelled() {
		return errs.New(errs.TokenCancelled, "hashutil: operation cancelled")
	}
	return nil
}

// drainSource accepts either a raw byte buffer or an io.Reader (the
// "polymorphic readable input" of spec.md §9) and returns its full content.
func drainSource(source any) ([]byte, error) {
	switch v := source.(type) {
	case []byte:
		return v, nil
	case io.Reader:
		b, err := io.ReadAll(v)
		if err != nil {
			return nil, errs.Newf(errs.StreamClosed, "hashutil: drain source: %v", err)
		}
		return b, nil
	default:
		return nil, errs.Newf(errs.InvalidArgument, "hashutil: unsupported source type %T", source)
	}
}

// Sign drains source into a contiguous buffer and signs it under algorithm,
// per spec.md §4.C. Cancellation is checked after drain and after signing.
func Sign(algorithm SignAlgorithm, source any, key []byte, optimizeForEd25519 bool, token CancelChecker) (*HashEntity, error) {
	if err := checkCancelled(token); err != nil {
		return nil, err
	}
	data, err := drainSource(source)
	if err != nil {
		return nil, err
	}
	if err := checkCancelled(token); err != nil {
		return nil, err
	}

	var sig []byte
	switch algorithm {
	case HMACSHA256:
		e, err := HashData(data, SHA256, key)
		if err != nil {
			return nil, err
		}
		sig, err = e.Bytes()
		if err != nil {
			return nil, err
		}
	case HMACSHA384:
		e, err := HashData(data, SHA384, key)
		if err != nil {
			return nil, err
		}
		sig, err = e.Bytes()
		if err != nil {
			return nil, err
		}
	case HMACSHA512:
		e, err := HashData(data, SHA512, key)
		if err != nil {
			return nil, err
		}
		sig, err = e.Bytes()
		if err != nil {
			return nil, err
		}

	case ECDSASHA256, ECDSASHA384, ECDSASHA512:
		priv, err := parseECDSAKey(key)
		if err != nil {
			return nil, err
		}
		digest, _, err := digestFor(algorithm, data)
		if err != nil {
			return nil, err
		}
		sig = dcrecdsa.Sign(priv, digest).Serialize()

	case RSASHA256, RSASHA384, RSASHA512:
		priv, err := parseRSAKey(key)
		if err != nil {
			return nil, err
		}
		digest, cryptoHash, err := digestFor(algorithm, data)
		if err != nil {
			return nil, err
		}
		sig, err = rsa.SignPKCS1v15(rand.Reader, priv, cryptoHash, digest)
		if err != nil {
			return nil, errs.Newf(errs.InvalidType, "hashutil: rsa sign: %v", err)
		}

	case Ed25519Alg:
		priv, err := parseEd25519Key(key)
		if err != nil {
			return nil, err
		}
		raw := ed25519.Sign(priv, data)
		if optimizeForEd25519 {
			sig = raw
		} else {
			sig, err = encodeEd25519DER(raw)
			if err != nil {
				return nil, err
			}
		}

	default:
		return nil, errs.Newf(errs.InvalidType, "hashutil: unknown sign algorithm %q", algorithm)
	}

	if err := checkCancelled(token); err != nil {
		return nil, err
	}
	return NewHashEntity(sig), nil
}

// digestFor hashes data under the SHA variant named by an ECDSA-SHAxxx or
// RSA-SHAxxx algorithm, returning both the digest and the crypto.Hash
// identifier rsa.SignPKCS1v15 needs to prefix the PKCS#1 ASN.1 DigestInfo.
func digestFor(algorithm SignAlgorithm, data []byte) ([]byte, crypto.Hash, error) {
	var alg Algorithm
	var ch crypto.Hash
	switch algorithm {
	case ECDSASHA256, RSASHA256:
		alg, ch = SHA256, crypto.SHA256
	case ECDSASHA384, RSASHA384:
		alg, ch = SHA384, crypto.SHA384
	case ECDSASHA512, RSASHA512:
		alg, ch = SHA512, crypto.SHA512
	default:
		return nil, 0, errs.Newf(errs.InvalidType, "hashutil: unknown digest algorithm %q", algorithm)
	}
	newH, err := newHasher(alg)
	if err != nil {
		return nil, 0, err
	}
	h := newH()
	h.Write(data)
	return h.Sum(nil), ch, nil
}

// parseECDSAKey accepts a raw 32-byte secp256k1 scalar, optionally
// PEM-wrapped. secp256k1 has no standard-library-recognized ASN.1 curve
// OID, so unlike the RSA/Ed25519 families this has no SEC1/PKCS8 DER path.
func parseECDSAKey(key []byte) (*secp256k1.PrivateKey, error) {
	raw := key
	if block, _ := pem.Decode(key); block != nil {
		raw = block.Bytes
	}
	if len(raw) != 32 {
		return nil, errs.Newf(errs.InvalidType, "hashutil: ecdsa private key must be a 32-byte secp256k1 scalar, got %d bytes", len(raw))
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}

// parseRSAKey accepts PEM, PKCS1 DER, or PKCS8 DER key material.
func parseRSAKey(key []byte) (*rsa.PrivateKey, error) {
	der := key
	if block, _ := pem.Decode(key); block != nil {
		der = block.Bytes
	}
	if priv, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return priv, nil
	}
	k, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, errs.Newf(errs.InvalidType, "hashutil: parse rsa key: %v", err)
	}
	priv, ok := k.(*rsa.PrivateKey)
	if !ok {
		return nil, errs.New(errs.InvalidType, "hashutil: key is not an RSA private key")
	}
	return priv, nil
}

// parseEd25519Key accepts a raw 64-byte seed+public private key, a raw
// 32-byte seed (expanded via ed25519.NewKeyFromSeed — this is what lets a
// single 32-byte secret double as both an Ed25519 seed and, reinterpreted,
// a secp256k1 scalar; see chain.Pipeline), or PEM/PKCS8.
func parseEd25519Key(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	if len(key) == ed25519.SeedSize {
		return ed25519.NewKeyFromSeed(key), nil
	}
	der := key
	if block, _ := pem.Decode(key); block != nil {
		der = block.Bytes
	}
	k, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, errs.Newf(errs.InvalidType, "hashutil: parse ed25519 key: %v", err)
	}
	priv, ok := k.(ed25519.PrivateKey)
	if !ok {
		return nil, errs.New(errs.InvalidType, "hashutil: key is not an Ed25519 private key")
	}
	return priv, nil
}

type ecdsaDERSignature struct {
	R, S *big.Int
}

// encodeEd25519DER wraps a raw 64-byte R||S Ed25519 signature in a DER
// SEQUENCE of two integers, mirroring ECDSA's DER signature shape, since
// Ed25519 has no standard ASN.1 signature encoding of its own.
func encodeEd25519DER(raw []byte) ([]byte, error) {
	if len(raw) != ed25519.SignatureSize {
		return nil, errs.New(errs.InvalidType, "hashutil: unexpected ed25519 signature size")
	}
	r := new(big.Int).SetBytes(raw[:32])
	s := new(big.Int).SetBytes(raw[32:])
	out, err := asn1.Marshal(ecdsaDERSignature{R: r, S: s})
	if err != nil {
		return nil, errs.Newf(errs.InvalidType, "hashutil: der-encode ed25519 signature: %v", err)
	}
	return out, nil
}
