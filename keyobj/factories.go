package keyobj

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/outofthegrid-st/hy-chain/errs"
)

// armorSecretBytes is the size of the per-key armor-wrapping secret
// generated alongside every symmetric key, per spec.md §4.F.
const armorSecretBytes = 40

// CancelChecker is the minimal cancellation-token contract the factories
// consume. Kept package-local, matching hashutil.CancelChecker's shape, so
// this package has no dependency on chain.
type CancelChecker interface {
	Cancelled() bool
}

func checkCancelled(token CancelChecker) error {
	if token != nil && token.Cancelled() {
		return errs.New(errs.TokenCancelled, "keyobj: operation cancelled")
	}
	return nil
}

// EntropySource supplies cryptographically secure random bytes, checking
// token for cancellation before and after acquisition.
type EntropySource interface {
	RandomBytes(n int, token CancelChecker) ([]byte, error)
}

type systemEntropy struct{}

func (systemEntropy) RandomBytes(n int, token CancelChecker) ([]byte, error) {
	if err := checkCancelled(token); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errs.Newf(errs.UnknownError, "keyobj: read random bytes: %v", err)
	}
	if err := checkCancelled(token); err != nil {
		return nil, err
	}
	return b, nil
}

// SystemEntropy is the default EntropySource, backed by crypto/rand.
var SystemEntropy EntropySource = systemEntropy{}

// GenerateSymmetricKey generates key material for algorithm: finalLength =
// length + ivLength + authTagLength + 8 random bytes (the trailing 8 bytes
// are reserved for a caller-defined tail), plus a 40-byte per-key armor
// secret. entropy defaults to SystemEntropy when nil.
func GenerateSymmetricKey(algorithm Alg, entropy EntropySource, token CancelChecker) (*KeyObject, error) {
	l, err := layoutFor(algorithm)
	if err != nil {
		return nil, err
	}
	if entropy == nil {
		entropy = SystemEntropy
	}

	finalLength := l.length + l.ivLength + l.authTagLength + 8
	buf, err := entropy.RandomBytes(finalLength, token)
	if err != nil {
		return nil, err
	}
	armorKey, err := entropy.RandomBytes(armorSecretBytes, token)
	if err != nil {
		return nil, err
	}

	details := KeyDetails{Kind: KindSecret, Length: l.length, IVLength: l.ivLength, AuthTagLength: l.authTagLength}
	return newKeyObject(buf, FormatRaw, algorithm, details, armorKey), nil
}

// AsymmetricKeyPairOptions configures GenerateAsymmetricKeyPair.
type AsymmetricKeyPairOptions struct {
	// RSAModulusBits must be 2048 or 4096; any other value (including 0)
	// is coerced to 2048.
	RSAModulusBits int
}

func rsaModulusBits(opts AsymmetricKeyPairOptions) int {
	if opts.RSAModulusBits == 4096 {
		return 4096
	}
	return 2048
}

// GenerateAsymmetricKeyPair generates a (public, private) KeyObject pair
// for algorithm. RSA's modulus is coerced to 2048 or 4096 bits (default
// 2048). ECDSA uses curve secp256k1. RSA key bytes are DER PKCS#1 (public
// and private); Ed25519 key bytes are DER SPKI (public) and DER PKCS#8
// (private). ECDSA key bytes are the raw 33-byte compressed point (public)
// and the raw 32-byte scalar (private); they are not DER-encoded (no SPKI,
// no SEC1).
func GenerateAsymmetricKeyPair(algorithm AsymAlg, opts AsymmetricKeyPairOptions, token CancelChecker) (public, private *KeyObject, err error) {
	if err := checkCancelled(token); err != nil {
		return nil, nil, err
	}

	var pubBytes, privBytes []byte
	details := KeyDetails{}

	switch algorithm {
	case RSA:
		bits := rsaModulusBits(opts)
		priv, genErr := rsa.GenerateKey(rand.Reader, bits)
		if genErr != nil {
			return nil, nil, errs.Newf(errs.UnknownError, "keyobj: generate rsa key: %v", genErr)
		}
		pubBytes = x509.MarshalPKCS1PublicKey(&priv.PublicKey)
		privBytes = x509.MarshalPKCS1PrivateKey(priv)
		details.PublicExponent = big.NewInt(int64(priv.PublicKey.E))

	case ECDSA:
		priv, genErr := secp256k1.GeneratePrivateKey()
		if genErr != nil {
			return nil, nil, errs.Newf(errs.UnknownError, "keyobj: generate ecdsa key: %v", genErr)
		}
		// secp256k1 has no ASN.1 curve OID the standard library recognizes,
		// so key bytes are the curve's native scalar/point encoding rather
		// than SEC1/PKIX DER.
		pubBytes = priv.PubKey().SerializeCompressed()
		privBytes = priv.Serialize()

	case Ed25519:
		pub, priv, genErr := ed25519.GenerateKey(rand.Reader)
		if genErr != nil {
			return nil, nil, errs.Newf(errs.UnknownError, "keyobj: generate ed25519 key: %v", genErr)
		}
		pubBytes, err = x509.MarshalPKIXPublicKey(pub)
		if err != nil {
			return nil, nil, errs.Newf(errs.UnknownError, "keyobj: marshal ed25519 public key: %v", err)
		}
		privBytes, err = x509.MarshalPKCS8PrivateKey(priv)
		if err != nil {
			return nil, nil, errs.Newf(errs.UnknownError, "keyobj: marshal ed25519 private key: %v", err)
		}

	default:
		return nil, nil, errs.Newf(errs.InvalidType, "keyobj: unknown asymmetric algorithm %q", algorithm)
	}

	if err := checkCancelled(token); err != nil {
		return nil, nil, err
	}

	publicDetails := details.clone()
	publicDetails.Kind = KindPublic
	privateDetails := details.clone()
	privateDetails.Kind = KindPrivate

	public = newKeyObject(pubBytes, FormatRaw, Alg(algorithm), publicDetails, nil)
	private = newKeyObject(privBytes, FormatRaw, Alg(algorithm), privateDetails, nil)
	return public, private, nil
}
