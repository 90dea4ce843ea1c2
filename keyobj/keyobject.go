package keyobj

import (
	"math/big"

	"github.com/outofthegrid-st/hy-chain/armor"
	"github.com/outofthegrid-st/hy-chain/errs"
)

// KeyDetails is the structural metadata attached to a KeyObject, copied in
// and out on every GetDetails/SetDetails call so callers never alias the
// object's internal state.
type KeyDetails struct {
	Kind           Kind
	Length         int
	IVLength       int
	AuthTagLength  int
	PublicExponent *big.Int
	Extra          map[string]any
}

func (d KeyDetails) clone() KeyDetails {
	cp := d
	if d.PublicExponent != nil {
		cp.PublicExponent = new(big.Int).Set(d.PublicExponent)
	}
	if d.Extra != nil {
		cp.Extra = make(map[string]any, len(d.Extra))
		for k, v := range d.Extra {
			cp.Extra[k] = v
		}
	}
	return cp
}

// merge overlays non-zero fields of partial onto d, per setDetails'
// "structural copy-in" contract.
func (d KeyDetails) merge(partial KeyDetails) KeyDetails {
	out := d.clone()
	if partial.Kind != "" {
		out.Kind = partial.Kind
	}
	if partial.Length != 0 {
		out.Length = partial.Length
	}
	if partial.IVLength != 0 {
		out.IVLength = partial.IVLength
	}
	if partial.AuthTagLength != 0 {
		out.AuthTagLength = partial.AuthTagLength
	}
	if partial.PublicExponent != nil {
		out.PublicExponent = new(big.Int).Set(partial.PublicExponent)
	}
	for k, v := range partial.Extra {
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[k] = v
	}
	return out
}

// KeyObject owns key bytes plus an algorithm descriptor, the format those
// bytes currently carry, structural details, and (for generated symmetric
// keys) an armor-wrapping secret.
type KeyObject struct {
	buf       []byte
	cursor    int
	format    Format
	algorithm Alg
	details   KeyDetails
	armorKey  []byte
	disposed  bool
}

func newKeyObject(buf []byte, format Format, algorithm Alg, details KeyDetails, armorKey []byte) *KeyObject {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	return &KeyObject{buf: cp, format: format, algorithm: algorithm, details: details.clone(), armorKey: armorKey}
}

func (k *KeyObject) checkAlive() error {
	if k == nil || k.disposed {
		return errs.New(errs.ResourceDisposed, "keyobj: key object disposed")
	}
	return nil
}

// GetInfo returns a merged snapshot of details, algorithm, and asymmetric
// metadata. A non-nil PublicExponent is rendered as "bigint:<decimal>" so
// the result stays JSON-safe.
func (k *KeyObject) GetInfo() (map[string]any, error) {
	if err := k.checkAlive(); err != nil {
		return nil, err
	}
	info := map[string]any{
		"algorithm":     k.algorithm,
		"format":        k.format,
		"kind":          k.details.Kind,
		"length":        k.details.Length,
		"ivLength":      k.details.IVLength,
		"authTagLength": k.details.AuthTagLength,
	}
	if k.details.PublicExponent != nil {
		info["publicExponent"] = "bigint:" + k.details.PublicExponent.String()
	}
	for kk, v := range k.details.Extra {
		info[kk] = v
	}
	return info, nil
}

// GetDetails returns a structural copy of the object's details.
func (k *KeyObject) GetDetails() (KeyDetails, error) {
	if err := k.checkAlive(); err != nil {
		return KeyDetails{}, err
	}
	return k.details.clone(), nil
}

// SetDetails merges partial onto the object's current details without
// mutating the caller's argument.
func (k *KeyObject) SetDetails(partial KeyDetails) error {
	if err := k.checkAlive(); err != nil {
		return err
	}
	k.details = k.details.merge(partial)
	return nil
}

// readKey ensures the material is in raw form, per spec.md §4.F's internal
// format transition table. Transitions are monotonic toward raw.
func (k *KeyObject) readKey() error {
	switch k.format {
	case FormatRaw:
		return nil
	case FormatBase64:
		decoded, err := decodeBase64(k.buf)
		if err != nil {
			return err
		}
		k.buf = decoded
		k.cursor = 0
		k.format = FormatRaw
		return nil
	case FormatHex:
		decoded, err := decodeHex(k.buf)
		if err != nil {
			return err
		}
		k.buf = decoded
		k.cursor = 0
		k.format = FormatRaw
		return nil
	case FormatArmored:
		decoded, err := armor.Dearmor(k.buf, k.armorKey, armor.Raw)
		if err != nil {
			return err
		}
		k.buf = decoded
		k.cursor = 0
		k.format = FormatRaw
		return nil
	case FormatPEM:
		return errs.New(errs.NotImplemented, "keyobj: pem format is not yet implemented")
	default:
		return errs.Newf(errs.InvalidType, "keyobj: unknown format %q", k.format)
	}
}

// Read ensures raw form, then returns up to n bytes from the cursor,
// advancing it. It never fails for a short read; n < 0 is an error.
func (k *KeyObject) Read(n int) ([]byte, error) {
	if err := k.checkAlive(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errs.New(errs.InvalidArgument, "keyobj: negative read length")
	}
	if err := k.readKey(); err != nil {
		return nil, err
	}
	end := k.cursor + n
	if end > len(k.buf) {
		end = len(k.buf)
	}
	out := make([]byte, end-k.cursor)
	copy(out, k.buf[k.cursor:end])
	k.cursor = end
	return out, nil
}

// Master returns, for secret kind, bytes [0, length); for other kinds, the
// full opaque buffer.
func (k *KeyObject) Master() ([]byte, error) {
	if err := k.checkAlive(); err != nil {
		return nil, err
	}
	if err := k.readKey(); err != nil {
		return nil, err
	}
	if k.details.Kind != KindSecret {
		return cloneBytes(k.buf), nil
	}
	n := k.details.Length
	if n > len(k.buf) {
		n = len(k.buf)
	}
	return cloneBytes(k.buf[:n]), nil
}

// IV returns, for secret kind with a configured IV length and sufficient
// material, bytes [length, length+ivLength); otherwise nil.
func (k *KeyObject) IV() ([]byte, error) {
	if err := k.checkAlive(); err != nil {
		return nil, err
	}
	if err := k.readKey(); err != nil {
		return nil, err
	}
	if k.details.Kind != KindSecret || k.details.IVLength <= 0 {
		return nil, nil
	}
	start, end := k.details.Length, k.details.Length+k.details.IVLength
	if end > len(k.buf) {
		return nil, nil
	}
	return cloneBytes(k.buf[start:end]), nil
}

// AuthTag returns, for secret kind with a configured auth tag length and
// sufficient material, the auth tag region; otherwise nil.
func (k *KeyObject) AuthTag() ([]byte, error) {
	if err := k.checkAlive(); err != nil {
		return nil, err
	}
	if err := k.readKey(); err != nil {
		return nil, err
	}
	if k.details.Kind != KindSecret || k.details.AuthTagLength <= 0 {
		return nil, nil
	}
	start := k.details.Length + k.details.IVLength
	end := start + k.details.AuthTagLength
	if end > len(k.buf) {
		return nil, nil
	}
	return cloneBytes(k.buf[start:end]), nil
}

// LeftBuffer returns, for secret kind, any bytes beyond the declared
// length+iv+authTag layout; otherwise nil.
func (k *KeyObject) LeftBuffer() ([]byte, error) {
	if err := k.checkAlive(); err != nil {
		return nil, err
	}
	if err := k.readKey(); err != nil {
		return nil, err
	}
	if k.details.Kind != KindSecret {
		return nil, nil
	}
	start := k.details.Length + k.details.IVLength + k.details.AuthTagLength
	if start >= len(k.buf) {
		return nil, nil
	}
	return cloneBytes(k.buf[start:]), nil
}

// CollectAuthTag splices tag at the auth-tag offset of a secret key's
// buffer, growing it if necessary. Any other kind fails with
// ERR_UNSUPPORTED_OPERATION.
func (k *KeyObject) CollectAuthTag(tag []byte) error {
	if err := k.checkAlive(); err != nil {
		return err
	}
	if k.details.Kind != KindSecret {
		return errs.New(errs.UnsupportedOperation, "keyobj: collectAuthTag requires a secret key")
	}
	if err := k.readKey(); err != nil {
		return err
	}
	start := k.details.Length + k.details.IVLength
	end := start + len(tag)

	next := make([]byte, max(end, len(k.buf)))
	copy(next, k.buf)
	copy(next[start:end], tag)
	k.buf = next
	return nil
}

// Armor materializes the object's current raw bytes and wraps them under
// the armor envelope using the object's armor secret.
func (k *KeyObject) Armor(encoding armor.Encoding) ([]byte, error) {
	if err := k.checkAlive(); err != nil {
		return nil, err
	}
	if err := k.readKey(); err != nil {
		return nil, err
	}
	return armor.Armor(true, k.buf, k.armorKey, encoding)
}

// Dispose releases the object's bytes. Idempotent.
func (k *KeyObject) Dispose() {
	if k == nil {
		return
	}
	k.buf = nil
	k.armorKey = nil
	k.disposed = true
}

func cloneBytes(b []byte) []byte {
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}
