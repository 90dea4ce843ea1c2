package keyobj

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/outofthegrid-st/hy-chain/errs"
)

func decodeBase64(b []byte) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "keyobj: decode base64: %v", err)
	}
	return out, nil
}

func decodeHex(b []byte) ([]byte, error) {
	out, err := hex.DecodeString(string(b))
	if err != nil {
		return nil, errs.Newf(errs.InvalidArgument, "keyobj: decode hex: %v", err)
	}
	return out, nil
}

// FromEncoded constructs a KeyObject from raw bytes already tagged with the
// format they are encoded under, plus the algorithm and kind that govern
// its region layout. armorKey is required only when format is
// FormatArmored.
func FromEncoded(buf []byte, format Format, algorithm Alg, kind Kind, armorKey []byte) (*KeyObject, error) {
	l, err := layoutFor(algorithm)
	if err != nil {
		return nil, err
	}
	details := KeyDetails{Kind: kind, Length: l.length, IVLength: l.ivLength, AuthTagLength: l.authTagLength}
	return newKeyObject(buf, format, algorithm, details, armorKey), nil
}
