// Package armor implements the hy-chain armor envelope: a fixed magic
// header, a one-byte flag, and an optional AES-128-CBC body, used to wrap
// key material for at-rest or on-wire protection (spec.md §4.E, §6).
package armor

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/hex"
	"regexp"

	"github.com/outofthegrid-st/hy-chain/errs"
)

// Magic is the fixed 20-byte ASCII prefix of every armored envelope.
const Magic = "HY CHAIN ARMORED KEY"

const (
	flagPlain     byte = 0
	flagEncrypted byte = 1
)

// Encoding names a text encoding an armored envelope's bytes may be
// converted to or read from.
type Encoding string

const (
	Raw    Encoding = ""
	Base64 Encoding = "base64"
	Hex    Encoding = "hex"
)

const (
	aesBlockSize = 16
	keyBytes     = 32
)

var base64Shape = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

func pkcs7Pad(b []byte, blockSize int) []byte {
	padLen := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+padLen)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aesBlockSize != 0 {
		return nil, errs.New(errs.InvalidArgument, "armor: ciphertext is not block-aligned")
	}
	padLen := int(b[len(b)-1])
	if padLen == 0 || padLen > aesBlockSize || padLen > len(b) {
		return nil, errs.New(errs.InvalidArgument, "armor: invalid PKCS#7 padding")
	}
	for _, p := range b[len(b)-padLen:] {
		if int(p) != padLen {
			return nil, errs.New(errs.InvalidArgument, "armor: invalid PKCS#7 padding")
		}
	}
	return b[:len(b)-padLen], nil
}

// parseKey splits a 32-byte armor key into its master and IV halves, per
// spec.md §4.E.
func parseKey(key []byte) (master, iv []byte, err error) {
	if len(key) < keyBytes {
		return nil, nil, errs.New(errs.CryptoKeyShort, "armor: key shorter than 32 bytes")
	}
	return key[0:16], key[16:32], nil
}

func encode(b []byte, encoding Encoding) ([]byte, error) {
	switch encoding {
	case Raw:
		return b, nil
	case Base64:
		return []byte(base64.StdEncoding.EncodeToString(b)), nil
	case Hex:
		return []byte(hex.EncodeToString(b)), nil
	default:
		return nil, errs.Newf(errs.InvalidArgument, "armor: unknown output encoding %q", encoding)
	}
}

// Armor emits MAGIC‖flag‖body. When encrypted is false, body is source
// unchanged. When true, key is split via parseKey and body is
// AES-128-CBC(master, iv, source) with PKCS#7 padding.
func Armor(encrypted bool, source []byte, key []byte, outputEncoding Encoding) ([]byte, error) {
	var flag byte
	var body []byte

	if !encrypted {
		flag = flagPlain
		body = source
	} else {
		flag = flagEncrypted
		master, iv, err := parseKey(key)
		if err != nil {
			return nil, err
		}
		block, err := aes.NewCipher(master)
		if err != nil {
			return nil, errs.Newf(errs.InvalidType, "armor: aes cipher: %v", err)
		}
		padded := pkcs7Pad(source, aesBlockSize)
		ciphertext := make([]byte, len(padded))
		cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
		body = ciphertext
	}

	out := make([]byte, 0, len(Magic)+1+len(body))
	out = append(out, []byte(Magic)...)
	out = append(out, flag)
	out = append(out, body...)

	return encode(out, outputEncoding)
}

// decodeSource accepts bytes directly, or a string that is decoded per
// spec.md §4.E: a declared inputEncoding wins; otherwise base64-shaped text
// is treated as base64; otherwise it is treated as raw bytes.
func decodeSource(source any, inputEncoding Encoding) ([]byte, error) {
	switch v := source.(type) {
	case []byte:
		return v, nil
	case string:
		switch inputEncoding {
		case Base64:
			return base64.StdEncoding.DecodeString(v)
		case Hex:
			return hex.DecodeString(v)
		case Raw:
			if base64Shape.MatchString(v) {
				if b, err := base64.StdEncoding.DecodeString(v); err == nil {
					return b, nil
				}
			}
			return []byte(v), nil
		default:
			return nil, errs.Newf(errs.InvalidArgument, "armor: unknown input encoding %q", inputEncoding)
		}
	default:
		return nil, errs.Newf(errs.InvalidArgument, "armor: unsupported source type %T", source)
	}
}

// Dearmor reverses Armor: it verifies the magic prefix, reads the flag, and
// decrypts the body when flag is 1.
func Dearmor(source any, key []byte, inputEncoding Encoding) ([]byte, error) {
	raw, err := decodeSource(source, inputEncoding)
	if err != nil {
		return nil, err
	}
	if len(raw) < len(Magic)+1 {
		return nil, errs.New(errs.MagicNumberMismatch, "armor: envelope too short")
	}
	if !bytes.Equal(raw[:len(Magic)], []byte(Magic)) {
		return nil, errs.New(errs.MagicNumberMismatch, "armor: magic prefix mismatch")
	}

	flag := raw[len(Magic)]
	body := raw[len(Magic)+1:]

	switch flag {
	case flagPlain:
		return body, nil
	case flagEncrypted:
		master, iv, err := parseKey(key)
		if err != nil {
			return nil, err
		}
		if len(body) == 0 || len(body)%aesBlockSize != 0 {
			return nil, errs.New(errs.InvalidArgument, "armor: ciphertext is not block-aligned")
		}
		block, err := aes.NewCipher(master)
		if err != nil {
			return nil, errs.Newf(errs.InvalidType, "armor: aes cipher: %v", err)
		}
		plainPadded := make([]byte, len(body))
		cipher.NewCBCDecrypter(block, iv).CryptBlocks(plainPadded, body)
		return pkcs7Unpad(plainPadded)
	default:
		return nil, errs.Newf(errs.InvalidBitflag, "armor: invalid bitflag %d", flag)
	}
}
