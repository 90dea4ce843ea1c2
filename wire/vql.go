package wire

import "github.com/outofthegrid-st/hy-chain/errs"

// EncodeVQL encodes a non-negative integer as a little-endian base-128
// variable-length quantity: each byte contributes 7 low bits, and the high
// bit is a continuation flag. Zero emits exactly one zero byte.
func EncodeVQL(n uint32) []byte {
	if n == 0 {
		return []byte{0x00}
	}
	var out []byte
	for n > 0 {
		b := byte(n & 0x7f)
		n >>= 7
		if n > 0 {
			b |= 0x80
		}
		out = append(out, b)
	}
	return out
}

// DecodeVQL reads a VQL-encoded integer from the front of b, returning the
// decoded value and the number of bytes consumed.
func DecodeVQL(b []byte) (uint32, int, error) {
	var value uint32
	var shift uint
	for i := 0; i < len(b); i++ {
		c := b[i]
		value |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return value, i + 1, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, 0, errs.New(errs.InvalidType, "wire: vql value exceeds 32 bits")
		}
	}
	return 0, 0, errs.New(errs.EndOfStream, "wire: truncated vql")
}

// ReadVQL reads one VQL-encoded integer from r, advancing its cursor.
func ReadVQL(r *Reader) (uint32, error) {
	var value uint32
	var shift uint
	for {
		bs, err := r.Read(1)
		if err != nil {
			return 0, err
		}
		c := bs[0]
		value |= uint32(c&0x7f) << shift
		if c&0x80 == 0 {
			return value, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, errs.New(errs.InvalidType, "wire: vql value exceeds 32 bits")
		}
	}
}

// WriteVQL writes n to w as a VQL-encoded integer.
func WriteVQL(w *Writer, n uint32) error {
	_, err := w.Write(EncodeVQL(n))
	return err
}
