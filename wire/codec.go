package wire

import (
	"encoding/json"

	"github.com/outofthegrid-st/hy-chain/errs"
)

// Tag identifies the shape of an encoded value's body.
type Tag byte

const (
	TagNull       Tag = 0
	TagString     Tag = 1
	TagUint       Tag = 2
	TagObject     Tag = 3
	TagArray      Tag = 4
	TagMarshalled Tag = 5
	TagBuffer     Tag = 6
)

// Serialize encodes v under the canonical tagged TLV form of spec.md §4.B.
// Dispatch order is part of the canonical contract: null/absent, string,
// byte buffer, 32-bit non-negative integer, array, marshalled envelope,
// fallback generic JSON object — in that order.
func Serialize(v any) ([]byte, error) {
	w := NewWriter()
	if err := serializeInto(w, v); err != nil {
		w.Dispose()
		return nil, err
	}
	return w.Drain()
}

func serializeInto(w *Writer, v any) error {
	switch val := v.(type) {
	case nil:
		_, err := w.Write([]byte{byte(TagNull)})
		return err

	case string:
		body := []byte(val)
		if _, err := w.Write([]byte{byte(TagString)}); err != nil {
			return err
		}
		if err := WriteVQL(w, uint32(len(body))); err != nil {
			return err
		}
		_, err := w.Write(body)
		return err

	case []byte:
		if _, err := w.Write([]byte{byte(TagBuffer)}); err != nil {
			return err
		}
		if err := WriteVQL(w, uint32(len(val))); err != nil {
			return err
		}
		_, err := w.Write(val)
		return err
	}

	if n, ok := asUint32(v); ok {
		if _, err := w.Write([]byte{byte(TagUint)}); err != nil {
			return err
		}
		return WriteVQL(w, n)
	}

	if arr, ok := v.([]any); ok {
		elems := NewWriter()
		for _, e := range arr {
			if err := serializeInto(elems, e); err != nil {
				elems.Dispose()
				return err
			}
		}
		body, err := elems.Drain()
		if err != nil {
			return err
		}
		if _, err := w.Write([]byte{byte(TagArray)}); err != nil {
			return err
		}
		if err := WriteVQL(w, uint32(len(body))); err != nil {
			return err
		}
		_, err = w.Write(body)
		return err
	}

	if body, ok, err := MarshalJSON(v); err != nil {
		return err
	} else if ok {
		if _, err := w.Write([]byte{byte(TagMarshalled)}); err != nil {
			return err
		}
		if err := WriteVQL(w, uint32(len(body))); err != nil {
			return err
		}
		_, err := w.Write(body)
		return err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return errs.Newf(errs.InvalidType, "wire: cannot serialize value of type %T: %v", v, err)
	}
	if _, err := w.Write([]byte{byte(TagObject)}); err != nil {
		return err
	}
	if err := WriteVQL(w, uint32(len(body))); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// asUint32 reports whether v is a Go integer type whose value is
// representable as a non-negative 32-bit integer ("value === value|0" in
// spec.md's dynamic-language phrasing).
func asUint32(v any) (uint32, bool) {
	switch n := v.(type) {
	case int:
		if n >= 0 && int64(n) <= int64(^uint32(0)) {
			return uint32(n), true
		}
	case int32:
		if n >= 0 {
			return uint32(n), true
		}
	case int64:
		if n >= 0 && n <= int64(^uint32(0)) {
			return uint32(n), true
		}
	case uint:
		if uint64(n) <= uint64(^uint32(0)) {
			return uint32(n), true
		}
	case uint32:
		return n, true
	case uint64:
		if n <= uint64(^uint32(0)) {
			return uint32(n), true
		}
	}
	return 0, false
}

// Deserialize decodes the canonical TLV form produced by Serialize. It is
// strictly tag-driven; an unknown tag fails with ERR_UNSUPPORTED_OPERATION.
func Deserialize(b []byte) (any, error) {
	r := NewReader(b)
	defer r.Dispose()
	v, err := deserializeFrom(r)
	if err != nil {
		return nil, err
	}
	if r.Remaining() != 0 {
		return nil, errs.New(errs.InvalidType, "wire: trailing bytes after decoded value")
	}
	return v, nil
}

func deserializeFrom(r *Reader) (any, error) {
	tagByte, err := r.Read(1)
	if err != nil {
		return nil, err
	}
	switch Tag(tagByte[0]) {
	case TagNull:
		return nil, nil

	case TagString:
		n, err := ReadVQL(r)
		if err != nil {
			return nil, err
		}
		b, err := r.Read(int(n))
		if err != nil {
			return nil, err
		}
		return string(b), nil

	case TagUint:
		return ReadVQL(r)

	case TagObject:
		n, err := ReadVQL(r)
		if err != nil {
			return nil, err
		}
		b, err := r.Read(int(n))
		if err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, errs.Newf(errs.InvalidType, "wire: decode generic object: %v", err)
		}
		return v, nil

	case TagArray:
		n, err := ReadVQL(r)
		if err != nil {
			return nil, err
		}
		body, err := r.Read(int(n))
		if err != nil {
			return nil, err
		}
		sub := NewReader(body)
		defer sub.Dispose()
		out := []any{}
		for sub.Remaining() > 0 {
			elem, err := deserializeFrom(sub)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil

	case TagMarshalled:
		n, err := ReadVQL(r)
		if err != nil {
			return nil, err
		}
		b, err := r.Read(int(n))
		if err != nil {
			return nil, err
		}
		return UnmarshalJSON(b)

	case TagBuffer:
		n, err := ReadVQL(r)
		if err != nil {
			return nil, err
		}
		return r.Read(int(n))

	default:
		return nil, errs.Newf(errs.UnsupportedOperation, "wire: unknown tag %d", tagByte[0])
	}
}
