package wire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/outofthegrid-st/hy-chain/errs"
)

// MID identifies which variant a marshalled envelope carries.
type MID int

const (
	MIDBinary MID = iota
	MIDString
	MIDInteger
	MIDDecimal
	MIDBoolean
	MIDNull
	MIDObject
	MIDArray
	MIDDate
)

// envelope is the JSON shape {$mid: int, value?: ...} described by spec.md
// §4.B. value is omitted entirely for the Null variant.
type envelope struct {
	Mid   int `json:"$mid"`
	Value any `json:"value,omitempty"`
}

// marshalEnvelope converts v into the tagged-union JSON tree described by
// spec.md §4.B's marshalling envelope, or reports ok=false if v is not one
// of the representable variants (Binary, String, Integer, Decimal, Boolean,
// Null, Object, Array, Date).
func marshalEnvelope(v any) (any, bool, error) {
	switch val := v.(type) {
	case nil:
		return envelope{Mid: int(MIDNull)}, true, nil
	case []byte:
		return envelope{Mid: int(MIDBinary), Value: base64.StdEncoding.EncodeToString(val)}, true, nil
	case string:
		return envelope{Mid: int(MIDString), Value: val}, true, nil
	case bool:
		return envelope{Mid: int(MIDBoolean), Value: val}, true, nil
	case time.Time:
		return envelope{Mid: int(MIDDate), Value: val.UTC().Format(time.RFC3339Nano)}, true, nil
	case map[string]any:
		obj := make(map[string]any, len(val))
		for k, e := range val {
			me, ok, err := marshalEnvelope(e)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			obj[k] = me
		}
		return envelope{Mid: int(MIDObject), Value: obj}, true, nil
	case []any:
		arr := make([]any, len(val))
		for i, e := range val {
			me, ok, err := marshalEnvelope(e)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			arr[i] = me
		}
		return envelope{Mid: int(MIDArray), Value: arr}, true, nil
	default:
		if n, isInt, ok := numericValue(val); ok {
			if isInt {
				return envelope{Mid: int(MIDInteger), Value: n}, true, nil
			}
			return envelope{Mid: int(MIDDecimal), Value: n}, true, nil
		}
		return nil, false, nil
	}
}

// numericValue reports whether v is one of Go's built-in numeric kinds,
// returning the value itself and whether it is an integer kind (as opposed
// to a floating-point kind).
func numericValue(v any) (value any, isInt bool, ok bool) {
	switch n := v.(type) {
	case int:
		return n, true, true
	case int8:
		return n, true, true
	case int16:
		return n, true, true
	case int32:
		return n, true, true
	case int64:
		return n, true, true
	case uint:
		return n, true, true
	case uint8:
		return n, true, true
	case uint16:
		return n, true, true
	case uint32:
		return n, true, true
	case uint64:
		return n, true, true
	case float32:
		return n, false, true
	case float64:
		return n, false, true
	}
	return nil, false, false
}

// MarshalJSON produces the marshalled-envelope JSON bytes for v. Returns
// ok=false when v has no representable variant (the caller should fall
// back to the generic JSON-object tag instead).
func MarshalJSON(v any) ([]byte, bool, error) {
	env, ok, err := marshalEnvelope(v)
	if err != nil || !ok {
		return nil, ok, err
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, false, fmt.Errorf("wire: encode marshalled envelope: %w", err)
	}
	return b, true, nil
}

// UnmarshalJSON reconstructs a value from marshalled-envelope JSON bytes,
// the inverse of MarshalJSON.
func UnmarshalJSON(b []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, errs.Newf(errs.InvalidType, "wire: decode marshalled envelope: %v", err)
	}
	return revive(raw)
}

func revive(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errs.New(errs.InvalidType, "wire: marshalled value is not an envelope object")
	}
	midF, ok := m["$mid"].(float64)
	if !ok {
		return nil, errs.New(errs.InvalidType, "wire: marshalled envelope missing $mid")
	}
	val := m["value"]

	switch MID(int(midF)) {
	case MIDNull:
		return nil, nil
	case MIDString:
		s, ok := val.(string)
		if !ok {
			return nil, errs.New(errs.InvalidType, "wire: String envelope value is not a string")
		}
		return s, nil
	case MIDBinary:
		s, ok := val.(string)
		if !ok {
			return nil, errs.New(errs.InvalidType, "wire: Binary envelope value is not a string")
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, errs.Newf(errs.InvalidType, "wire: invalid base64 in Binary envelope: %v", err)
		}
		return b, nil
	case MIDInteger:
		f, ok := val.(float64)
		if !ok {
			return nil, errs.New(errs.InvalidType, "wire: Integer envelope value is not numeric")
		}
		return int64(f), nil
	case MIDDecimal:
		f, ok := val.(float64)
		if !ok {
			return nil, errs.New(errs.InvalidType, "wire: Decimal envelope value is not numeric")
		}
		return f, nil
	case MIDBoolean:
		b, ok := val.(bool)
		if !ok {
			return nil, errs.New(errs.InvalidType, "wire: Boolean envelope value is not a bool")
		}
		return b, nil
	case MIDDate:
		s, ok := val.(string)
		if !ok {
			return nil, errs.New(errs.InvalidType, "wire: Date envelope value is not a string")
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, errs.Newf(errs.InvalidType, "wire: invalid Date string %q: %v", s, err)
		}
		return t, nil
	case MIDObject:
		obj, ok := val.(map[string]any)
		if !ok {
			return nil, errs.New(errs.InvalidType, "wire: Object envelope value is not an object")
		}
		out := make(map[string]any, len(obj))
		for k, v := range obj {
			rv, err := revive(v)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case MIDArray:
		arr, ok := val.([]any)
		if !ok {
			return nil, errs.New(errs.InvalidType, "wire: Array envelope value is not an array")
		}
		out := make([]any, len(arr))
		for i, v := range arr {
			rv, err := revive(v)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return nil, errs.Newf(errs.UnsupportedOperation, "wire: unknown $mid %d", int(midF))
	}
}
