package wire

import (
	"bytes"
	"reflect"
	"testing"
	"time"
)

func TestVQLFixtures(t *testing.T) {
	cases := []struct {
		n    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}
	for _, c := range cases {
		got := EncodeVQL(c.n)
		if !bytes.Equal(got, c.want) {
			t.Errorf("EncodeVQL(%d) = % x, want % x", c.n, got, c.want)
		}
		decoded, used, err := DecodeVQL(got)
		if err != nil {
			t.Fatalf("DecodeVQL(%v) error = %v", got, err)
		}
		if decoded != c.n || used != len(c.want) {
			t.Errorf("DecodeVQL(%v) = (%d, %d), want (%d, %d)", got, decoded, used, c.n, len(c.want))
		}
	}
}

func TestVQLRoundTripAllBitWidths(t *testing.T) {
	values := []uint32{0, 1, 63, 64, 65, 1<<7 - 1, 1 << 7, 1<<14 - 1, 1 << 14, 1<<21 - 1, 1 << 28, 1<<32 - 1}
	for _, n := range values {
		encoded := EncodeVQL(n)
		got, used, err := DecodeVQL(encoded)
		if err != nil {
			t.Fatalf("DecodeVQL(EncodeVQL(%d)) error = %v", n, err)
		}
		if got != n || used != len(encoded) {
			t.Errorf("round trip for %d: got (%d, %d), want (%d, %d)", n, got, used, n, len(encoded))
		}
	}
}

func TestReaderInvariants(t *testing.T) {
	r := NewReader([]byte("hello"))
	if _, err := r.Read(-1); err == nil {
		t.Fatalf("expected error reading negative length")
	}
	got, err := r.Read(2)
	if err != nil || string(got) != "he" {
		t.Fatalf("Read(2) = (%q, %v)", got, err)
	}
	if _, err := r.Read(10); err == nil {
		t.Fatalf("expected ERR_END_OF_STREAM reading past end")
	}
	rest, err := r.ReadRemaining()
	if err != nil || string(rest) != "llo" {
		t.Fatalf("ReadRemaining() = (%q, %v)", rest, err)
	}

	r.Dispose()
	if _, err := r.Read(1); err == nil {
		t.Fatalf("expected error reading disposed reader")
	}
}

func TestWriterDrainDisposes(t *testing.T) {
	w := NewWriter()
	_, _ = w.Write([]byte("ab"))
	_, _ = w.Write([]byte("cd"))
	if w.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", w.Len())
	}
	out, err := w.Drain()
	if err != nil || string(out) != "abcd" {
		t.Fatalf("Drain() = (%q, %v)", out, err)
	}
	if _, err := w.Write([]byte("x")); err == nil {
		t.Fatalf("expected error writing to drained writer")
	}
}

func TestCodecRoundTripPrimitives(t *testing.T) {
	cases := []any{
		nil,
		"hello",
		[]byte("raw bytes"),
		uint32(0),
		uint32(42),
	}
	for _, v := range cases {
		enc, err := Serialize(v)
		if err != nil {
			t.Fatalf("Serialize(%#v) error = %v", v, err)
		}
		dec, err := Deserialize(enc)
		if err != nil {
			t.Fatalf("Deserialize error for %#v: %v", v, err)
		}
		if !reflect.DeepEqual(dec, v) {
			t.Errorf("round trip %#v -> %#v", v, dec)
		}
	}
}

func TestGenesisStringEncodingLength(t *testing.T) {
	enc, err := Serialize("x")
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	// tag(1) + VQL(1)=1 byte + 'x'(1) = 3 bytes, per spec.md scenario 6.
	if len(enc) != 3 {
		t.Fatalf("len(Serialize(\"x\")) = %d, want 3", len(enc))
	}
}

func TestCodecArray(t *testing.T) {
	v := []any{"a", uint32(1), []byte{0xAA}}
	enc, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	dec, err := Deserialize(enc)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	got, ok := dec.([]any)
	if !ok || len(got) != 3 {
		t.Fatalf("Deserialize array = %#v", dec)
	}
	if got[0] != "a" || got[1] != uint32(1) || !bytes.Equal(got[2].([]byte), []byte{0xAA}) {
		t.Errorf("Deserialize array contents = %#v", got)
	}
}

func TestCodecMarshalledObjectAndDate(t *testing.T) {
	ts := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	v := map[string]any{
		"when": ts,
		"tags": []any{"a", "b"},
		"ok":   true,
	}
	enc, err := Serialize(v)
	if err != nil {
		t.Fatalf("Serialize error: %v", err)
	}
	if Tag(enc[0]) != TagMarshalled {
		t.Fatalf("expected TagMarshalled, got tag %d", enc[0])
	}
	dec, err := Deserialize(enc)
	if err != nil {
		t.Fatalf("Deserialize error: %v", err)
	}
	obj, ok := dec.(map[string]any)
	if !ok {
		t.Fatalf("Deserialize = %#v, want map[string]any", dec)
	}
	gotTime, ok := obj["when"].(time.Time)
	if !ok || !gotTime.Equal(ts) {
		t.Errorf("obj[\"when\"] = %#v, want %v", obj["when"], ts)
	}
	if b, ok := obj["ok"].(bool); !ok || !b {
		t.Errorf("obj[\"ok\"] = %#v, want true", obj["ok"])
	}
}

func TestCodecInvalidDateFails(t *testing.T) {
	raw := []byte(`{"$mid":8,"value":"not-a-date"}`)
	if _, err := UnmarshalJSON(raw); err == nil {
		t.Fatalf("expected error for invalid Date string")
	}
}

func TestCodecUnknownTagFails(t *testing.T) {
	if _, err := Deserialize([]byte{0xFF}); err == nil {
		t.Fatalf("expected error for unknown tag")
	}
}
