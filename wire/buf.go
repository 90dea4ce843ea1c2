// Package wire implements the hy-chain binary wire format: scoped buffer
// primitives (component A of the core), the tagged TLV codec with
// variable-length integers (component B), and the marshalled-value envelope
// used for types the TLV tag set cannot discriminate natively (component C).
//
// The codec here is the canonical form: signatures in the chain package
// cover exactly the bytes Serialize produces, so any change to encoding
// order or tag assignment breaks signature reproducibility across callers
// that persist signed blocks.
package wire

import (
	"github.com/outofthegrid-st/hy-chain/errs"
)

// Writer accumulates chunks and reports the accumulated byte length without
// concatenating until Drain is called. It is a scoped resource: once
// disposed (explicitly, or implicitly by Drain), further use fails with
// ERR_RESOURCE_DISPOSED.
type Writer struct {
	chunks   [][]byte
	length   int
	disposed bool
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write appends b to the writer's chunk list and reports the writer's new
// accumulated length.
func (w *Writer) Write(b []byte) (int, error) {
	if w.disposed {
		return 0, errs.New(errs.ResourceDisposed, "wire: writer disposed")
	}
	if len(b) == 0 {
		return w.length, nil
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	w.chunks = append(w.chunks, cp)
	w.length += len(cp)
	return w.length, nil
}

// Len reports the writer's accumulated byte length.
func (w *Writer) Len() int {
	return w.length
}

// Drain returns the concatenation of every chunk written so far and disposes
// the writer.
func (w *Writer) Drain() ([]byte, error) {
	if w.disposed {
		return nil, errs.New(errs.ResourceDisposed, "wire: writer disposed")
	}
	out := make([]byte, 0, w.length)
	for _, c := range w.chunks {
		out = append(out, c...)
	}
	w.Dispose()
	return out, nil
}

// Dispose releases the writer's buffered chunks. Idempotent.
func (w *Writer) Dispose() {
	w.chunks = nil
	w.length = 0
	w.disposed = true
}

// Reader owns a byte sequence and a read cursor.
type Reader struct {
	b        []byte
	pos      int
	disposed bool
}

// NewReader returns a Reader positioned at the start of b. b is copied so
// the caller may freely mutate their own slice afterward.
func NewReader(b []byte) *Reader {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Reader{b: cp}
}

// Remaining reports the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.disposed || r.pos >= len(r.b) {
		return 0
	}
	return len(r.b) - r.pos
}

// Read returns the next n bytes and advances the cursor by n. n must be a
// non-negative integer; a negative n fails with ERR_INVALID_ARGUMENT, and
// reading past the end of the buffer fails with ERR_END_OF_STREAM.
func (r *Reader) Read(n int) ([]byte, error) {
	if r.disposed {
		return nil, errs.New(errs.ResourceDisposed, "wire: reader disposed")
	}
	if n < 0 {
		return nil, errs.New(errs.InvalidArgument, "wire: read length must be non-negative")
	}
	if r.Remaining() < n {
		return nil, errs.New(errs.EndOfStream, "wire: read past end of buffer")
	}
	start := r.pos
	r.pos += n
	out := make([]byte, n)
	copy(out, r.b[start:r.pos])
	return out, nil
}

// ReadRemaining returns every unread byte and advances the cursor to the
// end, equivalent to calling Read with n omitted.
func (r *Reader) ReadRemaining() ([]byte, error) {
	if r.disposed {
		return nil, errs.New(errs.ResourceDisposed, "wire: reader disposed")
	}
	return r.Read(r.Remaining())
}

// PeekByte returns the next unread byte without advancing the cursor.
func (r *Reader) PeekByte() (byte, error) {
	if r.disposed {
		return 0, errs.New(errs.ResourceDisposed, "wire: reader disposed")
	}
	if r.Remaining() < 1 {
		return 0, errs.New(errs.EndOfStream, "wire: read past end of buffer")
	}
	return r.b[r.pos], nil
}

// Dispose releases the reader's backing buffer. Idempotent.
func (r *Reader) Dispose() {
	r.b = nil
	r.pos = 0
	r.disposed = true
}

