// Package errs implements the structured error taxonomy of the hy-chain
// core: every operation that can fail returns an *Error carrying a closed,
// numbered code rather than an ad-hoc string.
package errs

import "fmt"

// Code is one member of the closed taxonomy. New kinds extend it; none of
// the existing codes are renumbered, since their negated absolute value is
// part of the wire contract (see WireCode).
type Code int32

const (
	UnknownError            Code = 1087
	InvalidChunk             Code = 1083
	ResourceDisposed          Code = 1043
	EndOfStream               Code = 10392
	UnsupportedOperation      Code = 1079
	NotImplemented            Code = 1078
	InvalidArgument           Code = 1081
	TokenCancelled            Code = 1053
	CryptoKeyShort            Code = 10382
	MagicNumberMismatch       Code = 10878
	InvalidBitflag            Code = 11854
	StreamClosed              Code = 1123
	InvalidType               Code = 1185
	MissingObject             Code = 1179

	// StorageWriteRejected extends the closed taxonomy (spec.md §7: "the
	// pipeline converts [a rejected putBlock] into an error at its
	// boundary") with the generic chain-storage write failure spec.md
	// names but does not assign a code to.
	StorageWriteRejected Code = 1142
)

var names = map[Code]string{
	UnknownError:        "UNKNOWN_ERROR",
	InvalidChunk:        "ERR_INVALID_CHUNK",
	ResourceDisposed:    "ERR_RESOURCE_DISPOSED",
	EndOfStream:         "ERR_END_OF_STREAM",
	UnsupportedOperation: "ERR_UNSUPPORTED_OPERATION",
	NotImplemented:      "ERR_NOT_IMPLEMENTED",
	InvalidArgument:     "ERR_INVALID_ARGUMENT",
	TokenCancelled:      "ERR_TOKEN_CANCELLED",
	CryptoKeyShort:      "ERR_CRYPTO_KEY_SHORT",
	MagicNumberMismatch: "ERR_MAGIC_NUMBER_MISSMATCH",
	InvalidBitflag:      "ERR_INVALID_BITFLAG",
	StreamClosed:        "ERR_STREAM_CLOSED",
	InvalidType:         "ERR_INVALID_TYPE",
	MissingObject:       "ERR_MISSING_OBJECT",
	StorageWriteRejected: "ERR_STORAGE_WRITE_REJECTED",
}

// Name returns the taxonomy name for code, or "UNKNOWN_ERROR" if code is not
// one of the closed set above.
func (c Code) Name() string {
	if n, ok := names[c]; ok {
		return n
	}
	return names[UnknownError]
}

// Error is the structured record every hy-chain operation returns on
// failure: {code, message, context}, with the name given by Code.Name().
type Error struct {
	Code    Code
	Message string
	Context map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return e.Code.Name()
	}
	return fmt.Sprintf("%s: %s", e.Code.Name(), e.Message)
}

// WireCode returns the on-wire representation of e's code: -abs(code).
func WireCode(e *Error) int32 {
	if e == nil {
		return 0
	}
	n := int32(e.Code)
	if n < 0 {
		n = -n
	}
	return -n
}

// New constructs an *Error with a fixed message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf constructs an *Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithContext returns a copy of e with ctx merged into its Context map.
func (e *Error) WithContext(ctx map[string]any) *Error {
	if e == nil {
		return nil
	}
	merged := make(map[string]any, len(e.Context)+len(ctx))
	for k, v := range e.Context {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}
	return &Error{Code: e.Code, Message: e.Message, Context: merged}
}

// Is reports whether target is an *Error with the same Code, so callers can
// use errors.Is(err, errs.New(errs.TokenCancelled, "")) style checks.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
