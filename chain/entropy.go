package chain

import (
	"crypto/rand"

	"github.com/outofthegrid-st/hy-chain/errs"
	"github.com/outofthegrid-st/hy-chain/keyobj"
)

// Entropy is the library's concrete random-bytes provider: "produce N
// uniformly random bytes, cancellable" (spec.md §1), backed by
// crypto/rand. It satisfies keyobj.EntropySource.
type Entropy struct{}

// RandomBytes returns n cryptographically random bytes, checking token
// for cancellation before and after acquisition.
func (Entropy) RandomBytes(n int, token keyobj.CancelChecker) ([]byte, error) {
	if token != nil && token.Cancelled() {
		return nil, errs.New(errs.TokenCancelled, "chain: entropy request cancelled")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errs.Newf(errs.UnknownError, "chain: read random bytes: %v", err)
	}
	if token != nil && token.Cancelled() {
		return nil, errs.New(errs.TokenCancelled, "chain: entropy request cancelled")
	}
	return b, nil
}
