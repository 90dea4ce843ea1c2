package chain

import "context"

// CancelToken is a concrete context.Context-backed cancellation token.
// spec.md §1 names the token's contract ("observable boolean +
// notification") as a consumed-only external collaborator; this is the
// library's own minimal implementation of that contract so the pipeline
// is runnable end to end. It satisfies hashutil.CancelChecker and
// keyobj.CancelChecker structurally (both require only Cancelled() bool).
type CancelToken struct {
	ctx context.Context
}

// NewCancelToken wraps ctx. A nil ctx is treated as context.Background().
func NewCancelToken(ctx context.Context) *CancelToken {
	if ctx == nil {
		ctx = context.Background()
	}
	return &CancelToken{ctx: ctx}
}

// Cancelled reports whether the underlying context has been cancelled or
// its deadline exceeded.
func (t *CancelToken) Cancelled() bool {
	if t == nil || t.ctx == nil {
		return false
	}
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Done exposes the underlying context's notification channel, for callers
// that want to select on cancellation rather than poll Cancelled.
func (t *CancelToken) Done() <-chan struct{} {
	if t == nil || t.ctx == nil {
		return nil
	}
	return t.ctx.Done()
}
