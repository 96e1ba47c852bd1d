package provider

import (
	"context"
	"sync"
)

// Latest enforces last-request-wins across overlapping requests.
// Starting a request cancels the one in flight, and results from
// a request that is no longer current are discarded.
type Latest struct {
	mu     sync.Mutex
	ticket uint64
	cancel context.CancelFunc
}

// Begin starts a new request. It cancels the previous request and returns
// a derived context plus the ticket that identifies this request.
func (l *Latest) Begin(ctx context.Context) (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	l.ticket++
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	return ctx, l.ticket
}

// Current reports whether the ticket belongs to the most recent request.
func (l *Latest) Current(ticket uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ticket == l.ticket
}

// Finish releases the request's context. It returns ErrSuperseded when a newer
// request started in the meantime.
func (l *Latest) Finish(ticket uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ticket != l.ticket {
		return ErrSuperseded
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	return nil
}

// Do runs fn under last-request-wins. The result is returned only if no newer
// request began while fn ran; otherwise Do returns ErrSuperseded.
func Do[T any](ctx context.Context, l *Latest, fn func(context.Context) (T, error)) (T, error) {
	reqCtx, ticket := l.Begin(ctx)
	res, err := fn(reqCtx)
	if finishErr := l.Finish(ticket); finishErr != nil {
		var zero T
		return zero, finishErr
	}
	return res, err
}
