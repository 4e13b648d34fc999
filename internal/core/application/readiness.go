package application

import (
	"context"
	"fmt"
	"sync"

	"acuity_offchain_worker/internal/core/domain"
)

// Readiness is a one-shot gate that resolves exactly once, either open or failed.
type Readiness struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewReadiness creates an unresolved gate.
func NewReadiness() *Readiness {
	return &Readiness{done: make(chan struct{})}
}

// Open resolves the gate successfully. It reports whether this call resolved it.
func (r *Readiness) Open() bool {
	return r.resolve(nil)
}

// Fail resolves the gate with err. It reports whether this call resolved it.
func (r *Readiness) Fail(err error) bool {
	if err == nil {
		err = domain.ErrChainUnavailable
	}
	return r.resolve(err)
}

func (r *Readiness) resolve(err error) bool {
	resolved := false
	r.once.Do(func() {
		r.err = err
		close(r.done)
		resolved = true
	})
	return resolved
}

// Check reports the gate state without blocking: nil when open,
// domain.ErrChainNotReady while unresolved, domain.ErrChainUnavailable when failed.
func (r *Readiness) Check() error {
	select {
	case <-r.done:
		if r.err != nil {
			return fmt.Errorf("%w: %v", domain.ErrChainUnavailable, r.err)
		}
		return nil
	default:
		return domain.ErrChainNotReady
	}
}

// Wait blocks until the gate resolves or ctx ends.
func (r *Readiness) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.Check()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the gate resolves.
func (r *Readiness) Done() <-chan struct{} {
	return r.done
}
