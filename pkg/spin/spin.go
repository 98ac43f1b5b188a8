// Package spin provides the polling primitive used by blocking driver calls.
//
// Drivers spin on a hardware flag with no timeout. The Waiter makes that
// contract explicit so hosts and tests can bound or cancel the spin.
package spin

import (
	"context"
	"errors"
	"runtime"
)

// ErrExhausted indicates a bounded Waiter gave up before the condition held.
var ErrExhausted = errors.New("spin limit exhausted")

// Waiter polls until ready reports true.
type Waiter interface {
	Wait(ready func() bool) error
}

// WaitFunc is the func form of Waiter.
type WaitFunc func(ready func() bool) error

// Wait implements Waiter.
func (f WaitFunc) Wait(ready func() bool) error {
	return f(ready)
}

// Forever spins until ready, never returning an error.
var Forever Waiter = WaitFunc(func(ready func() bool) error {
	for !ready() {
		runtime.Gosched()
	}
	return nil
})

// Bounded polls at most n times.
func Bounded(n int) Waiter {
	return WaitFunc(func(ready func() bool) error {
		for i := 0; i < n; i++ {
			if ready() {
				return nil
			}
			runtime.Gosched()
		}
		return ErrExhausted
	})
}

// WithContext spins until ready or ctx is done.
func WithContext(ctx context.Context) Waiter {
	return WaitFunc(func(ready func() bool) error {
		for !ready() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				runtime.Gosched()
			}
		}
		return nil
	})
}

// OrForever returns w, or Forever when w is nil.
func OrForever(w Waiter) Waiter {
	if w == nil {
		return Forever
	}
	return w
}
