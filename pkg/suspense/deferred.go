package suspense

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Awaitable is a pending asynchronous value. Done is closed once the value
// settles; Result then returns its value or its failure.
//
// Any Awaitable can be passed to Suspend. Values that also implement
// Abortable are aborted when their result is no longer needed, and values
// implementing ClientOnlyValue can declare that they never render on the
// server.
type Awaitable interface {
	Done() <-chan struct{}
	Result() (any, error)
}

// Abortable is implemented by deferred values that can be canceled.
type Abortable interface {
	Abort()
}

// ClientOnlyValue is implemented by deferred values that may only be
// rendered on the client.
type ClientOnlyValue interface {
	ClientOnly() bool
}

// ErrNotSettled is returned by Deferred.Result before the value settles.
var ErrNotSettled = errors.New("suspense: deferred value has not settled")

// rejection marks a failure so that a nil cause stays distinguishable from
// success.
type rejection struct {
	cause error
}

func (r *rejection) Error() string {
	if r.cause == nil {
		return "deferred value rejected"
	}
	return r.cause.Error()
}

func (r *rejection) Unwrap() error { return r.cause }

// Deferred is a value computed asynchronously. It settles exactly once,
// either resolved with a value or rejected with an error (which may be nil).
// Abort hooks run at most once.
//
// A Deferred is safe for concurrent use.
type Deferred struct {
	done      chan struct{}
	settle    sync.Once
	abortOnce sync.Once

	mu         sync.Mutex
	value      any
	err        error
	aborted    bool
	clientOnly bool
	onAbort    []func()
}

// DeferredOption configures a Deferred.
type DeferredOption func(*Deferred)

// OnAbort registers fn to run when the deferred value is aborted.
func OnAbort(fn func()) DeferredOption {
	return func(d *Deferred) {
		if fn != nil {
			d.onAbort = append(d.onAbort, fn)
		}
	}
}

// WithClientOnly marks the deferred value as impossible to render on the
// server. A boundary that meets it always renders its fallback.
func WithClientOnly() DeferredOption {
	return func(d *Deferred) {
		d.clientOnly = true
	}
}

// New creates an unsettled deferred value.
func New(opts ...DeferredOption) *Deferred {
	d := &Deferred{done: make(chan struct{})}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewClientOnly creates a deferred value that only renders on the client.
func NewClientOnly(opts ...DeferredOption) *Deferred {
	return New(append(opts, WithClientOnly())...)
}

// Resolved creates a deferred value that has already settled with v.
func Resolved(v any) *Deferred {
	d := New()
	d.Resolve(v)
	return d
}

// Go runs fn on a new goroutine and settles the returned deferred value
// with its result. Aborting the value cancels the context passed to fn.
func Go(ctx context.Context, fn func(ctx context.Context) (any, error), opts ...DeferredOption) *Deferred {
	ctx, cancel := context.WithCancel(ctx)
	d := New(append(opts, OnAbort(cancel))...)
	go func() {
		defer cancel()
		v, err := fn(ctx)
		if err != nil {
			d.Reject(err)
			return
		}
		d.Resolve(v)
	}()
	return d
}

// Resolve settles the value. It reports whether this call settled it.
func (d *Deferred) Resolve(v any) bool {
	settled := false
	d.settle.Do(func() {
		d.mu.Lock()
		d.value = v
		d.mu.Unlock()
		close(d.done)
		settled = true
	})
	return settled
}

// Reject settles the value as failed. A nil err is still a failure.
// It reports whether this call settled the value.
func (d *Deferred) Reject(err error) bool {
	settled := false
	d.settle.Do(func() {
		d.mu.Lock()
		d.err = &rejection{cause: err}
		d.mu.Unlock()
		close(d.done)
		settled = true
	})
	return settled
}

// Abort runs the abort hooks once. It does not settle the value.
func (d *Deferred) Abort() {
	d.abortOnce.Do(func() {
		d.mu.Lock()
		d.aborted = true
		hooks := d.onAbort
		d.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
	})
}

// Aborted reports whether Abort has been called.
func (d *Deferred) Aborted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.aborted
}

// Done implements Awaitable.
func (d *Deferred) Done() <-chan struct{} { return d.done }

// Result implements Awaitable. It returns ErrNotSettled before the value
// settles.
func (d *Deferred) Result() (any, error) {
	select {
	case <-d.done:
	default:
		return nil, ErrNotSettled
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value, d.err
}

// ClientOnly implements ClientOnlyValue.
func (d *Deferred) ClientOnly() bool { return d.clientOnly }

// suspendSignal is returned by a component in place of content.
type suspendSignal struct {
	value any
}

func (s *suspendSignal) Error() string {
	return fmt.Sprintf("suspense: component suspended on %T", s.value)
}

// Suspend returns the error a component returns to wait for v. v must be an
// Awaitable; any other value fails the render.
func Suspend(v any) error {
	return &suspendSignal{value: v}
}

// IsSuspend reports whether err is a suspension signal.
func IsSuspend(err error) bool {
	var sig *suspendSignal
	return errors.As(err, &sig)
}

// Read returns the value of a, or the suspension signal for a while it is
// pending. A rejected value also returns the suspension signal, so the
// render fails with the rejection rather than with a component error.
func Read[T any](a Awaitable) (T, error) {
	var zero T
	select {
	case <-a.Done():
	default:
		return zero, Suspend(a)
	}
	v, err := a.Result()
	if err != nil {
		return zero, Suspend(a)
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("suspense: deferred value is %T, not %T", v, zero)
	}
	return typed, nil
}

// deferredValue is the normalized form of a recognized deferred value.
type deferredValue struct {
	src        Awaitable
	abort      func()
	clientOnly bool
}

// adapt normalizes v. It reports false if v is not a deferred value.
func adapt(v any) (*deferredValue, bool) {
	a, ok := v.(Awaitable)
	if !ok || a == nil {
		return nil, false
	}
	dv := &deferredValue{src: a, abort: func() {}}
	if ab, ok := v.(Abortable); ok {
		var once sync.Once
		dv.abort = func() { once.Do(ab.Abort) }
	}
	if c, ok := v.(ClientOnlyValue); ok {
		dv.clientOnly = c.ClientOnly()
	}
	return dv, true
}

// settled reports whether the value has settled, without blocking.
func (dv *deferredValue) settled() bool {
	select {
	case <-dv.src.Done():
		return true
	default:
		return false
	}
}

// outcome returns the settled value, or failed=true with the rejection
// cause unwrapped from its marker.
func (dv *deferredValue) outcome() (value any, failed bool, cause error) {
	v, err := dv.src.Result()
	if err == nil {
		return v, false, nil
	}
	var rej *rejection
	if errors.As(err, &rej) {
		return nil, true, rej.cause
	}
	return nil, true, err
}
