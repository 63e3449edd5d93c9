package resource

import (
	"context"
	"sync"
	"time"

	"github.com/vango-dev/suspense/pkg/suspense"
)

// State represents the current state of a resource.
type State int

const (
	Pending State = iota // Created, fetch not started
	Loading              // Fetch in progress
	Ready                // Data successfully loaded
	Error                // Fetch failed or was aborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Resource is one caller's handle on a keyed asynchronous value. It
// implements suspense.Awaitable, so a component may suspend on it directly.
// Every Load call gets its own handle; handles for the same key share one
// fetch, which is canceled only when every handle waiting on it is aborted.
type Resource[T any] struct {
	shared   *entry[T]
	released sync.Once
}

// entry is the fetch shared by every handle loaded under one key.
type entry[T any] struct {
	key      string
	deferred *suspense.Deferred

	mu         sync.Mutex
	retryCount int
	retryDelay time.Duration
	onError    []func(error)
	state      State
	data       T
	err        error
	attempts   int
	lastFetch  time.Time
	waiters    int
	abandoned  bool
}

// Key returns the cache key of the resource.
func (r *Resource[T]) Key() string { return r.shared.key }

// State methods

func (r *Resource[T]) State() State {
	e := r.shared
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (r *Resource[T]) IsLoading() bool {
	s := r.State()
	return s == Loading || s == Pending
}

func (r *Resource[T]) IsReady() bool {
	return r.State() == Ready
}

func (r *Resource[T]) IsError() bool {
	return r.State() == Error
}

// Attempts returns how many times the fetcher has been called.
func (r *Resource[T]) Attempts() int {
	e := r.shared
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempts
}

// Data access methods

func (r *Resource[T]) Data() T {
	e := r.shared
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data
}

func (r *Resource[T]) DataOr(fallback T) T {
	e := r.shared
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Ready {
		return e.data
	}
	return fallback
}

func (r *Resource[T]) Err() error {
	e := r.shared
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Read returns the loaded value. While the resource is loading, and when it
// failed, the error is the suspension signal for the resource, so a
// component can return it unchanged.
func (r *Resource[T]) Read() (T, error) {
	return suspense.Read[T](r)
}

// Awaitable methods

// Done implements suspense.Awaitable.
func (r *Resource[T]) Done() <-chan struct{} { return r.shared.deferred.Done() }

// Result implements suspense.Awaitable.
func (r *Resource[T]) Result() (any, error) { return r.shared.deferred.Result() }

// Abort implements suspense.Abortable. It withdraws this handle; the fetch
// is canceled once no other handle is waiting on it.
func (r *Resource[T]) Abort() { r.released.Do(r.shared.release) }

// ClientOnly implements suspense.ClientOnlyValue.
func (r *Resource[T]) ClientOnly() bool { return r.shared.deferred.ClientOnly() }

// start runs fetch with retries on the deferred value's goroutine.
func (e *entry[T]) start(ctx context.Context, fetch func(context.Context) (T, error), clientOnly bool) {
	if clientOnly {
		e.deferred = suspense.NewClientOnly(suspense.OnAbort(func() {
			e.settle(*new(T), context.Canceled)
		}))
		return
	}

	e.mu.Lock()
	e.state = Loading
	e.mu.Unlock()

	e.deferred = suspense.Go(ctx, func(ctx context.Context) (any, error) {
		var result T
		var err error

		for i := 0; i < 1+e.retries(); i++ {
			if i > 0 {
				select {
				case <-time.After(e.delay()):
				case <-ctx.Done():
					e.settle(result, ctx.Err())
					return nil, ctx.Err()
				}
			}

			e.mu.Lock()
			e.attempts++
			e.mu.Unlock()

			result, err = fetch(ctx)
			if err == nil || ctx.Err() != nil {
				break
			}
		}

		e.settle(result, err)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

func (e *entry[T]) retries() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retryCount
}

func (e *entry[T]) delay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retryDelay
}

func (e *entry[T]) settle(result T, err error) {
	e.mu.Lock()
	if e.state == Ready || e.state == Error {
		e.mu.Unlock()
		return
	}
	e.lastFetch = time.Now()
	if err != nil {
		e.err = err
		e.state = Error
	} else {
		e.data = result
		e.state = Ready
	}
	onError := e.onError
	e.mu.Unlock()

	if err != nil {
		for _, fn := range onError {
			fn(err)
		}
	}
}

// join adds a waiter if the entry can be served again under staleTime.
// Loading entries are shared unless every waiter has left; failed ones
// never are. The largest retry count requested wins.
func (e *entry[T]) join(staleTime time.Duration, o loadOptions) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Pending, Loading:
		if e.abandoned {
			return false
		}
	case Ready:
		if staleTime > 0 && time.Since(e.lastFetch) >= staleTime {
			return false
		}
	default:
		return false
	}
	e.waiters++
	if o.retryCount > e.retryCount {
		e.retryCount = o.retryCount
		e.retryDelay = o.retryDelay
	}
	if o.onError != nil {
		e.onError = append(e.onError, o.onError)
	}
	return true
}

// release drops one waiter and cancels a fetch nobody waits on any more.
func (e *entry[T]) release() {
	e.mu.Lock()
	e.waiters--
	if e.waiters > 0 || (e.state != Pending && e.state != Loading) {
		e.mu.Unlock()
		return
	}
	e.abandoned = true
	e.mu.Unlock()
	e.deferred.Abort()
}

// abort cancels the fetch regardless of waiters.
func (e *entry[T]) abort() {
	e.mu.Lock()
	e.abandoned = true
	e.mu.Unlock()
	e.deferred.Abort()
}
