package resource

import (
	"github.com/vango-dev/suspense/pkg/vdom"
)

// Handler handles a specific resource state.
type Handler[T any] interface {
	handle(*Resource[T]) *vdom.VNode
}

// Match renders content for the current state without suspending. The first
// handler that matches wins.
func (r *Resource[T]) Match(handlers ...Handler[T]) *vdom.VNode {
	for _, h := range handlers {
		if node := h.handle(r); node != nil {
			return node
		}
	}
	return nil
}

// Handler implementations

type loadingHandler[T any] struct {
	fn func() *vdom.VNode
}

func (h loadingHandler[T]) handle(r *Resource[T]) *vdom.VNode {
	if r.IsLoading() {
		return h.fn()
	}
	return nil
}

type errorHandler[T any] struct {
	fn func(error) *vdom.VNode
}

func (h errorHandler[T]) handle(r *Resource[T]) *vdom.VNode {
	if r.IsError() {
		return h.fn(r.Err())
	}
	return nil
}

type readyHandler[T any] struct {
	fn func(T) *vdom.VNode
}

func (h readyHandler[T]) handle(r *Resource[T]) *vdom.VNode {
	if r.IsReady() {
		return h.fn(r.Data())
	}
	return nil
}

// Constructors

// OnLoading handles the Pending and Loading states.
func OnLoading[T any](fn func() *vdom.VNode) Handler[T] {
	return loadingHandler[T]{fn: fn}
}

// OnFailed handles the Error state.
func OnFailed[T any](fn func(error) *vdom.VNode) Handler[T] {
	return errorHandler[T]{fn: fn}
}

// OnReady handles the Ready state.
func OnReady[T any](fn func(T) *vdom.VNode) Handler[T] {
	return readyHandler[T]{fn: fn}
}
