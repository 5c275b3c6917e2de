// Package task provides the task runtime the chunk array drives its
// voxel-gen and mesh-gen work through: a bounded pool of goroutines
// reporting typed results through a Handle.
package task

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Runtime bounds the number of concurrently in-flight tasks, backing
// the chunk array's MaxTasks budget.
type Runtime struct {
	sem *semaphore.Weighted
}

// NewRuntime builds a Runtime that admits at most maxConcurrent tasks
// at once.
func NewRuntime(maxConcurrent int) *Runtime {
	return &Runtime{sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// TryAcquire reserves a task slot if one is free, without blocking,
// and reports whether it did. The driver calls this before spawning
// so it can decline to start work when saturated.
func (r *Runtime) TryAcquire() bool {
	return r.sem.TryAcquire(1)
}

// release frees a slot acquired by a successful TryAcquire. SpawnT
// calls this once the underlying goroutine finishes.
func (r *Runtime) release() {
	r.sem.Release(1)
}

// Handle is a future for a task's result, generic over the task's
// output type (a voxel id buffer, a full mesh, or a low mesh).
type Handle[T any] struct {
	done   chan struct{}
	result T
}

// SpawnT runs fn on its own goroutine and returns a Handle for its
// result, releasing the Runtime slot reserved by the caller's prior
// TryAcquire when fn completes. Go forbids type parameters on methods,
// so this is a function rather than a *Runtime method.
func SpawnT[T any](r *Runtime, fn func() T) *Handle[T] {
	h := &Handle[T]{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer r.release()
		h.result = fn()
	}()
	return h
}

// Ready reports whether the task has finished, without blocking.
func (h *Handle[T]) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// TryTakeResult returns the task's result and true if it has
// completed, or the zero value and false otherwise. A pending task is
// not an error; it is signaled by the second value.
func (h *Handle[T]) TryTakeResult() (T, bool) {
	if !h.Ready() {
		var zero T
		return zero, false
	}
	return h.result, true
}

// BlockOn waits for the task to complete or ctx to be canceled,
// returning the result. Used only by synchronous paths that must
// complete before proceeding.
func BlockOn[T any](ctx context.Context, h *Handle[T]) (T, error) {
	select {
	case <-h.done:
		return h.result, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
