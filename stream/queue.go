// Copyright 2025 The NLP Odyssey Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stream bridges an asynchronous fragment producer to a
// synchronous, blocking consumer such as a terminal writer or an HTTP
// response.
package stream

import (
	"sync"
	"time"
)

// Queue is an unbounded FIFO channel shared by exactly one producer and
// one consumer. Closing the queue is the completion marker: once the
// queue is closed and drained, Get reports false and no further values
// will ever arrive.
type Queue[T any] struct {
	cond   *sync.Cond
	values []T
	closed bool
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{
		cond: sync.NewCond(&sync.Mutex{}),
	}
}

// Put appends v to the queue. It reports false if the queue has been
// closed, in which case v is discarded.
func (q *Queue[T]) Put(v T) bool {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	if q.closed {
		return false
	}
	q.values = append(q.values, v)
	q.cond.Broadcast()
	return true
}

// Close marks the queue as complete. It is idempotent, and it never
// discards values already enqueued: the consumer drains them before
// observing completion.
func (q *Queue[T]) Close() {
	q.cond.L.Lock()
	q.closed = true
	q.cond.L.Unlock()
	q.cond.Broadcast()
}

// Get blocks until a value is available or the queue is closed and
// drained. It reports false only on completion.
func (q *Queue[T]) Get() (T, bool) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	for len(q.values) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.values) == 0 {
		var zero T
		return zero, false
	}
	return q.get(), true
}

// GetTimeout behaves like Get but gives up after the given duration.
// The second result distinguishes a timeout (false) from a delivered
// value (true); on completion it returns like Get with ok false.
func (q *Queue[T]) GetTimeout(timeout time.Duration) (T, bool) {
	timedOut := false
	timer := time.AfterFunc(timeout, func() {
		q.cond.L.Lock()
		timedOut = true
		q.cond.L.Unlock()
		q.cond.Broadcast()
	})
	defer timer.Stop()

	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	for len(q.values) == 0 && !q.closed && !timedOut {
		q.cond.Wait()
	}
	if len(q.values) == 0 {
		var zero T
		return zero, false
	}
	return q.get(), true
}

// GetNoWait returns a value if one is immediately available.
func (q *Queue[T]) GetNoWait() (T, bool) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	if len(q.values) == 0 {
		var zero T
		return zero, false
	}
	return q.get(), true
}

func (q *Queue[T]) IsEmpty() bool {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	return len(q.values) == 0
}

func (q *Queue[T]) get() T {
	v := q.values[0]
	copy(q.values[:len(q.values)-1], q.values[1:])
	clear(q.values[len(q.values)-1:]) // helps GC
	q.values = q.values[:len(q.values)-1]
	q.cond.Broadcast()
	return v
}
