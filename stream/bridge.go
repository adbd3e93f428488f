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

package stream

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Producer emits text fragments through emit and returns when the
// sequence is exhausted. Fragments must be emitted in the order they
// should reach the consumer.
type Producer func(ctx context.Context, emit func(fragment string)) error

// Bridge adapts a push-based asynchronous Producer into a pull-based
// synchronous iteration. The producer runs on its own goroutine; the
// consumer blocks on Next. Every fragment is also appended to an
// in-memory buffer so the full emitted text can be reconstructed once
// the stream completes.
//
// Completion is signaled exactly once, whether the producer returns
// normally, returns an error, or is stopped by context cancellation,
// so the consumer can never block forever.
type Bridge struct {
	q *Queue[string]

	mu  sync.Mutex
	buf strings.Builder
	err error
}

// Start launches produce on a dedicated goroutine and returns the
// consumer side of the bridge immediately.
func Start(ctx context.Context, produce Producer) *Bridge {
	b := &Bridge{q: NewQueue[string]()}
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("stream producer panic: %v", r)
			}
			b.mu.Lock()
			b.err = err
			b.mu.Unlock()
			// Closing after the error is recorded makes Err reliable
			// as soon as Next reports completion.
			b.q.Close()
		}()
		err = produce(ctx, b.emit)
	}()
	return b
}

func (b *Bridge) emit(fragment string) {
	b.mu.Lock()
	b.buf.WriteString(fragment)
	b.mu.Unlock()
	b.q.Put(fragment)
}

// Next blocks until the next fragment is available. It reports false
// once the stream has completed and all fragments have been consumed.
func (b *Bridge) Next() (string, bool) {
	return b.q.Get()
}

// Text returns the concatenation of every fragment emitted so far, in
// emission order. After Next has reported completion it is the full
// produced output, verbatim.
func (b *Bridge) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Err returns the producer's error. It is stable once Next has
// reported completion.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
