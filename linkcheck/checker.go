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

// Package linkcheck verifies URL liveness and scrubs dead inline links
// from generated text.
package linkcheck

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// DefaultTimeout bounds a single liveness probe.
const DefaultTimeout = 5 * time.Second

// Checker decides whether a URL is live. A URL is live when it answers
// a HEAD request (redirects followed) with a status below 400, or,
// when the server rejects HEAD with 405 or 501, answers a GET the same
// way. Every transport failure normalizes to not-live: Live is total
// and never surfaces an error.
//
// Verdicts are memoized per Checker instance, so the same URL is never
// probed twice within one run.
type Checker struct {
	client *http.Client

	mu       sync.Mutex
	verdicts map[string]bool
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{
		client:   &http.Client{Timeout: timeout},
		verdicts: make(map[string]bool),
	}
}

// Live reports whether url currently resolves to a non-error HTTP
// response. The context bounds the probe in addition to the checker's
// own timeout.
func (c *Checker) Live(ctx context.Context, url string) bool {
	c.mu.Lock()
	if verdict, ok := c.verdicts[url]; ok {
		c.mu.Unlock()
		return verdict
	}
	c.mu.Unlock()

	verdict := c.probe(ctx, url)

	c.mu.Lock()
	c.verdicts[url] = verdict
	c.mu.Unlock()
	return verdict
}

func (c *Checker) probe(ctx context.Context, url string) bool {
	status, ok := c.request(ctx, http.MethodHead, url)
	if !ok {
		return false
	}
	if status < 400 {
		return true
	}
	if status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented {
		// Some servers only speak GET. The body is closed without
		// being drained, so content is not downloaded.
		status, ok = c.request(ctx, http.MethodGet, url)
		return ok && status < 400
	}
	return false
}

func (c *Checker) request(ctx context.Context, method, url string) (int, bool) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, false
	}
	_ = resp.Body.Close()
	return resp.StatusCode, true
}
