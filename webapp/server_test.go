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

package webapp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/conspiragen/conspiragen/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragmentServer(fragments ...string) *Server {
	return newServer(func(ctx context.Context, topic string) (*stream.Bridge, error) {
		return stream.Start(ctx, func(_ context.Context, emit func(string)) error {
			for _, f := range fragments {
				emit(f)
			}
			return nil
		}), nil
	})
}

func TestStreamRequiresTopic(t *testing.T) {
	srv := fragmentServer("never reached")

	for _, target := range []string{"/stream", "/stream?topic=", "/stream?topic=%20%20"} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "data:", target)
	}
}

func TestStreamEmitsFragmentsThenDone(t *testing.T) {
	srv := fragmentServer("A", "BC", "D")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream?topic=the+moon", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "data: A\n\ndata: BC\n\ndata: D\n\ndata: [DONE]\n\n", rec.Body.String())
}

func TestStreamEmptyGenerationStillTerminates(t *testing.T) {
	srv := fragmentServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream?topic=x", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data: [DONE]\n\n", rec.Body.String())
}

func TestStreamGenerationStartFailure(t *testing.T) {
	srv := newServer(func(context.Context, string) (*stream.Bridge, error) {
		return nil, errors.New("no API key")
	})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream?topic=x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "data:")
}

func TestStreamMidRunErrorStillSendsDone(t *testing.T) {
	srv := newServer(func(ctx context.Context, topic string) (*stream.Bridge, error) {
		return stream.Start(ctx, func(_ context.Context, emit func(string)) error {
			emit("partial")
			return errors.New("model disconnected")
		}), nil
	})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream?topic=x", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data: partial\n\ndata: [DONE]\n\n", rec.Body.String())
}

func TestIndexPage(t *testing.T) {
	srv := fragmentServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "EventSource")
}

func TestHealth(t *testing.T) {
	srv := fragmentServer()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
