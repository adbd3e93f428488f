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

// Package webapp serves the browser demo: generated text relayed over
// server-sent events, one data frame per fragment, closed by a literal
// [DONE] frame. No link-verification pass runs in this variant; the
// stream has already reached the client by the time the full text is
// known.
package webapp

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/conspiragen/conspiragen/conspiracy"
	"github.com/conspiragen/conspiragen/stream"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nlpodyssey/openai-agents-go/agents"
)

//go:embed index.html
var indexHTML []byte

// GenerateFunc starts a streamed generation for a topic.
type GenerateFunc func(ctx context.Context, topic string) (*stream.Bridge, error)

type Server struct {
	generate GenerateFunc
	router   *mux.Router
}

func NewServer(cfg conspiracy.Config) *Server {
	return newServer(func(ctx context.Context, topic string) (*stream.Bridge, error) {
		return conspiracy.GenerateStreamed(ctx, cfg, topic)
	})
}

func newServer(generate GenerateFunc) *Server {
	s := &Server{generate: generate}

	router := mux.NewRouter()
	router.NewRoute().Path("/").Methods(http.MethodGet).HandlerFunc(s.handleIndex)
	router.NewRoute().Path("/stream").Methods(http.MethodGet).HandlerFunc(s.handleStream)
	router.NewRoute().Path("/health").Methods(http.MethodGet).HandlerFunc(s.handleHealth)
	s.router = router
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		http.Error(w, "Topic query parameter 'topic' is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	logger := agents.Logger().With("request_id", uuid.NewString(), "topic", topic)

	bridge, err := s.generate(r.Context(), topic)
	if err != nil {
		logger.Error("failed to start generation", "error", err)
		http.Error(w, "failed to start generation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for {
		fragment, ok := bridge.Next()
		if !ok {
			break
		}
		_, _ = fmt.Fprintf(w, "data: %s\n\n", fragment)
		flusher.Flush()
	}

	_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()

	if err := bridge.Err(); err != nil {
		logger.Error("generation ended with error", "error", err)
		return
	}
	logger.Debug("stream complete", "chars", len(bridge.Text()))
}
