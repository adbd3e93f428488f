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

// Command conspiragen-web serves the browser demo: a landing page and
// a server-sent-events endpoint that streams generated text.
package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/conspiragen/conspiragen/conspiracy"
	"github.com/conspiragen/conspiragen/linkcheck"
	"github.com/conspiragen/conspiragen/search"
	"github.com/conspiragen/conspiragen/webapp"
	"github.com/joho/godotenv"
	"github.com/nlpodyssey/openai-agents-go/agents"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "127.0.0.1:5000", "address to listen on")
	modelName := flag.String("model", conspiracy.DefaultModel, "model to run the agent with")
	verbose := flag.Bool("v", false, "verbose agent logging to stdout")
	flag.Parse()

	if *verbose {
		agents.EnableVerboseStdoutLogging()
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "conspiragen-web: OPENAI_API_KEY is not set")
		os.Exit(1)
	}

	srv := webapp.NewServer(conspiracy.Config{
		ModelName: *modelName,
		Search:    search.NewClient(),
		Checker:   linkcheck.NewChecker(0),
	})

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("conspiragen-web listening on http://%s\n", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(os.Stderr, "conspiragen-web: %v\n", err)
		os.Exit(1)
	}
}
