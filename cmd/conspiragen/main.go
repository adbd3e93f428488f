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

// Command conspiragen generates a conspiracy theory about a topic,
// streams it to stdout, and then replaces any dead links in the result
// with a placeholder.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/conspiragen/conspiragen/conspiracy"
	"github.com/conspiragen/conspiragen/linkcheck"
	"github.com/conspiragen/conspiragen/search"
	"github.com/joho/godotenv"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/memory"
)

func main() {
	_ = godotenv.Load()

	modelName := flag.String("model", conspiracy.DefaultModel, "model to run the agent with")
	timeout := flag.Duration("timeout", linkcheck.DefaultTimeout, "per-request timeout for link verification")
	sessionDB := flag.String("session", "", "SQLite file for conversation history (optional)")
	verbose := flag.Bool("v", false, "verbose agent logging to stdout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <topic...>\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	topic := strings.Join(flag.Args(), " ")

	if *verbose {
		agents.EnableVerboseStdoutLogging()
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "conspiragen: OPENAI_API_KEY is not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *modelName, *timeout, *sessionDB, topic); err != nil {
		fmt.Fprintf(os.Stderr, "conspiragen: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, modelName string, timeout time.Duration, sessionDB, topic string) error {
	cfg := conspiracy.Config{
		ModelName: modelName,
		Search:    search.NewClient(),
		Checker:   linkcheck.NewChecker(timeout),
	}

	if sessionDB != "" {
		session, err := memory.NewSQLiteSession(ctx, memory.SQLiteSessionParams{
			SessionID:        "conspiragen",
			DBDataSourceName: sessionDB,
		})
		if err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		defer session.Close()
		cfg.Session = session
	}

	bridge, err := conspiracy.GenerateStreamed(ctx, cfg, topic)
	if err != nil {
		return err
	}

	for {
		fragment, ok := bridge.Next()
		if !ok {
			break
		}
		fmt.Print(fragment)
	}
	fmt.Println()
	if err := bridge.Err(); err != nil {
		return err
	}

	result := linkcheck.NewFilter(cfg.Checker).Apply(ctx, bridge.Text())

	fmt.Println("\n---")
	if len(result.Removed) == 0 {
		fmt.Println("All links verified.")
		return nil
	}

	fmt.Printf("Removed %d dead link(s):\n", len(result.Removed))
	for _, url := range result.Removed {
		fmt.Printf("  - %s\n", url)
	}
	fmt.Println("\nCorrected output:")
	fmt.Println(result.Text)
	return nil
}
