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

package conspiracy

import (
	"context"
	"fmt"
	"time"

	"github.com/conspiragen/conspiragen/linkcheck"
	"github.com/conspiragen/conspiragen/search"
	"github.com/nlpodyssey/openai-agents-go/agents"
)

// toolset holds the collaborators the agent's function tools close
// over. Tool failures never fail the run: search degrades to an error
// message the model can react to, and verification is total.
type toolset struct {
	search  *search.Client
	checker *linkcheck.Checker
}

type searchArgs struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type verifyArgs struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// webSearch returns up to MaxResults concise "title: body" snippets.
func (ts toolset) webSearch(ctx context.Context, args searchArgs) ([]string, error) {
	results, err := ts.search.Search(ctx, args.Query, args.MaxResults)
	if err != nil {
		// Surfaced to the model as an output, so it can retry with a
		// different query or omit the claim.
		return []string{fmt.Sprintf("web_search failed: %v", err)}, nil
	}
	snippets := make([]string, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, r.FormatSnippet())
	}
	return snippets, nil
}

// verifyURL reports whether the URL answers with a non-error status.
func (ts toolset) verifyURL(ctx context.Context, args verifyArgs) (bool, error) {
	if args.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(args.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	return ts.checker.Live(ctx, args.URL), nil
}

// searchVerifiedLinks searches with oversampling and keeps only URLs
// that pass the liveness check. Search failures degrade to an empty
// list.
func (ts toolset) searchVerifiedLinks(ctx context.Context, args searchArgs) ([]string, error) {
	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	// Fetch extra candidates since some will fail verification.
	results, err := ts.search.Search(ctx, args.Query, maxResults*4)
	if err != nil {
		return []string{}, nil
	}

	verified := make([]string, 0, maxResults)
	for _, r := range results {
		if ts.checker.Live(ctx, r.URL) {
			verified = append(verified, r.URL)
		}
		if len(verified) >= maxResults {
			break
		}
	}
	return verified, nil
}

func (ts toolset) tools() []agents.Tool {
	return []agents.Tool{
		agents.NewFunctionTool(
			"web_search",
			"Perform a DuckDuckGo search and return up to max_results concise snippets.",
			ts.webSearch,
		),
		agents.NewFunctionTool(
			"verify_url",
			"Check that a URL is live (responds with an HTTP status below 400).",
			ts.verifyURL,
		),
		agents.NewFunctionTool(
			"search_verified_links",
			"Return up to max_results URLs relevant to the query that have been verified as live.",
			ts.searchVerifiedLinks,
		),
	}
}
