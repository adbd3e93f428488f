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
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/conspiragen/conspiragen/linkcheck"
	"github.com/conspiragen/conspiragen/search"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liteResultsPage = `<!DOCTYPE html>
<html><body><table>
<tr><td><a class="result-link" href="%s">Live Source</a></td></tr>
<tr><td class="result-snippet">A snippet about the claim.</td></tr>
<tr><td><a class="result-link" href="%s">Dead Source</a></td></tr>
<tr><td class="result-snippet">Another snippet.</td></tr>
</table></body></html>`

// newToolset wires a toolset against local servers: a DDG stand-in
// serving one live and one dead link, plus the live/dead targets.
func newToolset(t *testing.T) (toolset, string, string) {
	t.Helper()

	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(live.Close)

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(dead.Close)

	ddg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, liteResultsPage, live.URL, dead.URL)
	}))
	t.Cleanup(ddg.Close)

	client := search.NewClient()
	client.LiteURL = ddg.URL + "/"
	client.HTMLURL = ddg.URL + "/"

	return toolset{
		search:  client,
		checker: linkcheck.NewChecker(0),
	}, live.URL, dead.URL
}

func TestWebSearchFormatsSnippets(t *testing.T) {
	ts, _, _ := newToolset(t)

	snippets, err := ts.webSearch(t.Context(), searchArgs{Query: "moon landing"})
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	assert.Equal(t, "Live Source: A snippet about the claim.", snippets[0])
	assert.Equal(t, "Dead Source: Another snippet.", snippets[1])
}

func TestWebSearchDegradesToMessageOnFailure(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(down.Close)

	client := search.NewClient()
	client.LiteURL = down.URL + "/"
	client.HTMLURL = down.URL + "/"
	ts := toolset{search: client, checker: linkcheck.NewChecker(0)}

	snippets, err := ts.webSearch(t.Context(), searchArgs{Query: "anything"})
	require.NoError(t, err, "search failure must not fail the run")
	require.Len(t, snippets, 1)
	assert.True(t, strings.HasPrefix(snippets[0], "web_search failed:"))
}

func TestVerifyURL(t *testing.T) {
	ts, liveURL, deadURL := newToolset(t)

	live, err := ts.verifyURL(t.Context(), verifyArgs{URL: liveURL})
	require.NoError(t, err)
	assert.True(t, live)

	live, err = ts.verifyURL(t.Context(), verifyArgs{URL: deadURL, TimeoutSeconds: 2})
	require.NoError(t, err)
	assert.False(t, live)
}

func TestSearchVerifiedLinksKeepsOnlyLiveURLs(t *testing.T) {
	ts, liveURL, _ := newToolset(t)

	urls, err := ts.searchVerifiedLinks(t.Context(), searchArgs{Query: "claim", MaxResults: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{liveURL}, urls)
}

func TestSearchVerifiedLinksSwallowsSearchErrors(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(down.Close)

	client := search.NewClient()
	client.LiteURL = down.URL + "/"
	client.HTMLURL = down.URL + "/"
	ts := toolset{search: client, checker: linkcheck.NewChecker(0)}

	urls, err := ts.searchVerifiedLinks(t.Context(), searchArgs{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestToolsetExposesThreeTools(t *testing.T) {
	ts, _, _ := newToolset(t)

	tools := ts.tools()
	require.Len(t, tools, 3)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		ft, ok := tool.(agents.FunctionTool)
		require.True(t, ok, "expected a function tool, got %T", tool)
		names = append(names, ft.Name)
	}
	assert.Equal(t, []string{"web_search", "verify_url", "search_verified_links"}, names)
}
