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

// Package search queries DuckDuckGo without an API key. The Lite
// endpoint is tried first; the classic HTML endpoint serves as a
// fallback when Lite errors or comes back empty.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultLiteURL = "https://lite.duckduckgo.com/lite/"
	defaultHTMLURL = "https://html.duckduckgo.com/html/"

	// DDG returns a captcha page without a browser-like User-Agent.
	defaultUserAgent = "Mozilla/5.0 (compatible; conspiragen/1.0)"

	// SnippetLimit caps each snippet, matching what the agent prompt
	// was tuned for.
	SnippetLimit = 200

	maxAllowedResults = 20
	defaultMaxResults = 5
)

// Result is one search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

// Snippet formatted as "title: body", truncated to SnippetLimit runes.
func (r Result) FormatSnippet() string {
	return truncate(r.Title+": "+r.Snippet, SnippetLimit)
}

// Client queries DuckDuckGo. The zero value is usable; fields exist so
// tests can point the client at local servers.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	LiteURL    string
	HTMLURL    string
}

func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Search returns up to maxResults hits. The Lite endpoint is the
// primary mechanism; on error or an empty page the HTML endpoint is
// tried before giving up. Only when both mechanisms fail is an error
// returned.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search: empty query")
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if maxResults > maxAllowedResults {
		maxResults = maxAllowedResults
	}

	results, liteErr := c.searchLite(ctx, query, maxResults)
	if liteErr == nil && len(results) > 0 {
		return results, nil
	}

	results, htmlErr := c.searchHTML(ctx, query, maxResults)
	if htmlErr != nil {
		return nil, fmt.Errorf("search: all mechanisms failed: %w", errors.Join(liteErr, htmlErr))
	}
	return results, nil
}

func (c *Client) searchLite(ctx context.Context, query string, maxResults int) ([]Result, error) {
	body, err := c.fetch(ctx, strOr(c.LiteURL, defaultLiteURL)+"?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return parseLite(body, maxResults)
}

func (c *Client) searchHTML(ctx context.Context, query string, maxResults int) ([]Result, error) {
	body, err := c.fetch(ctx, strOr(c.HTMLURL, defaultHTMLURL)+"?q="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return parseHTMLResults(body, maxResults)
}

func (c *Client) fetch(ctx context.Context, reqURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", strOr(c.UserAgent, defaultUserAgent))
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("duckduckgo returned HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// parseLite extracts results from the DDG Lite page. Lite renders a
// table where each hit is an <a class="result-link"> row followed by a
// <td class="result-snippet"> row.
func parseLite(r io.Reader, maxResults int) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse lite HTML: %w", err)
	}

	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" &&
			strings.Contains(attrVal(n, "class"), "result-link") {
			if res, ok := resultFromAnchor(n, liteSnippet(n)); ok {
				results = append(results, res)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return results, nil
}

// parseHTMLResults extracts results from the classic html.duckduckgo
// page, where each hit is a div with an <a class="result__a"> title and
// a "result__snippet" element.
func parseHTMLResults(r io.Reader, maxResults int) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML results: %w", err)
	}

	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" &&
			strings.Contains(attrVal(n, "class"), "result__a") {
			snippet := ""
			if container := ancestor(n, "div"); container != nil {
				if node := findByClass(container, "result__snippet"); node != nil {
					snippet = textContent(node)
				}
			}
			if res, ok := resultFromAnchor(n, snippet); ok {
				results = append(results, res)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return results, nil
}

func resultFromAnchor(anchor *html.Node, snippet string) (Result, bool) {
	title := strings.TrimSpace(textContent(anchor))
	resURL := resolveURL(attrVal(anchor, "href"))
	if title == "" || resURL == "" {
		return Result{}, false
	}
	return Result{
		Title:   title,
		URL:     resURL,
		Snippet: strings.TrimSpace(snippet),
	}, true
}

// liteSnippet finds the result-snippet cell in the table row following
// the anchor's row.
func liteSnippet(anchor *html.Node) string {
	tr := ancestor(anchor, "tr")
	if tr == nil {
		return ""
	}
	for sib := tr.NextSibling; sib != nil; sib = sib.NextSibling {
		if sib.Type != html.ElementNode || sib.Data != "tr" {
			continue
		}
		if cell := findByClass(sib, "result-snippet"); cell != nil {
			return textContent(cell)
		}
		return textContent(sib)
	}
	return ""
}

// resolveURL unwraps DDG's redirect links (//duckduckgo.com/l/?uddg=…)
// and drops DDG-internal ones.
func resolveURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		if decoded, err := url.QueryUnescape(uddg); err == nil {
			return decoded
		}
		return uddg
	}
	if strings.Contains(u.Host, "duckduckgo.com") {
		return ""
	}
	return href
}

func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

func ancestor(n *html.Node, tag string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return p
		}
	}
	return nil
}

func findByClass(n *html.Node, class string) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && strings.Contains(attrVal(child, "class"), class) {
			return child
		}
		if found := findByClass(child, class); found != nil {
			return found
		}
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func strOr(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
