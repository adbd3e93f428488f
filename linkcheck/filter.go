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

package linkcheck

import (
	"context"
	"regexp"
	"strings"
)

// RemovedPlaceholder replaces each occurrence of a dead inline link.
const RemovedPlaceholder = "[INVALID LINK REMOVED]"

// linkPattern matches inline links of the form [label](url).
// Unbalanced markup simply does not match.
var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// LivenessChecker is the verdict source for Filter. *Checker satisfies
// it.
type LivenessChecker interface {
	Live(ctx context.Context, url string) bool
}

// Filter scrubs inline links whose URLs fail verification.
type Filter struct {
	checker LivenessChecker
}

func NewFilter(checker LivenessChecker) *Filter {
	return &Filter{checker: checker}
}

// Result is the outcome of one filter pass.
type Result struct {
	// Text is the corrected text: identical to the input except that
	// every literal occurrence of a dead link's full [label](url)
	// markup is replaced with RemovedPlaceholder.
	Text string

	// Removed lists the original markup of each dead link, in the
	// order first encountered, each reported once.
	Removed []string
}

// Apply scans text for inline links, verifies each URL, and replaces
// the markup of the dead ones. Replacement is keyed on the exact
// matched substring, not on URL identity: two different labels around
// the same dead URL are independent candidates, while two identical
// [label](url) strings are replaced together.
func (f *Filter) Apply(ctx context.Context, text string) Result {
	matches := linkPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return Result{Text: text}
	}

	corrected := text
	var removed []string
	seen := make(map[string]bool, len(matches))
	for _, match := range matches {
		markup, url := match[0], match[2]
		if seen[markup] {
			continue
		}
		seen[markup] = true
		if f.checker.Live(ctx, url) {
			continue
		}
		removed = append(removed, markup)
		corrected = strings.ReplaceAll(corrected, markup, RemovedPlaceholder)
	}
	return Result{Text: corrected, Removed: removed}
}
