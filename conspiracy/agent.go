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

// Package conspiracy configures and runs the conspiracy-theorist
// agent: a fixed prompt, three evidence tools, and entry points for
// synchronous and streamed generation.
package conspiracy

import (
	"context"
	"fmt"

	"github.com/conspiragen/conspiragen/linkcheck"
	"github.com/conspiragen/conspiragen/search"
	"github.com/conspiragen/conspiragen/stream"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/memory"
	"github.com/nlpodyssey/openai-agents-go/modelsettings"
)

const DefaultModel = "gpt-4.1"

const agentName = "Conspiracy Theorist"

const instructions = "Invent fresh, original conspiracy ideas—concepts that are novel yet grounded enough that some portion of them can be corroborated by real-world evidence. " +
	"You are 'The Conspiracy Theorist', an AI that crafts elaborate conspiracy narratives. " +
	"For EVERY factual statement or claim you make, you MUST immediately supply at least one piece of supporting evidence. " +
	"Evidence MUST be presented as a full, direct URL (including https://) that points to a publicly available source such as a news article, court document, academic paper, interview transcript, or similar record. " +
	"Always begin by calling `search_verified_links` with a concise query about the statement you're supporting. Use the returned list of verified URLs as evidence. If additional links are needed, call `web_search` for more candidates and check each with `verify_url`. Never include a URL you haven't verified. If no verified link is available, omit the claim. " +
	"Output structure: write short explanatory paragraphs, and after each paragraph add a new line that begins with 'Evidence:' followed by the list of URLs used in that paragraph. " +
	"Be creative, engaging, and sly, but remain grounded in the verifiable information you cite. " +
	"Make it something that is not already known, and make it something that is not already out there. " +
	"Only make things you can prove, and make it something that is not already out there. " +
	"Don't make theories that are very obviously fake. " +
	"Gold mines for some proof for a theory are declassified documents and court cases."

// Config is the immutable run configuration. One Config can serve
// many concurrent runs; there is no shared mutable agent state.
type Config struct {
	// ModelName selects the model; defaults to DefaultModel.
	ModelName string

	// Model, when set, overrides ModelName with an explicit model
	// instance. Used by tests to plug in a fake model.
	Model agents.Model

	// Search serves the web_search and search_verified_links tools.
	Search *search.Client

	// Checker serves the verify_url tool and post-run link filtering.
	Checker *linkcheck.Checker

	// Session optionally carries conversation history across runs.
	Session memory.Session
}

// NewAgent builds the configured agent. Tool use is required, as the
// prompt forbids uncorroborated claims.
func NewAgent(cfg Config) *agents.Agent {
	ts := toolset{search: cfg.Search, checker: cfg.Checker}

	agent := agents.New(agentName).
		WithInstructions(instructions).
		WithTools(ts.tools()...).
		WithModelSettings(modelsettings.ModelSettings{
			ToolChoice: modelsettings.ToolChoiceRequired,
		})

	if cfg.Model != nil {
		return agent.WithModelInstance(cfg.Model)
	}
	modelName := cfg.ModelName
	if modelName == "" {
		modelName = DefaultModel
	}
	return agent.WithModel(modelName)
}

func runner(cfg Config) agents.Runner {
	return agents.Runner{
		Config: agents.RunConfig{
			WorkflowName: "Conspiracy generation",
			Session:      cfg.Session,
		},
	}
}

// Generate runs the agent to completion and returns the final output.
func Generate(ctx context.Context, cfg Config, topic string) (string, error) {
	result, err := runner(cfg).Run(ctx, NewAgent(cfg), topic)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(result.FinalOutput), nil
}

// GenerateStreamed starts a streamed run and bridges it to a blocking
// consumer. Two event classes become fragments: raw text deltas and
// fully-materialized message outputs. The bridge's buffer reconstructs
// the full emitted text for post-run link filtering.
func GenerateStreamed(ctx context.Context, cfg Config, topic string) (*stream.Bridge, error) {
	result, err := runner(cfg).RunStreamed(ctx, NewAgent(cfg), topic)
	if err != nil {
		return nil, err
	}

	bridge := stream.Start(ctx, func(_ context.Context, emit func(string)) error {
		return result.StreamEvents(func(event agents.StreamEvent) error {
			switch e := event.(type) {
			case agents.RawResponsesStreamEvent:
				if e.Data.Type == "response.output_text.delta" {
					emit(e.Data.Delta)
				}
			case agents.RunItemStreamEvent:
				if item, ok := e.Item.(agents.MessageOutputItem); ok {
					emit(agents.ItemHelpers().TextMessageOutput(item))
				}
			}
			return nil
		})
	})
	return bridge, nil
}
