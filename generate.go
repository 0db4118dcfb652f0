package advisor

import (
	"context"
	"strings"
)

// KnowledgeBaseConfig names the managed resources used for generation.
// Values are opaque and passed through to the service unvalidated.
type KnowledgeBaseConfig struct {
	KnowledgeBaseID  string
	ModelID          string
	GuardrailID      string // optional
	GuardrailVersion string // optional
}

// HasGuardrail reports whether a content guardrail is configured.
func (c KnowledgeBaseConfig) HasGuardrail() bool {
	return c.GuardrailID != ""
}

// GenerationRequest is built once per turn and never persisted.
type GenerationRequest struct {
	Prompt string
	Config KnowledgeBaseConfig
}

// Citation points at a knowledge-base source the answer drew on.
type Citation struct {
	Title string
	URI   string
}

// Answer is the generated reply extracted from the service response.
type Answer struct {
	Text      string
	Citations []Citation
}

const sourcesSeparator = "\n\nSources:"

// String renders the answer with its sources listed inline after the text.
// Duplicate sources are listed once.
func (a Answer) String() string {
	var sources []string
	seen := make(map[string]bool, len(a.Citations))
	for _, c := range a.Citations {
		label := c.URI
		if c.Title != "" && c.Title != c.URI {
			label = c.Title
			if c.URI != "" {
				label += " (" + c.URI + ")"
			}
		}
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		sources = append(sources, label)
	}
	if len(sources) == 0 {
		return a.Text
	}
	var b strings.Builder
	b.WriteString(a.Text)
	b.WriteString(sourcesSeparator)
	for _, s := range sources {
		b.WriteString("\n- ")
		b.WriteString(s)
	}
	return b.String()
}

// withoutSources returns content with a trailing sources list from
// Answer.String removed.
func withoutSources(content string) string {
	if i := strings.LastIndex(content, sourcesSeparator); i >= 0 {
		return content[:i]
	}
	return content
}

// Generator calls a managed retrieve-and-generate service. Implementations
// return adapter-prefixed errors for transport, authorization and service
// failures; they do not retry.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (Answer, error)
}
