package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/advisor"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ advisor.Generator = (*Client)(nil)

// Models is the subset of [genai.Models] used by [Client].
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements [advisor.Generator] for Vertex AI Gemini.
type Client struct {
	models   Models
	project  string
	location string
	model    string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the fallback model ID used when a request names none.
// Default is gemini-2.5-flash.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithModels replaces the SDK models service.
func WithModels(m Models) Option {
	return func(c *Client) { c.models = m }
}

// New creates a new Gemini [Client] on the Vertex AI backend. Credentials
// come from Application Default Credentials.
func New(ctx context.Context, project, location string, opts ...Option) (*Client, error) {
	c := &Client{
		project:  project,
		location: location,
		model:    defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	if c.models == nil {
		gc, err := genai.NewClient(ctx, &genai.ClientConfig{
			Project:  project,
			Location: location,
			Backend:  genai.BackendVertexAI,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		c.models = gc.Models
	}
	return c, nil
}

// Generate sends the prompt with the knowledge base attached as a retrieval
// tool. Guardrail settings have no Vertex equivalent and are ignored.
func (c *Client) Generate(ctx context.Context, req advisor.GenerationRequest) (advisor.Answer, error) {
	model := req.Config.ModelID
	if model == "" {
		model = c.model
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}
	resp, err := c.models.GenerateContent(ctx, model, contents, BuildConfig(req, c.project, c.location))
	if err != nil {
		return advisor.Answer{}, fmt.Errorf("gemini: %w", err)
	}
	return ConvertResponse(resp), nil
}

// CorpusName expands a bare corpus id into a full RAG corpus resource name.
// Values containing a slash are treated as resource names already.
func CorpusName(project, location, id string) string {
	if strings.Contains(id, "/") {
		return id
	}
	return fmt.Sprintf(ragCorpusFmt, project, location, id)
}

// BuildConfig builds the request config with the retrieval tool.
// Exported for testing.
func BuildConfig(req advisor.GenerationRequest, project, location string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens: defaultMaxTokens,
		Tools: []*genai.Tool{{
			Retrieval: &genai.Retrieval{
				VertexRAGStore: &genai.VertexRAGStore{
					RAGResources: []*genai.VertexRAGStoreRAGResource{{
						RAGCorpus: CorpusName(project, location, req.Config.KnowledgeBaseID),
					}},
				},
			},
		}},
	}
}

// ConvertResponse extracts the answer text and grounding sources from the
// first candidate. Exported for testing.
func ConvertResponse(resp *genai.GenerateContentResponse) advisor.Answer {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return advisor.Answer{}
	}
	cand := resp.Candidates[0]

	var ans advisor.Answer
	if cand.Content != nil {
		var b strings.Builder
		for _, p := range cand.Content.Parts {
			if p == nil || p.Thought {
				continue
			}
			b.WriteString(p.Text)
		}
		ans.Text = b.String()
	}
	if cand.GroundingMetadata == nil {
		return ans
	}
	for _, chunk := range cand.GroundingMetadata.GroundingChunks {
		switch {
		case chunk == nil:
		case chunk.RetrievedContext != nil:
			ans.Citations = append(ans.Citations, advisor.Citation{
				Title: chunk.RetrievedContext.Title,
				URI:   chunk.RetrievedContext.URI,
			})
		case chunk.Web != nil:
			ans.Citations = append(ans.Citations, advisor.Citation{
				Title: chunk.Web.Title,
				URI:   chunk.Web.URI,
			})
		}
	}
	return ans
}
