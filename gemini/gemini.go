// Package gemini implements [advisor.Generator] on Vertex AI Gemini with
// RAG Engine retrieval.
//
// It wraps the google.golang.org/genai SDK. The knowledge base is a Vertex
// RAG corpus attached to each request as a retrieval tool, so retrieval and
// generation happen in a single GenerateContent call.
package gemini

const (
	defaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 8192
	ragCorpusFmt     = "projects/%s/locations/%s/ragCorpora/%s"
)
