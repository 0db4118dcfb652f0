// Package bedrock implements [advisor.Generator] on the Amazon Bedrock
// Agents Runtime RetrieveAndGenerate API.
//
// Each call retrieves passages from a knowledge base and generates an answer
// with a foundation model in a single round trip. The service is stateless
// from the client's perspective: conversation context travels in the prompt.
package bedrock

const (
	defaultRegion = "us-west-2"
	modelARNFmt   = "arn:aws:bedrock:%s::foundation-model/%s"
)
