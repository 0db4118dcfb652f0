package bedrock

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/fwojciec/advisor"
)

// Interface compliance check.
var _ advisor.Generator = (*Client)(nil)

// API is the subset of the Bedrock Agents Runtime client used by [Client].
type API interface {
	RetrieveAndGenerate(ctx context.Context, params *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error)
}

// Client implements [advisor.Generator] for Amazon Bedrock knowledge bases.
type Client struct {
	api    API
	region string
}

// Option configures a [Client].
type Option func(*Client)

// WithRegion sets the AWS region. Default is us-west-2.
func WithRegion(region string) Option {
	return func(c *Client) { c.region = region }
}

// WithAPI replaces the SDK client, skipping AWS configuration loading.
func WithAPI(api API) Option {
	return func(c *Client) { c.api = api }
}

// New creates a new Bedrock [Client]. Credentials come from the default
// AWS provider chain.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{region: defaultRegion}
	for _, o := range opts {
		o(c)
	}
	if c.api == nil {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(c.region))
		if err != nil {
			return nil, fmt.Errorf("bedrock: %w", err)
		}
		c.api = bedrockagentruntime.NewFromConfig(cfg)
	}
	return c, nil
}

// Region returns the region used for requests and model ARNs.
func (c *Client) Region() string { return c.region }

// Generate sends one RetrieveAndGenerate request and extracts the answer
// text and the retrieved references it cites.
func (c *Client) Generate(ctx context.Context, req advisor.GenerationRequest) (advisor.Answer, error) {
	out, err := c.api.RetrieveAndGenerate(ctx, BuildInput(req, c.region))
	if err != nil {
		return advisor.Answer{}, fmt.Errorf("bedrock: %w", err)
	}
	return ConvertOutput(out), nil
}

// ModelARN expands a bare foundation model id into its ARN in region.
// Values that are already ARNs are returned unchanged.
func ModelARN(region, model string) string {
	if strings.HasPrefix(model, "arn:") {
		return model
	}
	return fmt.Sprintf(modelARNFmt, region, model)
}

// BuildInput converts a generation request into a knowledge-base
// RetrieveAndGenerate input. Exported for testing.
func BuildInput(req advisor.GenerationRequest, region string) *bedrockagentruntime.RetrieveAndGenerateInput {
	kb := &types.KnowledgeBaseRetrieveAndGenerateConfiguration{
		KnowledgeBaseId: aws.String(req.Config.KnowledgeBaseID),
		ModelArn:        aws.String(ModelARN(region, req.Config.ModelID)),
	}
	if req.Config.HasGuardrail() {
		kb.GenerationConfiguration = &types.GenerationConfiguration{
			GuardrailConfiguration: &types.GuardrailConfiguration{
				GuardrailId:      aws.String(req.Config.GuardrailID),
				GuardrailVersion: aws.String(req.Config.GuardrailVersion),
			},
		}
	}
	return &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &types.RetrieveAndGenerateInput{
			Text: aws.String(req.Prompt),
		},
		RetrieveAndGenerateConfiguration: &types.RetrieveAndGenerateConfiguration{
			Type:                       types.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: kb,
		},
	}
}

// ConvertOutput extracts the answer from a RetrieveAndGenerate response.
// Exported for testing.
func ConvertOutput(out *bedrockagentruntime.RetrieveAndGenerateOutput) advisor.Answer {
	if out == nil {
		return advisor.Answer{}
	}
	var ans advisor.Answer
	if out.Output != nil {
		ans.Text = aws.ToString(out.Output.Text)
	}
	for _, c := range out.Citations {
		for _, ref := range c.RetrievedReferences {
			if uri := referenceURI(ref.Location); uri != "" {
				ans.Citations = append(ans.Citations, advisor.Citation{URI: uri})
			}
		}
	}
	return ans
}

func referenceURI(loc *types.RetrievalResultLocation) string {
	if loc == nil {
		return ""
	}
	switch {
	case loc.S3Location != nil:
		return aws.ToString(loc.S3Location.Uri)
	case loc.WebLocation != nil:
		return aws.ToString(loc.WebLocation.Url)
	case loc.ConfluenceLocation != nil:
		return aws.ToString(loc.ConfluenceLocation.Url)
	case loc.SharePointLocation != nil:
		return aws.ToString(loc.SharePointLocation.Url)
	case loc.SalesforceLocation != nil:
		return aws.ToString(loc.SalesforceLocation.Url)
	}
	return ""
}
