package googleai

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/toolchat-ai/toolchat/pkg/llms"
	"github.com/toolchat-ai/toolchat/pkg/llms/googleai/internal/genaiutils"
	"google.golang.org/genai"
)

var (
	ErrNoContentInResponse   = errors.New("no content in generation response")
	ErrUnknownPartInResponse = errors.New("unknown part type in generation response")
)

const (
	RoleSystem = "system"
	RoleModel  = "model"
	RoleUser   = "user"
)

// GetName implements the Model interface.
func (g *GoogleAI) GetName() string {
	return g.opts.DefaultModel
}

// GetProviderType implements the Model interface.
func (g *GoogleAI) GetProviderType() llms.ProviderType {
	return llms.ProviderGoogleAI
}

// GenerateContent implements the [llms.Model] interface.
func (g *GoogleAI) GenerateContent(
	ctx context.Context,
	messages []llms.Message,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{
		Model:          g.opts.DefaultModel,
		CandidateCount: g.opts.DefaultCandidateCount,
		MaxTokens:      g.opts.DefaultMaxTokens,
		Temperature:    g.opts.DefaultTemperature,
		TopP:           g.opts.DefaultTopP,
		TopK:           g.opts.DefaultTopK,
	}
	for _, opt := range options {
		opt(&opts)
	}

	callCfg := &genai.GenerateContentConfig{
		StopSequences:   opts.StopWords,
		CandidateCount:  int32(opts.CandidateCount),
		MaxOutputTokens: int32(opts.MaxTokens),
		Temperature:     genaiutils.Float32Ptr(float32(opts.Temperature)),
		TopP:            genaiutils.Float32Ptr(float32(opts.TopP)),
		TopK:            genaiutils.Float32Ptr(float32(opts.TopK)),
		Seed:            genaiutils.Int32Ptr(int32(opts.Seed)),
	}

	callCfg.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThreshold(g.opts.HarmThreshold),
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThreshold(g.opts.HarmThreshold),
		},
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThreshold(g.opts.HarmThreshold),
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThreshold(g.opts.HarmThreshold),
		},
	}

	var err error
	if callCfg.Tools, err = genaiutils.ConvertTools(opts.Tools); err != nil {
		return nil, err
	}

	return g.generateFromMessages(ctx, opts.Model, messages, callCfg)
}

func (g *GoogleAI) generateFromMessages(
	ctx context.Context,
	model string,
	messages []llms.Message,
	config *genai.GenerateContentConfig,
) (*llms.ContentResponse, error) {
	history := make([]*genai.Content, 0, len(messages))
	for _, mc := range messages {
		content, err := convertContent(mc)
		if err != nil {
			return nil, err
		}
		if mc.Role == llms.RoleSystem {
			config.SystemInstruction = content
			continue
		}
		history = append(history, content)
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, history, config)
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		return nil, ErrNoContentInResponse
	}
	return convertCandidate(resp.Candidates[0], resp.UsageMetadata)
}

// convertContent converts between a Message and genai content.
func convertContent(content llms.Message) (*genai.Content, error) {
	parts := make([]*genai.Part, 0, len(content.Parts))
	for _, text := range content.Parts {
		parts = append(parts, &genai.Part{Text: text})
	}

	c := &genai.Content{
		Parts: parts,
	}

	switch content.Role {
	case llms.RoleSystem:
		c.Role = RoleSystem
	case llms.RoleModel:
		c.Role = RoleModel
	case llms.RoleUser:
		c.Role = RoleUser
	default:
		return nil, errors.Errorf("role %v not supported", content.Role)
	}

	return c, nil
}

// convertCandidate converts a genai.Candidate to a response, preserving the
// order in which the model emitted text and function-call parts.
func convertCandidate(candidate *genai.Candidate, usage *genai.GenerateContentResponseUsageMetadata) (*llms.ContentResponse, error) {
	contentResponse := &llms.ContentResponse{
		StopReason: string(candidate.FinishReason),
	}

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			switch {
			case part.Text != "":
				contentResponse.Fragments = append(contentResponse.Fragments,
					llms.TextFragment{Text: part.Text})
			case part.FunctionCall != nil:
				b, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					return nil, err
				}
				contentResponse.Fragments = append(contentResponse.Fragments,
					llms.ToolCallFragment{
						ID:        part.FunctionCall.ID,
						Name:      part.FunctionCall.Name,
						Arguments: string(b),
					})
			default:
				return nil, errors.Wrapf(ErrUnknownPartInResponse, "not text or function call")
			}
		}
	}

	if usage != nil {
		contentResponse.GenerationInfo = map[string]any{
			"InputTokens":  usage.PromptTokenCount,
			"OutputTokens": usage.CandidatesTokenCount,
			"TotalTokens":  usage.TotalTokenCount,
		}
	}

	return contentResponse, nil
}
