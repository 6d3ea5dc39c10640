package gemini

import (
	"context"

	"google.golang.org/genai"
)

// fakeGenerator は、GenerateContent呼び出しを記録して固定の応答を返します
type fakeGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	calls      int
	lastModel  string
	lastConfig *genai.GenerateContentConfig
	lastInput  []*genai.Content
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.lastModel = model
	f.lastInput = contents
	f.lastConfig = config
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

const validReply = `{
  "visualDescription": "A wooden tray covered in vintage rose napkin motifs.",
  "craftsmanshipDetails": "Layered napkin technique with a glossy varnish finish.",
  "posts": [
    {"platform": "Instagram", "content": "Dreamy roses for your morning coffee.", "hashtags": ["decoupage", "#handmade"]},
    {"platform": "Pinterest", "content": "Vintage rose tray idea.", "hashtags": []}
  ]
}`
