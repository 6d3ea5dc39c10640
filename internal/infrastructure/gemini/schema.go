package gemini

import "google.golang.org/genai"

// 応答JSONのフィールド名
const (
	fieldVisualDescription    = "visualDescription"
	fieldCraftsmanshipDetails = "craftsmanshipDetails"
	fieldPosts                = "posts"
	fieldPlatform             = "platform"
	fieldContent              = "content"
	fieldHashtags             = "hashtags"
)

// analysisResponseSchema は、モデルに返させるJSONの構造を定義します
func analysisResponseSchema() *genai.Schema {
	post := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			fieldPlatform: {
				Type:        genai.TypeString,
				Description: "The social media platform name.",
			},
			fieldContent: {
				Type:        genai.TypeString,
				Description: "The caption or post body text.",
			},
			fieldHashtags: {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "A list of relevant hashtags.",
			},
		},
		Required: []string{fieldPlatform, fieldContent, fieldHashtags},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			fieldVisualDescription: {
				Type:        genai.TypeString,
				Description: "A short description of what the object looks like.",
			},
			fieldCraftsmanshipDetails: {
				Type:        genai.TypeString,
				Description: "Notes on the decoupage technique, finish and quality.",
			},
			fieldPosts: {
				Type:  genai.TypeArray,
				Items: post,
			},
		},
		Required: []string{fieldVisualDescription, fieldCraftsmanshipDetails, fieldPosts},
	}
}
