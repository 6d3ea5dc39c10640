package gemini

import (

	"decoupagestudio/internal/domain"
	"decoupagestudio/internal/infrastructure/config"

	"google.golang.org/genai"
)

// BuildRequest は、生成リクエストをGemini APIに送る内容と生成設定に変換します。
// 内容は1つのユーザーメッセージで、画像、指示文の順に並びます
func BuildRequest(req domain.GenerationRequest, geminiConfig *config.GeminiConfig) ([]*genai.Content, *genai.GenerateContentConfig) {
	if geminiConfig == nil {
		geminiConfig = config.DefaultGeminiConfig()
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data}},
				{Text: req.Prompt.Content()},
			},
		},
	}

	return contents, createGenerateConfig(geminiConfig)
}

// createGenerateConfig は、JSON形式で応答させるための生成設定を作成します
func createGenerateConfig(geminiConfig *config.GeminiConfig) *genai.GenerateContentConfig {
	temperature := geminiConfig.Temperature
	topP := geminiConfig.TopP

	generateConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisResponseSchema(),
		Temperature:      &temperature,
		SafetySettings:   createSafetySettings(),
	}
	if topP > 0 {
		generateConfig.TopP = &topP
	}
	if geminiConfig.MaxTokens > 0 {
		generateConfig.MaxOutputTokens = geminiConfig.MaxTokens
	}
	return generateConfig
}

// createSafetySettings は、安全フィルターの設定を作成します（中程度の制限）
func createSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}

	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}
