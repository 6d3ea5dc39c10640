package domain

import "fmt"

// Prompt は、Gemini APIに送信するために整形されたテキストを表現する値オブジェクトです
type Prompt struct {
	content string
}

// NewPrompt は新しいPromptを作成します
func NewPrompt(content string) Prompt {
	return Prompt{content: content}
}

// Content はプロンプトの本文を返します
func (p Prompt) Content() string {
	return p.content
}

// IsEmpty はプロンプトが空かどうかを判定します
func (p Prompt) IsEmpty() bool {
	return p.content == ""
}

// GenerationRequest は、1回の生成呼び出しに必要な入力一式です
type GenerationRequest struct {
	Image  ImagePayload
	Config GenerationConfig
	Prompt Prompt
}

// NewGenerationRequest は、入力を検証して生成リクエストを組み立てます。
// ここで失敗した場合、ネットワーク通信は一切行われません
func NewGenerationRequest(image ImagePayload, config GenerationConfig, generator *PromptGenerator) (GenerationRequest, error) {
	if image.IsEmpty() {
		return GenerationRequest{}, ErrNoImage
	}
	if err := CheckImageSize(image.Size(), MaxImageSize); err != nil {
		return GenerationRequest{}, err
	}
	if err := config.Validate(); err != nil {
		return GenerationRequest{}, err
	}
	if generator == nil {
		generator = NewPromptGenerator("")
	}

	return GenerationRequest{
		Image:  image,
		Config: config,
		Prompt: generator.Generate(config),
	}, nil
}

// String はGenerationRequestの文字列表現を返します（画像データは含みません）
func (r GenerationRequest) String() string {
	return fmt.Sprintf("GenerationRequest{Image: %s (%s, %d bytes), Platforms: %v, Tone: %s}",
		r.Image.Filename, r.Image.MIMEType, r.Image.Size(), r.Config.PlatformLabels(), r.Config.Tone)
}
