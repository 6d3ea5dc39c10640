package domain

import (
	"fmt"
	"strings"
)

// defaultRolePrompt は、モデルに与える役割の既定値です
const defaultRolePrompt = "You are an expert social media manager for a handmade arts and crafts business specializing in Decoupage."

// platformGuidelines は、プラットフォームごとの書き方の指示です
var platformGuidelines = []struct {
	platforms []Platform
	guideline string
}{
	{[]Platform{PlatformInstagram, PlatformPinterest}, "focus on aesthetics and visual storytelling."},
	{[]Platform{PlatformFacebook}, "focus on community and engagement (asking questions)."},
	{[]Platform{PlatformTikTok}, "write a short, catchy script or caption for a video reveal."},
	{[]Platform{PlatformX}, "keep it punchy and concise."},
}

// PromptGenerator は、選択内容からGeminiに送る指示文を生成するビジネスロジックを担当します
type PromptGenerator struct {
	rolePrompt string
}

// NewPromptGenerator は新しいPromptGeneratorインスタンスを作成します
func NewPromptGenerator(rolePrompt string) *PromptGenerator {
	if strings.TrimSpace(rolePrompt) == "" {
		rolePrompt = defaultRolePrompt
	}

	return &PromptGenerator{
		rolePrompt: rolePrompt,
	}
}

// Generate は、選択されたプラットフォームとトーンから指示文を生成します
func (pg *PromptGenerator) Generate(config GenerationConfig) Prompt {
	var builder strings.Builder

	builder.WriteString(pg.rolePrompt)
	builder.WriteString("\n\n")

	builder.WriteString("Analyze the attached image of a handmade decoupage creation.\n")
	builder.WriteString("1. First, identify the object (box, tray, furniture, bottle, etc.), the specific decoupage style (vintage, napkin technique, rice paper, mixed media), colors, and finish.\n")
	builder.WriteString(fmt.Sprintf("2. Then, generate optimized social media posts for the following platforms: %s.\n\n",
		strings.Join(config.PlatformLabels(), ", ")))

	builder.WriteString(fmt.Sprintf("The tone of voice should be: %s.\n\n", config.Tone.String()))

	builder.WriteString("For each platform:\n")
	builder.WriteString("- Adhere to platform best practices (length, structure, emoji usage).\n")
	for _, g := range platformGuidelines {
		selected := pg.selectedOf(config, g.platforms)
		if len(selected) == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf("- For %s, %s\n", strings.Join(selected, "/"), g.guideline))
	}
	builder.WriteString("\n")

	builder.WriteString("Write exactly one post per platform, using the platform name exactly as listed above in the 'platform' field. Keep hashtags out of 'content'.\n")
	builder.WriteString(fmt.Sprintf("Include %d-%d highly relevant hashtags for discovery in the 'hashtags' array.\n",
		RecommendedMinHashtags, RecommendedMaxHashtags))

	return NewPrompt(builder.String())
}

// selectedOf は、候補のうち選択されているプラットフォームのラベルを返します
func (pg *PromptGenerator) selectedOf(config GenerationConfig, candidates []Platform) []string {
	var labels []string
	for _, p := range candidates {
		if config.HasPlatform(p) {
			labels = append(labels, p.String())
		}
	}
	return labels
}
