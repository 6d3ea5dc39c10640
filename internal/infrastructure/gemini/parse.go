package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"decoupagestudio/internal/domain"
)

// ParseAnalysisResult は、モデルが返したJSONテキストをAnalysisResultに変換します。
// 失敗した場合は種類付きのGenerationErrorを返します
func ParseAnalysisResult(text string) (*domain.AnalysisResult, error) {
	text = stripCodeFence(text)
	if text == "" {
		return nil, domain.NewGenerationError(domain.GenerationErrorEmptyReply, errors.New("応答テキストが空です"))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, domain.NewGenerationError(domain.GenerationErrorMalformedJSON, fmt.Errorf("応答をJSONとして解析できません: %w", err))
	}

	if err := requireFields(raw, fieldVisualDescription, fieldCraftsmanshipDetails, fieldPosts); err != nil {
		return nil, domain.NewGenerationError(domain.GenerationErrorMissingField, err)
	}

	var rawPosts []map[string]json.RawMessage
	if err := json.Unmarshal(raw[fieldPosts], &rawPosts); err != nil {
		return nil, domain.NewGenerationError(domain.GenerationErrorMissingField, fmt.Errorf("posts の形式が不正です: %w", err))
	}
	for i, post := range rawPosts {
		if err := requireFields(post, fieldPlatform, fieldContent, fieldHashtags); err != nil {
			return nil, domain.NewGenerationError(domain.GenerationErrorMissingField, fmt.Errorf("posts[%d]: %w", i, err))
		}
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, domain.NewGenerationError(domain.GenerationErrorMissingField, fmt.Errorf("フィールドの型が不正です: %w", err))
	}

	if err := result.Validate(); err != nil {
		return nil, domain.NewGenerationError(domain.GenerationErrorMissingField, err)
	}

	return &result, nil
}

// requireFields は、JSONオブジェクトに指定したキーがすべて存在するかを確認します
func requireFields(raw map[string]json.RawMessage, fields ...string) error {
	for _, field := range fields {
		if _, ok := raw[field]; !ok {
			return fmt.Errorf("必須フィールド %s がありません", field)
		}
	}
	return nil
}

// stripCodeFence は、```json ... ``` で囲まれた応答から中身だけを取り出します
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
