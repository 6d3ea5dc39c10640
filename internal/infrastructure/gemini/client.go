package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"decoupagestudio/internal/domain"
	"decoupagestudio/internal/infrastructure/config"

	"google.golang.org/genai"
)

// contentGenerator は、GenerateContent呼び出しを抽象化します。*genai.Models が満たします
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAPIClient は、Gemini APIに画像と指示文を送り、投稿文の生成結果を受け取るクライアントです
type GeminiAPIClient struct {
	models contentGenerator
	config *config.GeminiConfig
	logger *slog.Logger
}

// NewGeminiAPIClient は新しいGeminiAPIClientインスタンスを作成します
func NewGeminiAPIClient(ctx context.Context, geminiConfig *config.GeminiConfig, logger *slog.Logger) (*GeminiAPIClient, error) {
	if geminiConfig == nil {
		geminiConfig = config.DefaultGeminiConfig()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini APIクライアントの作成に失敗: %w", err)
	}

	return newGeminiAPIClient(client.Models, geminiConfig, logger), nil
}

func newGeminiAPIClient(models contentGenerator, geminiConfig *config.GeminiConfig, logger *slog.Logger) *GeminiAPIClient {
	if geminiConfig == nil {
		geminiConfig = config.DefaultGeminiConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiAPIClient{
		models: models,
		config: geminiConfig,
		logger: logger.With("component", "gemini"),
	}
}

// GenerateAnalysis は、画像と指示文を1回だけGemini APIに送り、解析結果と投稿文を返します。
// 失敗した場合は domain.GenerationError を返します
func (g *GeminiAPIClient) GenerateAnalysis(ctx context.Context, req domain.GenerationRequest) (*domain.AnalysisResult, error) {
	contents, generateConfig := BuildRequest(req, g.config)

	if g.logger.Enabled(ctx, slog.LevelDebug) {
		g.logger.DebugContext(ctx, "Gemini APIに投稿文の生成をリクエスト中",
			"model", g.config.ModelName,
			"mime_type", req.Image.MIMEType,
			"image_bytes", req.Image.Size(),
			"inline_data_chars", len(req.Image.Base64()),
			"prompt_chars", len(req.Prompt.Content()),
			"platforms", req.Config.PlatformLabels(),
			"tone", req.Config.Tone.String(),
		)
	}

	resp, err := g.models.GenerateContent(ctx, g.config.ModelName, contents, generateConfig)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.NewGenerationError(domain.GenerationErrorTimeout, fmt.Errorf("Gemini APIへのリクエストがタイムアウトしました: %w", err))
		}
		return nil, domain.NewGenerationError(domain.GenerationErrorTransport, fmt.Errorf("Gemini APIからの応答取得に失敗: %w", err))
	}

	text, err := g.processResponse(ctx, resp)
	if err != nil {
		return nil, err
	}

	return ParseAnalysisResult(text)
}

// processResponse は、Gemini APIのレスポンスからテキストを取り出します
func (g *GeminiAPIClient) processResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", domain.NewGenerationError(domain.GenerationErrorEmptyReply, errors.New("Gemini APIから応答がありません"))
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", domain.NewGenerationError(domain.GenerationErrorBlocked,
			fmt.Errorf("Gemini APIがリクエストをブロックしました: %s", resp.PromptFeedback.BlockReason))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", domain.NewGenerationError(domain.GenerationErrorEmptyReply, errors.New("Gemini APIから有効な応答が得られませんでした"))
	}

	candidate := resp.Candidates[0]
	g.logger.DebugContext(ctx, "Gemini APIレスポンス",
		"candidates", len(resp.Candidates),
		"finish_reason", string(candidate.FinishReason),
	)

	// FinishReasonをチェックして安全フィルターによるブロックを検出
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
		for _, rating := range candidate.SafetyRatings {
			if rating != nil && rating.Blocked {
				g.logger.WarnContext(ctx, "安全フィルターに該当しました", "category", string(rating.Category), "probability", string(rating.Probability))
			}
		}
		return "", domain.NewGenerationError(domain.GenerationErrorBlocked,
			fmt.Errorf("Gemini APIの安全フィルターによって応答がブロックされました: %s", candidate.FinishReason))
	case genai.FinishReasonRecitation:
		return "", domain.NewGenerationError(domain.GenerationErrorBlocked, errors.New("Gemini APIが著作権保護された内容を検出しました"))
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", domain.NewGenerationError(domain.GenerationErrorEmptyReply,
			fmt.Errorf("Gemini APIの応答にコンテンツが含まれていません。FinishReason: %s", candidate.FinishReason))
	}

	// テキスト部分を抽出
	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" && !part.Thought {
			builder.WriteString(part.Text)
		}
	}

	result := builder.String()
	if strings.TrimSpace(result) == "" {
		return "", domain.NewGenerationError(domain.GenerationErrorEmptyReply,
			fmt.Errorf("Gemini APIの応答にテキストが含まれていません。FinishReason: %s", candidate.FinishReason))
	}

	g.logger.DebugContext(ctx, "Gemini APIから応答を取得", "chars", len(result))
	return result, nil
}

// Close は、Gemini APIクライアントを閉じます
func (g *GeminiAPIClient) Close() error {
	// genai.ClientにはCloseメソッドがないため、何もしない
	return nil
}
