package application

import (
	"context"

	"decoupagestudio/internal/domain"
)

// AnalysisGenerator は、画像と指示文から解析結果と投稿文を生成するクライアントのインターフェースです
type AnalysisGenerator interface {
	// GenerateAnalysis は、生成リクエストを1回だけ送信して結果を返します
	GenerateAnalysis(ctx context.Context, req domain.GenerationRequest) (*domain.AnalysisResult, error)
}
