package config

import (
	"log/slog"
	"time"
)

// GeminiConfig は、Gemini API関連の設定を定義します
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// StudioConfig は、投稿文生成の処理に関する設定を定義します
type StudioConfig struct {
	RequestTimeout time.Duration // 生成呼び出し1回あたりの待ち時間の上限
	MaxImageBytes  int64         // 受け付ける画像の最大サイズ（10MiB以下）
	RolePrompt     string        // モデルに与える役割（空なら既定値）
}

// DiscordConfig は、Discord関連の設定を定義します
type DiscordConfig struct {
	BotToken string
}

// Enabled は、Discord Botを起動するかどうかを返します
func (c DiscordConfig) Enabled() bool {
	return c.BotToken != ""
}

// HTTPConfig は、HTTP APIサーバーの設定を定義します
type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Enabled は、HTTP APIサーバーを起動するかどうかを返します
func (c HTTPConfig) Enabled() bool {
	return c.Addr != ""
}

// LogConfig は、ログ出力の設定を定義します
type LogConfig struct {
	Level  slog.Level
	Format string // "json" または "text"
}

// DefaultGeminiConfig は、既定のGemini設定を返します
func DefaultGeminiConfig() *GeminiConfig {
	return &GeminiConfig{
		ModelName:   "gemini-2.5-flash",
		MaxTokens:   8192,
		Temperature: 0.7,
		TopP:        0.95,
	}
}

// DefaultStudioConfig は、既定の生成処理設定を返します
func DefaultStudioConfig() *StudioConfig {
	return &StudioConfig{
		RequestTimeout: 60 * time.Second,
		MaxImageBytes:  10 * 1024 * 1024,
	}
}
