package configs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"decoupagestudio/internal/domain"
	"decoupagestudio/internal/infrastructure/config"

	"github.com/joho/godotenv"
)

// Config は、アプリケーション全体の設定を定義します
type Config struct {
	Discord config.DiscordConfig
	Gemini  config.GeminiConfig
	Studio  config.StudioConfig
	HTTP    config.HTTPConfig
	Log     config.LogConfig
}

// LoadConfig は、環境変数から設定を読み込みます
func LoadConfig() (*Config, error) {
	// .envファイルを読み込み（ファイルが存在しない場合は無視）
	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "警告: .envファイルの読み込みに失敗しました: %v\n", err)
	}

	cfg := FromEnv()

	// 必須設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv は、現在の環境変数から設定を組み立てます（検証は行いません）
func FromEnv() *Config {
	gemini := config.DefaultGeminiConfig()
	studio := config.DefaultStudioConfig()

	return &Config{
		Discord: config.DiscordConfig{
			BotToken: getEnvOrDefault("DISCORD_BOT_TOKEN", ""),
		},
		Gemini: config.GeminiConfig{
			APIKey:      getEnvOrDefault("GEMINI_API_KEY", ""),
			ModelName:   getEnvOrDefault("GEMINI_MODEL_NAME", gemini.ModelName),
			MaxTokens:   int32(getEnvAsIntOrDefault("GEMINI_MAX_TOKENS", int(gemini.MaxTokens))),
			Temperature: float32(getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", float64(gemini.Temperature))),
			TopP:        float32(getEnvAsFloatOrDefault("GEMINI_TOP_P", float64(gemini.TopP))),
		},
		Studio: config.StudioConfig{
			RequestTimeout: getEnvAsDurationOrDefault("REQUEST_TIMEOUT", studio.RequestTimeout),
			MaxImageBytes:  int64(getEnvAsIntOrDefault("MAX_IMAGE_BYTES", int(studio.MaxImageBytes))),
			RolePrompt:     getEnvOrDefault("ROLE_PROMPT", ""),
		},
		HTTP: config.HTTPConfig{
			Addr:            getEnvOrDefault("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDurationOrDefault("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: config.LogConfig{
			Level:  getEnvAsLogLevelOrDefault("LOG_LEVEL", slog.LevelInfo),
			Format: strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
		},
	}
}

// Validate は、設定の妥当性を検証します
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New("GEMINI_API_KEY が設定されていません")
	}

	if c.Gemini.ModelName == "" {
		return errors.New("GEMINI_MODEL_NAME が設定されていません")
	}

	if c.Gemini.MaxTokens <= 0 {
		return errors.New("GEMINI_MAX_TOKENS は正の整数である必要があります")
	}

	// 0は決定的すぎるため許可しない
	if c.Gemini.Temperature <= 0 || c.Gemini.Temperature > 2 {
		return errors.New("GEMINI_TEMPERATURE は0より大きく2以下である必要があります")
	}

	if c.Gemini.TopP <= 0 || c.Gemini.TopP > 1 {
		return errors.New("GEMINI_TOP_P は0より大きく1以下である必要があります")
	}

	if c.Studio.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT は正の値である必要があります")
	}

	if c.Studio.MaxImageBytes <= 0 || c.Studio.MaxImageBytes > domain.MaxImageSize {
		return fmt.Errorf("MAX_IMAGE_BYTES は1以上%d以下である必要があります", domain.MaxImageSize)
	}

	if !c.Discord.Enabled() && !c.HTTP.Enabled() {
		return errors.New("DISCORD_BOT_TOKEN と HTTP_ADDR の少なくとも一方を設定してください")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		return errors.New("LOG_FORMAT は json または text である必要があります")
	}

	return nil
}

// getEnvOrDefault は、環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は、環境変数を整数として取得し、存在しない場合はデフォルト値を返します
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault は、環境変数を浮動小数点数として取得し、存在しない場合はデフォルト値を返します
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault は、環境変数を時間として取得し、存在しない場合はデフォルト値を返します
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsLogLevelOrDefault は、環境変数をログレベルとして取得し、存在しない場合はデフォルト値を返します
func getEnvAsLogLevelOrDefault(key string, defaultValue slog.Level) slog.Level {
	if value := os.Getenv(key); value != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err == nil {
			return level
		}
	}
	return defaultValue
}
