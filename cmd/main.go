package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decoupagestudio/configs"
	"decoupagestudio/internal/application"
	"decoupagestudio/internal/infrastructure/config"
	discordInfra "decoupagestudio/internal/infrastructure/discord"
	"decoupagestudio/internal/infrastructure/gemini"
	discordPres "decoupagestudio/internal/presentation/discord"
	httpapi "decoupagestudio/internal/presentation/http"

	"github.com/bwmarrin/discordgo"
)

// 使われなくなったスタジオのセッションを破棄する間隔と猶予
const (
	sessionSweepInterval = 5 * time.Minute
	sessionMaxIdle       = time.Hour
)

func main() {
	// 設定を読み込み
	cfg, err := configs.LoadConfig()
	if err != nil {
		slog.Error("設定の読み込みに失敗", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)
	logger.Info("デコパージュ投稿スタジオを起動中...", "model", cfg.Gemini.ModelName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("起動に失敗", "error", err)
		os.Exit(1)
	}

	logger.Info("正常に停止しました")
}

func run(ctx context.Context, cfg *configs.Config, logger *slog.Logger) error {
	// Gemini APIクライアントを作成
	geminiClient, err := gemini.NewGeminiAPIClient(ctx, &cfg.Gemini, logger)
	if err != nil {
		return err
	}
	defer geminiClient.Close()

	// リポジトリを作成
	sessions := discordInfra.NewInMemorySessionRepository()
	go sessions.RunSweeper(ctx, sessionSweepInterval, sessionMaxIdle)

	// アプリケーションサービスを作成
	studio, err := application.NewStudioApplicationService(sessions, geminiClient, &cfg.Studio, logger)
	if err != nil {
		return err
	}

	if cfg.Discord.Enabled() {
		bot, err := startDiscord(cfg, studio, logger)
		if err != nil {
			return err
		}
		defer bot.close()
	}

	serverErr := make(chan error, 1)
	var server *http.Server
	if cfg.HTTP.Enabled() {
		server = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.NewRouter(httpapi.NewHandler(studio, logger), logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP APIサーバーを起動しました", "addr", cfg.HTTP.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	// 終了シグナルを待機
	select {
	case <-ctx.Done():
		logger.Info("終了シグナルを受信しました。停止中...")
	case err := <-serverErr:
		logger.Error("HTTP APIサーバーが停止しました", "error", err)
	}

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP APIサーバーの停止に失敗", "error", err)
		}
	}
	return nil
}

// discordBot は、起動したDiscordセッションとハンドラーをまとめます
type discordBot struct {
	session *discordgo.Session
	handler *discordPres.DiscordHandler
	logger  *slog.Logger
}

func startDiscord(cfg *configs.Config, studio *application.StudioApplicationService, logger *slog.Logger) (*discordBot, error) {
	// Discordセッションを作成
	session, err := discordgo.New("Bot " + cfg.Discord.BotToken)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	// Botの情報を取得
	user, err := session.User("@me")
	if err != nil {
		return nil, err
	}
	logger.Info("Bot情報", "username", user.Username, "id", user.ID)

	fetcher := discordInfra.NewAttachmentFetcher(session.Client, studio.MaxImageBytes())
	handler := discordPres.NewDiscordHandler(session, studio, fetcher, user.ID, logger)
	handler.SetupHandlers()

	// Discordに接続
	if err := session.Open(); err != nil {
		return nil, err
	}

	// スラッシュコマンドを設定
	if err := handler.RegisterCommands(); err != nil {
		session.Close()
		return nil, err
	}

	logger.Info("Discordに接続しました。Botが準備完了しました！")
	return &discordBot{session: session, handler: handler, logger: logger}, nil
}

func (b *discordBot) close() {
	b.handler.UnregisterCommands()
	if err := b.session.Close(); err != nil {
		b.logger.Warn("Discordセッションのクローズに失敗", "error", err)
	}
}

// newLogger は、設定に従ってslogのロガーを作成します
func newLogger(logConfig config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logConfig.Level}
	if logConfig.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
