package discord

import (
	"log/slog"

	"decoupagestudio/internal/application"

	"github.com/bwmarrin/discordgo"
)

// DiscordHandler は、Discordのイベントハンドラです
type DiscordHandler struct {
	session             *discordgo.Session
	mentionHandler      *MentionHandler
	slashCommandHandler *SlashCommandHandler
}

// NewDiscordHandler は新しいDiscordHandlerインスタンスを作成します
func NewDiscordHandler(
	session *discordgo.Session,
	studio *application.StudioApplicationService,
	fetcher ImageFetcher,
	botID string,
	logger *slog.Logger,
) *DiscordHandler {
	responseHandler := NewResponseHandler(logger)

	return &DiscordHandler{
		session:             session,
		mentionHandler:      NewMentionHandler(session, studio, fetcher, botID, responseHandler, logger),
		slashCommandHandler: NewSlashCommandHandler(session, studio, fetcher, responseHandler, logger),
	}
}

// SetupHandlers は、Discordのイベントハンドラを設定します
func (h *DiscordHandler) SetupHandlers() {
	h.mentionHandler.SetupHandlers()
	h.slashCommandHandler.SetupSlashCommandHandlers()
}

// RegisterCommands は、スラッシュコマンドを登録します。セッション接続後に呼び出します
func (h *DiscordHandler) RegisterCommands() error {
	return h.slashCommandHandler.SetupSlashCommands()
}

// UnregisterCommands は、登録したスラッシュコマンドを削除します
func (h *DiscordHandler) UnregisterCommands() {
	h.slashCommandHandler.RemoveSlashCommands()
}
