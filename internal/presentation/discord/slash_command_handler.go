package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"decoupagestudio/internal/application"
	"decoupagestudio/internal/domain"

	"github.com/bwmarrin/discordgo"
)

// スラッシュコマンド名
const (
	CommandDecoupage = "decoupage"
	CommandPlatform  = "platform"
	CommandTone      = "tone"
	CommandSettings  = "settings"
	CommandImage     = "image"
	CommandClear     = "clear"
)

// ImageFetcher は、Discordの添付ファイルを画像として取得するインターフェースです
type ImageFetcher interface {
	Fetch(ctx context.Context, attachment *discordgo.MessageAttachment) (domain.ImagePayload, error)
}

// SlashCommandHandler は、Discordのスラッシュコマンドを処理するハンドラーです
type SlashCommandHandler struct {
	session         *discordgo.Session
	studio          *application.StudioApplicationService
	fetcher         ImageFetcher
	responseHandler *ResponseHandler
	logger          *slog.Logger
	registered      []*discordgo.ApplicationCommand
}

// NewSlashCommandHandler は新しいSlashCommandHandlerインスタンスを作成します
func NewSlashCommandHandler(
	session *discordgo.Session,
	studio *application.StudioApplicationService,
	fetcher ImageFetcher,
	responseHandler *ResponseHandler,
	logger *slog.Logger,
) *SlashCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlashCommandHandler{
		session:         session,
		studio:          studio,
		fetcher:         fetcher,
		responseHandler: responseHandler,
		logger:          logger.With("component", "slash_command"),
	}
}

// Commands は、登録するスラッシュコマンドの定義を返します
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandDecoupage,
			Description: "Generate social media posts from a photo of your decoupage piece",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "image",
					Description: "Photo of the item (max 10MB). Omit to use your selected image",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "platforms",
					Description: "Comma separated platforms, e.g. instagram,pinterest",
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tone",
					Description: "Tone of voice",
					Choices:     toneChoices(),
				},
			},
		},
		{
			Name:        CommandPlatform,
			Description: "Toggle a target platform on or off",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "platform",
					Description: "Platform to toggle",
					Required:    true,
					Choices:     platformChoices(),
				},
			},
		},
		{
			Name:        CommandTone,
			Description: "Choose the tone of voice for generated posts",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tone",
					Description: "Tone of voice",
					Required:    true,
					Choices:     toneChoices(),
				},
			},
		},
		{
			Name:        CommandSettings,
			Description: "Show your current platforms and tone",
		},
		{
			Name:        CommandImage,
			Description: "Select a photo to use with /decoupage",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "image",
					Description: "Photo of the item (max 10MB)",
					Required:    true,
				},
			},
		},
		{
			Name:        CommandClear,
			Description: "Clear your selected image",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "settings",
					Description: "Also reset platforms and tone to the defaults",
				},
			},
		},
	}
}

func platformChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.AllPlatforms()))
	for _, p := range domain.AllPlatforms() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: p.String(), Value: p.Value()})
	}
	return choices
}

func toneChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.AllTones()))
	for _, t := range domain.AllTones() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: t.String(), Value: t.Value()})
	}
	return choices
}

// SetupSlashCommands は、スラッシュコマンドをグローバルコマンドとして登録します
func (h *SlashCommandHandler) SetupSlashCommands() error {
	// BotのユーザーIDを取得
	user, err := h.session.User("@me")
	if err != nil {
		return fmt.Errorf("Botユーザー情報の取得に失敗: %w", err)
	}

	for _, command := range Commands() {
		created, err := h.session.ApplicationCommandCreate(user.ID, "", command)
		if err != nil {
			return fmt.Errorf("スラッシュコマンド %s の登録に失敗: %w", command.Name, err)
		}
		h.registered = append(h.registered, created)
		h.logger.Info("スラッシュコマンドを登録しました", "command", command.Name)
	}

	return nil
}

// RemoveSlashCommands は、登録したスラッシュコマンドを削除します
func (h *SlashCommandHandler) RemoveSlashCommands() {
	if h.session.State == nil || h.session.State.User == nil {
		return
	}
	for _, command := range h.registered {
		if err := h.session.ApplicationCommandDelete(h.session.State.User.ID, "", command.ID); err != nil {
			h.logger.Warn("スラッシュコマンドの削除に失敗", "command", command.Name, "error", err)
		}
	}
	h.registered = nil
}

// SetupSlashCommandHandlers は、スラッシュコマンドのハンドラーを設定します
func (h *SlashCommandHandler) SetupSlashCommandHandlers() {
	h.session.AddHandler(h.handleInteractionCreate)
}

// handleInteractionCreate は、インタラクション作成イベントを処理します
func (h *SlashCommandHandler) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	switch data.Name {
	case CommandDecoupage:
		h.handleDecoupageCommand(s, i)
	case CommandPlatform:
		h.handlePlatformCommand(s, i)
	case CommandTone:
		h.handleToneCommand(s, i)
	case CommandSettings:
		h.handleSettingsCommand(s, i)
	case CommandImage:
		h.handleImageCommand(s, i)
	case CommandClear:
		h.handleClearCommand(s, i)
	default:
		h.logger.Warn("未知のスラッシュコマンド", "command", data.Name)
	}
}

// handleDecoupageCommand は、/decoupageコマンドを処理します。
// 画像が指定されない場合は /image で選択済みの画像を使います
func (h *SlashCommandHandler) handleDecoupageCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	options := optionMap(data.Options)
	sessionID := interactionUserID(i)

	var attachment *discordgo.MessageAttachment
	if opt, ok := options["image"]; ok {
		attachment = resolveAttachment(data, opt)
		if attachment == nil {
			h.respondToInteraction(s, i, h.responseHandler.formatError(domain.ErrNoImage), true)
			return
		}
		// ダウンロード前にメタデータのサイズで判定する
		if err := domain.CheckImageSize(int64(attachment.Size), h.studio.MaxImageBytes()); err != nil {
			h.respondToInteraction(s, i, h.responseHandler.formatError(err), true)
			return
		}
	}

	opts, err := parseCommandOptions(options)
	if err != nil {
		h.respondToInteraction(s, i, h.responseHandler.formatError(err), true)
		return
	}

	// 生成には時間がかかるため先に応答を保留する
	if !h.deferResponse(s, i, false) {
		return
	}

	ctx := context.Background()
	var result *domain.AnalysisResult
	header := "🎨 Posts for your selected image"
	if attachment != nil {
		image, fetchErr := h.fetcher.Fetch(ctx, attachment)
		if fetchErr != nil {
			h.logger.Warn("添付ファイルの取得に失敗", "user", sessionID, "filename", attachment.Filename, "error", fetchErr)
			h.editResponse(s, i, h.responseHandler.formatError(fetchErr), nil)
			return
		}
		header = fmt.Sprintf("🎨 Posts for **%s**", displayFilename(image.Filename))
		result, err = h.studio.GenerateWithImage(ctx, sessionID, &image, opts)
	} else if opts.Platforms == nil && opts.Tone == nil {
		result, err = h.studio.Generate(ctx, sessionID)
	} else {
		result, err = h.studio.GenerateWithImage(ctx, sessionID, nil, opts)
	}
	if err != nil {
		h.editResponse(s, i, h.responseHandler.formatError(err), nil)
		return
	}

	chunks := chunkEmbeds(h.responseHandler.BuildResultEmbeds(result))
	if len(chunks) == 0 {
		h.editResponse(s, i, header, nil)
		return
	}
	h.editResponse(s, i, header, chunks[0])
	for _, chunk := range chunks[1:] {
		if _, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{Embeds: chunk}); err != nil {
			h.logger.Error("フォローアップメッセージの送信に失敗", "error", err)
			return
		}
	}
}

// handleImageCommand は、/imageコマンドを処理します。生成はせずに画像だけを選択します
func (h *SlashCommandHandler) handleImageCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	attachment := resolveAttachment(data, optionMap(data.Options)["image"])
	if attachment == nil {
		h.respondToInteraction(s, i, h.responseHandler.formatError(domain.ErrNoImage), true)
		return
	}
	if err := domain.CheckImageSize(int64(attachment.Size), h.studio.MaxImageBytes()); err != nil {
		h.respondToInteraction(s, i, h.responseHandler.formatError(err), true)
		return
	}

	if !h.deferResponse(s, i, true) {
		return
	}

	ctx := context.Background()
	sessionID := interactionUserID(i)
	image, err := h.fetcher.Fetch(ctx, attachment)
	if err != nil {
		h.logger.Warn("添付ファイルの取得に失敗", "user", sessionID, "filename", attachment.Filename, "error", err)
		h.editResponse(s, i, h.responseHandler.formatError(err), nil)
		return
	}
	if err := h.studio.SelectImage(ctx, sessionID, image); err != nil {
		h.editResponse(s, i, h.responseHandler.formatError(err), nil)
		return
	}

	h.editResponse(s, i, fmt.Sprintf("🖼️ Selected **%s** (%s). Run `/decoupage` to generate posts.",
		displayFilename(image.Filename), formatBytes(image.Size())), nil)
}

// handleClearCommand は、/clearコマンドを処理します
func (h *SlashCommandHandler) handleClearCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	sessionID := interactionUserID(i)

	resetSettings := false
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["settings"]; ok {
		resetSettings = opt.BoolValue()
	}

	var err error
	message := "🧹 Image cleared."
	if resetSettings {
		err = h.studio.Reset(ctx, sessionID)
		message = "🧹 Image cleared and settings reset to the defaults."
	} else {
		err = h.studio.ClearImage(ctx, sessionID)
	}
	if err != nil {
		h.logger.Error("画像の選択解除に失敗", "user", sessionID, "error", err)
		h.respondToInteraction(s, i, h.responseHandler.formatError(err), true)
		return
	}
	h.respondToInteraction(s, i, message, true)
}

// handlePlatformCommand は、/platformコマンドを処理します
func (h *SlashCommandHandler) handlePlatformCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := optionMap(i.ApplicationCommandData().Options)
	opt, ok := options["platform"]
	if !ok {
		h.respondToInteraction(s, i, h.responseHandler.formatError(domain.ErrInvalidPlatform), true)
		return
	}

	platform, err := domain.ParsePlatform(opt.StringValue())
	if err != nil {
		h.respondToInteraction(s, i, h.responseHandler.formatError(err), true)
		return
	}

	updated, err := h.studio.TogglePlatform(context.Background(), interactionUserID(i), platform)
	if err != nil {
		h.respondToInteraction(s, i, h.responseHandler.formatError(err), true)
		return
	}

	state := "removed"
	if updated.HasPlatform(platform) {
		state = "added"
	}
	message := fmt.Sprintf("✅ %s %s.", platform, state)
	if labels := updated.PlatformLabels(); len(labels) > 0 {
		message += fmt.Sprintf("\nPlatforms: %s", strings.Join(labels, ", "))
	} else {
		message += "\n⚠️ " + application.MessageNoPlatforms
	}
	h.respondToInteraction(s, i, message, true)
}

// handleToneCommand は、/toneコマンドを処理します
func (h *SlashCommandHandler) handleToneCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := optionMap(i.ApplicationCommandData().Options)
	opt, ok := options["tone"]
	if !ok {
		h.respondToInteraction(s, i, h.responseHandler.formatError(domain.ErrInvalidTone), true)
		return
	}

	tone, err := domain.ParseTone(opt.StringValue())
	if err != nil {
		h.respondToInteraction(s, i, h.responseHandler.formatError(err), true)
		return
	}

	if _, err := h.studio.SetTone(context.Background(), interactionUserID(i), tone); err != nil {
		h.respondToInteraction(s, i, h.responseHandler.formatError(err), true)
		return
	}
	h.respondToInteraction(s, i, fmt.Sprintf("✅ Tone set to **%s**.", tone), true)
}

// handleSettingsCommand は、/settingsコマンドを処理します
func (h *SlashCommandHandler) handleSettingsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	snapshot, err := h.studio.Settings(context.Background(), interactionUserID(i))
	if err != nil {
		h.logger.Error("設定の取得に失敗", "error", err)
		h.respondToInteraction(s, i, h.responseHandler.formatError(err), true)
		return
	}
	h.respondToInteraction(s, i, h.responseHandler.FormatSettings(snapshot), true)
}

// respondToInteraction は、インタラクションに応答します
func (h *SlashCommandHandler) respondToInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	}
	if ephemeral {
		response.Data.Flags = discordgo.MessageFlagsEphemeral
	}

	if err := s.InteractionRespond(i.Interaction, response); err != nil {
		h.logger.Error("インタラクションへの応答に失敗", "error", err)
	}
}

// deferResponse は、インタラクションへの応答を保留します
func (h *SlashCommandHandler) deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) bool {
	response := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		response.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := s.InteractionRespond(i.Interaction, response); err != nil {
		h.logger.Error("インタラクションの保留に失敗", "error", err)
		return false
	}
	return true
}

// editResponse は、保留した応答を編集します
func (h *SlashCommandHandler) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string, embeds []*discordgo.MessageEmbed) {
	edit := &discordgo.WebhookEdit{Content: &content}
	if embeds != nil {
		edit.Embeds = &embeds
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		h.logger.Error("応答の編集に失敗", "error", err)
	}
}

// optionMap は、コマンドオプションを名前で引けるようにします
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// resolveAttachment は、添付ファイルオプションから添付ファイルの情報を取り出します
func resolveAttachment(data discordgo.ApplicationCommandInteractionData, opt *discordgo.ApplicationCommandInteractionDataOption) *discordgo.MessageAttachment {
	if opt == nil || data.Resolved == nil {
		return nil
	}
	id, ok := opt.Value.(string)
	if !ok {
		return nil
	}
	return data.Resolved.Attachments[id]
}

// parseCommandOptions は、/decoupage の platforms と tone オプションを解釈します
func parseCommandOptions(options map[string]*discordgo.ApplicationCommandInteractionDataOption) (application.GenerateOptions, error) {
	var opts application.GenerateOptions

	if opt, ok := options["platforms"]; ok {
		platforms, err := domain.ParsePlatforms(opt.StringValue())
		if err != nil {
			return opts, err
		}
		// 空の指定は保存済みの選択で補わずに拒否する
		if len(platforms) == 0 {
			return opts, domain.ErrNoPlatforms
		}
		opts.Platforms = platforms
	}

	if opt, ok := options["tone"]; ok {
		tone, err := domain.ParseTone(opt.StringValue())
		if err != nil {
			return opts, err
		}
		opts.Tone = &tone
	}

	return opts, nil
}

// interactionUserID は、インタラクションを実行したユーザーのIDを返します
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
