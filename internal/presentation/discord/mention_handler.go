package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"decoupagestudio/internal/application"
	"decoupagestudio/internal/domain"
	discordInfra "decoupagestudio/internal/infrastructure/discord"

	"github.com/bwmarrin/discordgo"
)

const mentionUsage = "📸 Mention me with a photo of your decoupage piece attached and I'll write posts for it. " +
	"You can add platforms or a tone to the message, e.g. `@bot instagram tiktok minimalist`."

// MentionHandler は、Discordのメンション処理を担当するハンドラーです
type MentionHandler struct {
	session         *discordgo.Session
	studio          *application.StudioApplicationService
	fetcher         ImageFetcher
	botID           string
	botUsername     string
	responseHandler *ResponseHandler
	logger          *slog.Logger
}

// NewMentionHandler は新しいMentionHandlerインスタンスを作成します
func NewMentionHandler(
	session *discordgo.Session,
	studio *application.StudioApplicationService,
	fetcher ImageFetcher,
	botID string,
	responseHandler *ResponseHandler,
	logger *slog.Logger,
) *MentionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MentionHandler{
		session:         session,
		studio:          studio,
		fetcher:         fetcher,
		botID:           botID,
		responseHandler: responseHandler,
		logger:          logger.With("component", "mention"),
	}
}

// SetupHandlers は、メンション関連のイベントハンドラを設定します
func (h *MentionHandler) SetupHandlers() {
	h.session.AddHandler(h.handleMessageCreate)
	h.session.AddHandler(h.handleReady)
}

// handleReady は、Botが準備完了した際のイベントを処理します
func (h *MentionHandler) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	h.logger.Info("Botが準備完了しました", "user", event.User.Username)
	h.botUsername = event.User.Username
	if h.botID == "" {
		h.botID = event.User.ID
	}
}

// handleMessageCreate は、メッセージ作成イベントを処理します
func (h *MentionHandler) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == h.botID || m.Author.Bot {
		return
	}

	if !h.isMentioned(m) {
		return
	}

	attachment, ok := mentionImageAttachment(m)
	if !ok {
		h.reply(s, m, mentionUsage)
		return
	}

	// 非同期で生成を処理
	go h.processMentionAsync(s, m, attachment)
}

// mentionImageAttachment は、メッセージに添付された最初の画像を返します。
// 添付がない場合はリプライ先のメッセージの画像を使います
func mentionImageAttachment(m *discordgo.MessageCreate) (*discordgo.MessageAttachment, bool) {
	if attachment, ok := discordInfra.FirstImageAttachment(m.Attachments); ok {
		return attachment, true
	}
	if m.ReferencedMessage != nil {
		return discordInfra.FirstImageAttachment(m.ReferencedMessage.Attachments)
	}
	return nil, false
}

// isMentioned は、メッセージがBotへのメンションかどうかを判定します
func (h *MentionHandler) isMentioned(m *discordgo.MessageCreate) bool {
	for _, mention := range m.Mentions {
		if mention.ID == h.botID {
			return true
		}
	}

	// メンション配列が空の場合、コンテンツをチェック
	if len(m.Mentions) == 0 && h.botUsername != "" {
		content := strings.ToLower(m.Content)
		botMention := fmt.Sprintf("@%s", strings.ToLower(h.botUsername))
		return strings.Contains(content, botMention)
	}

	return false
}

// extractUserContent は、メンション部分を除去したユーザーのコンテンツを抽出します
func (h *MentionHandler) extractUserContent(m *discordgo.MessageCreate) string {
	content := m.Content

	for _, mention := range m.Mentions {
		content = strings.ReplaceAll(content, fmt.Sprintf("<@%s>", mention.ID), "")
		content = strings.ReplaceAll(content, fmt.Sprintf("<@!%s>", mention.ID), "")
	}
	if h.botUsername != "" {
		content = strings.ReplaceAll(strings.ToLower(content), "@"+strings.ToLower(h.botUsername), "")
	}

	return strings.TrimSpace(content)
}

// processMentionAsync は、メンションを非同期で処理します
func (h *MentionHandler) processMentionAsync(s *discordgo.Session, m *discordgo.MessageCreate, attachment *discordgo.MessageAttachment) {
	ctx := context.Background()
	reference := m.Reference()

	opts, err := parseMentionOptions(h.extractUserContent(m))
	if err != nil {
		h.reply(s, m, h.responseHandler.formatError(err))
		return
	}

	image, err := h.fetcher.Fetch(ctx, attachment)
	if err != nil {
		h.logger.Warn("添付ファイルの取得に失敗", "user", m.Author.ID, "filename", attachment.Filename, "error", err)
		h.reply(s, m, h.responseHandler.formatError(err))
		return
	}

	// 処理中メッセージを送信
	thinkingMsg, err := s.ChannelMessageSendReply(m.ChannelID, "🎨 Looking at your piece and writing posts...", reference)
	if err != nil {
		h.logger.Warn("処理中メッセージの送信に失敗", "error", err)
	}

	result, err := h.studio.GenerateWithImage(ctx, m.Author.ID, &image, opts)

	if thinkingMsg != nil {
		if delErr := s.ChannelMessageDelete(m.ChannelID, thinkingMsg.ID); delErr != nil {
			h.logger.Debug("処理中メッセージの削除に失敗", "error", delErr)
		}
	}

	if err != nil {
		h.reply(s, m, h.responseHandler.formatError(err))
		return
	}

	h.responseHandler.sendResult(s, m.ChannelID, reference, result)
}

// reply は、メッセージにリプライします
func (h *MentionHandler) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		h.logger.Error("リプライの送信に失敗", "channel", m.ChannelID, "error", err)
	}
}

// parseMentionOptions は、メッセージ本文に含まれるプラットフォーム名やトーン名を取り出します。
// 該当しない単語は無視します
func parseMentionOptions(content string) (application.GenerateOptions, error) {
	var (
		opts      application.GenerateOptions
		platforms []string
	)

	words := strings.FieldsFunc(content, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
	for _, word := range words {
		if _, err := domain.ParsePlatform(word); err == nil {
			platforms = append(platforms, word)
			continue
		}
		if tone, err := domain.ParseTone(word); err == nil {
			t := tone
			opts.Tone = &t
		}
	}

	if len(platforms) > 0 {
		parsed, err := domain.ParsePlatforms(platforms...)
		if err != nil {
			return opts, err
		}
		opts.Platforms = parsed
	}
	return opts, nil
}
