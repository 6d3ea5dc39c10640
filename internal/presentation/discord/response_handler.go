package discord

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"decoupagestudio/internal/application"
	"decoupagestudio/internal/domain"

	"github.com/bwmarrin/discordgo"
)

// Discordの送信制限
const (
	DiscordMessageLimit       = 2000
	EmbedTitleLimit           = 256
	EmbedDescriptionLimit     = 4096
	EmbedFieldValueLimit      = 1024
	EmbedsPerMessageLimit     = 10
	EmbedTotalCharactersLimit = 6000
)

const colorAnalysis = 0xC8A27A

var platformColors = map[domain.Platform]int{
	domain.PlatformInstagram: 0xE1306C,
	domain.PlatformFacebook:  0x1877F2,
	domain.PlatformPinterest: 0xE60023,
	domain.PlatformX:         0x14171A,
	domain.PlatformTikTok:    0x25F4EE,
}

// ResponseHandler は、生成結果や設定をDiscord向けに整形して送信するハンドラーです
type ResponseHandler struct {
	logger *slog.Logger
}

// NewResponseHandler は新しいResponseHandlerインスタンスを作成します
func NewResponseHandler(logger *slog.Logger) *ResponseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponseHandler{logger: logger}
}

// BuildResultEmbeds は、解析結果を1つの解析Embedと投稿ごとのEmbedに変換します
func (h *ResponseHandler) BuildResultEmbeds(result *domain.AnalysisResult) []*discordgo.MessageEmbed {
	if result == nil {
		return nil
	}

	embeds := make([]*discordgo.MessageEmbed, 0, len(result.Posts)+1)
	embeds = append(embeds, &discordgo.MessageEmbed{
		Title: "✨ Analysis",
		Color: colorAnalysis,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Visual description", Value: truncate(result.VisualDescription, EmbedFieldValueLimit)},
			{Name: "Craftsmanship", Value: truncate(result.CraftsmanshipDetails, EmbedFieldValueLimit)},
		},
	})

	for _, post := range result.Posts {
		embeds = append(embeds, h.buildPostEmbed(post))
	}
	return embeds
}

// buildPostEmbed は、1件の投稿をEmbedに変換します
func (h *ResponseHandler) buildPostEmbed(post domain.GeneratedPost) *discordgo.MessageEmbed {
	color := colorAnalysis
	if platform, ok := post.MatchedPlatform(); ok {
		color = platformColors[platform]
	}

	tags := strings.Join(post.FormattedHashtags(), " ")
	if tags == "" {
		tags = "(none)"
	}

	return &discordgo.MessageEmbed{
		Title:       truncate(post.Platform, EmbedTitleLimit),
		Description: truncate(post.Content, EmbedDescriptionLimit),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Hashtags", Value: truncate(tags, EmbedFieldValueLimit)},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d hashtags", len(post.FormattedHashtags())),
		},
	}
}

// FormatResultText は、Embedを送信できない場合のテキスト版の結果を返します
func (h *ResponseHandler) FormatResultText(result *domain.AnalysisResult) string {
	return h.remainingResultText(result, 0)
}

// remainingResultText は、BuildResultEmbeds の先頭 sent 個を送信済みとみなし、
// 残りの部分だけをテキストにします
func (h *ResponseHandler) remainingResultText(result *domain.AnalysisResult, sent int) string {
	if result == nil {
		return ""
	}

	var builder strings.Builder
	posts := result.Posts
	if sent <= 0 {
		builder.WriteString("**Visual description**\n")
		builder.WriteString(result.VisualDescription)
		builder.WriteString("\n\n**Craftsmanship**\n")
		builder.WriteString(result.CraftsmanshipDetails)
		builder.WriteString("\n")
	} else if sent-1 < len(posts) {
		// 1個目のEmbedは解析結果
		posts = posts[sent-1:]
	} else {
		posts = nil
	}

	for _, post := range posts {
		builder.WriteString("\n**")
		builder.WriteString(post.Platform)
		builder.WriteString("**\n")
		builder.WriteString(post.CopyText())
		builder.WriteString("\n")
	}
	return strings.TrimPrefix(builder.String(), "\n")
}

// FormatSettings は、現在の選択内容を表示用のテキストに変換します
func (h *ResponseHandler) FormatSettings(snapshot application.StudioSnapshot) string {
	var builder strings.Builder
	builder.WriteString("🛠️ **Current settings**\n")

	platforms := "(none) " + application.MessageNoPlatforms
	if labels := snapshot.Config.PlatformLabels(); len(labels) > 0 {
		platforms = strings.Join(labels, ", ")
	}
	fmt.Fprintf(&builder, "**Platforms**: %s\n", platforms)
	fmt.Fprintf(&builder, "**Tone**: %s\n", snapshot.Config.Tone)

	if snapshot.HasImage {
		fmt.Fprintf(&builder, "**Image**: %s (%s)\n", displayFilename(snapshot.ImageFilename), formatBytes(snapshot.ImageBytes))
	} else {
		builder.WriteString("**Image**: not selected\n")
	}

	switch {
	case snapshot.IsGenerating:
		builder.WriteString("⏳ A generation is running.")
	case snapshot.CanGenerate:
		builder.WriteString("✅ Ready to generate.")
	default:
		builder.WriteString("ℹ️ Select a photo with `/image` or `/decoupage`, or mention me with a photo to generate posts.")
	}
	return builder.String()
}

// formatError は、エラーを利用者向けのメッセージに整形します
func (h *ResponseHandler) formatError(err error) string {
	message := application.UserMessage(err)
	if domain.IsInputRejection(err) {
		return "⚠️ " + message
	}
	if message == application.MessageGenerationInProgress {
		return "⏳ " + message
	}
	return "❌ " + message
}

// sendResult は、生成結果をチャンネルに送信します。
// Embedの送信に失敗した場合は、まだ送信していない部分だけをテキストで送ります
func (h *ResponseHandler) sendResult(s *discordgo.Session, channelID string, reference *discordgo.MessageReference, result *domain.AnalysisResult) {
	sent := 0
	for i, chunk := range chunkEmbeds(h.BuildResultEmbeds(result)) {
		message := &discordgo.MessageSend{Embeds: chunk}
		if i == 0 {
			message.Reference = reference
		}
		if _, err := s.ChannelMessageSendComplex(channelID, message); err != nil {
			h.logger.Warn("Embedの送信に失敗、テキストで送信します", "channel", channelID, "sent_embeds", sent, "error", err)
			h.sendText(s, channelID, h.remainingResultText(result, sent))
			return
		}
		sent += len(chunk)
	}
}

// sendText は、テキストをDiscordの制限に合わせて分割して送信します
func (h *ResponseHandler) sendText(s *discordgo.Session, channelID string, content string) {
	for i, chunk := range splitMessage(content) {
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			h.logger.Error("メッセージの送信に失敗", "channel", channelID, "chunk", i+1, "error", err)
			return
		}
	}
}

// chunkEmbeds は、1メッセージあたりのEmbed数と文字数の制限に収まるようにEmbedを分割します
func chunkEmbeds(embeds []*discordgo.MessageEmbed) [][]*discordgo.MessageEmbed {
	var (
		chunks  [][]*discordgo.MessageEmbed
		current []*discordgo.MessageEmbed
		total   int
	)
	for _, embed := range embeds {
		length := embedLength(embed)
		if len(current) > 0 && (len(current) == EmbedsPerMessageLimit || total+length > EmbedTotalCharactersLimit) {
			chunks = append(chunks, current)
			current, total = nil, 0
		}
		current = append(current, embed)
		total += length
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// embedLength は、Discordが合計文字数として数えるEmbedの文字数を返します
func embedLength(embed *discordgo.MessageEmbed) int {
	n := utf8.RuneCountInString(embed.Title) + utf8.RuneCountInString(embed.Description)
	for _, field := range embed.Fields {
		n += utf8.RuneCountInString(field.Name) + utf8.RuneCountInString(field.Value)
	}
	if embed.Footer != nil {
		n += utf8.RuneCountInString(embed.Footer.Text)
	}
	return n
}

// splitMessage は、メッセージをDiscordの文字数制限に合わせて分割します
func splitMessage(message string) []string {
	if utf8.RuneCountInString(message) <= DiscordMessageLimit {
		return []string{message}
	}

	var chunks []string
	remaining := []rune(message)

	for len(remaining) > 0 {
		if len(remaining) <= DiscordMessageLimit {
			chunks = append(chunks, string(remaining))
			break
		}

		// 制限以内で最も近い改行位置、なければ空白で分割
		splitIndex := lastIndexWithin(remaining, '\n')
		if splitIndex < 0 {
			splitIndex = lastIndexWithin(remaining, ' ')
		}
		if splitIndex <= 0 {
			splitIndex = DiscordMessageLimit
		}

		chunks = append(chunks, string(remaining[:splitIndex]))
		remaining = []rune(strings.TrimLeft(string(remaining[splitIndex:]), " \n"))
	}

	return chunks
}

func lastIndexWithin(runes []rune, target rune) int {
	for i := DiscordMessageLimit; i > 0; i-- {
		if runes[i-1] == target {
			return i
		}
	}
	return -1
}

// truncate は、文字列を指定した文字数以内に切り詰めます
func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(empty)"
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

func displayFilename(name string) string {
	if name == "" {
		return "image"
	}
	return name
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
