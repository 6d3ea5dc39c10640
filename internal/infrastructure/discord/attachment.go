package discord

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"decoupagestudio/internal/domain"

	"github.com/bwmarrin/discordgo"
)

// AttachmentFetcher は、Discordの添付ファイルを画像としてダウンロードします
type AttachmentFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewAttachmentFetcher は新しいAttachmentFetcherインスタンスを作成します。
// client には通常 discordgo.Session.Client を渡します
func NewAttachmentFetcher(client *http.Client, maxBytes int64) *AttachmentFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxBytes <= 0 || maxBytes > domain.MaxImageSize {
		maxBytes = domain.MaxImageSize
	}
	return &AttachmentFetcher{
		client:   client,
		maxBytes: maxBytes,
	}
}

// IsImageAttachment は、添付ファイルが画像かどうかをメタデータから判定します
func IsImageAttachment(attachment *discordgo.MessageAttachment) bool {
	if attachment == nil {
		return false
	}
	if attachment.ContentType != "" {
		return strings.HasPrefix(strings.ToLower(attachment.ContentType), "image/")
	}
	name := strings.ToLower(attachment.Filename)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp", ".gif", ".heic", ".heif"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// FirstImageAttachment は、添付ファイルの中から最初の画像を返します
func FirstImageAttachment(attachments []*discordgo.MessageAttachment) (*discordgo.MessageAttachment, bool) {
	for _, attachment := range attachments {
		if IsImageAttachment(attachment) {
			return attachment, true
		}
	}
	return nil, false
}

// Fetch は、添付ファイルをダウンロードしてImagePayloadを作成します。
// 上限を超える添付ファイルはダウンロード前に拒否します
func (f *AttachmentFetcher) Fetch(ctx context.Context, attachment *discordgo.MessageAttachment) (domain.ImagePayload, error) {
	if attachment == nil {
		return domain.ImagePayload{}, domain.ErrNoImage
	}
	if err := domain.CheckImageSize(int64(attachment.Size), f.maxBytes); err != nil {
		return domain.ImagePayload{}, err
	}
	if !IsImageAttachment(attachment) {
		return domain.ImagePayload{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedImageType, attachment.ContentType)
	}

	url := attachment.URL
	if url == "" {
		url = attachment.ProxyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("添付ファイルのリクエスト作成に失敗: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("添付ファイルのダウンロードに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ImagePayload{}, fmt.Errorf("添付ファイルのダウンロードに失敗: ステータス %d", resp.StatusCode)
	}

	// 実際のサイズはメタデータと一致するとは限らない
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("添付ファイルの読み込みに失敗: %w", err)
	}
	if err := domain.CheckImageSize(int64(len(data)), f.maxBytes); err != nil {
		return domain.ImagePayload{}, err
	}

	mimeType := attachment.ContentType
	if mimeType == "" {
		mimeType = resp.Header.Get("Content-Type")
	}
	return domain.NewImagePayloadWithLimit(data, mimeType, attachment.Filename, f.maxBytes)
}
