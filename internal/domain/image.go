package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// MaxImageSize は、選択できる画像の最大サイズ（10MiB）です
const MaxImageSize = 10 * 1024 * 1024

// ImagePayload は、生成リクエストに添付する1枚の画像を表す値オブジェクトです
type ImagePayload struct {
	Data     []byte
	MIMEType string
	Filename string
}

// NewImagePayload は、サイズとMIMEタイプを検証してImagePayloadを作成します。
// MIMEタイプが空の場合は画像データから判定します
func NewImagePayload(data []byte, mimeType, filename string) (ImagePayload, error) {
	return NewImagePayloadWithLimit(data, mimeType, filename, MaxImageSize)
}

// NewImagePayloadWithLimit は、上限サイズを指定してImagePayloadを作成します
func NewImagePayloadWithLimit(data []byte, mimeType, filename string, limit int64) (ImagePayload, error) {
	if len(data) == 0 {
		return ImagePayload{}, ErrEmptyImage
	}
	if err := CheckImageSize(int64(len(data)), limit); err != nil {
		return ImagePayload{}, err
	}

	mimeType = normalizeMIMEType(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = normalizeMIMEType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return ImagePayload{}, fmt.Errorf("%w: %s", ErrUnsupportedImageType, mimeType)
	}

	return ImagePayload{
		Data:     data,
		MIMEType: mimeType,
		Filename: filename,
	}, nil
}

// CheckImageSize は、画像のバイト数が上限以内かどうかを検証します。
// ダウンロードや読み込みの前にメタデータのサイズで判定するために使います
func CheckImageSize(size, limit int64) error {
	if limit <= 0 || limit > MaxImageSize {
		limit = MaxImageSize
	}
	if size > limit {
		return fmt.Errorf("%w: %d bytes (上限 %d bytes)", ErrImageTooLarge, size, limit)
	}
	return nil
}

// Size は画像のバイト数を返します
func (p ImagePayload) Size() int64 {
	return int64(len(p.Data))
}

// IsEmpty は画像が未設定かどうかを判定します
func (p ImagePayload) IsEmpty() bool {
	return len(p.Data) == 0
}

// Base64 は、データURIのプレフィックスを含まない base64 文字列を返します
func (p ImagePayload) Base64() string {
	return base64.StdEncoding.EncodeToString(p.Data)
}

// StripDataURIPrefix は、"data:image/png;base64," のようなスキームのプレフィックスを取り除き、
// base64 のペイロード部分だけを返します
func StripDataURIPrefix(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToLower(s), "data:") {
		return s
	}
	if idx := strings.Index(s, ","); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// DecodeDataURI は、データURIまたは素の base64 文字列からImagePayloadを作成します
func DecodeDataURI(s, filename string) (ImagePayload, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ImagePayload{}, ErrNoImage
	}

	mimeType := ""
	if strings.HasPrefix(strings.ToLower(s), "data:") {
		if idx := strings.Index(s, ","); idx >= 0 {
			header := s[len("data:"):idx]
			mimeType = strings.SplitN(header, ";", 2)[0]
		}
	}

	payload := StripDataURIPrefix(s)
	// 上限を超える base64 はデコード前に弾く
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > MaxImageSize+2 {
		return ImagePayload{}, fmt.Errorf("%w: base64 %d文字", ErrImageTooLarge, len(payload))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ImagePayload{}, fmt.Errorf("%w: base64のデコードに失敗: %v", ErrUnsupportedImageType, err)
	}
	return NewImagePayload(data, mimeType, filename)
}

func normalizeMIMEType(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}
