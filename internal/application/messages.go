package application

import (
	"errors"

	"decoupagestudio/internal/domain"
)

// 利用者に表示するメッセージ
const (
	MessageImageTooLarge        = "Image size too large. Please upload an image under 10MB."
	MessageNoImage              = "Please upload an image of your decoupage item first."
	MessageUnsupportedImage     = "That file does not look like an image. Please upload a JPEG, PNG or WebP photo."
	MessageNoPlatforms          = "Select at least one platform."
	MessageInvalidOption        = "Unknown platform or tone. Please pick one of the listed options."
	MessageGenerationInProgress = "A generation is already running. Please wait for it to finish."
	MessageGenerationFailed     = "Failed to generate posts. Please try again later or check your API key."
)

// UserMessage は、エラーを利用者向けのメッセージに変換します。
// 生成失敗の種類はログにのみ残し、利用者には1種類のメッセージだけを返します
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrImageTooLarge):
		return MessageImageTooLarge
	case errors.Is(err, domain.ErrNoImage), errors.Is(err, domain.ErrEmptyImage):
		return MessageNoImage
	case errors.Is(err, domain.ErrUnsupportedImageType):
		return MessageUnsupportedImage
	case errors.Is(err, domain.ErrNoPlatforms):
		return MessageNoPlatforms
	case errors.Is(err, domain.ErrInvalidPlatform), errors.Is(err, domain.ErrInvalidTone):
		return MessageInvalidOption
	case errors.Is(err, domain.ErrGenerationInProgress):
		return MessageGenerationInProgress
	default:
		return MessageGenerationFailed
	}
}
