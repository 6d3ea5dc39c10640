package domain

import (
	"context"
	"errors"
	"fmt"
)

// ドメイン固有のエラー型を定義
var (
	// ErrNoImage は、画像が選択されていない場合のエラーです
	ErrNoImage = errors.New("画像が選択されていません")

	// ErrEmptyImage は、画像データが空の場合のエラーです
	ErrEmptyImage = errors.New("画像データが空です")

	// ErrImageTooLarge は、画像サイズが上限を超えている場合のエラーです
	ErrImageTooLarge = errors.New("画像サイズが上限を超えています")

	// ErrUnsupportedImageType は、画像以外のMIMEタイプが指定された場合のエラーです
	ErrUnsupportedImageType = errors.New("画像形式ではありません")

	// ErrNoPlatforms は、投稿先が1つも選択されていない場合のエラーです
	ErrNoPlatforms = errors.New("投稿先のプラットフォームが選択されていません")

	// ErrInvalidPlatform は、未定義のプラットフォームが指定された場合のエラーです
	ErrInvalidPlatform = errors.New("無効なプラットフォームです")

	// ErrInvalidTone は、未定義のトーンが指定された場合のエラーです
	ErrInvalidTone = errors.New("無効なトーンです")

	// ErrGenerationInProgress は、生成処理がすでに実行中の場合のエラーです
	ErrGenerationInProgress = errors.New("生成処理が実行中です")

	// ErrNoGenerationInFlight は、実行中の生成処理がないのに結果を受け取った場合のエラーです
	ErrNoGenerationInFlight = errors.New("実行中の生成処理がありません")

	// ErrGenerationFailed は、生成処理の失敗をまとめて表すエラーです
	ErrGenerationFailed = errors.New("投稿文の生成に失敗しました")
)

// IsInputRejection は、ネットワーク通信前に検出される入力エラーかどうかを判定します
func IsInputRejection(err error) bool {
	return errors.Is(err, ErrNoImage) ||
		errors.Is(err, ErrEmptyImage) ||
		errors.Is(err, ErrImageTooLarge) ||
		errors.Is(err, ErrUnsupportedImageType) ||
		errors.Is(err, ErrNoPlatforms) ||
		errors.Is(err, ErrInvalidPlatform) ||
		errors.Is(err, ErrInvalidTone)
}

// GenerationErrorKind は、生成失敗の原因の種類です。ログ出力のためだけに使われます
type GenerationErrorKind string

const (
	GenerationErrorTransport     GenerationErrorKind = "transport"
	GenerationErrorTimeout       GenerationErrorKind = "timeout"
	GenerationErrorBlocked       GenerationErrorKind = "blocked"
	GenerationErrorEmptyReply    GenerationErrorKind = "empty_reply"
	GenerationErrorMalformedJSON GenerationErrorKind = "malformed_json"
	GenerationErrorMissingField  GenerationErrorKind = "missing_field"
)

// GenerationError は、生成クライアントが返すエラーです。
// errors.Is(err, ErrGenerationFailed) は常に true になります
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

// NewGenerationError は新しいGenerationErrorを作成します
func NewGenerationError(kind GenerationErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

// Error はエラーメッセージを返します
func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", ErrGenerationFailed.Error(), e.Kind)
	}
	return fmt.Sprintf("%s (%s): %v", ErrGenerationFailed.Error(), e.Kind, e.Err)
}

// Unwrap は元のエラーを返します
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is はErrGenerationFailedとの比較を可能にします
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// GenerationErrorKindOf は、エラーから失敗の種類を取り出します。
// GenerationErrorでない場合はコンテキストの状態から推定します
func GenerationErrorKindOf(err error) GenerationErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return GenerationErrorTimeout
	}
	return GenerationErrorTransport
}
