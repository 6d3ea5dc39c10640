package domain

import "context"

// StudioSessionRepository は、利用者ごとのStudioStateを保持するためのインターフェースです
type StudioSessionRepository interface {
	// Update は、指定したセッションの状態を排他的に更新します。
	// セッションが存在しない場合は初期状態で作成されます
	Update(ctx context.Context, sessionID string, fn func(state *StudioState) error) error

	// Delete は、指定したセッションの状態を破棄します。
	// 生成処理が実行中の場合は ErrGenerationInProgress を返します
	Delete(ctx context.Context, sessionID string) error
}
