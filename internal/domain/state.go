package domain

import "fmt"

// GenerationTicket は、StartGenerationで発行される実行中の生成処理の控えです。
// 選択内容のスナップショットを持つため、生成中に選択が変わっても影響を受けません
type GenerationTicket struct {
	ID     uint64
	Image  ImagePayload
	Config GenerationConfig
}

// StudioState は、画像・選択内容・直近の結果を保持する画面状態です。
// 変更は名前付きの遷移メソッドからのみ行い、同時に実行中の生成は最大1件に保たれます
type StudioState struct {
	image      *ImagePayload
	config     GenerationConfig
	generating bool
	inFlightID uint64
	lastID     uint64
	result     *AnalysisResult
	err        error
}

// NewStudioState は、初期選択内容を持つStudioStateを作成します
func NewStudioState() *StudioState {
	return &StudioState{config: DefaultGenerationConfig()}
}

// SelectImage は画像を選択します。
// 上限を超える画像は拒否され、以前の選択はそのまま残ります
func (s *StudioState) SelectImage(image ImagePayload) error {
	if image.IsEmpty() {
		s.err = ErrEmptyImage
		return ErrEmptyImage
	}
	if err := CheckImageSize(image.Size(), MaxImageSize); err != nil {
		s.err = err
		return err
	}

	selected := image
	s.image = &selected
	s.result = nil
	s.err = nil
	return nil
}

// ClearImage は画像の選択を解除し、結果とエラーも破棄します
func (s *StudioState) ClearImage() {
	s.image = nil
	s.result = nil
	s.err = nil
}

// TogglePlatform はプラットフォームの選択を反転します
func (s *StudioState) TogglePlatform(platform Platform) error {
	if !platform.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidPlatform, int(platform))
	}
	s.config = s.config.WithPlatformToggled(platform)
	return nil
}

// SetPlatforms はプラットフォームの選択をまとめて置き換えます
func (s *StudioState) SetPlatforms(platforms []Platform) error {
	next := GenerationConfig{Tone: s.config.Tone}
	for _, p := range AllPlatforms() {
		for _, selected := range platforms {
			if !selected.IsValid() {
				return fmt.Errorf("%w: %d", ErrInvalidPlatform, int(selected))
			}
			if selected == p {
				next.Platforms = append(next.Platforms, p)
				break
			}
		}
	}
	s.config = next
	return nil
}

// SetTone はトーンを設定します
func (s *StudioState) SetTone(tone Tone) error {
	if !tone.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidTone, int(tone))
	}
	s.config = s.config.WithTone(tone)
	return nil
}

// CanGenerate は、生成を開始できる状態かどうかを返します
func (s *StudioState) CanGenerate() bool {
	return s.image != nil && len(s.config.Platforms) > 0 && !s.generating
}

// StartGeneration は生成処理を開始し、控えを返します。
// 実行中の生成がある場合や、画像・プラットフォームが未選択の場合は何もしません
func (s *StudioState) StartGeneration() (GenerationTicket, error) {
	if s.generating {
		return GenerationTicket{}, ErrGenerationInProgress
	}
	if s.image == nil {
		return GenerationTicket{}, ErrNoImage
	}
	if len(s.config.Platforms) == 0 {
		return GenerationTicket{}, ErrNoPlatforms
	}

	s.lastID++
	s.inFlightID = s.lastID
	s.generating = true
	s.result = nil
	s.err = nil

	return GenerationTicket{
		ID:     s.inFlightID,
		Image:  *s.image,
		Config: s.config.WithTone(s.config.Tone),
	}, nil
}

// ReceiveResult は生成結果を受け取り、実行中の状態を解除します
func (s *StudioState) ReceiveResult(ticket GenerationTicket, result *AnalysisResult) error {
	if err := s.finish(ticket); err != nil {
		return err
	}
	s.result = result
	s.err = nil
	return nil
}

// ReceiveError は生成失敗を受け取り、以前の結果を破棄します
func (s *StudioState) ReceiveError(ticket GenerationTicket, err error) error {
	if finishErr := s.finish(ticket); finishErr != nil {
		return finishErr
	}
	s.result = nil
	s.err = err
	return nil
}

func (s *StudioState) finish(ticket GenerationTicket) error {
	if !s.generating || ticket.ID != s.inFlightID {
		return ErrNoGenerationInFlight
	}
	s.generating = false
	s.inFlightID = 0
	return nil
}

// Image は選択中の画像を返します
func (s *StudioState) Image() (ImagePayload, bool) {
	if s.image == nil {
		return ImagePayload{}, false
	}
	return *s.image, true
}

// Config は現在の選択内容のコピーを返します
func (s *StudioState) Config() GenerationConfig {
	return s.config.WithTone(s.config.Tone)
}

// IsGenerating は生成処理が実行中かどうかを返します
func (s *StudioState) IsGenerating() bool {
	return s.generating
}

// Result は直近の生成結果を返します
func (s *StudioState) Result() *AnalysisResult {
	return s.result
}

// Err は直近のエラーを返します
func (s *StudioState) Err() error {
	return s.err
}
