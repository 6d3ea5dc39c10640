package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"decoupagestudio/internal/domain"
	"decoupagestudio/internal/infrastructure/config"
)

// StudioApplicationService は、画像の選択から投稿文の生成までを制御するアプリケーションサービスです
type StudioApplicationService struct {
	sessions        domain.StudioSessionRepository
	generator       AnalysisGenerator
	promptGenerator *domain.PromptGenerator
	config          *config.StudioConfig
	logger          *slog.Logger
}

// GenerateOptions は、生成時に選択内容を上書きするためのオプションです。
// 指定した値はセッションの選択内容として保存されます
type GenerateOptions struct {
	Platforms []domain.Platform
	Tone      *domain.Tone
}

// StudioSnapshot は、セッションの状態を表示用に写し取ったものです
type StudioSnapshot struct {
	Config        domain.GenerationConfig
	HasImage      bool
	ImageFilename string
	ImageBytes    int64
	CanGenerate   bool
	IsGenerating  bool
	Result        *domain.AnalysisResult
	Err           error
}

// NewStudioApplicationService は新しいStudioApplicationServiceインスタンスを作成します
func NewStudioApplicationService(
	sessions domain.StudioSessionRepository,
	generator AnalysisGenerator,
	studioConfig *config.StudioConfig,
	logger *slog.Logger,
) (*StudioApplicationService, error) {
	if sessions == nil {
		return nil, errors.New("セッションリポジトリが指定されていません")
	}
	if generator == nil {
		return nil, errors.New("生成クライアントが指定されていません")
	}
	if studioConfig == nil {
		studioConfig = config.DefaultStudioConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &StudioApplicationService{
		sessions:        sessions,
		generator:       generator,
		promptGenerator: domain.NewPromptGenerator(studioConfig.RolePrompt),
		config:          studioConfig,
		logger:          logger.With("component", "studio"),
	}, nil
}

// MaxImageBytes は、受け付ける画像の最大サイズを返します
func (s *StudioApplicationService) MaxImageBytes() int64 {
	if s.config.MaxImageBytes <= 0 || s.config.MaxImageBytes > domain.MaxImageSize {
		return domain.MaxImageSize
	}
	return s.config.MaxImageBytes
}

// SelectImage は、セッションの画像を選択します
func (s *StudioApplicationService) SelectImage(ctx context.Context, sessionID string, image domain.ImagePayload) error {
	return s.sessions.Update(ctx, sessionID, func(state *domain.StudioState) error {
		return s.selectImage(state, image)
	})
}

// ClearImage は、セッションの画像の選択を解除します
func (s *StudioApplicationService) ClearImage(ctx context.Context, sessionID string) error {
	return s.sessions.Update(ctx, sessionID, func(state *domain.StudioState) error {
		state.ClearImage()
		return nil
	})
}

// TogglePlatform は、プラットフォームの選択を反転し、更新後の選択内容を返します
func (s *StudioApplicationService) TogglePlatform(ctx context.Context, sessionID string, platform domain.Platform) (domain.GenerationConfig, error) {
	var updated domain.GenerationConfig
	err := s.sessions.Update(ctx, sessionID, func(state *domain.StudioState) error {
		if err := state.TogglePlatform(platform); err != nil {
			return err
		}
		updated = state.Config()
		return nil
	})
	return updated, err
}

// SetTone は、トーンを設定し、更新後の選択内容を返します
func (s *StudioApplicationService) SetTone(ctx context.Context, sessionID string, tone domain.Tone) (domain.GenerationConfig, error) {
	var updated domain.GenerationConfig
	err := s.sessions.Update(ctx, sessionID, func(state *domain.StudioState) error {
		if err := state.SetTone(tone); err != nil {
			return err
		}
		updated = state.Config()
		return nil
	})
	return updated, err
}

// Settings は、セッションの現在の状態を返します
func (s *StudioApplicationService) Settings(ctx context.Context, sessionID string) (StudioSnapshot, error) {
	var snapshot StudioSnapshot
	err := s.sessions.Update(ctx, sessionID, func(state *domain.StudioState) error {
		snapshot = snapshotOf(state)
		return nil
	})
	return snapshot, err
}

// Reset は、セッションの状態を破棄します
func (s *StudioApplicationService) Reset(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// Generate は、セッションで選択中の画像と選択内容から投稿文を生成します。
// 同じセッションで実行中の生成がある場合は domain.ErrGenerationInProgress を返します
func (s *StudioApplicationService) Generate(ctx context.Context, sessionID string) (*domain.AnalysisResult, error) {
	return s.GenerateWithImage(ctx, sessionID, nil, GenerateOptions{})
}

// GenerateWithImage は、画像と選択内容をセッションに反映してから投稿文を生成します。
// image が nil の場合はセッションで選択中の画像を使います
func (s *StudioApplicationService) GenerateWithImage(ctx context.Context, sessionID string, image *domain.ImagePayload, opts GenerateOptions) (*domain.AnalysisResult, error) {
	var ticket domain.GenerationTicket
	err := s.sessions.Update(ctx, sessionID, func(state *domain.StudioState) error {
		if state.IsGenerating() {
			return domain.ErrGenerationInProgress
		}
		if err := applyOptions(state, opts); err != nil {
			return err
		}
		if image != nil {
			if err := s.selectImage(state, *image); err != nil {
				return err
			}
		}

		var err error
		ticket, err = state.StartGeneration()
		return err
	})
	if err != nil {
		return nil, err
	}

	result, genErr := s.run(ctx, ticket)

	// 呼び出し元がキャンセルしても状態は必ず戻す
	finishCtx := context.WithoutCancel(ctx)
	err = s.sessions.Update(finishCtx, sessionID, func(state *domain.StudioState) error {
		if genErr != nil {
			return state.ReceiveError(ticket, genErr)
		}
		return state.ReceiveResult(ticket, result)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "生成結果をセッションに反映できませんでした", "session", sessionID, "error", err)
	}

	if genErr != nil {
		return nil, genErr
	}
	return result, nil
}

// GenerateOnce は、セッションを使わずに1回だけ投稿文を生成します
func (s *StudioApplicationService) GenerateOnce(ctx context.Context, image domain.ImagePayload, generationConfig domain.GenerationConfig) (*domain.AnalysisResult, error) {
	if err := generationConfig.Validate(); err != nil {
		return nil, err
	}

	state := domain.NewStudioState()
	if err := applyOptions(state, GenerateOptions{Platforms: generationConfig.Platforms, Tone: &generationConfig.Tone}); err != nil {
		return nil, err
	}
	if err := s.selectImage(state, image); err != nil {
		return nil, err
	}

	ticket, err := state.StartGeneration()
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, ticket)
	if err != nil {
		_ = state.ReceiveError(ticket, err)
		return nil, err
	}
	_ = state.ReceiveResult(ticket, result)
	return result, nil
}

// run は、控えの内容で生成リクエストを組み立て、タイムアウト付きで1回だけ送信します
func (s *StudioApplicationService) run(ctx context.Context, ticket domain.GenerationTicket) (*domain.AnalysisResult, error) {
	req, err := domain.NewGenerationRequest(ticket.Image, ticket.Config, s.promptGenerator)
	if err != nil {
		return nil, err
	}

	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultStudioConfig().RequestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	s.logger.InfoContext(ctx, "投稿文の生成を開始",
		"image_bytes", req.Image.Size(),
		"mime_type", req.Image.MIMEType,
		"platforms", req.Config.PlatformLabels(),
		"tone", req.Config.Tone.String(),
	)

	result, err := s.generator.GenerateAnalysis(ctx, req)
	if err == nil {
		if validateErr := result.Validate(); validateErr != nil {
			err = domain.NewGenerationError(domain.GenerationErrorMissingField, validateErr)
		}
	}
	if err != nil {
		kind := domain.GenerationErrorKindOf(err)
		s.logger.ErrorContext(ctx, "投稿文の生成に失敗",
			"kind", string(kind),
			"elapsed", time.Since(start),
			"error", err,
		)
		var genErr *domain.GenerationError
		if !errors.As(err, &genErr) {
			err = domain.NewGenerationError(kind, err)
		}
		return nil, err
	}

	if warnings := result.HashtagWarnings(); len(warnings) > 0 {
		s.logger.WarnContext(ctx, "ハッシュタグ数が推奨範囲外です", "posts", warnings)
	}
	s.logger.InfoContext(ctx, "投稿文の生成が完了",
		"posts", len(result.Posts),
		"elapsed", time.Since(start),
	)
	return result, nil
}

func (s *StudioApplicationService) selectImage(state *domain.StudioState, image domain.ImagePayload) error {
	if err := domain.CheckImageSize(image.Size(), s.MaxImageBytes()); err != nil {
		return err
	}
	return state.SelectImage(image)
}

func applyOptions(state *domain.StudioState, opts GenerateOptions) error {
	if len(opts.Platforms) > 0 {
		if err := state.SetPlatforms(opts.Platforms); err != nil {
			return err
		}
	}
	if opts.Tone != nil {
		if err := state.SetTone(*opts.Tone); err != nil {
			return err
		}
	}
	return nil
}

func snapshotOf(state *domain.StudioState) StudioSnapshot {
	snapshot := StudioSnapshot{
		Config:       state.Config(),
		CanGenerate:  state.CanGenerate(),
		IsGenerating: state.IsGenerating(),
		Result:       state.Result(),
		Err:          state.Err(),
	}
	if image, ok := state.Image(); ok {
		snapshot.HasImage = true
		snapshot.ImageFilename = image.Filename
		snapshot.ImageBytes = image.Size()
	}
	return snapshot
}
