package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"decoupagestudio/internal/application"
	"decoupagestudio/internal/domain"
)

// フォームの画像以外の項目とJSONの構造に割り当てる余裕分
const requestOverheadBytes = 64 * 1024

// Generator は、HTTP APIから利用する生成処理のインターフェースです。
// *application.StudioApplicationService が満たします
type Generator interface {
	GenerateOnce(ctx context.Context, image domain.ImagePayload, config domain.GenerationConfig) (*domain.AnalysisResult, error)
	MaxImageBytes() int64
}

// Handler は、HTTP APIのハンドラーです
type Handler struct {
	generator Generator
	logger    *slog.Logger
}

// NewHandler は新しいHandlerインスタンスを作成します
func NewHandler(generator Generator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		generator: generator,
		logger:    logger.With("component", "http"),
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type optionsResponse struct {
	Platforms     []string `json:"platforms"`
	Tones         []string `json:"tones"`
	DefaultTone   string   `json:"defaultTone"`
	MaxImageBytes int64    `json:"maxImageBytes"`
}

// generateJSONRequest は、JSON形式の生成リクエストです。image はデータURIまたは base64 文字列です
type generateJSONRequest struct {
	Image     string   `json:"image"`
	Filename  string   `json:"filename"`
	Platforms []string `json:"platforms"`
	Tone      string   `json:"tone"`
}

// Health は、稼働確認用のエンドポイントです
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Options は、選択できるプラットフォームとトーンの一覧を返します
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	resp := optionsResponse{
		DefaultTone:   domain.DefaultTone.String(),
		MaxImageBytes: h.generator.MaxImageBytes(),
	}
	for _, p := range domain.AllPlatforms() {
		resp.Platforms = append(resp.Platforms, p.String())
	}
	for _, t := range domain.AllTones() {
		resp.Tones = append(resp.Tones, t.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

// Generate は、アップロードされた画像から投稿文を生成します。
// multipart/form-data と application/json の両方を受け付けます
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	image, config, err := h.parseGenerateRequest(w, r)
	if err != nil {
		h.logger.InfoContext(ctx, "生成リクエストを拒否しました",
			"request_id", RequestIDFromContext(ctx),
			"error", err,
		)
		h.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	result, err := h.generator.GenerateOnce(ctx, image, config)
	if err != nil {
		status := http.StatusBadGateway
		if domain.IsInputRejection(err) {
			status = http.StatusBadRequest
		}
		h.writeError(w, r, status, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseGenerateRequest は、Content-Typeに応じてリクエストから画像と選択内容を取り出します
func (h *Handler) parseGenerateRequest(w http.ResponseWriter, r *http.Request) (domain.ImagePayload, domain.GenerationConfig, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return domain.ImagePayload{}, domain.GenerationConfig{}, fmt.Errorf("%w: Content-Typeが不正です", domain.ErrNoImage)
	}

	switch mediaType {
	case "multipart/form-data":
		return h.parseMultipart(w, r)
	case "application/json":
		return h.parseJSON(w, r)
	default:
		return domain.ImagePayload{}, domain.GenerationConfig{}, fmt.Errorf("%w: 未対応のContent-Type %s", domain.ErrNoImage, mediaType)
	}
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (domain.ImagePayload, domain.GenerationConfig, error) {
	maxBytes := h.generator.MaxImageBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+requestOverheadBytes)

	if err := r.ParseMultipartForm(maxBytes + requestOverheadBytes); err != nil {
		return domain.ImagePayload{}, domain.GenerationConfig{}, bodyError(err)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return domain.ImagePayload{}, domain.GenerationConfig{}, domain.ErrNoImage
		}
		return domain.ImagePayload{}, domain.GenerationConfig{}, bodyError(err)
	}
	defer file.Close()

	// 読み込む前にヘッダーのサイズで判定する
	if err := domain.CheckImageSize(header.Size, maxBytes); err != nil {
		return domain.ImagePayload{}, domain.GenerationConfig{}, err
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return domain.ImagePayload{}, domain.GenerationConfig{}, bodyError(err)
	}
	image, err := domain.NewImagePayloadWithLimit(data, header.Header.Get("Content-Type"), header.Filename, maxBytes)
	if err != nil {
		return domain.ImagePayload{}, domain.GenerationConfig{}, err
	}

	platformValues, hasPlatforms := r.MultipartForm.Value["platforms"]
	config, err := parseSelection(platformValues, hasPlatforms, r.FormValue("tone"))
	return image, config, err
}

func (h *Handler) parseJSON(w http.ResponseWriter, r *http.Request) (domain.ImagePayload, domain.GenerationConfig, error) {
	maxBytes := h.generator.MaxImageBytes()
	// base64 は元のサイズの約4/3になる
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes/3*4+requestOverheadBytes)

	var req generateJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return domain.ImagePayload{}, domain.GenerationConfig{}, bodyError(err)
	}

	image, err := domain.DecodeDataURI(req.Image, req.Filename)
	if err != nil {
		return domain.ImagePayload{}, domain.GenerationConfig{}, err
	}
	if err := domain.CheckImageSize(image.Size(), maxBytes); err != nil {
		return domain.ImagePayload{}, domain.GenerationConfig{}, err
	}

	config, err := parseSelection(req.Platforms, req.Platforms != nil, req.Tone)
	return image, config, err
}

// parseSelection は、プラットフォームとトーンの指定を選択内容に変換します。
// プラットフォームの指定自体がない場合は初期選択を使います
func parseSelection(platformValues []string, hasPlatforms bool, toneValue string) (domain.GenerationConfig, error) {
	config := domain.DefaultGenerationConfig()

	if hasPlatforms {
		platforms, err := domain.ParsePlatforms(platformValues...)
		if err != nil {
			return domain.GenerationConfig{}, err
		}
		config.Platforms = platforms
	}

	if strings.TrimSpace(toneValue) != "" {
		tone, err := domain.ParseTone(toneValue)
		if err != nil {
			return domain.GenerationConfig{}, err
		}
		config.Tone = tone
	}

	if err := config.Validate(); err != nil {
		return domain.GenerationConfig{}, err
	}
	return config, nil
}

// bodyError は、リクエスト本文の読み込みエラーをドメインのエラーに変換します
func bodyError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return fmt.Errorf("%w: リクエスト本文が %d bytes を超えています", domain.ErrImageTooLarge, maxBytesErr.Limit)
	}
	return fmt.Errorf("%w: リクエスト本文を読み込めません: %v", domain.ErrNoImage, err)
}

// writeError は、利用者向けのメッセージでエラーを返します
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, errorResponse{
		Error:     application.UserMessage(err),
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
