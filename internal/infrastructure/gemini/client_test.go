package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"decoupagestudio/internal/domain"
	"decoupagestudio/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiAPIClient_GenerateAnalysis_Success(t *testing.T) {
	fake := &fakeGenerator{resp: textResponse(validReply)}
	client := newGeminiAPIClient(fake, config.DefaultGeminiConfig(), nil)

	result, err := client.GenerateAnalysis(context.Background(), newTestRequest(t))

	require.NoError(t, err)
	assert.Len(t, result.Posts, 2)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "gemini-2.5-flash", fake.lastModel)
	assert.Equal(t, "application/json", fake.lastConfig.ResponseMIMEType)
	require.Len(t, fake.lastInput, 1)
	assert.NotNil(t, fake.lastInput[0].Parts[0].InlineData)
}

func TestGeminiAPIClient_GenerateAnalysis_DebugLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	req := newTestRequest(t)
	client := newGeminiAPIClient(&fakeGenerator{resp: textResponse(validReply)}, nil, logger)

	_, err := client.GenerateAnalysis(context.Background(), req)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), fmt.Sprintf(`"inline_data_chars":%d`, len(req.Image.Base64())))
	assert.NotContains(t, buf.String(), req.Image.Base64())
}

func TestGeminiAPIClient_GenerateAnalysis_JoinsTextParts(t *testing.T) {
	half := len(validReply) / 2
	resp := textResponse(validReply[:half])
	resp.Candidates[0].Content.Parts = append(resp.Candidates[0].Content.Parts, &genai.Part{Text: validReply[half:]})
	fake := &fakeGenerator{resp: resp}
	client := newGeminiAPIClient(fake, nil, nil)

	result, err := client.GenerateAnalysis(context.Background(), newTestRequest(t))

	require.NoError(t, err)
	assert.Len(t, result.Posts, 2)
}

func TestGeminiAPIClient_GenerateAnalysis_Failures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeGenerator
		kind domain.GenerationErrorKind
	}{
		{
			name: "通信エラー",
			fake: &fakeGenerator{err: errors.New("connection refused")},
			kind: domain.GenerationErrorTransport,
		},
		{
			name: "タイムアウト",
			fake: &fakeGenerator{err: fmt.Errorf("post: %w", context.DeadlineExceeded)},
			kind: domain.GenerationErrorTimeout,
		},
		{
			name: "候補なし",
			fake: &fakeGenerator{resp: &genai.GenerateContentResponse{}},
			kind: domain.GenerationErrorEmptyReply,
		},
		{
			name: "空のテキスト",
			fake: &fakeGenerator{resp: textResponse("")},
			kind: domain.GenerationErrorEmptyReply,
		},
		{
			name: "Contentがnil",
			fake: &fakeGenerator{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
			}},
			kind: domain.GenerationErrorEmptyReply,
		},
		{
			name: "安全フィルター",
			fake: &fakeGenerator{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			}},
			kind: domain.GenerationErrorBlocked,
		},
		{
			name: "著作権保護",
			fake: &fakeGenerator{resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonRecitation}},
			}},
			kind: domain.GenerationErrorBlocked,
		},
		{
			name: "プロンプトのブロック",
			fake: &fakeGenerator{resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			}},
			kind: domain.GenerationErrorBlocked,
		},
		{
			name: "JSONではない応答",
			fake: &fakeGenerator{resp: textResponse("Sorry, I cannot help with that.")},
			kind: domain.GenerationErrorMalformedJSON,
		},
		{
			name: "必須フィールドの欠落",
			fake: &fakeGenerator{resp: textResponse(`{"visualDescription":"a","craftsmanshipDetails":"b"}`)},
			kind: domain.GenerationErrorMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newGeminiAPIClient(tt.fake, nil, nil)

			result, err := client.GenerateAnalysis(context.Background(), newTestRequest(t))

			assert.Nil(t, result)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrGenerationFailed)
			assert.Equal(t, tt.kind, domain.GenerationErrorKindOf(err))
			assert.Equal(t, 1, tt.fake.calls, "呼び出しは1回だけ")
		})
	}
}

func TestGeminiAPIClient_GenerateAnalysis_ContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	client := newGeminiAPIClient(&fakeGenerator{err: errors.New("request canceled")}, nil, nil)

	_, err := client.GenerateAnalysis(ctx, newTestRequest(t))

	assert.Equal(t, domain.GenerationErrorTimeout, domain.GenerationErrorKindOf(err))
}

func TestGeminiAPIClient_Close(t *testing.T) {
	client := newGeminiAPIClient(&fakeGenerator{}, nil, nil)
	assert.NoError(t, client.Close())
}
