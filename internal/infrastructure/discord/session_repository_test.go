package discord

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"decoupagestudio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionRepository_CreatesDefaultState(t *testing.T) {
	repo := NewInMemorySessionRepository()

	var config domain.GenerationConfig
	err := repo.Update(context.Background(), "user-1", func(state *domain.StudioState) error {
		config = state.Config()
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultGenerationConfig(), config)
	assert.Equal(t, 1, repo.Len())
}

func TestInMemorySessionRepository_PersistsChanges(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, "user-1", func(state *domain.StudioState) error {
		return state.SetTone(domain.ToneEnthusiastic)
	}))

	var tone domain.Tone
	require.NoError(t, repo.Update(ctx, "user-1", func(state *domain.StudioState) error {
		tone = state.Config().Tone
		return nil
	}))
	assert.Equal(t, domain.ToneEnthusiastic, tone)

	// 他のユーザーには影響しない
	require.NoError(t, repo.Update(ctx, "user-2", func(state *domain.StudioState) error {
		tone = state.Config().Tone
		return nil
	}))
	assert.Equal(t, domain.DefaultTone, tone)
}

func TestInMemorySessionRepository_ReturnsCallbackError(t *testing.T) {
	repo := NewInMemorySessionRepository()
	want := errors.New("boom")

	err := repo.Update(context.Background(), "u", func(state *domain.StudioState) error {
		return want
	})

	assert.ErrorIs(t, err, want)
}

func TestInMemorySessionRepository_CanceledContext(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Update(ctx, "u", func(state *domain.StudioState) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Delete(ctx, "u"), context.Canceled)
	assert.Equal(t, 0, repo.Len())
}

func TestInMemorySessionRepository_Delete(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()
	require.NoError(t, repo.Update(ctx, "u", func(state *domain.StudioState) error { return nil }))

	require.NoError(t, repo.Delete(ctx, "u"))
	assert.Equal(t, 0, repo.Len())
}

func TestInMemorySessionRepository_DeleteKeepsGeneratingSession(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()
	require.NoError(t, repo.Update(ctx, "u", func(state *domain.StudioState) error {
		if err := state.SelectImage(domain.ImagePayload{Data: []byte("img"), MIMEType: "image/png"}); err != nil {
			return err
		}
		_, err := state.StartGeneration()
		return err
	}))

	assert.ErrorIs(t, repo.Delete(ctx, "u"), domain.ErrGenerationInProgress)
	assert.Equal(t, 1, repo.Len())

	var generating bool
	require.NoError(t, repo.Update(ctx, "u", func(state *domain.StudioState) error {
		generating = state.IsGenerating()
		return nil
	}))
	assert.True(t, generating, "実行中の状態が残っている必要があります")
}

func TestInMemorySessionRepository_UpdateAfterDeleteUsesNewSession(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()
	require.NoError(t, repo.Update(ctx, "u", func(state *domain.StudioState) error {
		return state.TogglePlatform(domain.PlatformTikTok)
	}))
	stale := repo.sessions["u"]

	require.NoError(t, repo.Delete(ctx, "u"))
	assert.True(t, stale.removed)

	var config domain.GenerationConfig
	require.NoError(t, repo.Update(ctx, "u", func(state *domain.StudioState) error {
		config = state.Config()
		return nil
	}))
	assert.Equal(t, domain.DefaultGenerationConfig(), config)
	assert.NotSame(t, stale, repo.sessions["u"])
}

func TestInMemorySessionRepository_ConcurrentUpdates(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()
	require.NoError(t, repo.Update(ctx, "u", func(state *domain.StudioState) error {
		return state.SelectImage(domain.ImagePayload{Data: []byte("img"), MIMEType: "image/png"})
	}))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Update(ctx, "u", func(state *domain.StudioState) error {
				if _, err := state.StartGeneration(); err != nil {
					return err
				}
				mu.Lock()
				started++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started, "同時に開始できる生成は1件だけ")
}

func TestInMemorySessionRepository_Sweep(t *testing.T) {
	repo := NewInMemorySessionRepository()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Update(ctx, "idle", func(state *domain.StudioState) error { return nil }))
	require.NoError(t, repo.Update(ctx, "busy", func(state *domain.StudioState) error {
		if err := state.SelectImage(domain.ImagePayload{Data: []byte("img"), MIMEType: "image/png"}); err != nil {
			return err
		}
		_, err := state.StartGeneration()
		return err
	}))

	now = now.Add(2 * time.Hour)
	require.NoError(t, repo.Update(ctx, "recent", func(state *domain.StudioState) error { return nil }))

	removed := repo.Sweep(time.Hour)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, repo.Len())
}
