package discord

import (
	"context"
	"sync"
	"time"

	"decoupagestudio/internal/domain"
)

// sessionEntry は、1人分のStudioStateと最終利用時刻を保持します
type sessionEntry struct {
	mu       sync.Mutex
	state    *domain.StudioState
	lastUsed time.Time
	removed  bool // mapから外された後はUpdateで使わない
}

// InMemorySessionRepository は、StudioSessionRepositoryのメモリ上の実装です。
// Discordユーザーごとの選択内容を保持し、プロセスの再起動で失われます
type InMemorySessionRepository struct {
	sessions map[string]*sessionEntry
	mutex    sync.RWMutex
	now      func() time.Time
}

// NewInMemorySessionRepository は新しいInMemorySessionRepositoryインスタンスを作成します
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
	}
}

// Update は、指定したセッションの状態を排他的に更新します
func (r *InMemorySessionRepository) Update(ctx context.Context, sessionID string, fn func(state *domain.StudioState) error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var entry *sessionEntry
	for {
		entry = r.entry(sessionID)
		entry.mu.Lock()
		if !entry.removed {
			break
		}
		entry.mu.Unlock()
	}
	defer entry.mu.Unlock()

	entry.lastUsed = r.now()
	return fn(entry.state)
}

// Delete は、指定したセッションの状態を破棄します。
// 生成処理が実行中のセッションは破棄せず domain.ErrGenerationInProgress を返します
func (r *InMemorySessionRepository) Delete(ctx context.Context, sessionID string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	entry, exists := r.sessions[sessionID]
	if !exists {
		return nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.state.IsGenerating() {
		return domain.ErrGenerationInProgress
	}
	entry.removed = true
	delete(r.sessions, sessionID)
	return nil
}

// Len は、保持しているセッション数を返します
func (r *InMemorySessionRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.sessions)
}

// Sweep は、maxIdle 以上使われていないセッションを破棄し、破棄した件数を返します。
// 生成処理が実行中のセッションは残します
func (r *InMemorySessionRepository) Sweep(maxIdle time.Duration) int {
	deadline := r.now().Add(-maxIdle)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for id, entry := range r.sessions {
		if !entry.mu.TryLock() {
			continue
		}
		if entry.lastUsed.Before(deadline) && !entry.state.IsGenerating() {
			entry.removed = true
			delete(r.sessions, id)
			removed++
		}
		entry.mu.Unlock()
	}
	return removed
}

// RunSweeper は、ctx が終了するまで一定間隔でSweepを実行します
func (r *InMemorySessionRepository) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}

func (r *InMemorySessionRepository) entry(sessionID string) *sessionEntry {
	r.mutex.RLock()
	entry, exists := r.sessions[sessionID]
	r.mutex.RUnlock()
	if exists {
		return entry
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if entry, exists = r.sessions[sessionID]; exists {
		return entry
	}
	entry = &sessionEntry{
		state:    domain.NewStudioState(),
		lastUsed: r.now(),
	}
	r.sessions[sessionID] = entry
	return entry
}
