package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateLimited は識別子ごとのリクエスト上限を超えた場合に返されます。
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter は識別子単位でリクエスト頻度を制限するインターフェースです。
type Limiter interface {
	// Check は識別子のカウンタを1増やし、ウィンドウ内で maxRequests を超えた場合 ErrRateLimited を返します。
	Check(ctx context.Context, identifier string, maxRequests int, window time.Duration) error
}

// record は識別子ごとのカウンタとウィンドウ終了時刻です。
type record struct {
	count         int
	windowResetAt time.Time
}

// RateLimiter はプロセス内メモリでカウンタを保持するLimiter実装です。
// ウィンドウ終了後の最初のリクエストでカウンタを1にリセットします（スライディングログではありません）。
type RateLimiter struct {
	mu      sync.Mutex
	records map[string]record
	now     func() time.Time
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		records: make(map[string]record),
		now:     time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	rl.now = now
	return rl
}

// Check implements Limiter.
func (rl *RateLimiter) Check(_ context.Context, identifier string, maxRequests int, window time.Duration) error {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rec, ok := rl.records[identifier]
	// 初回、またはウィンドウを過ぎたらカウントリセット
	if !ok || !now.Before(rec.windowResetAt) {
		rl.records[identifier] = record{count: 1, windowResetAt: now.Add(window)}
		if maxRequests < 1 {
			return ErrRateLimited
		}
		return nil
	}

	rec.count++
	rl.records[identifier] = rec
	if rec.count > maxRequests {
		return ErrRateLimited
	}
	return nil
}

// Len returns the number of identifiers being tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.records)
}
