package fetch

import (
	"context"
	"math"
	"time"
)

const (
	// DefaultMaxAttempts はリポジトリあたりの最大試行回数
	DefaultMaxAttempts = 1

	// DefaultBackoffBase は Exponential Backoff の基数（秒）
	DefaultBackoffBase = 2.0
)

// SleepFunc は ctx が終了するまで、または d が経過するまで待機する
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext は time.Timer による SleepFunc の標準実装
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryPolicy は試行回数・リトライ可否・待機時間を決めるポリシー
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase float64
	Sleep       SleepFunc
}

// DefaultRetryPolicy はデフォルトのリトライポリシーを返す
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BackoffBase: DefaultBackoffBase,
		Sleep:       SleepContext,
	}
}

// Backoff は attempt 回目の試行が失敗した後の待機時間（base^attempt 秒）を返す
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.BackoffBase <= 0 {
		return 0
	}
	seconds := math.Pow(p.BackoffBase, float64(attempt))
	return time.Duration(seconds * float64(time.Second))
}

// ShouldRetry は attempt 回目の失敗の後に再試行すべきかを判定する
func (p RetryPolicy) ShouldRetry(kind FailureKind, attempt int) bool {
	return kind.Transient() && attempt < p.maxAttempts()
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do は fn を成功するか、リトライ不可能な失敗になるまで繰り返し実行する
// fn には 1 始まりの試行番号が渡される
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) Outcome) Outcome {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var outcome Outcome
	for attempt := 1; ; attempt++ {
		outcome = fn(ctx, attempt)
		outcome.Attempts = attempt

		if outcome.Acquired() || !p.ShouldRetry(outcome.Kind, attempt) {
			return outcome
		}

		if err := sleep(ctx, p.Backoff(attempt)); err != nil {
			return outcome
		}
	}
}
