package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultAttemptTimeout は 1 回のクローン試行に許される最大時間
const DefaultAttemptTimeout = 300 * time.Second

// Cloner はリポジトリを dest に浅くクローン（depth=1）する
type Cloner interface {
	ShallowClone(ctx context.Context, url, dest string) error
}

// Fetcher は識別子の検証・クローン・失敗分類・リトライを行い、作業ディレクトリを管理する
type Fetcher struct {
	workspace      *Workspace
	cloner         Cloner
	policy         RetryPolicy
	attemptTimeout time.Duration
	host           string
	logger         *slog.Logger
}

type fetcherOptions struct {
	policy         RetryPolicy
	attemptTimeout time.Duration
	host           string
	logger         *slog.Logger
}

// Option は Fetcher のオプション設定
type Option func(*fetcherOptions)

// WithRetryPolicy はリトライポリシーを設定する
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *fetcherOptions) {
		o.policy = policy
	}
}

// WithAttemptTimeout は 1 回の試行あたりのタイムアウトを設定する
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *fetcherOptions) {
		o.attemptTimeout = d
	}
}

// WithHost は受け付けるホストを設定する
func WithHost(host string) Option {
	return func(o *fetcherOptions) {
		o.host = host
	}
}

// WithLogger はロガーを設定する
func WithLogger(logger *slog.Logger) Option {
	return func(o *fetcherOptions) {
		o.logger = logger
	}
}

// NewFetcher は新しい Fetcher を作成する
func NewFetcher(workspace *Workspace, cloner Cloner, opts ...Option) *Fetcher {
	options := fetcherOptions{
		policy:         DefaultRetryPolicy(),
		attemptTimeout: DefaultAttemptTimeout,
		host:           DefaultHost,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.host == "" {
		options.host = DefaultHost
	}
	if options.attemptTimeout <= 0 {
		options.attemptTimeout = DefaultAttemptTimeout
	}

	return &Fetcher{
		workspace:      workspace,
		cloner:         cloner,
		policy:         options.policy,
		attemptTimeout: options.attemptTimeout,
		host:           options.host,
		logger:         options.logger,
	}
}

// Workspace は Fetcher が占有する作業ディレクトリを返す
func (f *Fetcher) Workspace() *Workspace {
	return f.workspace
}

// Acquire は識別子のリポジトリを作業ディレクトリに取得する
// 失敗はすべて Outcome として返し、panic も外へ伝播させない
func (f *Fetcher) Acquire(ctx context.Context, raw string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("クローン中に予期しないエラー", "identifier", raw, "panic", r)
			outcome = Failed(KindUnknown, fmt.Sprintf("Unexpected error: %v", r), outcome.Attempts)
		}
	}()

	id, err := ParseIdentifier(raw, f.host)
	if err != nil {
		return Failed(KindInvalidIdentifier, describe(KindInvalidIdentifier), 0)
	}

	dest, err := f.workspace.Allocate(id.DirName())
	if err != nil {
		return Failed(KindUnknown, fmt.Sprintf("Unexpected error: %v", err), 0)
	}

	return f.policy.Do(ctx, func(ctx context.Context, attempt int) Outcome {
		result := f.attempt(ctx, id, dest)
		if !result.Acquired() {
			f.logger.Warn("クローンに失敗",
				"identifier", raw,
				"attempt", attempt,
				"maxAttempts", f.policy.maxAttempts(),
				"kind", result.Kind.String(),
				"error", result.Message,
			)
			if f.policy.ShouldRetry(result.Kind, attempt) {
				f.logger.Info("リトライを待機",
					"identifier", raw,
					"attempt", attempt,
					"backoff", f.policy.Backoff(attempt),
				)
			}
		}
		return result
	})
}

// attempt は 1 回分のクローンを実行する
func (f *Fetcher) attempt(ctx context.Context, id Identifier, dest string) Outcome {
	if err := ctx.Err(); err != nil {
		return Failed(KindUnknown, fmt.Sprintf("Clone cancelled: %v", err), 0)
	}

	if err := removeStale(dest); err != nil {
		return Failed(KindUnknown, fmt.Sprintf("Unexpected error: %v", err), 0)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
	defer cancel()

	err := f.cloner.ShallowClone(attemptCtx, id.CloneURL(), dest)
	if err == nil {
		return Acquired(dest, 0)
	}

	// 途中まで作成されたディレクトリは残さない
	if rmErr := removeStale(dest); rmErr != nil {
		f.logger.Warn("失敗したクローンの削除に失敗", "path", dest, "error", rmErr)
	}

	if ctx.Err() != nil {
		return Failed(KindUnknown, fmt.Sprintf("Clone cancelled: %v", ctx.Err()), 0)
	}

	kind := Classify(err)
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		kind = KindTimeout
	}

	message := fmt.Sprintf("%s: %v", describe(kind), err)
	if kind == KindTimeout {
		message = fmt.Sprintf("%s (>%s): %v", describe(kind), f.attemptTimeout, err)
	}
	return Failed(kind, message, 0)
}

// Cleanup は作業ディレクトリ全体を削除する。失敗はログに記録するだけでエラーにはしない
func (f *Fetcher) Cleanup() {
	if err := f.workspace.Destroy(); err != nil {
		f.logger.Warn("作業ディレクトリの削除に失敗", "path", f.workspace.Root(), "error", err)
		return
	}
	f.logger.Debug("作業ディレクトリを削除", "path", f.workspace.Root())
}
