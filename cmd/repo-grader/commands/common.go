package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jinford/repo-grader/internal/core/analysis"
	"github.com/jinford/repo-grader/internal/core/fetch"
	"github.com/jinford/repo-grader/internal/core/metrics"
	"github.com/jinford/repo-grader/internal/infra/git"
	"github.com/jinford/repo-grader/internal/platform/logger"
	"github.com/jinford/repo-grader/pkg/config"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config *config.Config
	Logger *slog.Logger
}

// NewAppContext は設定ファイルを読み込み、ロガーを初期化して AppContext を作成する
func NewAppContext(envFile string, verbose bool) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定が不正です: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("ログレベルが不正です: %w", err)
	}
	if verbose {
		level = slog.LevelDebug
	}

	appLogger := logger.New(logger.Config{
		Level:  level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	return &AppContext{
		Config: cfg,
		Logger: appLogger,
	}, nil
}

// MetricsEngine は設定の計測ルールで Engine を作成する
func (ac *AppContext) MetricsEngine() *metrics.Engine {
	return metrics.NewEngine(ac.Config.Rules(), metrics.WithLogger(ac.Logger))
}

// GitClient は設定の SSH 認証情報で Git クライアントを作成する
func (ac *AppContext) GitClient() *git.Client {
	var opts []git.ClientOption
	if ac.Config.Fetch.ShowProgress {
		opts = append(opts, git.WithProgress(os.Stderr))
	}
	return git.NewClient(ac.Config.Git.SSHKeyPath, ac.Config.Git.SSHPassword, opts...)
}

// FetcherFactory はバッチごとに新しい作業ディレクトリを作る FetcherFactory を返す
func (ac *AppContext) FetcherFactory() analysis.FetcherFactory {
	client := ac.GitClient()
	return func() (analysis.Fetcher, error) {
		ws, err := fetch.NewWorkspace(ac.Config.Fetch.WorkDir, fetch.DefaultWorkspacePrefix)
		if err != nil {
			return nil, err
		}
		ac.Logger.Debug("作業ディレクトリを作成", "path", ws.Root())

		return fetch.NewFetcher(ws, client,
			fetch.WithRetryPolicy(ac.Config.RetryPolicy()),
			fetch.WithAttemptTimeout(ac.Config.Fetch.CloneTimeout),
			fetch.WithHost(ac.Config.Fetch.GitHost),
			fetch.WithLogger(ac.Logger),
		), nil
	}
}
