package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jinford/repo-grader/internal/core/fetch"
	"github.com/jinford/repo-grader/internal/core/metrics"
	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// 計測ルール
	Metrics MetricsConfig

	// リポジトリ取得設定
	Fetch FetchConfig

	// Git設定
	Git GitConfig

	// ログ設定
	Log LogConfig

	// 結果ファイルの出力先
	OutputDir string
}

// MetricsConfig はソースファイルの判定と閾値の設定
type MetricsConfig struct {
	CodeExtensions    []string
	ExcludeDirs       []string
	NonSourcePatterns []string
	LineThreshold     int
}

// FetchConfig はクローンとリトライの設定
type FetchConfig struct {
	RetryAttempts    int
	RetryBackoffBase float64 // 秒
	CloneTimeout     time.Duration
	GitHost          string
	WorkDir          string // 空の場合は OS の一時ディレクトリ
	ShowProgress     bool   // go-git の進捗を標準エラー出力に表示する
}

// GitConfig はGit認証設定
type GitConfig struct {
	SSHKeyPath  string
	SSHPassword string // SSH秘密鍵のパスワード（パスフレーズ）
}

// LogConfig はロガー設定
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Metrics: MetricsConfig{
			CodeExtensions:    getEnvAsList("GRADER_CODE_EXTENSIONS", metrics.DefaultExtensions()),
			ExcludeDirs:       getEnvAsList("GRADER_EXCLUDE_DIRS", metrics.DefaultExcludedDirs()),
			NonSourcePatterns: getEnvAsList("GRADER_NON_SOURCE_PATTERNS", metrics.DefaultNonSourcePatterns()),
			LineThreshold:     getEnvAsInt("GRADER_LINE_THRESHOLD", metrics.DefaultLineThreshold),
		},
		Fetch: FetchConfig{
			RetryAttempts:    getEnvAsInt("GRADER_RETRY_ATTEMPTS", fetch.DefaultMaxAttempts),
			RetryBackoffBase: getEnvAsFloat("GRADER_RETRY_BACKOFF_BASE", fetch.DefaultBackoffBase),
			CloneTimeout:     time.Duration(getEnvAsInt("GRADER_CLONE_TIMEOUT", int(fetch.DefaultAttemptTimeout/time.Second))) * time.Second,
			GitHost:          getEnv("GRADER_GIT_HOST", fetch.DefaultHost),
			WorkDir:          getEnv("GRADER_WORK_DIR", ""),
			ShowProgress:     getEnvAsBool("GRADER_SHOW_PROGRESS", false),
		},
		Git: GitConfig{
			SSHKeyPath:  getEnv("GIT_SSH_KEY_PATH", ""),
			SSHPassword: getEnv("GIT_SSH_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		OutputDir: getEnv("GRADER_OUTPUT_DIR", "output"),
	}

	return cfg, nil
}

// Validate は設定値の整合性を検証します
func (c *Config) Validate() error {
	var errs []error
	if len(c.Metrics.CodeExtensions) == 0 {
		errs = append(errs, errors.New("GRADER_CODE_EXTENSIONS must not be empty"))
	}
	if c.Metrics.LineThreshold <= 0 {
		errs = append(errs, fmt.Errorf("GRADER_LINE_THRESHOLD must be positive: %d", c.Metrics.LineThreshold))
	}
	if c.Fetch.RetryAttempts <= 0 {
		errs = append(errs, fmt.Errorf("GRADER_RETRY_ATTEMPTS must be positive: %d", c.Fetch.RetryAttempts))
	}
	if c.Fetch.RetryBackoffBase < 0 {
		errs = append(errs, fmt.Errorf("GRADER_RETRY_BACKOFF_BASE must not be negative: %g", c.Fetch.RetryBackoffBase))
	}
	if c.Fetch.CloneTimeout <= 0 {
		errs = append(errs, fmt.Errorf("GRADER_CLONE_TIMEOUT must be positive: %s", c.Fetch.CloneTimeout))
	}
	if c.Fetch.GitHost == "" {
		errs = append(errs, errors.New("GRADER_GIT_HOST must not be empty"))
	}
	return errors.Join(errs...)
}

// Rules は計測ルールを返します
func (c *Config) Rules() metrics.Rules {
	rules := metrics.DefaultRules()
	rules.Extensions = c.Metrics.CodeExtensions
	rules.ExcludedDirs = c.Metrics.ExcludeDirs
	rules.NonSourcePatterns = c.Metrics.NonSourcePatterns
	rules.LineThreshold = c.Metrics.LineThreshold
	return rules
}

// RetryPolicy はリトライポリシーを返します
func (c *Config) RetryPolicy() fetch.RetryPolicy {
	policy := fetch.DefaultRetryPolicy()
	policy.MaxAttempts = c.Fetch.RetryAttempts
	policy.BackoffBase = c.Fetch.RetryBackoffBase
	return policy
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat は環境変数を浮動小数点数として取得します
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList はカンマ区切りの環境変数をリストとして取得します
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
