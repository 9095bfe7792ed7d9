package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/repo-grader/internal/core/fetch"
	"github.com/jinford/repo-grader/internal/core/metrics"
)

// Status はリポジトリごとの解析結果の状態
type Status string

const (
	StatusSuccess           Status = "Success"
	StatusNoCodeFiles       Status = "No Code Files"
	StatusNotFound          Status = "Not Found"
	StatusAccessDenied      Status = "Access Denied"
	StatusTimeout           Status = "Timeout"
	StatusNetworkError      Status = "Network Error"
	StatusInvalidIdentifier Status = "Invalid URL"
	StatusError             Status = "Error"
)

// StatusFromFailure は取得失敗の分類を結果の状態に変換する
func StatusFromFailure(kind fetch.FailureKind) Status {
	switch kind {
	case fetch.KindNone:
		return StatusSuccess
	case fetch.KindNotFound:
		return StatusNotFound
	case fetch.KindAccessDenied:
		return StatusAccessDenied
	case fetch.KindTimeout:
		return StatusTimeout
	case fetch.KindNetworkError:
		return StatusNetworkError
	case fetch.KindInvalidIdentifier:
		return StatusInvalidIdentifier
	case fetch.KindUnknown:
		return StatusError
	default:
		return StatusError
	}
}

// Result は 1 リポジトリ分の解析結果
// Metrics は取得失敗・計測失敗・対象ファイルなしの場合 nil
type Result struct {
	Identifier   string           `json:"identifier"`
	Grade        float64          `json:"grade"`
	Metrics      *metrics.Metrics `json:"metrics,omitempty"`
	Status       Status           `json:"status"`
	ErrorMessage string           `json:"error_message,omitempty"`
	Attempts     int              `json:"attempts"`
	Duration     time.Duration    `json:"duration"`
}

// Succeeded は採点に成功したかどうかを返す
func (r Result) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Summary はバッチ全体の集計
type Summary struct {
	RunID        uuid.UUID     `json:"run_id"`
	Total        int           `json:"total"`
	Successful   int           `json:"successful"`
	Failed       int           `json:"failed"`
	AverageGrade float64       `json:"average_grade"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Elapsed      time.Duration `json:"elapsed"`
}

// BatchResult は AnalyzeBatch の戻り値。Results は入力と同じ順序
type BatchResult struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

// Progress は 1 件処理するごとに通知される進捗
type Progress struct {
	Index  int
	Total  int
	Result Result
}

// Fetcher はリポジトリを取得し、最後に作業ディレクトリを片付ける
type Fetcher interface {
	Acquire(ctx context.Context, identifier string) fetch.Outcome
	Cleanup()
}

// FetcherFactory はバッチごとに専用の作業ディレクトリを持つ Fetcher を作成する
type FetcherFactory func() (Fetcher, error)

// MetricsComputer はローカルのディレクトリからメトリクスを計算する
type MetricsComputer interface {
	Compute(ctx context.Context, path string) (metrics.Metrics, error)
}
