package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/repo-grader/internal/core/metrics"
)

// Service はリポジトリ一覧を順番に取得・計測・採点するユースケースを提供する
type Service struct {
	newFetcher FetcherFactory
	computer   MetricsComputer
	logger     *slog.Logger
	now        func() time.Time
	progress   func(Progress)
}

type serviceOptions struct {
	logger   *slog.Logger
	now      func() time.Time
	progress func(Progress)
}

// ServiceOption は Service のオプション設定
type ServiceOption func(*serviceOptions)

// WithLogger は Service にロガーを設定する
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithClock は経過時間の計測に使う時刻関数を設定する
func WithClock(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		o.now = now
	}
}

// WithProgress は 1 件処理するごとに呼ばれるコールバックを設定する
func WithProgress(fn func(Progress)) ServiceOption {
	return func(o *serviceOptions) {
		o.progress = fn
	}
}

// NewService は新しい Service を作成する
func NewService(newFetcher FetcherFactory, computer MetricsComputer, opts ...ServiceOption) *Service {
	options := serviceOptions{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.now == nil {
		options.now = time.Now
	}

	return &Service{
		newFetcher: newFetcher,
		computer:   computer,
		logger:     options.logger,
		now:        options.now,
		progress:   options.progress,
	}
}

// AnalyzeBatch は identifiers を入力順に 1 件ずつ処理し、同じ順序の結果と集計を返す
// 個々のリポジトリの失敗は結果として記録し、エラーを返すのは作業ディレクトリを用意できない場合のみ
func (s *Service) AnalyzeBatch(ctx context.Context, identifiers []string) (*BatchResult, error) {
	startedAt := s.now()
	runID := uuid.New()

	fetcher, err := s.newFetcher()
	if err != nil {
		return nil, fmt.Errorf("failed to prepare workspace: %w", err)
	}
	defer fetcher.Cleanup()

	s.logger.Info("解析を開始", "runID", runID, "repositories", len(identifiers))

	results := make([]Result, 0, len(identifiers))
	for i, identifier := range identifiers {
		var result Result
		if err := ctx.Err(); err != nil {
			result = Result{
				Identifier:   identifier,
				Status:       StatusError,
				ErrorMessage: fmt.Sprintf("Analysis cancelled: %v", err),
			}
		} else {
			s.logger.Info("リポジトリを解析", "index", i+1, "total", len(identifiers), "identifier", identifier)
			result = s.analyzeOne(ctx, fetcher, identifier)
		}

		results = append(results, result)
		s.logResult(result)
		if s.progress != nil {
			s.progress(Progress{Index: i + 1, Total: len(identifiers), Result: result})
		}
	}

	summary := Summarize(runID, results, startedAt, s.now())
	s.logger.Info("解析が完了",
		"runID", runID,
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
		"averageGrade", summary.AverageGrade,
		"elapsed", summary.Elapsed,
	)

	return &BatchResult{Results: results, Summary: summary}, nil
}

// analyzeOne は 1 リポジトリ分を処理する。どの経路でも必ず Result を返す
func (s *Service) analyzeOne(ctx context.Context, fetcher Fetcher, identifier string) (result Result) {
	started := s.now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("解析中に予期しないエラー", "identifier", identifier, "panic", r)
			result = Result{
				Identifier:   identifier,
				Status:       StatusError,
				ErrorMessage: fmt.Sprintf("Unexpected error: %v", r),
				Attempts:     result.Attempts,
			}
		}
		result.Duration = s.now().Sub(started)
	}()

	result = Result{Identifier: identifier, Status: StatusError}

	outcome := fetcher.Acquire(ctx, identifier)
	result.Attempts = outcome.Attempts
	if !outcome.Acquired() {
		result.Status = StatusFromFailure(outcome.Kind)
		result.ErrorMessage = outcome.Message
		return result
	}

	m, err := s.computer.Compute(ctx, outcome.LocalPath)
	if err != nil {
		result.Status = StatusError
		if errors.Is(err, metrics.ErrPathNotFound) {
			result.ErrorMessage = fmt.Sprintf("Metrics calculation failed: %v", err)
		} else {
			result.ErrorMessage = fmt.Sprintf("Unexpected error: %v", err)
		}
		return result
	}

	if m.Empty() {
		result.Status = StatusNoCodeFiles
		result.ErrorMessage = "No code files found in repository"
		return result
	}

	result.Status = StatusSuccess
	result.Grade = Grade(m.FilesUnderThreshold, m.TotalFiles)
	result.Metrics = &m
	return result
}

func (s *Service) logResult(r Result) {
	if r.Succeeded() {
		s.logger.Info("採点完了", "identifier", r.Identifier, "grade", r.Grade, "attempts", r.Attempts)
		return
	}
	s.logger.Warn("解析に失敗", "identifier", r.Identifier, "status", string(r.Status), "error", r.ErrorMessage)
}
