package metrics

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-enry/go-enry/v2"
)

// ErrPathNotFound は計測対象のディレクトリが存在しない場合のエラー
var ErrPathNotFound = errors.New("repository path does not exist")

// Engine はリポジトリのファイルツリーを走査してメトリクスを計算する
type Engine struct {
	rules  Rules
	filter *fileFilter
	logger *slog.Logger
}

// EngineOption は Engine のオプション設定
type EngineOption func(*Engine)

// WithLogger はロガーを設定する
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine は新しい Engine を作成する
func NewEngine(rules Rules, opts ...EngineOption) *Engine {
	if rules.LineThreshold <= 0 {
		rules.LineThreshold = DefaultLineThreshold
	}

	e := &Engine{
		rules:  rules,
		filter: newFileFilter(rules),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold は規約内とみなす行数の閾値を返す
func (e *Engine) Threshold() int {
	return e.rules.LineThreshold
}

// Compute は root 配下のソースファイルを集計する
// root が存在しない場合のみエラーを返し、個々のファイルの読み込み失敗はスキップする
func (e *Engine) Compute(ctx context.Context, root string) (Metrics, error) {
	var m Metrics
	err := e.walk(ctx, root, func(rel string, lines int, _ []byte) {
		m.TotalFiles++
		m.TotalLines += lines
		if lines < e.rules.LineThreshold {
			m.FilesUnderThreshold++
		}
	}, nil)
	if err != nil {
		return Metrics{}, err
	}
	return m, nil
}

// Inspect は Compute と同じ走査を行い、ファイル単位の明細と言語を含むレポートを返す
func (e *Engine) Inspect(ctx context.Context, root string) (*Report, error) {
	report := &Report{
		Root:      root,
		Threshold: e.rules.LineThreshold,
	}

	err := e.walk(ctx, root, func(rel string, lines int, content []byte) {
		under := lines < e.rules.LineThreshold
		report.Metrics.TotalFiles++
		report.Metrics.TotalLines += lines
		if under {
			report.Metrics.FilesUnderThreshold++
		}
		report.Files = append(report.Files, FileStat{
			Path:           rel,
			Language:       enry.GetLanguage(filepath.Base(rel), content),
			Lines:          lines,
			UnderThreshold: under,
		})
	}, func(rel string, err error) {
		report.Skipped = append(report.Skipped, SkippedFile{Path: rel, Reason: err.Error()})
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// walk はディレクトリツリーを上から順に走査し、ソースファイルごとに visit を呼ぶ
// 除外ディレクトリは降りる前に刈り込む
func (e *Engine) walk(ctx context.Context, root string, visit func(rel string, lines int, content []byte), skipped func(rel string, err error)) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return fmt.Errorf("failed to stat repository path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		if walkErr != nil {
			if path == root {
				return fmt.Errorf("failed to read repository root: %w", walkErr)
			}
			e.logger.Warn("ディレクトリを読み込めないためスキップ", "path", rel, "error", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && e.filter.skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !e.filter.isSource(d.Name()) {
			return nil
		}

		lines, content, err := readFile(path)
		if err != nil {
			e.logger.Warn("ファイルを読み込めないためスキップ", "path", rel, "error", err)
			if skipped != nil {
				skipped(rel, err)
			}
			return nil
		}

		visit(filepath.ToSlash(rel), lines, content)
		return nil
	})
}
