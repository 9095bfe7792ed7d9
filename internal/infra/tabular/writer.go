package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jinford/repo-grader/internal/core/analysis"
)

// ResultHeader は結果ファイルのヘッダーを返す
func ResultHeader(threshold int) []string {
	return []string{
		"ID",
		"Date",
		"Subject",
		"URL",
		"Grade",
		"Total Files",
		fmt.Sprintf("Files <%d", threshold),
		"Total Lines",
		"Status",
		"Error Message",
	}
}

// WriteResults は入力レコードと解析結果を 1 行ずつ対応させて CSV に書き出す
// records と results は同じ順序・同じ件数でなければならない
func WriteResults(path string, records []Record, results []analysis.Result, threshold int) error {
	if len(records) != len(results) {
		return fmt.Errorf("record count %d does not match result count %d", len(records), len(results))
	}

	rows := make([][]string, 0, len(results)+1)
	rows = append(rows, ResultHeader(threshold))
	for i, result := range results {
		rows = append(rows, resultRow(records[i], result))
	}

	return writeCSV(path, rows)
}

func resultRow(record Record, result analysis.Result) []string {
	totalFiles, underThreshold, totalLines := "", "", ""
	if result.Metrics != nil {
		totalFiles = strconv.Itoa(result.Metrics.TotalFiles)
		underThreshold = strconv.Itoa(result.Metrics.FilesUnderThreshold)
		totalLines = strconv.Itoa(result.Metrics.TotalLines)
	}

	return []string{
		record.ID,
		record.Date,
		record.Subject,
		record.URL,
		FormatGrade(result.Grade),
		totalFiles,
		underThreshold,
		totalLines,
		string(result.Status),
		result.ErrorMessage,
	}
}

// WriteSummary はバッチ全体の集計を項目・値の 2 列の CSV に書き出す
func WriteSummary(path string, summary analysis.Summary, stats analysis.Statistics) error {
	rows := [][]string{
		{"Metric", "Value"},
		{"Run ID", summary.RunID.String()},
		{"Started At", summary.StartedAt.Format(time.RFC3339)},
		{"Finished At", summary.FinishedAt.Format(time.RFC3339)},
		{"Elapsed", FormatElapsed(summary.Elapsed)},
		{"Total Repositories", strconv.Itoa(summary.Total)},
		{"Successful", strconv.Itoa(summary.Successful)},
		{"Failed", strconv.Itoa(summary.Failed)},
		{"Average Grade", FormatGrade(summary.AverageGrade)},
		{"Median Grade", FormatGrade(stats.Median)},
		{"Min Grade", FormatGrade(stats.Min)},
		{"Max Grade", FormatGrade(stats.Max)},
		{"Std Dev", FormatGrade(stats.StdDev)},
	}
	for _, b := range stats.Distribution {
		rows = append(rows, []string{"Grade " + b.Label, strconv.Itoa(b.Count)})
	}

	return writeCSV(path, rows)
}

// DefaultOutputPath は入力ファイル名から結果ファイルのパスを決める
// 例: data/week3.csv, output -> output/week3_graded.csv
func DefaultOutputPath(inputPath, outputDir string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+"_graded.csv")
}

// SummaryPath は結果ファイルに対応する集計ファイルのパスを返す
func SummaryPath(resultPath string) string {
	ext := filepath.Ext(resultPath)
	return strings.TrimSuffix(resultPath, ext) + "_summary" + ext
}

// FormatGrade は点数を小数第 2 位まで表示する
func FormatGrade(grade float64) string {
	return strconv.FormatFloat(grade, 'f', 2, 64)
}

// FormatElapsed は経過時間を "Xm Ys" 形式にする
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

func writeCSV(path string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	return file.Close()
}
