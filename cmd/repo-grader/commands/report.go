package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jinford/repo-grader/internal/core/analysis"
	"github.com/jinford/repo-grader/internal/infra/tabular"
	"github.com/olekukonko/tablewriter"
)

// histogramWidth はヒストグラムの棒の最大幅
const histogramWidth = 40

// printProgress は 1 件ごとの進捗を表示する
func printProgress(w io.Writer, p analysis.Progress) {
	fmt.Fprintf(w, "[%d/%d] Analyzing %s\n", p.Index, p.Total, p.Result.Identifier)
	if p.Result.Succeeded() {
		color.New(color.FgGreen).Fprintf(w, "  -> %s%% (%d/%d files)\n",
			tabular.FormatGrade(p.Result.Grade),
			p.Result.Metrics.FilesUnderThreshold,
			p.Result.Metrics.TotalFiles,
		)
		return
	}
	color.New(color.FgRed).Fprintf(w, "  -> %s: %s\n", p.Result.Status, p.Result.ErrorMessage)
}

// printReport はバッチの集計・統計・分布・失敗一覧を表示する
func printReport(w io.Writer, batch *analysis.BatchResult, stats analysis.Statistics) {
	summary := batch.Summary

	fmt.Fprintln(w, "\n=== 解析サマリー ===")
	table := tablewriter.NewWriter(w)
	table.Header("項目", "値")
	table.Append("Total Repositories", fmt.Sprintf("%d", summary.Total))
	table.Append("Successful", fmt.Sprintf("%d", summary.Successful))
	table.Append("Failed", fmt.Sprintf("%d", summary.Failed))
	table.Append("Average Grade", tabular.FormatGrade(summary.AverageGrade)+"%")
	table.Append("Elapsed", tabular.FormatElapsed(summary.Elapsed))
	table.Render()

	if stats.Count > 0 {
		fmt.Fprintln(w, "\n=== 点数の統計 ===")
		statsTable := tablewriter.NewWriter(w)
		statsTable.Header("統計量", "値")
		statsTable.Append("Mean", tabular.FormatGrade(stats.Mean))
		statsTable.Append("Median", tabular.FormatGrade(stats.Median))
		statsTable.Append("Min", tabular.FormatGrade(stats.Min))
		statsTable.Append("Max", tabular.FormatGrade(stats.Max))
		statsTable.Append("Std Dev", tabular.FormatGrade(stats.StdDev))
		statsTable.Render()

		fmt.Fprintln(w, "\n=== 点数の分布 ===")
		printHistogram(w, stats.Distribution)
	}

	if len(stats.Failures) > 0 {
		fmt.Fprintln(w, "\n=== 失敗したリポジトリ ===")
		failureTable := tablewriter.NewWriter(w)
		failureTable.Header("URL", "Status", "Error")
		for _, f := range stats.Failures {
			failureTable.Append(f.Identifier, string(f.Status), f.Message)
		}
		failureTable.Render()
	}
}

// printHistogram は区間ごとの件数を棒グラフで表示する
func printHistogram(w io.Writer, buckets []analysis.GradeBucket) {
	peak := 0
	for _, b := range buckets {
		if b.Count > peak {
			peak = b.Count
		}
	}

	for _, b := range buckets {
		width := 0
		if peak > 0 {
			width = b.Count * histogramWidth / peak
		}
		if b.Count > 0 && width == 0 {
			width = 1
		}
		fmt.Fprintf(w, "%-8s %-*s %d (%.1f%%)\n", b.Label, histogramWidth, strings.Repeat("#", width), b.Count, b.Percent)
	}
}
