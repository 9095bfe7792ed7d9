package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jinford/repo-grader/internal/core/analysis"
	"github.com/jinford/repo-grader/internal/core/metrics"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

// InspectAction はローカルのディレクトリをファイル単位で計測するコマンドのアクション
func InspectAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	path := cmd.String("path")

	appCtx, err := NewAppContext(envFile, cmd.Bool("verbose"))
	if err != nil {
		return err
	}

	report, err := appCtx.MetricsEngine().Inspect(ctx, path)
	if err != nil {
		return fmt.Errorf("計測に失敗: %w", err)
	}

	if commit, err := appCtx.GitClient().HeadCommit(path); err == nil {
		fmt.Printf("Commit: %s (%s, %s)\n", commit.Hash, commit.Author, commit.Date.Format("2006-01-02 15:04:05"))
	} else {
		appCtx.Logger.Debug("Gitリポジトリではないためコミット情報を省略", "path", path, "error", err)
	}

	printInspectReport(os.Stdout, report)
	return nil
}

// printInspectReport はファイル明細と言語別の集計を表示する
func printInspectReport(w io.Writer, report *metrics.Report) {
	fmt.Fprintf(w, "\n=== ファイル一覧 (%s) ===\n", report.Root)
	fileTable := tablewriter.NewWriter(w)
	fileTable.Header("Path", "Language", "Lines", fmt.Sprintf("<%d", report.Threshold))
	for _, f := range report.Files {
		mark := "NG"
		if f.UnderThreshold {
			mark = "OK"
		}
		fileTable.Append(f.Path, languageLabel(f.Language), fmt.Sprintf("%d", f.Lines), mark)
	}
	fileTable.Render()

	if shares := report.LanguageBreakdown(); len(shares) > 0 {
		fmt.Fprintln(w, "\n=== 言語別 ===")
		langTable := tablewriter.NewWriter(w)
		langTable.Header("Language", "Files", "Lines")
		for _, s := range shares {
			langTable.Append(s.Language, fmt.Sprintf("%d", s.Files), fmt.Sprintf("%d", s.Lines))
		}
		langTable.Render()
	}

	if len(report.Skipped) > 0 {
		fmt.Fprintln(w, "\n=== スキップしたファイル ===")
		for _, s := range report.Skipped {
			fmt.Fprintf(w, "  - %s: %s\n", s.Path, s.Reason)
		}
	}

	m := report.Metrics
	fmt.Fprintf(w, "\nTotal Files: %d, Files <%d: %d, Total Lines: %d, Grade: %.2f%%\n",
		m.TotalFiles, report.Threshold, m.FilesUnderThreshold, m.TotalLines,
		analysis.Grade(m.FilesUnderThreshold, m.TotalFiles),
	)
}

func languageLabel(lang string) string {
	if lang == "" {
		return "-"
	}
	return lang
}
