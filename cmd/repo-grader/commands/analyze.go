package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jinford/repo-grader/internal/core/analysis"
	"github.com/jinford/repo-grader/internal/infra/tabular"
	"github.com/urfave/cli/v3"
)

// AnalyzeAction は入力ファイルの全リポジトリを採点するコマンドのアクション
func AnalyzeAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	inputFile := cmd.String("input")
	outputFile := cmd.String("output")
	exportFile := cmd.String("export")
	verbose := cmd.Bool("verbose")

	appCtx, err := NewAppContext(envFile, verbose)
	if err != nil {
		return err
	}

	records, err := tabular.ReadRecords(inputFile)
	if err != nil {
		return fmt.Errorf("入力ファイルの読み込みに失敗: %w", err)
	}

	if outputFile == "" {
		outputFile = tabular.DefaultOutputPath(inputFile, appCtx.Config.OutputDir)
	}

	fmt.Printf("Loaded %d repositories from %s\n\n", len(records), inputFile)

	engine := appCtx.MetricsEngine()
	service := analysis.NewService(appCtx.FetcherFactory(), engine,
		analysis.WithLogger(appCtx.Logger),
		analysis.WithProgress(func(p analysis.Progress) {
			printProgress(os.Stdout, p)
		}),
	)

	batch, err := service.AnalyzeBatch(ctx, tabular.URLs(records))
	if err != nil {
		return fmt.Errorf("解析に失敗: %w", err)
	}

	stats := analysis.ComputeStatistics(batch.Results)
	threshold := engine.Threshold()

	if err := tabular.WriteResults(outputFile, records, batch.Results, threshold); err != nil {
		return fmt.Errorf("結果ファイルの書き込みに失敗: %w", err)
	}
	summaryFile := tabular.SummaryPath(outputFile)
	if err := tabular.WriteSummary(summaryFile, batch.Summary, stats); err != nil {
		return fmt.Errorf("集計ファイルの書き込みに失敗: %w", err)
	}
	if exportFile != "" {
		if err := tabular.ExportJSON(exportFile, records, batch, stats); err != nil {
			return fmt.Errorf("JSONエクスポートに失敗: %w", err)
		}
	}

	printReport(os.Stdout, batch, stats)

	fmt.Printf("\nResults written to %s\n", outputFile)
	fmt.Printf("Summary written to %s\n", summaryFile)
	if exportFile != "" {
		fmt.Printf("JSON exported to %s\n", exportFile)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("解析が中断されました: %w", err)
	}

	return nil
}
