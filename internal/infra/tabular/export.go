package tabular

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jinford/repo-grader/internal/core/analysis"
)

// Export は JSON 出力の形式
type Export struct {
	Summary    analysis.Summary    `json:"summary"`
	Statistics analysis.Statistics `json:"statistics"`
	Results    []ExportedResult    `json:"results"`
}

// ExportedResult は入力レコードと解析結果の組
type ExportedResult struct {
	Record Record          `json:"record"`
	Result analysis.Result `json:"result"`
}

// ExportJSON はバッチの結果を JSON で書き出す
func ExportJSON(path string, records []Record, batch *analysis.BatchResult, stats analysis.Statistics) error {
	if len(records) != len(batch.Results) {
		return fmt.Errorf("record count %d does not match result count %d", len(records), len(batch.Results))
	}

	export := Export{
		Summary:    batch.Summary,
		Statistics: stats,
		Results:    make([]ExportedResult, len(records)),
	}
	for i, record := range records {
		export.Results[i] = ExportedResult{Record: record, Result: batch.Results[i]}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}

	return nil
}
