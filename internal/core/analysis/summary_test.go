package analysis

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func success(id string, grade float64) Result {
	return Result{Identifier: id, Grade: grade, Status: StatusSuccess}
}

func failure(id string, status Status, msg string) Result {
	return Result{Identifier: id, Status: status, ErrorMessage: msg}
}

func TestSummarize(t *testing.T) {
	started := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(95 * time.Second)
	runID := uuid.New()

	results := []Result{
		success("a", 100),
		failure("b", StatusNotFound, "Repository not found or deleted"),
		success("c", 50),
		failure("d", StatusNoCodeFiles, "No code files found in repository"),
	}

	s := Summarize(runID, results, started, finished)

	assert.Equal(t, runID, s.RunID)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Successful)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 75.0, s.AverageGrade)
	assert.Equal(t, 95*time.Second, s.Elapsed)
}

func TestComputeStatistics(t *testing.T) {
	results := []Result{
		success("a", 100),
		success("b", 20),
		success("c", 60),
		success("d", 80),
		failure("e", StatusTimeout, "Clone timeout"),
		failure("f", StatusError, ""),
	}

	stats := ComputeStatistics(results)

	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, 65.0, stats.Mean)
	assert.Equal(t, 70.0, stats.Median)
	assert.Equal(t, 20.0, stats.Min)
	assert.Equal(t, 100.0, stats.Max)
	// 標本標準偏差: sqrt((35^2 + 45^2 + 5^2 + 15^2) / 3)
	assert.InDelta(t, 34.156, stats.StdDev, 0.001)

	require.Len(t, stats.Distribution, 5)
	counts := make(map[string]int)
	for _, b := range stats.Distribution {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, map[string]int{
		"0-20%":   0,
		"20-40%":  1,
		"40-60%":  0,
		"60-80%":  1,
		"80-100%": 2,
	}, counts)
	assert.Equal(t, 50.0, stats.Distribution[4].Percent)

	require.Len(t, stats.Failures, 2)
	assert.Equal(t, "e", stats.Failures[0].Identifier)
	assert.Equal(t, StatusTimeout, stats.Failures[0].Status)
	assert.Equal(t, "Unknown error", stats.Failures[1].Message)
}

func TestComputeStatistics_OddMedianAndSingle(t *testing.T) {
	stats := ComputeStatistics([]Result{success("a", 10), success("b", 30), success("c", 90)})
	assert.Equal(t, 30.0, stats.Median)

	single := ComputeStatistics([]Result{success("a", 42)})
	assert.Equal(t, 42.0, single.Median)
	assert.Equal(t, 0.0, single.StdDev)
}

func TestComputeStatistics_NoSuccess(t *testing.T) {
	stats := ComputeStatistics([]Result{failure("a", StatusAccessDenied, "Private repository - access denied")})

	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, 0.0, stats.Mean)
	require.Len(t, stats.Distribution, 5)
	for _, b := range stats.Distribution {
		assert.Equal(t, 0, b.Count)
		assert.Equal(t, 0.0, b.Percent)
	}
	assert.Len(t, stats.Failures, 1)
}
