package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Summarize は結果の列からバッチの集計を計算する
func Summarize(runID uuid.UUID, results []Result, startedAt, finishedAt time.Time) Summary {
	s := Summary{
		RunID:      runID,
		Total:      len(results),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Elapsed:    finishedAt.Sub(startedAt),
	}

	var sum float64
	for _, r := range results {
		if r.Succeeded() {
			s.Successful++
			sum += r.Grade
		}
	}
	s.Failed = s.Total - s.Successful
	if s.Successful > 0 {
		s.AverageGrade = sum / float64(s.Successful)
	}
	return s
}

// GradeBucket は点数分布の 1 区間
type GradeBucket struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
	// Percent は採点成功件数に対する割合
	Percent float64 `json:"percent"`
}

// Failure は失敗したリポジトリと理由
type Failure struct {
	Identifier string `json:"identifier"`
	Status     Status `json:"status"`
	Message    string `json:"message"`
}

// Statistics は採点成功分の点数の統計と失敗一覧
type Statistics struct {
	Count        int           `json:"count"`
	Mean         float64       `json:"mean"`
	Median       float64       `json:"median"`
	Min          float64       `json:"min"`
	Max          float64       `json:"max"`
	StdDev       float64       `json:"std_dev"`
	Distribution []GradeBucket `json:"distribution"`
	Failures     []Failure     `json:"failures,omitempty"`
}

// gradeBuckets は [0,20) [20,40) [40,60) [60,80) [80,100] の 5 区間
var gradeBuckets = []struct {
	label    string
	min, max float64
}{
	{"0-20%", 0, 20},
	{"20-40%", 20, 40},
	{"40-60%", 40, 60},
	{"60-80%", 60, 80},
	{"80-100%", 80, 100},
}

// ComputeStatistics は採点成功分の点数から統計量を計算する
// 標準偏差は標本標準偏差で、2 件未満の場合は 0
func ComputeStatistics(results []Result) Statistics {
	var grades []float64
	var stats Statistics

	for _, r := range results {
		if r.Succeeded() {
			grades = append(grades, r.Grade)
			continue
		}
		msg := r.ErrorMessage
		if msg == "" {
			msg = "Unknown error"
		}
		stats.Failures = append(stats.Failures, Failure{
			Identifier: r.Identifier,
			Status:     r.Status,
			Message:    msg,
		})
	}

	stats.Count = len(grades)
	stats.Distribution = distribution(grades)
	if len(grades) == 0 {
		return stats
	}

	sorted := append([]float64(nil), grades...)
	sort.Float64s(sorted)

	var sum float64
	for _, g := range sorted {
		sum += g
	}
	stats.Mean = sum / float64(len(sorted))
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}

	if len(sorted) > 1 {
		var sq float64
		for _, g := range sorted {
			d := g - stats.Mean
			sq += d * d
		}
		stats.StdDev = math.Sqrt(sq / float64(len(sorted)-1))
	}

	return stats
}

func distribution(grades []float64) []GradeBucket {
	buckets := make([]GradeBucket, len(gradeBuckets))
	for i, b := range gradeBuckets {
		buckets[i] = GradeBucket{Label: b.label, Min: b.min, Max: b.max}
	}

	last := len(buckets) - 1
	for _, g := range grades {
		for i, b := range gradeBuckets {
			if g >= b.min && (g < b.max || (i == last && g <= b.max)) {
				buckets[i].Count++
				break
			}
		}
	}

	if len(grades) > 0 {
		for i := range buckets {
			buckets[i].Percent = float64(buckets[i].Count) / float64(len(grades)) * 100
		}
	}
	return buckets
}
