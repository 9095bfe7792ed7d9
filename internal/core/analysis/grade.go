package analysis

import "math"

// Grade は閾値未満のファイルの割合を 0〜100 の点数（小数第 2 位に丸め）にする
// totalFiles が 0 の場合は 0 を返す
func Grade(filesUnderThreshold, totalFiles int) float64 {
	if totalFiles == 0 {
		return 0
	}
	percentage := float64(filesUnderThreshold) / float64(totalFiles) * 100
	return round2(percentage)
}

// round2 は小数第 2 位に丸める。ちょうど中間の値は偶数側に丸める
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
