package metrics

import (
	"sort"
)

// Metrics はリポジトリのコード量の集計結果
// FilesUnderThreshold は常に TotalFiles 以下
type Metrics struct {
	TotalFiles          int `json:"total_files"`
	FilesUnderThreshold int `json:"files_under_threshold"`
	TotalLines          int `json:"total_lines"`
}

// Empty は対象ファイルが 1 つもなかったかどうかを返す
func (m Metrics) Empty() bool {
	return m.TotalFiles == 0
}

// FileStat は 1 ファイル分の計測結果
type FileStat struct {
	Path           string `json:"path"`
	Language       string `json:"language"`
	Lines          int    `json:"lines"`
	UnderThreshold bool   `json:"under_threshold"`
}

// SkippedFile は読み込めずに集計から除外したファイル
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// LanguageShare は言語ごとの集計
type LanguageShare struct {
	Language string `json:"language"`
	Files    int    `json:"files"`
	Lines    int    `json:"lines"`
}

// Report はファイル単位の明細を含む計測結果
type Report struct {
	Root      string        `json:"root"`
	Threshold int           `json:"threshold"`
	Metrics   Metrics       `json:"metrics"`
	Files     []FileStat    `json:"files"`
	Skipped   []SkippedFile `json:"skipped,omitempty"`
}

// LanguageBreakdown は言語ごとのファイル数・行数をファイル数の多い順に返す
func (r *Report) LanguageBreakdown() []LanguageShare {
	byLang := make(map[string]*LanguageShare)
	for _, f := range r.Files {
		lang := f.Language
		if lang == "" {
			lang = "Other"
		}
		share, ok := byLang[lang]
		if !ok {
			share = &LanguageShare{Language: lang}
			byLang[lang] = share
		}
		share.Files++
		share.Lines += f.Lines
	}

	shares := make([]LanguageShare, 0, len(byLang))
	for _, s := range byLang {
		shares = append(shares, *s)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Files != shares[j].Files {
			return shares[i].Files > shares[j].Files
		}
		return shares[i].Language < shares[j].Language
	})
	return shares
}
