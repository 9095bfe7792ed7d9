package metrics

import (
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultLineThreshold は「規約を守っている」とみなすファイルの非空行数の上限（未満）
const DefaultLineThreshold = 130

// Rules はソースファイルの判定規則
type Rules struct {
	// Extensions は対象とする拡張子（大文字小文字を区別しない）
	Extensions []string
	// ExcludedDirs は走査しないディレクトリ名
	ExcludedDirs []string
	// NonSourcePatterns はファイル名（小文字）に含まれていたら除外する部分文字列
	NonSourcePatterns []string
	// CompiledExtensions はコンパイル済み成果物の拡張子
	CompiledExtensions []string
	// LineThreshold は非空行数がこれ未満のファイルを規約内とみなす
	LineThreshold int
}

// DefaultRules はデフォルトの判定規則を返す
func DefaultRules() Rules {
	return Rules{
		Extensions:         DefaultExtensions(),
		ExcludedDirs:       DefaultExcludedDirs(),
		NonSourcePatterns:  DefaultNonSourcePatterns(),
		CompiledExtensions: []string{".pyc", ".class", ".exe", ".dll", ".so"},
		LineThreshold:      DefaultLineThreshold,
	}
}

// DefaultExtensions は対象とするプログラミング言語の拡張子を返す
func DefaultExtensions() []string {
	return []string{
		".py", ".java", ".js", ".ts", ".jsx", ".tsx",
		".cpp", ".c", ".h", ".hpp", ".go", ".rs",
		".rb", ".php", ".swift", ".kt", ".cs", ".scala",
	}
}

// DefaultExcludedDirs は走査しないディレクトリ名を返す
func DefaultExcludedDirs() []string {
	return []string{
		// 依存関係・仮想環境
		"node_modules", "venv", ".venv", "env", ".env", "bower_components", "vendor",
		// キャッシュ
		"__pycache__", ".pytest_cache",
		// バージョン管理
		".git", ".svn",
		// ビルド成果物
		"build", "dist", "target", "bin", "obj", ".next", "out", "coverage",
		// IDE
		".idea", ".vscode",
	}
}

// DefaultNonSourcePatterns はソースとみなさないファイル名のパターンを返す
func DefaultNonSourcePatterns() []string {
	return []string{
		"package.json", "package-lock.json",
		"requirements.txt", "gemfile", "gemfile.lock",
		".gitignore", ".env", ".env.local",
		"readme", "license", "changelog",
	}
}

// fileFilter は Rules をコンパイルしたもの
type fileFilter struct {
	extensions map[string]struct{}
	compiled   map[string]struct{}
	patterns   []string
	dirs       *gitignore.GitIgnore
}

func newFileFilter(rules Rules) *fileFilter {
	f := &fileFilter{
		extensions: toLowerSet(rules.Extensions),
		compiled:   toLowerSet(rules.CompiledExtensions),
	}
	for _, p := range rules.NonSourcePatterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			f.patterns = append(f.patterns, p)
		}
	}

	var dirPatterns []string
	for _, d := range rules.ExcludedDirs {
		if d = strings.TrimSpace(d); d != "" {
			dirPatterns = append(dirPatterns, d)
		}
	}
	if len(dirPatterns) > 0 {
		f.dirs = gitignore.CompileIgnoreLines(dirPatterns...)
	}
	return f
}

// skipDir はディレクトリ名が除外対象かどうかを判定する
func (f *fileFilter) skipDir(name string) bool {
	if f.dirs == nil {
		return false
	}
	return f.dirs.MatchesPath(name)
}

// isSource はファイル名がソースファイルかどうかを判定する
func (f *fileFilter) isSource(name string) bool {
	ext := strings.ToLower(suffix(name))
	if _, ok := f.extensions[ext]; !ok {
		return false
	}

	lower := strings.ToLower(name)
	for _, p := range f.patterns {
		if strings.Contains(lower, p) {
			return false
		}
	}

	if _, ok := f.compiled[ext]; ok {
		return false
	}
	return true
}

// suffix はファイル名の拡張子を返す
// 最後のドットが先頭または末尾にある場合（.bashrc や "name." など）は拡張子なしとする
func suffix(name string) string {
	name = filepath.Base(name)
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

func toLowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if !strings.HasPrefix(v, ".") {
			v = "." + v
		}
		set[v] = struct{}{}
	}
	return set
}
