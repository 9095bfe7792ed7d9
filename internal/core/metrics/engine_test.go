package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile は root 配下に rel のファイルを作成する
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// lines は非空行を n 行含む内容を返す
func lines(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("x = 1\n")
		if i%3 == 0 {
			b.WriteString("   \n")
		}
	}
	return b.String()
}

func TestEngine_Compute_AllUnderThreshold(t *testing.T) {
	root := t.TempDir()
	for i, n := range []int{10, 20, 30, 40, 129} {
		writeFile(t, root, filepath.Join("src", "mod"+string(rune('a'+i))+".py"), lines(n))
	}

	m, err := NewEngine(DefaultRules()).Compute(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, Metrics{TotalFiles: 5, FilesUnderThreshold: 5, TotalLines: 10 + 20 + 30 + 40 + 129}, m)
}

func TestEngine_Compute_MixedSizes(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 12; i++ {
		writeFile(t, root, "small/f"+strings.Repeat("a", i+1)+".go", lines(50))
	}
	for i := 0; i < 4; i++ {
		writeFile(t, root, "big/f"+strings.Repeat("b", i+1)+".java", lines(130+i))
	}

	m, err := NewEngine(DefaultRules()).Compute(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 16, m.TotalFiles)
	assert.Equal(t, 12, m.FilesUnderThreshold)
	assert.Equal(t, 12*50+130+131+132+133, m.TotalLines)
}

func TestEngine_Compute_NoSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# hello\n")
	writeFile(t, root, "package-lock.json", "{}\n")

	m, err := NewEngine(DefaultRules()).Compute(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, Metrics{}, m)
	assert.True(t, m.Empty())
}

func TestEngine_Compute_ExcludedDirectoriesNeverCounted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", lines(5))
	for _, dir := range DefaultExcludedDirs() {
		writeFile(t, root, dir+"/hidden.py", lines(5))
		writeFile(t, root, "nested/"+dir+"/deep/hidden.js", lines(5))
	}
	// 除外名を含むだけのディレクトリは対象
	writeFile(t, root, "builder/tool.py", lines(5))
	writeFile(t, root, "environment/setup.py", lines(5))

	m, err := NewEngine(DefaultRules()).Compute(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 3, m.TotalFiles)
	assert.Equal(t, 15, m.TotalLines)
}

func TestEngine_Compute_ExcludedRootIsStillWalked(t *testing.T) {
	// クローン先のディレクトリ名自体が除外名と一致しても走査する
	root := filepath.Join(t.TempDir(), "build")
	writeFile(t, root, "app.py", lines(3))

	m, err := NewEngine(DefaultRules()).Compute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, m.TotalFiles)
}

func TestEngine_Compute_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", lines(200))
	writeFile(t, root, "b/c.ts", lines(12))
	writeFile(t, root, "b/d.rs", "\n\n\n")

	engine := NewEngine(DefaultRules())
	first, err := engine.Compute(context.Background(), root)
	require.NoError(t, err)
	second, err := engine.Compute(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, Metrics{TotalFiles: 3, FilesUnderThreshold: 2, TotalLines: 212}, first)
}

func TestEngine_Compute_PathNotFound(t *testing.T) {
	_, err := NewEngine(DefaultRules()).Compute(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestEngine_Compute_PathIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "x\n")

	_, err := NewEngine(DefaultRules()).Compute(context.Background(), filepath.Join(root, "a.py"))
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestEngine_Compute_Latin1Fallback(t *testing.T) {
	root := t.TempDir()
	// 0xE9 は UTF-8 として不正だが ISO-8859-1 では "é"
	content := []byte("caf\xe9 = 1\n\n# r\xe9sum\xe9\n")
	require.NoError(t, os.WriteFile(filepath.Join(root, "latin.py"), content, 0o644))

	m, err := NewEngine(DefaultRules()).Compute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, Metrics{TotalFiles: 1, FilesUnderThreshold: 1, TotalLines: 2}, m)
}

func TestEngine_Compute_UnreadableFileSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root はパーミッションを無視するためスキップ")
	}
	root := t.TempDir()
	writeFile(t, root, "ok.py", lines(4))
	writeFile(t, root, "secret.py", lines(4))
	require.NoError(t, os.Chmod(filepath.Join(root, "secret.py"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(root, "secret.py"), 0o644) })

	m, err := NewEngine(DefaultRules()).Compute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, Metrics{TotalFiles: 1, FilesUnderThreshold: 1, TotalLines: 4}, m)
}

func TestEngine_Compute_CustomThreshold(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", lines(10))
	writeFile(t, root, "b.py", lines(5))

	rules := DefaultRules()
	rules.LineThreshold = 10

	m, err := NewEngine(rules).Compute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, m.FilesUnderThreshold)
}

func TestEngine_Compute_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", lines(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(DefaultRules()).Compute(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Inspect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, root, "util.go", "package main\n")
	writeFile(t, root, "web/app.js", lines(140))
	writeFile(t, root, "node_modules/lib/index.js", lines(10))

	engine := NewEngine(DefaultRules())
	report, err := engine.Inspect(context.Background(), root)
	require.NoError(t, err)

	m, err := engine.Compute(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, m, report.Metrics)
	assert.Equal(t, DefaultLineThreshold, report.Threshold)

	require.Len(t, report.Files, 3)
	byPath := make(map[string]FileStat)
	for _, f := range report.Files {
		byPath[f.Path] = f
	}
	assert.Equal(t, "Go", byPath["main.go"].Language)
	assert.Equal(t, 2, byPath["main.go"].Lines)
	assert.Equal(t, "JavaScript", byPath["web/app.js"].Language)
	assert.False(t, byPath["web/app.js"].UnderThreshold)

	breakdown := report.LanguageBreakdown()
	require.Len(t, breakdown, 2)
	assert.Equal(t, LanguageShare{Language: "Go", Files: 2, Lines: 3}, breakdown[0])
	assert.Equal(t, LanguageShare{Language: "JavaScript", Files: 1, Lines: 140}, breakdown[1])
}
