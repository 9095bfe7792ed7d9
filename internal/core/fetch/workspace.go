package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DefaultWorkspacePrefix は作業ディレクトリ名の接頭辞
const DefaultWorkspacePrefix = "repograder_"

// Workspace は 1 回のバッチ実行が占有する一時作業ディレクトリ
// リポジトリごとに repo_<連番>_<名前> のサブディレクトリを割り当てる
type Workspace struct {
	root      string
	seq       atomic.Int64
	destroyMu sync.Mutex
	destroyed bool
}

// NewWorkspace は baseDir 配下に新しい作業ディレクトリを作成する
// baseDir が空の場合は OS の一時ディレクトリを使用する
func NewWorkspace(baseDir, prefix string) (*Workspace, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if prefix == "" {
		prefix = DefaultWorkspacePrefix
	}

	name := fmt.Sprintf("%s%s_%s", prefix, time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	root := filepath.Join(baseDir, name)

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	return &Workspace{root: root}, nil
}

// OpenWorkspace は既存（または新規作成する）ディレクトリ dir をそのまま作業ディレクトリとして使う
func OpenWorkspace(dir string) (*Workspace, error) {
	if dir == "" {
		return nil, fmt.Errorf("workspace directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return &Workspace{root: dir}, nil
}

// Root は作業ディレクトリのパスを返す
func (w *Workspace) Root() string {
	return w.root
}

// Allocate はリポジトリ用の一意なサブディレクトリのパスを払い出す
// 同名のディレクトリが残っている場合は削除してから返す
func (w *Workspace) Allocate(name string) (string, error) {
	n := w.seq.Add(1)
	dir := filepath.Join(w.root, fmt.Sprintf("repo_%d_%s", n, name))

	if err := removeStale(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Destroy は作業ディレクトリ全体を削除する。2 回目以降の呼び出しは何もしない
func (w *Workspace) Destroy() error {
	w.destroyMu.Lock()
	defer w.destroyMu.Unlock()

	if w.destroyed {
		return nil
	}
	w.destroyed = true

	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", w.root, err)
	}
	return nil
}

func removeStale(dir string) error {
	if _, err := os.Lstat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove stale directory %s: %w", dir, err)
	}
	return nil
}
