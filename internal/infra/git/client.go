package git

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	giturls "github.com/whilp/git-urls"
)

// Client は Git リポジトリ操作を提供する
type Client struct {
	sshKeyPath  string
	sshPassword string
	progress    io.Writer
}

// ClientOption は Client のオプション設定
type ClientOption func(*Client)

// WithProgress はクローンの進捗の出力先を設定する
func WithProgress(w io.Writer) ClientOption {
	return func(c *Client) {
		c.progress = w
	}
}

// NewClient は新しい Client を作成する
func NewClient(sshKeyPath, sshPassword string, opts ...ClientOption) *Client {
	c := &Client{
		sshKeyPath:  sshKeyPath,
		sshPassword: sshPassword,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CommitInfo はコミット情報を表す
type CommitInfo struct {
	Hash    string
	Date    time.Time
	Message string
	Author  string
}

// Endpoint は Git URL を解析する
// 例: git@github.com:user/repo.git -> ssh://git@github.com/user/repo.git
func (c *Client) Endpoint(gitURL string) (*url.URL, error) {
	u, err := giturls.Parse(gitURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse git URL: %w", err)
	}
	return u, nil
}

// ShallowClone はデフォルトブランチの最新コミットだけを destDir にクローンする
func (c *Client) ShallowClone(ctx context.Context, gitURL, destDir string) error {
	auth, err := c.authFor(gitURL)
	if err != nil {
		return fmt.Errorf("failed to setup SSH auth: %w", err)
	}

	_, err = git.PlainCloneContext(ctx, destDir, false, &git.CloneOptions{
		URL:          gitURL,
		Auth:         auth,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
		Progress:     c.progress,
	})
	if err != nil {
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	return nil
}

// HeadCommit はローカルリポジトリの HEAD のコミット情報を取得する
func (c *Client) HeadCommit(repoPath string) (*CommitInfo, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object: %w", err)
	}

	return &CommitInfo{
		Hash:    commit.Hash.String(),
		Date:    commit.Author.When,
		Message: commit.Message,
		Author:  commit.Author.Name,
	}, nil
}

// authFor は URL に応じた認証方式を返す
// SSH 以外、または鍵が未設定の場合は nil（匿名またはエージェント）
func (c *Client) authFor(gitURL string) (transport.AuthMethod, error) {
	u, err := c.Endpoint(gitURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ssh" || c.sshKeyPath == "" {
		return nil, nil
	}

	if _, err := os.Stat(c.sshKeyPath); err != nil {
		return nil, fmt.Errorf("SSH key not found at %s: %w", c.sshKeyPath, err)
	}

	user := "git"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}

	auth, err := ssh.NewPublicKeysFromFile(user, c.sshKeyPath, c.sshPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}

	return auth, nil
}
