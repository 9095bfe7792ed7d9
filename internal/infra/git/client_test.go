package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Endpoint(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantScheme string
		wantHost   string
		wantPath   string
	}{
		{
			name:       "HTTPS",
			url:        "https://github.com/alice/hw1",
			wantScheme: "https",
			wantHost:   "github.com",
			wantPath:   "/alice/hw1",
		},
		{
			name:       "HTTPS .git付き",
			url:        "https://github.com/alice/hw1.git",
			wantScheme: "https",
			wantHost:   "github.com",
			wantPath:   "/alice/hw1.git",
		},
		{
			name:       "SCP形式のSSH",
			url:        "git@github.com:alice/hw1.git",
			wantScheme: "ssh",
			wantHost:   "github.com",
			wantPath:   "alice/hw1.git",
		},
	}

	c := NewClient("", "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := c.Endpoint(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScheme, u.Scheme)
			assert.Equal(t, tt.wantHost, u.Hostname())
			assert.Equal(t, tt.wantPath, u.Path)
		})
	}
}

func TestClient_AuthFor(t *testing.T) {
	t.Run("HTTPSは認証なし", func(t *testing.T) {
		c := NewClient("/does/not/exist", "")
		auth, err := c.authFor("https://github.com/alice/hw1")
		require.NoError(t, err)
		assert.Nil(t, auth)
	})

	t.Run("鍵未設定のSSHは認証なし", func(t *testing.T) {
		c := NewClient("", "")
		auth, err := c.authFor("git@github.com:alice/hw1.git")
		require.NoError(t, err)
		assert.Nil(t, auth)
	})

	t.Run("存在しない鍵はエラー", func(t *testing.T) {
		c := NewClient(filepath.Join(t.TempDir(), "id_ed25519"), "")
		_, err := c.authFor("git@github.com:alice/hw1.git")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SSH key not found")
	})

	t.Run("不正な鍵ファイルはエラー", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "id_rsa")
		require.NoError(t, os.WriteFile(keyPath, []byte("not a key"), 0o600))

		c := NewClient(keyPath, "")
		_, err := c.authFor("git@github.com:alice/hw1.git")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load SSH key")
	})
}

func TestClient_HeadCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("main.go")
	require.NoError(t, err)

	when := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	hash, err := wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "Alice", Email: "alice@example.com", When: when},
	})
	require.NoError(t, err)

	info, err := NewClient("", "").HeadCommit(dir)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), info.Hash)
	assert.Equal(t, "Alice", info.Author)
	assert.Equal(t, "initial commit", info.Message)
	assert.True(t, when.Equal(info.Date))
}

func TestClient_HeadCommit_NotARepository(t *testing.T) {
	_, err := NewClient("", "").HeadCommit(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open repository")
}
