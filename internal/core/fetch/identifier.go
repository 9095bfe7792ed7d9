package fetch

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	giturls "github.com/whilp/git-urls"
)

// DefaultHost は識別子として受け付けるホスティングサービスのデフォルトホスト
const DefaultHost = "github.com"

// ErrInvalidIdentifier はリポジトリ識別子が受け付け可能な形式でない場合のエラー
var ErrInvalidIdentifier = errors.New("invalid repository identifier")

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Identifier は検証済みのリポジトリ識別子を表す
type Identifier struct {
	Raw   string
	Host  string
	Owner string
	Name  string
	SSH   bool
}

// String は元の識別子文字列を返す
func (id Identifier) String() string {
	return id.Raw
}

// CloneURL はクローンに使用する URL を返す（前後の空白は除去済み）
func (id Identifier) CloneURL() string {
	return strings.TrimSpace(id.Raw)
}

// DirName はローカルディレクトリ名として安全なリポジトリ名を返す
func (id Identifier) DirName() string {
	name := unsafeNameChars.ReplaceAllString(id.Name, "_")
	if name == "" || name == "." || name == ".." {
		return "repo"
	}
	return name
}

// identifierPatterns は host 向けの正規の URL 文法を組み立てる
func identifierPatterns(host string) []*regexp.Regexp {
	h := regexp.QuoteMeta(host)
	return []*regexp.Regexp{
		regexp.MustCompile(`^https?://` + h + `/[\w\-]+/[\w\-\.]+/?$`),
		regexp.MustCompile(`^https?://` + h + `/[\w\-]+/[\w\-\.]+\.git$`),
		regexp.MustCompile(`^git@` + h + `:[\w\-]+/[\w\-\.]+\.git$`),
	}
}

// ValidIdentifier は raw が host の正規の URL 形式に一致するかを判定する
func ValidIdentifier(raw, host string) bool {
	trimmed := strings.TrimSpace(raw)
	for _, p := range identifierPatterns(host) {
		if p.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// ParseIdentifier は識別子を検証し、ホスト・オーナー・リポジトリ名に分解する
// 例: https://github.com/user/repo.git -> github.com, user, repo
// 例: git@github.com:user/repo.git -> github.com, user, repo
func ParseIdentifier(raw, host string) (Identifier, error) {
	if host == "" {
		host = DefaultHost
	}
	if !ValidIdentifier(raw, host) {
		return Identifier{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}

	trimmed := strings.TrimSpace(raw)
	u, err := giturls.Parse(trimmed)
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: failed to parse git URL: %v", ErrInvalidIdentifier, err)
	}

	hostname := u.Hostname()
	if hostname == "" {
		hostname = u.Host
	}

	p := strings.Trim(u.Path, "/")
	p = strings.TrimSuffix(p, ".git")
	owner, name := path.Split(p)
	owner = strings.TrimSuffix(owner, "/")
	if owner == "" || name == "" {
		return Identifier{}, fmt.Errorf("%w: missing owner or name in %q", ErrInvalidIdentifier, raw)
	}

	return Identifier{
		Raw:   raw,
		Host:  hostname,
		Owner: owner,
		Name:  name,
		SSH:   u.Scheme == "ssh",
	}, nil
}
