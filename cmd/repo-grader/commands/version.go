package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/urfave/cli/v3"
)

// Version はビルド時に -ldflags "-X" で上書きされる
var Version = "dev"

// VersionAction はバージョンを表示するコマンドのアクション
func VersionAction(ctx context.Context, cmd *cli.Command) error {
	fmt.Printf("repo-grader %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}
