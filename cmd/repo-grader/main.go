package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinford/repo-grader/cmd/repo-grader/commands"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "repo-grader",
		Usage: "提出されたリポジトリのファイル行数を計測して採点するツール",
		Commands: []*cli.Command{
			{
				Name:  "analyze",
				Usage: "入力CSVのリポジトリをすべて採点",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "入力CSVファイル（URL列が必須）",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "結果CSVファイル（省略時は <出力ディレクトリ>/<入力名>_graded.csv）",
					},
					&cli.StringFlag{
						Name:  "export",
						Usage: "結果をJSONでも出力するファイルパス",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "デバッグログを出力",
					},
				},
				Action: commands.AnalyzeAction,
			},
			{
				Name:  "inspect",
				Usage: "ローカルのディレクトリをファイル単位で計測",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "環境変数ファイルパス",
						Value: ".env",
					},
					&cli.StringFlag{
						Name:     "path",
						Usage:    "計測するディレクトリ",
						Required: true,
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "デバッグログを出力",
					},
				},
				Action: commands.InspectAction,
			},
			{
				Name:   "version",
				Usage:  "バージョンを表示",
				Action: commands.VersionAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
