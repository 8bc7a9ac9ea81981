package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/filmmatch/internal/app/run"
	"github.com/John-Robertt/filmmatch/internal/config"
	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/infra/fsx"
)

func newRunCommand(g *globalFlags) *cobra.Command {
	var (
		apply bool
		lang  string
	)
	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "批量处理目录下的视频（默认 dry-run）",
		Long: `扫描 path 下的视频文件，逐个执行 search + update。

未给 path 时从 ./filmmatch.toml 读取 path。
--apply 时在视频旁写入同名 .nfo（不覆盖已有文件），并写入 <path>/.filmmatch/report.json。
已有同名 .nfo 的视频会被跳过。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli := config.CLIArgs{RequirePath: true}
			if len(args) == 1 {
				cli.Path = args[0]
			}
			if cmd.Flags().Changed("apply") {
				cli.Apply, cli.ApplySet = apply, true
			}

			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			eff, err := loadConfig(cli, g)
			if err != nil {
				cwd, _ := os.Getwd()
				emitReport(stdout, stderr, reportForError(cwd, cli, config.Code(err), err))
				return &exitError{code: 1}
			}

			log, closer, err := newLogger(eff, stderr)
			if err != nil {
				return err
			}
			defer closer.Close()

			a, err := newAgent(eff, log, !eff.Apply)
			if err != nil {
				emitReport(stdout, stderr, reportForError(eff.Path, cli, domain.ErrCodeConfigInvalid, err))
				return &exitError{code: 1}
			}

			progressW, interactive := pickProgressWriter(stdout, stderr)
			opts := run.Options{Lang: lang, Logger: log, Durations: durationSource(eff)}
			if interactive {
				ui := newProgressUI(progressW)
				defer ui.Stop()
				opts.Observer = ui
			}

			rr := run.Execute(cmd.Context(), eff, a, opts)

			// apply：必须写入 <path>/.filmmatch/report.json；dry-run 禁止落盘。
			if eff.Apply {
				p, err := run.WriteReport(fsx.OS, eff.Path, rr)
				if err != nil {
					fmt.Fprintf(stderr, "写入 report.json 失败：%v\n", err)
					emitReport(stdout, stderr, rr)
					return &exitError{code: 1}
				}
				if interactive {
					fmt.Fprintf(progressW, "report: %s\n", p)
				}
			}

			emitReport(stdout, stderr, rr)
			if rr.Summary.Failed == 0 && rr.Summary.Unmatched == 0 {
				return nil
			}
			return &exitError{code: 1}
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "写入 NFO 与报告（默认 dry-run）；支持 --apply=false 覆盖配置中的 apply=true")
	cmd.Flags().StringVar(&lang, "lang", "en", "目标语言")
	return cmd
}

func reportForError(path string, cli config.CLIArgs, code string, err error) domain.RunReport {
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	now := time.Now().UTC()
	rr := domain.RunReport{
		Path:       path,
		DryRun:     !(cli.ApplySet && cli.Apply),
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

