package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/filmmatch/internal/config"
	"github.com/John-Robertt/filmmatch/internal/logging"
)

type globalFlags struct {
	logLevel string
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "filmmatch",
		Short:         "按文件名约定匹配影片站点与 IAFD，生成元数据与 NFO",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "日志级别：debug|info|warn|error（覆盖配置文件）")

	rootCmd.AddCommand(newSearchCommand(g))
	rootCmd.AddCommand(newUpdateCommand(g))
	rootCmd.AddCommand(newRunCommand(g))
	return rootCmd
}

// loadConfig 以当前目录为基准读取配置并合并 CLI 参数。
func loadConfig(cli config.CLIArgs, g *globalFlags) (config.EffectiveConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return config.EffectiveConfig{}, err
	}
	cli.LogLevel = g.logLevel
	return config.LoadEffective(cwd, cli)
}

// newLogger 构造写到 stderr（以及可选日志文件）的 logger。
func newLogger(eff config.EffectiveConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level:  eff.Log.Level,
		Format: eff.Log.Format,
		File:   eff.Log.File,
		Stderr: stderr,
	})
}
