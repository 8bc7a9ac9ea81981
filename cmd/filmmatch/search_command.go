package main

import (
	"github.com/spf13/cobra"

	"github.com/John-Robertt/filmmatch/internal/agent"
	"github.com/John-Robertt/filmmatch/internal/config"
)

func newSearchCommand(g *globalFlags) *cobra.Command {
	var (
		lang     string
		manual   bool
		duration int
	)
	cmd := &cobra.Command{
		Use:   "search <file>",
		Short: "解析文件名并搜索匹配的影片，输出 SearchResult JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := loadConfig(config.CLIArgs{Path: args[0]}, g)
			if err != nil {
				return err
			}
			log, closer, err := newLogger(eff, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			a, err := newAgent(eff, log, false)
			if err != nil {
				return err
			}
			res, err := a.Search(cmd.Context(), agent.Request{
				Path:     eff.Path,
				Lang:     lang,
				Manual:   manual,
				Duration: duration,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", "目标语言")
	cmd.Flags().BoolVar(&manual, "manual", false, "手动搜索：放宽标题阈值并忽略年份")
	cmd.Flags().IntVar(&duration, "duration", 0, "视频时长（分钟），用于时长比较")
	return cmd
}
