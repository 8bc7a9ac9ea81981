package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/filmmatch/internal/config"
	"github.com/John-Robertt/filmmatch/internal/domain"
	"github.com/John-Robertt/filmmatch/internal/infra/fsx"
	"github.com/John-Robertt/filmmatch/internal/nfo"
)

func newUpdateCommand(g *globalFlags) *cobra.Command {
	var (
		lang    string
		nfoPath string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "根据 search 返回的 id 生成最终元数据，输出 Metadata JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := loadConfig(config.CLIArgs{}, g)
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
			md, err := a.Update(cmd.Context(), strings.TrimSpace(args[0]), lang)
			if err != nil {
				return err
			}
			if nfoPath != "" {
				if err := writeNFO(nfoPath, md); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "nfo: %s\n", nfoPath)
			}
			return writeJSON(cmd, md)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "en", "目标语言")
	cmd.Flags().StringVar(&nfoPath, "nfo", "", "同时把元数据写成 NFO 到该路径（已存在则覆盖）")
	return cmd
}

func writeNFO(path string, md domain.Metadata) error {
	b, err := nfo.Encode(md)
	if err != nil {
		return fmt.Errorf("生成 NFO 失败：%w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := fsx.WriteFileAtomicReplace(fsx.OS, filepath.Dir(abs), filepath.Base(abs), b); err != nil {
		return fmt.Errorf("写入 NFO 失败：%w", err)
	}
	return nil
}
