package main

import (
	"fmt"

	"github.com/lixenwraith/scape/content"
	"github.com/spf13/cobra"
)

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List content files under the content root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logFile, log := setupLogging(cfg.Log, cfg.LogLevel(), flags.debug)
			if logFile != nil {
				defer logFile.Close()
			}

			names, err := content.DiscoverFiles(cfg.Content.Root, log, content.TextExt, content.SoundExt, content.TableExt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
