package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/scape/config"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "scape",
		Short:         "Frame-driven terminal host with declarative resource loading",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (.toml, .yaml); defaults when empty")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging to the log file")

	root.AddCommand(newRunCmd(flags), newCheckCmd(flags), newListCmd(flags))
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runHost(cmd.Context(), flags)
	}
	return root
}

// loadConfig returns defaults when no path is given
func loadConfig(flags *rootFlags) (config.Config, error) {
	if flags.configPath == "" {
		return config.Defaults(), nil
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scape: %v\n", err)
		os.Exit(1)
	}
}
