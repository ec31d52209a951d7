package main

import (
	"fmt"
	"io"

	"github.com/lixenwraith/scape/content"
	"github.com/lixenwraith/scape/host"
	"github.com/lixenwraith/scape/resource"
	"github.com/lixenwraith/scape/status"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

type checkFlags struct {
	strict bool
}

func newCheckCmd(flags *rootFlags) *cobra.Command {
	cf := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run resource discovery headless and report what resolved",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.OutOrStdout(), flags, cf)
		},
	}
	cmd.Flags().BoolVar(&cf.strict, "strict", false, "Fail when any requirement could not be loaded")
	return cmd
}

// runCheck drives a host without terminal or audio through the load phase
func runCheck(out io.Writer, flags *rootFlags, cf *checkFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logFile, log := setupLogging(cfg.Log, cfg.LogLevel(), flags.debug)
	diagnostics := closers{}
	if logFile != nil {
		diagnostics = append(diagnostics, logFile)
	}

	cat, err := loadCatalog(cfg, log)
	if err != nil {
		return multierr.Append(err, diagnostics.Close())
	}

	reg := status.NewRegistry()
	tree := resource.NewTree()
	rm := resource.NewManager(tree, cat, content.NewDefaultLoader(cfg.Content.Root, cfg.Content.MaxLineLength, log, reg), log)

	h, err := host.New(host.Options{Logger: log, Status: reg, Diagnostics: diagnostics}, rm)
	if err != nil {
		return multierr.Append(err, diagnostics.Close())
	}

	loadErr := h.LoadContent()
	report, _ := rm.Report()
	printReport(out, tree, report)

	err = multierr.Append(loadErr, h.Shutdown())
	if err == nil && cf.strict && len(report.Skipped) > 0 {
		err = fmt.Errorf("%d requirement(s) could not be loaded", len(report.Skipped))
	}
	return err
}

func printReport(out io.Writer, tree *resource.Tree, report resource.Report) {
	fmt.Fprintf(out, "loaded %d, linked %d, skipped %d\n", report.Loaded, report.Linked, len(report.Skipped))
	tree.Range(func(id resource.Identity, e *resource.Entry) bool {
		fmt.Fprintf(out, "  ok   %s <- %v\n", id, e.Dependents())
		return true
	})
	for _, f := range report.Skipped {
		fmt.Fprintf(out, "  miss %s <- %s: %v\n", f.Identity, f.Consumer, f.Err)
	}
}
