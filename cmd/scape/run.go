package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gopxl/beep"
	"github.com/lixenwraith/scape/audio"
	"github.com/lixenwraith/scape/clock"
	"github.com/lixenwraith/scape/config"
	"github.com/lixenwraith/scape/content"
	"github.com/lixenwraith/scape/core"
	"github.com/lixenwraith/scape/host"
	"github.com/lixenwraith/scape/manifest"
	"github.com/lixenwraith/scape/registry"
	"github.com/lixenwraith/scape/resource"
	"github.com/lixenwraith/scape/status"
	"github.com/lixenwraith/scape/terminal"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the host in the terminal until escape or ctrl-c",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd.Context(), flags)
		},
	}
}

// closers closes in order, collecting every error
type closers []io.Closer

func (c closers) Close() error {
	var err error
	for _, cl := range c {
		if cl != nil {
			err = multierr.Append(err, cl.Close())
		}
	}
	return err
}

// presentationOf maps config onto the host presentation state
func presentationOf(cfg config.Config) host.Presentation {
	p := host.DefaultPresentation()
	p.CursorVisible = cfg.CursorVisible()
	p.FixedTimestep = cfg.Host.FixedTimestep
	p.ContentRoot = cfg.Content.Root
	return p
}

// loadCatalog applies the manifest on top of a copy of the compiled-in registrations
func loadCatalog(cfg config.Config, log zerolog.Logger) (*registry.Catalog, error) {
	cat := registry.Default().Clone()
	found, err := manifest.LoadFile(cfg.Manifest, manifest.DefaultTypes(), cat)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	log.Info().Str("manifest", cfg.Manifest).Bool("found", found).Int("consumers", cat.Len()).Msg("catalog ready")
	return cat, nil
}

func runHost(ctx context.Context, flags *rootFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logFile, log := setupLogging(cfg.Log, cfg.LogLevel(), flags.debug)
	reg := status.NewRegistry()
	diagnostics := closers{}

	if cfg.Metrics.Addr != "" {
		diagnostics = append(diagnostics, startMetrics(cfg.Metrics.Addr, cfg.Metrics.Namespace, reg, log))
	}
	if logFile != nil {
		diagnostics = append(diagnostics, logFile)
	}

	cat, err := loadCatalog(cfg, log)
	if err != nil {
		return multierr.Append(err, diagnostics.Close())
	}

	term, err := terminal.New(nil, log, reg)
	if err != nil {
		return multierr.Append(err, diagnostics.Close())
	}
	p := presentationOf(cfg)
	if err := term.Init(p.CursorVisible); err != nil {
		return multierr.Append(err, diagnostics.Close())
	}
	core.SetCrashHandler(func(any) { term.Fini() })
	defer core.SetCrashHandler(nil)

	// Terminal restores first, the log file closes last
	diagnostics = append(closers{term}, diagnostics...)

	tree := resource.NewTree()
	loader := content.NewDefaultLoader(p.ContentRoot, cfg.Content.MaxLineLength, log, reg)
	player := audio.NewPlayer(audio.Config{
		Enabled:    cfg.AudioEnabled(),
		SampleRate: beep.SampleRate(cfg.Audio.SampleRate),
	}, log, reg)

	h, err := host.New(host.Options{
		Presentation: &p,
		Input:        term,
		Renderer:     term,
		Logger:       log,
		Diagnostics:  diagnostics,
		Status:       reg,
	},
		resource.NewManager(tree, cat, loader, log),
		player,
		newScene(tree, term, player, log),
	)
	if err != nil {
		return multierr.Append(err, diagnostics.Close())
	}

	if err := h.Initialize(); err != nil {
		return multierr.Append(err, h.Shutdown())
	}
	if err := h.LoadContent(); err != nil {
		return multierr.Append(err, h.Shutdown())
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := clock.New(clock.Options{
		TickRate:      cfg.Host.TickRate,
		FixedTimestep: p.FixedTimestep,
		Logger:        log,
		Status:        reg,
	})
	runErr := sched.Run(ctx, h)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	return multierr.Append(runErr, h.Shutdown())
}
