// Package main provides the culler CLI: a terminal swipe-to-delete reviewer
// for photo and video folders.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mmcdole/culler/internal/adapter"
	"github.com/mmcdole/culler/internal/adapter/library"
	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/review"
	"github.com/mmcdole/culler/internal/service"
	"github.com/mmcdole/culler/internal/store"
	"github.com/mmcdole/culler/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "culler",
	Short: "Swipe through unreviewed photos and videos, keep or delete",
	Long: `culler shows your photos or videos one at a time in random order.
Mark each one keep or delete; reviewed items never come back, and deleted
items are only removed from disk when you empty the trash.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReview,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ~/.config/culler/config.yaml)")
	flags.StringSlice("library", nil, "library directories to scan (repeatable)")
	flags.String("db", "", "seen-set database path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().String("kind", "", "tab to open first (photo or video)")
	rootCmd.Flags().Int("preload", 0, "items rendered ahead of the current one")
	rootCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")

	bindings := map[string]string{
		"library.paths":        "library",
		"storage.path":         "db",
		"logging.level":        "log-level",
		"review.default_kind":  "kind",
		"review.preload_count": "preload",
		"metrics.addr":         "metrics-addr",
	}
	for key, flag := range bindings {
		f := flags.Lookup(flag)
		if f == nil {
			f = rootCmd.Flags().Lookup(flag)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(newStatusCommand(), newResetCommand(), newConfigCommand())
}

// app bundles the collaborators every command needs
type app struct {
	cfg    *adapter.Config
	logger *slog.Logger
	store  *store.SeenStore
	media  *library.Store

	closers []io.Closer
}

func newApp() (*app, error) {
	cfg, err := adapter.LoadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, logFile, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, logFile = adapter.NullLogger(), nil
	}
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}
	if logFile != nil {
		a.closers = append(a.closers, logFile)
	}

	seen, err := store.NewSeenStore(cfg.Storage.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open seen store: %w", err)
	}
	a.store = seen
	a.closers = append(a.closers, seen)

	a.media = library.New(library.Options{
		Roots:        cfg.Library.Paths,
		TrashDir:     cfg.Library.TrashDir,
		PreviewWidth: cfg.Review.PreviewWidth,
		FinalWidth:   cfg.Review.FinalWidth,
		FFmpeg:       cfg.Library.FFmpeg,
		Logger:       logger,
	})

	logger.Info("starting culler", "version", Version, "roots", a.media.Roots())
	return a, nil
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

func runReview(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("culler needs an interactive terminal (try 'culler status')")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	kind, err := domain.ParseKind(a.cfg.Review.DefaultKind)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	metrics := review.NewMetrics(registry)

	session := service.NewSession(a.media, a.store, service.SessionOptions{
		PreloadCount: a.cfg.Review.PreloadCount,
		Metrics:      metrics,
		Access:       func() error { return service.CheckAccess(a.media.Roots()) },
		Player:       adapter.NewLauncher(a.cfg.Player, a.logger),
		Logger:       a.logger,
	})

	runCtx, cancel := context.WithCancel(ctx)
	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return session.Run(gCtx)
	})
	if addr := a.cfg.Metrics.Addr; addr != "" {
		server := adapter.NewMetricsServer(addr, registry, a.logger)
		g.Go(func() error {
			return server.Start(gCtx)
		})
	}

	p := tea.NewProgram(
		tui.NewModel(session, kind),
		tea.WithAltScreen(),
		tea.WithContext(gCtx),
	)

	a.logger.Info("starting TUI", "session", session.ID, "kind", kind.String())
	_, runErr := p.Run()

	cancel()
	if err := exitError(runErr, g.Wait()); err != nil && ctx.Err() == nil {
		a.logger.Error("review stopped", "error", err)
		if err == runErr {
			return fmt.Errorf("TUI error: %w", err)
		}
		return err
	}

	a.logger.Info("shutting down")
	return nil
}

// exitError picks the error to report once the TUI and the background
// services have stopped. A background failure cancels the TUI, so it is the
// cause whenever the program was killed.
func exitError(runErr, bgErr error) error {
	if bgErr != nil && (runErr == nil || errors.Is(runErr, tea.ErrProgramKilled)) {
		return bgErr
	}
	return runErr
}
