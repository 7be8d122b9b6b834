package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/dangidongi/internal/config"
	"github.com/mmynk/dangidongi/internal/ledger"
	"github.com/mmynk/dangidongi/internal/metrics"
	"github.com/mmynk/dangidongi/internal/service"
	"github.com/mmynk/dangidongi/internal/storage"
	"github.com/mmynk/dangidongi/internal/storage/jsonfile"
	"github.com/mmynk/dangidongi/internal/storage/sqlite"
	"github.com/mmynk/dangidongi/internal/tui"
	"github.com/mmynk/dangidongi/pkg/logging"
)

// app carries the state shared by every command of one invocation.
type app struct {
	// flags
	configPath  string
	dataPath    string
	backend     string
	epsilon     float64
	logLevel    string
	logFile     string
	metricsFile string

	cfg     config.Config
	store   storage.Store
	svc     *service.LedgerService
	logSink io.Closer
	started time.Time

	// discard is set when the user quit the TUI without saving.
	discard bool
}

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// execute runs the command line in args and releases everything it opened.
func execute(args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteC()
	if err != nil && a.svc != nil {
		slog.Warn("Command failed",
			"command", cmd.CommandPath(),
			"error", err,
			"duration_ms", time.Since(a.started).Milliseconds(),
		)
	}
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dangidongi",
		Short: "Dangi-Dongi - split shared expenses and settle up",
		Long: `Dangi-Dongi keeps a ledger of who paid what for a group and computes
the fewest transfers that square everyone up.

Run without arguments to start the interactive interface.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.finish(cmd.Context()); err != nil {
				return err
			}
			slog.Info("Command completed",
				"command", cmd.CommandPath(),
				"duration_ms", time.Since(a.started).Milliseconds(),
			)
			return nil
		},
		RunE: a.runTUI,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML config file")
	f.StringVar(&a.dataPath, "file", "", "ledger file (default ./data/ledger.json or ./data/ledger.db)")
	f.StringVar(&a.backend, "backend", config.BackendJSON, "storage backend: json or sqlite")
	f.Float64Var(&a.epsilon, "epsilon", config.DefaultEpsilon, "balances below this count as settled")
	f.StringVar(&a.logLevel, "log-level", "info", "debug, info, warn or error")
	f.StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")
	f.StringVar(&a.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after each command")

	root.AddCommand(
		a.userCmd(),
		a.payCmd(),
		a.unpayCmd(),
		a.txCmd(),
		a.settleCmd(),
		a.settleUpCmd(),
		a.exportCmd(),
		a.importCmd(),
		&cobra.Command{
			Use:   "tui",
			Short: "Start the interactive interface",
			Args:  cobra.NoArgs,
			RunE:  a.runTUI,
		},
	)
	return root
}

// setup resolves the configuration, configures logging and loads the ledger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.started = time.Now()
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.DataPath = a.dataPath
	}
	if flags.Changed("backend") {
		cfg.Backend = a.backend
	}
	if flags.Changed("epsilon") {
		cfg.Epsilon = a.epsilon
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.logFile
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	if err := a.setupLogging(isTUI(cmd)); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		return err
	}
	a.store = store
	slog.Debug("Storage initialized", "backend", cfg.Backend, "path", cfg.ResolvedDataPath())

	a.svc = service.NewLedgerService(store, metrics.New(), ledger.WithEpsilon(cfg.Epsilon))
	return a.svc.Load(cmd.Context())
}

func isTUI(cmd *cobra.Command) bool {
	return cmd.Name() == "tui" || !cmd.HasParent()
}

// setupLogging sends logs to the configured file. The TUI owns the terminal,
// so without a log file it runs silent.
func (a *app) setupLogging(tuiMode bool) error {
	level := logging.ParseLevel(a.cfg.LogLevel)
	switch {
	case a.cfg.LogFile != "":
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logSink = f
		logging.SetupWriter(f, level, true)
	case tuiMode:
		logging.Discard()
	default:
		logging.SetupWithLevel(level)
	}
	return nil
}

func openStore(cfg config.Config) (storage.Store, error) {
	path := cfg.ResolvedDataPath()
	switch strings.ToLower(cfg.Backend) {
	case config.BackendSQLite:
		return sqlite.New(path)
	default:
		return jsonfile.New(path)
	}
}

// finish saves pending changes and writes the metrics textfile.
func (a *app) finish(ctx context.Context) error {
	if a.svc == nil {
		return nil
	}
	if a.svc.Dirty() && !a.discard {
		if err := a.svc.Save(ctx); err != nil {
			return err
		}
	}
	if a.cfg.MetricsFile != "" {
		if err := a.svc.Metrics().WriteTextfile(a.cfg.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics", "path", a.cfg.MetricsFile, "error", err)
		}
	}
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.logSink != nil {
		errs = append(errs, a.logSink.Close())
		a.logSink = nil
	}
	return errors.Join(errs...)
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	err := tui.Run(a.svc)
	if errors.Is(err, tui.ErrAborted) {
		slog.Info("Quit without saving")
		a.discard = true
		return nil
	}
	return err
}
