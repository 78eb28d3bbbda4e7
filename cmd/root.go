// Package cmd is the prodlog command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rezmoss/prodlog/internal/config"
	"github.com/rezmoss/prodlog/internal/session"
	"github.com/rezmoss/prodlog/internal/store"
)

// annotationTUI marks commands that own the terminal; their logs go to the
// configured log file instead of stderr.
const annotationTUI = "tui"

var (
	cfgFile     string
	verbose     bool
	driver      string
	spreadsheet string
	sheet       string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "prodlog",
	Short: "Daily production ledger with year-to-date totals and a downtime timer",
	Long: `prodlog records one row per production day in a shared ledger
(an .xlsx workbook by default), keeping running week, month and year
totals, cleaning time and the issues that caused downtime.

Run "prodlog session" to time downtime and submit the day interactively,
or "prodlog submit" to record a day from scripts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		applyStoreFlags(cmd)

		logger, err = buildLogger(cmd)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.prodlog.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "ledger driver: "+fmt.Sprint(store.Drivers))
	rootCmd.PersistentFlags().StringVar(&spreadsheet, "spreadsheet", "", "ledger file, DSN or URL")
	rootCmd.PersistentFlags().StringVar(&sheet, "sheet", "", "sheet inside the ledger")
}

func applyStoreFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Store.Driver = driver
	}
	if flags.Changed("spreadsheet") {
		cfg.Store.Spreadsheet = spreadsheet
	}
	if flags.Changed("sheet") {
		cfg.Store.Sheet = sheet
	}
}

func buildLogger(cmd *cobra.Command) (*zap.Logger, error) {
	_, tui := cmd.Annotations[annotationTUI]
	if tui && cfg.LogFile == "" {
		return zap.NewNop(), nil
	}

	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		logCfg.Level.SetLevel(zapcore.DebugLevel)
	}
	if tui {
		logCfg.OutputPaths = []string{cfg.LogFile}
		logCfg.ErrorOutputPaths = []string{cfg.LogFile}
	} else if cfg.LogFile != "" {
		logCfg.OutputPaths = append(logCfg.OutputPaths, cfg.LogFile)
	}
	return logCfg.Build()
}

// openService opens the configured ledger. The returned func closes it.
func openService(ctx context.Context) (*session.Service, func(), error) {
	opts := store.Options{
		Driver:      cfg.Store.Driver,
		Spreadsheet: cfg.Store.Spreadsheet,
		Sheet:       cfg.Store.Sheet,
	}
	src, err := store.Open(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}
	logger.Debug("ledger opened", zap.String("store", opts.String()))

	svc := session.NewService(src, logger, session.WithDateLayout(cfg.DateLayout))
	closer := func() {
		if err := src.Close(); err != nil {
			logger.Warn("closing ledger", zap.Error(err))
		}
	}
	return svc, closer, nil
}
