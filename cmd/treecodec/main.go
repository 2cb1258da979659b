package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reoring/treecodec/i18n"
	"github.com/reoring/treecodec/internal/config"
)

// Version is set at build time.
var Version = "dev"

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("reported")

type app struct {
	cfgPath  string
	logLevel string
	noColor  bool

	cfg *config.Config
	log *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:     "treecodec",
		Short:   "Convert, validate and deduplicate tree documents",
		Version: Version,
		Long: `treecodec converts documents between JSON, YAML, TOML and MessagePack
while keeping key order, validates documents against JSON Schema and
deduplicates generated schema documents.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = a.log.Sync() },
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default ./treecodec.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newConvertCmd(a), newSchemaCmd(a), newValidateCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	i18n.SetLanguage(cfg.Language)
	if a.noColor || !cfg.Color {
		color.NoColor = true
	}
	a.log.Debug("config loaded",
		zap.String("command", cmd.Name()),
		zap.String("language", cfg.Language),
		zap.String("default_format", cfg.DefaultFormat))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
