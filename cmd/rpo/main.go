// Package main provides the rpo CLI entry point.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/matsen/rpo/internal/citation"
	"github.com/matsen/rpo/internal/config"
	"github.com/matsen/rpo/internal/pdf"
	"github.com/matsen/rpo/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// verbose enables debug logging on stderr
	verbose bool
	// configPath overrides the config file location
	configPath string

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rpo",
	Short: "Personal research paper organiser",
	Long: `rpo keeps a personal library of research papers: citation text,
authors, keywords and a pointer to each paper's PDF, stored in one
SQLite file.

Papers are numbered 1..N in display order (newest first, then by
title); numbers shift when papers are added or removed.

All commands output JSON by default; use --human for tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/rpo/config.yml)")
	rootCmd.Version = Version
}

// newLogger returns a text logger on stderr, at debug level when verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolvedConfigPath returns the --config flag or the default location.
func resolvedConfigPath() string {
	if configPath != "" {
		return config.ExpandPath(configPath)
	}
	return config.Path()
}

// mustLoadConfig loads the effective configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Resolve(resolvedConfigPath())
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	logger.Debug("loaded config", "db_path", cfg.DBPath, "pdf_dir", cfg.PDFDir, "pdf_reader", cfg.PDFReader)
	return cfg
}

// mustOpenDatabase opens the library database, creating its directory if
// needed, exits on error. The caller is responsible for calling Close().
// exitWithError ends the process through os.Exit, which skips a deferred
// Close; every mutation has committed by then, so nothing is lost.
func mustOpenDatabase(cfg *config.Config) *storage.DB {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		exitWithError(ExitConfigError, "creating database directory: %v", err)
	}

	db, err := storage.OpenDB(cfg.DBPath, storage.WithLogger(logger))
	if err != nil {
		exitWithError(exitCodeFor(err), "opening database: %v", err)
	}
	return db
}

// mustParseID parses a paper id argument, exits on error.
func mustParseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		exitWithError(ExitError, "invalid paper id: %q", arg)
	}
	return id
}

// exitCodeFor maps an error to the exit code of its kind.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, citation.ErrInvalidCitation),
		errors.Is(err, storage.ErrDuplicateCitation):
		return ExitDataError
	case errors.Is(err, storage.ErrPaperNotFound),
		errors.Is(err, pdf.ErrNoPaper):
		return ExitNotFound
	case errors.Is(err, storage.ErrSchemaMigration),
		errors.Is(err, config.ErrUnknownKey):
		return ExitConfigError
	default:
		return ExitError
	}
}
