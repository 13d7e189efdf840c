package main

import (
	"fmt"
	"strings"

	"github.com/matsen/rpo/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  rpo config                          # Show the effective config
  rpo config pdf_dir                  # Get specific value
  rpo config pdf_dir ~/papers         # Set value
  rpo config pdf_reader zathura       # Set PDF reader

Keys:
  db_path     Library database file (default ~/.local/share/rpo/papers.db)
  pdf_dir     Directory relative PDF paths resolve against
  pdf_reader  PDF reader (system, skim, preview, zathura, evince, okular)

RPO_DB_PATH, RPO_PDF_DIR and RPO_PDF_READER override the file, also
when set in a .env file in the working directory.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	// No args: show the effective config
	if len(args) == 0 {
		cfg := mustLoadConfig()
		if humanOutput {
			for _, key := range config.Keys {
				value, _ := cfg.Get(key)
				fmt.Printf("%-11s %s\n", key+":", value)
			}
		} else {
			outputJSON(configMap(cfg))
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		cfg := mustLoadConfig()
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(exitCodeFor(err), "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value in the file only, without env overrides or defaults
	path := resolvedConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Set(key, args[1]); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}
	logger.Debug("saved config", "path", path, "key", key)

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, args[1])
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: args[1]})
	}
	return nil
}

// configMap returns every key with its value.
func configMap(cfg *config.Config) map[string]string {
	m := make(map[string]string, len(config.Keys))
	for _, key := range config.Keys {
		m[key], _ = cfg.Get(key)
	}
	return m
}

// normalizeKey accepts dashed key spellings (pdf-dir for pdf_dir).
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}
