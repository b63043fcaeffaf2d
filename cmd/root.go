package cmd

import (
	"fmt"
	"os"
	"strings"

	"rom-checker/config"
	"rom-checker/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configDir     string
	debugOutput   bool
	storageFlag   string
	cachePathFlag string
	dbPathFlag    string
	excludeFlag   []string

	cfg    config.Config
	runLog = zap.NewNop().Sugar()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "romcheck",
	Short: "Verify ROM collections against DAT catalogs",
	Long: `romcheck imports DAT catalogs into a cache file or a SQLite database,
hashes the files of a directory, matches them against the catalog and can
rename misnamed files to their catalog names.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config", ".", "Directory holding the .env configuration file")
	flags.BoolVar(&debugOutput, "debug", false, "Write debug output to stderr")
	flags.StringVar(&storageFlag, "storage", "", "Storage backend: cache or database")
	flags.StringVar(&cachePathFlag, "cache", "", "Path to the cache file")
	flags.StringVar(&dbPathFlag, "database", "", "Path to the SQLite database")
	flags.StringSliceVar(&excludeFlag, "exclude-extensions", nil, "File extensions to skip, comma separated")
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Log.Errorw("Command failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	logger.Sync()
}

// setup loads the configuration, applies flag overrides and starts the logger.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.LoadConfig(configDir)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, &loaded)
	if loaded.Storage != config.StorageCache && loaded.Storage != config.StorageDatabase {
		return fmt.Errorf("--storage must be %q or %q, got %q", config.StorageCache, config.StorageDatabase, loaded.Storage)
	}
	cfg = loaded

	if err := logger.InitLogger(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Debug: debugOutput}); err != nil {
		return err
	}
	runLog = logger.Log.With("run_id", uuid.NewString(), "command", cmd.CommandPath())
	runLog.Debugw("Configuration loaded",
		"storage", cfg.Storage,
		"cache", cfg.CachePath,
		"database", cfg.DatabasePath,
		"exclude", cfg.ExcludeExtensions,
	)
	return nil
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("storage") {
		c.Storage = strings.ToLower(strings.TrimSpace(storageFlag))
	}
	if flags.Changed("cache") {
		c.CachePath = cachePathFlag
	}
	if flags.Changed("database") {
		c.DatabasePath = dbPathFlag
	}
	if flags.Changed("exclude-extensions") {
		c.ExcludeExtensions = config.SplitList(strings.Join(excludeFlag, ","))
	}
}
