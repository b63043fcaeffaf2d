package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"rom-checker/catalog"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	StorageCache    = "cache"
	StorageDatabase = "database"
)

// Config holds all configuration for the application.
// Values are loaded by Viper from a .env file and/or environment variables.
type Config struct {
	Storage              string   `mapstructure:"ROMCHECK_STORAGE"`
	CachePath            string   `mapstructure:"ROMCHECK_CACHE_PATH"`
	DatabasePath         string   `mapstructure:"ROMCHECK_DATABASE_PATH"`
	ExcludeExtensions    []string `mapstructure:"-"` // from ROMCHECK_EXCLUDE_EXTENSIONS, comma separated
	HashMethod           string   `mapstructure:"ROMCHECK_HASH_METHOD"`
	FirstMatch           bool     `mapstructure:"-"`
	IgnorePartialOnExact bool     `mapstructure:"-"`
	LogFile              string   `mapstructure:"ROMCHECK_LOG_FILE"`
	LogLevel             string   `mapstructure:"ROMCHECK_LOG_LEVEL"`
}

var envKeys = []string{
	"ROMCHECK_STORAGE",
	"ROMCHECK_CACHE_PATH",
	"ROMCHECK_DATABASE_PATH",
	"ROMCHECK_EXCLUDE_EXTENSIONS",
	"ROMCHECK_HASH_METHOD",
	"ROMCHECK_FIRST_MATCH",
	"ROMCHECK_IGNORE_PARTIAL_ON_EXACT",
	"ROMCHECK_LOG_FILE",
	"ROMCHECK_LOG_LEVEL",
}

// LoadConfig reads configuration from the .env file in path and the environment.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	vipErr := viper.ReadInConfig()
	if _, ok := vipErr.(viper.ConfigFileNotFoundError); ok {
		slog.Debug("Config file (.env) not found, relying on environment variables.")
	} else if vipErr != nil {
		return Config{}, fmt.Errorf("fatal error config file: %w", vipErr)
	}

	viper.AutomaticEnv()
	for _, key := range envKeys {
		if err := viper.BindEnv(key); err != nil {
			slog.Warn("Unable to bind env var", "key", key, "error", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct, %w", err)
	}

	processConfigDefaults(&config)
	if err := validateConfig(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// processConfigDefaults fills in every value the environment left unset.
func processConfigDefaults(config *Config) {
	if config.Storage == "" {
		config.Storage = StorageCache
	}
	if config.CachePath == "" {
		config.CachePath = ".rcr.cache"
	}
	if config.DatabasePath == "" {
		config.DatabasePath = ".rcr.db"
	}
	if config.HashMethod == "" {
		config.HashMethod = string(catalog.HashSHA1)
	}
	if config.LogFile == "" {
		config.LogFile = "romcheck.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	config.ExcludeExtensions = SplitList(viper.GetString("ROMCHECK_EXCLUDE_EXTENSIONS"))
	if len(config.ExcludeExtensions) == 0 {
		config.ExcludeExtensions = []string{"m3u", "dat"}
	}

	config.FirstMatch = boolSetting("ROMCHECK_FIRST_MATCH", true)
	config.IgnorePartialOnExact = boolSetting("ROMCHECK_IGNORE_PARTIAL_ON_EXACT", true)
}

// boolSetting parses the raw string so an unset key and an explicit false differ.
func boolSetting(key string, def bool) bool {
	raw := viper.GetString(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Invalid boolean value, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return v
}

// validateConfig rejects unknown settings and makes sure the directories holding
// the cache, database and log files exist.
func validateConfig(config *Config) error {
	config.Storage = strings.ToLower(strings.TrimSpace(config.Storage))
	if config.Storage != StorageCache && config.Storage != StorageDatabase {
		return fmt.Errorf("ROMCHECK_STORAGE must be %q or %q, got %q", StorageCache, StorageDatabase, config.Storage)
	}

	ht, err := catalog.ParseHashType(config.HashMethod)
	if err != nil {
		return fmt.Errorf("ROMCHECK_HASH_METHOD: %w", err)
	}
	config.HashMethod = string(ht)

	if _, err := zapcore.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("ROMCHECK_LOG_LEVEL: %w", err)
	}

	for _, file := range []string{config.CachePath, config.DatabasePath, config.LogFile} {
		dir := filepath.Dir(file)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			slog.Info("Directory does not exist, creating it", "path", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", dir, err)
			}
		} else if err != nil {
			return fmt.Errorf("check directory %s: %w", dir, err)
		}
	}
	return nil
}

// HashType returns the validated hash method.
func (c Config) HashType() catalog.HashType {
	return catalog.HashType(c.HashMethod)
}

// SplitList splits a comma separated setting, dropping blanks and leading dots.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), ".")
		if part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
