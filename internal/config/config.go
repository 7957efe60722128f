// Package config binds the CLI's persistent flags to viper: cobra owns
// flag parsing, viper owns the merged view over flags, environment, and an
// optional config file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix viper listens on, e.g.
// LOCALTHICKNESS_LOG_LEVEL.
const EnvPrefix = "LOCALTHICKNESS"

// BindPersistentFlags registers the root command's persistent flags and
// binds log-level and workers into viper under the same key; the config
// flag is written to cfgFile only.
func BindPersistentFlags(root *cobra.Command, cfgFile *string) {
	root.PersistentFlags().StringVar(cfgFile, "config", "", "config file (default: ./localthickness.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().IntP("workers", "w", 0, "parallel worker count (default: number of CPUs)")

	for _, key := range []string{"log-level", "workers"} {
		if err := viper.BindPFlag(key, root.PersistentFlags().Lookup(key)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", key, err))
		}
	}
}

// ReadConfigFile loads cfgFile (or ./localthickness.yaml) into viper and
// layers in LOCALTHICKNESS_-prefixed environment variables. A missing
// config file is not an error: flags and environment still apply.
func ReadConfigFile(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("localthickness")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// NewLogger builds a structured text logger at the level named by
// viper key "log-level", writing to stderr.
func NewLogger() *slog.Logger {
	level := parseLevel(viper.GetString("log-level"))
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Workers resolves the configured worker count (0 means hardware
// concurrency, left to worker.Count to interpret).
func Workers() int {
	return viper.GetInt("workers")
}
