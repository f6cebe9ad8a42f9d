// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lutetab CLI, which converts German
// lute tablature MEI files into French and Italian tablature and maintains
// the surrounding E-LAUTE edition files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/lutetab/internal/logging"
	"github.com/pdiddy/lutetab/internal/secrets"
	"github.com/pdiddy/lutetab/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "lutetab/0.1"

var (
	// logger is built from the log settings before any subcommand runs.
	logger = zap.NewNop()
	// loadedSecrets holds credentials loaded from the secrets directory.
	loadedSecrets *secrets.Store
)

// rootCmd is the base command for the lutetab CLI.
var rootCmd = &cobra.Command{
	Use:   "lutetab",
	Short: "Convert German lute tablature MEI files to French and Italian tablature",
	Long: `lutetab converts MEI encodings of German lute tablature (*GLT.mei) into
French (FLT) and Italian (ILT) lute tablature. The convert command processes a
whole source tree; transform converts a single file.

Maintenance commands fix known title typos (fix-typo), describe recordings for
the research data repository (upload), and summarize past conversion runs
(report).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		}
		if viper.GetBool("verbose") {
			cfg.Level = "debug"
		}
		l, err := logging.New(cfg)
		if err != nil {
			return err
		}
		logger = l

		if used := viper.ConfigFileUsed(); used != "" {
			logger.Info("using config file", zap.String("path", used))
		}

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lutetab.yaml or ~/.config/lutetab/lutetab.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of secret files")

	viper.SetDefault("log.level", "info")
	bindFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	bindFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	bindFlag("secrets_dir", rootCmd.PersistentFlags().Lookup("secrets-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lutetab")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lutetab"))
		}
	}

	viper.SetEnvPrefix("LUTETAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// bindFlag ties a config key to a flag so the flag overrides the config
// file and environment.
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
