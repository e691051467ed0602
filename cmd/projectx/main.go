// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the projectx CLI. It uploads PDF
// documents to a summarization service, prints the simplified summary,
// keeps an optional local archive of results, and can serve a stand-in
// service for offline use.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/projectx/internal/logger"
	"github.com/pdiddy/projectx/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultEndpoint  = "http://localhost:8000"
	defaultTimeout   = 120 * time.Second
	defaultUserAgent = "projectx/0.1"
	secretsDir       = ".secrets/"
)

// loadedSecrets holds tokens loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// log is the process logger, built from log.level before any command runs.
var log = zap.NewNop()

// rootCmd is the base command for the projectx CLI.
var rootCmd = &cobra.Command{
	Use:   "projectx",
	Short: "Turn research PDFs into short, readable summaries",
	Long: `projectx uploads a PDF to a summarization service and prints the
result: a title, a handful of keywords, one plain-language line per keyword,
and three supporting details behind each keyword.

Documents can be local files, URLs, arXiv IDs or DOIs. Summaries can be saved
to a local archive and browsed later with the history command. The serve
command runs a stand-in service for trying things out without the real one.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(os.Stderr, viper.GetString("log.level"))
		if err != nil {
			return err
		}
		log = l

		s, err := secrets.Load(secretsDir, log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if keys := s.Keys(); len(keys) > 0 {
			log.Info("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./projectx.yaml or ~/.config/projectx/projectx.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default warn)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetDefault("endpoint", defaultEndpoint)
	viper.SetDefault("timeout", defaultTimeout)
	viper.SetDefault("user_agent", defaultUserAgent)
	viper.SetDefault("log.level", logger.DefaultLevel)
	viper.SetDefault("serve.addr", ":8000")
}

func initConfig() {
	// .env values become ordinary environment variables for viper to see.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("projectx")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "projectx"))
		}
	}

	viper.SetEnvPrefix("PROJECTX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
