// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/projectx/internal/logger"
	"github.com/pdiddy/projectx/internal/stub"
	"github.com/pdiddy/projectx/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a stand-in summarization service",
	Long: `Serve answers POST /api/simplify_pdf with a fixed summary so the client
can be tried without the real service. The summary is built in, or read from
a YAML file given with --fixture. Request logs are written to stderr as JSON.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().String("fixture", "", "YAML file with the summary to answer with")
	serveCmd.Flags().Int64("max-upload", 0, "largest accepted upload in bytes (default 50 MiB)")

	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.fixture", serveCmd.Flags().Lookup("fixture"))
	_ = viper.BindPFlag("serve.max_upload_bytes", serveCmd.Flags().Lookup("max-upload"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := types.ServeConfig{
		Addr:            viper.GetString("serve.addr"),
		FixturePath:     viper.GetString("serve.fixture"),
		MaxUploadBytes:  viper.GetInt64("serve.max_upload_bytes"),
		ShutdownTimeout: viper.GetDuration("serve.shutdown_timeout"),
	}

	fixture := stub.DefaultFixture()
	if cfg.FixturePath != "" {
		f, err := stub.LoadFixture(cfg.FixturePath)
		if err != nil {
			return err
		}
		fixture = f
	}

	// Request lines are logged at info, which the CLI default would hide.
	level := viper.GetString("log.level")
	if level == logger.DefaultLevel {
		level = "info"
	}
	srvLog, err := logger.NewJSON(os.Stderr, level)
	if err != nil {
		return err
	}
	defer func() { _ = srvLog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := stub.New(fixture, cfg, srvLog)
	return srv.ListenAndServe(ctx, func(addr string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %q on http://%s\n", fixture.Title, addr)
		srvLog.Debug("fixture loaded", zap.Int("sections", fixture.Sections()))
	})
}
