// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/projectx/internal/history"
	"github.com/pdiddy/projectx/internal/render"
	"github.com/pdiddy/projectx/internal/session"
	"github.com/pdiddy/projectx/internal/source"
	"github.com/pdiddy/projectx/internal/upload"
	"github.com/pdiddy/projectx/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file|url|arxiv-id|doi>",
	Short: "Upload a PDF and print its simplified summary",
	Long: `Summarize loads a PDF (local path, URL, arXiv ID or DOI), uploads it to
the summarization service and prints the result.

Text output lists each keyword with its one-line gist. With --interactive,
type a keyword number to open its details (again to close), or q to quit.
Use --format json or yaml for machine-readable output and --save to keep the
summary in the local archive.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().String("endpoint", "", "summarization service base URL (default http://localhost:8000)")
	summarizeCmd.Flags().Duration("timeout", 0, "upload timeout (default 2m)")
	summarizeCmd.Flags().String("format", string(types.OutputText), "output format: text, json, or yaml")
	summarizeCmd.Flags().Bool("lenient", false, "accept summaries whose keywords, lines and details do not line up")
	summarizeCmd.Flags().BoolP("interactive", "i", false, "browse keyword details after loading")
	summarizeCmd.Flags().Bool("save", false, "save the summary to the local archive")
	summarizeCmd.Flags().Bool("no-progress", false, "hide the upload spinner")
	summarizeCmd.Flags().Bool("no-color", false, "disable colored output")
	summarizeCmd.Flags().Int("panel", 0, "also print the details of keyword N (text format)")

	_ = viper.BindPFlag("endpoint", summarizeCmd.Flags().Lookup("endpoint"))
	_ = viper.BindPFlag("timeout", summarizeCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("lenient", summarizeCmd.Flags().Lookup("lenient"))

	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	format := types.OutputFormat(mustString(cmd, "format"))
	if !format.Valid() {
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
	interactive, _ := cmd.Flags().GetBool("interactive")
	save, _ := cmd.Flags().GetBool("save")
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	panel, _ := cmd.Flags().GetInt("panel")
	useColor := colorEnabled(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpCfg := types.HTTPConfig{
		Timeout:   viper.GetDuration("timeout"),
		UserAgent: viper.GetString("user_agent"),
	}
	resolver := source.NewResolver(nil, types.SourceConfig{HTTPConfig: httpCfg}, log)
	doc, err := resolver.Resolve(ctx, args[0])
	if err != nil {
		return err
	}

	uploader := upload.New(uploadConfig(httpCfg), upload.WithLogger(log))
	sess := session.New(uploader, log)

	stopSpinner := func() {}
	if !noProgress {
		stopSpinner = spin(getSpinner(fmt.Sprintf(" Summarizing %s...", doc.Name)))
	}
	err = sess.Submit(ctx, doc.Data)
	stopSpinner()
	if err != nil {
		render.New(os.Stderr, useColor).Error(sess.Message())
		log.Debug("upload failed", zap.String("endpoint", uploader.Endpoint()), zap.Error(err))
		cmd.SilenceErrors = true
		return err
	}

	summary, _ := sess.Summary()
	if save {
		id, err := saveSummary(ctx, doc, uploader.Endpoint(), summary)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved as #%d\n", id)
	}

	open, err := selectedPanel(summary, panel)
	if err != nil {
		return err
	}
	if interactive && format == types.OutputText {
		if open != nil {
			if _, err := sess.Open(open.Index); err != nil {
				return err
			}
		}
		return browse(os.Stdin, os.Stdout, sess, useColor)
	}
	return render.Write(os.Stdout, format, summary, useColor, open)
}

// colorEnabled reports whether output may carry ANSI colors: not disabled
// with --no-color and stdout is a terminal.
func colorEnabled(cmd *cobra.Command) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return !noColor && !color.NoColor
}

// selectedPanel returns the panel chosen with --panel (1-based), or nil when
// n is 0.
func selectedPanel(s types.Summary, n int) (*session.Panel, error) {
	if n == 0 {
		return nil, nil
	}
	p, err := session.PanelAt(s, n-1)
	if err != nil {
		return nil, fmt.Errorf("--panel %d: %w", n, err)
	}
	return &p, nil
}

// uploadConfig assembles the uploader settings from viper and secrets.
func uploadConfig(httpCfg types.HTTPConfig) types.UploadConfig {
	return types.UploadConfig{
		HTTPConfig: httpCfg,
		Endpoint:   viper.GetString("endpoint"),
		Token:      loadedSecrets.Token(),
		Lenient:    viper.GetBool("lenient"),
	}
}

func saveSummary(ctx context.Context, doc source.Document, endpoint string, s types.Summary) (int64, error) {
	store, err := history.Open(historyConfig())
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return store.Save(ctx, history.Entry{
		Source:   doc.Name,
		Origin:   doc.Origin,
		Endpoint: endpoint,
		Summary:  s,
	})
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// spin advances bar until the returned stop func is called.
func spin(bar *progressbar.ProgressBar) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()
	return func() {
		close(done)
		<-finished
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
