// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/projectx/internal/history"
	"github.com/pdiddy/projectx/internal/render"
	"github.com/pdiddy/projectx/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse summaries saved with summarize --save",
	Long: `History manages the local SQLite archive of saved summaries. Use
subcommands to list, show, search, export or delete entries.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent saved summaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *history.Store) error {
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := store.List(context.Background(), limit)
			if err != nil {
				return err
			}
			return formatEntries(cmd.OutOrStdout(), entries, jsonFlag(cmd))
		})
	},
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Find saved summaries by title, topic, keyword or line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *history.Store) error {
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := store.Search(context.Background(), strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return formatEntries(cmd.OutOrStdout(), entries, jsonFlag(cmd))
		})
	},
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		format := types.OutputFormat(mustString(cmd, "format"))
		panel, _ := cmd.Flags().GetInt("panel")
		useColor := colorEnabled(cmd)
		return withStore(func(store *history.Store) error {
			e, err := store.Get(context.Background(), id)
			if err != nil {
				return err
			}
			open, err := selectedPanel(e.Summary, panel)
			if err != nil {
				return err
			}
			return render.Write(cmd.OutOrStdout(), format, e.Summary, useColor, open)
		})
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export [text]",
	Short: "Export saved summaries to YAML or JSON",
	Long: `Export writes every saved summary (or those matching text) to stdout,
or to the file given with --output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := types.OutputFormat(mustString(cmd, "format"))
		output := mustString(cmd, "output")
		return withStore(func(store *history.Store) error {
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			if err := store.Export(context.Background(), w, format, strings.Join(args, " ")); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
			}
			return nil
		})
	},
}

// --- delete subcommand ---

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a saved summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withStore(func(store *history.Store) error {
			if err := store.Delete(context.Background(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		})
	},
}

func init() {
	historyCmd.PersistentFlags().String("db", "", "archive database (default ~/.local/share/projectx/history.db)")
	_ = viper.BindPFlag("history.path", historyCmd.PersistentFlags().Lookup("db"))

	for _, c := range []*cobra.Command{historyListCmd, historySearchCmd} {
		c.Flags().Int("limit", 0, "maximum entries to show (default 20)")
		c.Flags().Bool("json", false, "output as JSON")
	}
	historyShowCmd.Flags().String("format", string(types.OutputText), "output format: text, json, or yaml")
	historyShowCmd.Flags().Bool("no-color", false, "disable colored output")
	historyShowCmd.Flags().Int("panel", 0, "also print the details of keyword N")
	historyExportCmd.Flags().String("format", string(types.OutputYAML), "export format: yaml or json")
	historyExportCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")

	historyCmd.AddCommand(historyListCmd, historySearchCmd, historyShowCmd, historyExportCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

// --- shared helpers ---

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		Path:       viper.GetString("history.path"),
		MaxResults: viper.GetInt("history.max_results"),
	}
}

func withStore(fn func(*history.Store) error) error {
	store, err := history.Open(historyConfig())
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: want a positive number", s)
	}
	return id, nil
}

func jsonFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func formatEntries(w io.Writer, entries []history.Entry, jsonOutput bool) error {
	if jsonOutput {
		if entries == nil {
			entries = []history.Entry{}
		}
		return render.JSON(w, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved summaries.")
		return nil
	}

	fmt.Fprintf(w, "%-5s  %-16s  %-40s  %-24s  %s\n", "ID", "Saved", "Title", "Source", "Keywords")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, e := range entries {
		fmt.Fprintf(w, "%-5d  %-16s  %-40s  %-24s  %s\n",
			e.ID,
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			clip(e.Summary.Title, 40),
			clip(e.Source, 24),
			strings.Join(e.Summary.Keywords, ", "),
		)
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
	return nil
}

// clip shortens s to n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
