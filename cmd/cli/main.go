// Package main implements the taskpop CLI for working the queue from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dsjohal14/taskpop/internal/app"
	"github.com/dsjohal14/taskpop/internal/libs/config"
	"github.com/dsjohal14/taskpop/internal/libs/jobs"
	"github.com/dsjohal14/taskpop/internal/libs/obs"
	"github.com/dsjohal14/taskpop/internal/render"
	"github.com/dsjohal14/taskpop/internal/scope/export"
	"github.com/dsjohal14/taskpop/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "taskpop",
		Short:        "Priority task queue: add tasks, pop the next one",
		SilenceUsage: true,
	}

	root.AddCommand(
		newAddCmd(),
		newPopCmd(),
		newListCmd(),
		newImportCmd(),
		newExportCmd(),
		newStatusCmd(),
		newTUICmd(),
	)
	return root
}

// openApp loads config, initializes logging to stderr and opens the store
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	obs.InitLogger(cfg.LogLevel)
	return app.Open(ctx, cfg)
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <description...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			t, ok := a.Store.AddTask(strings.Join(args, " "))
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to add")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatTask(t))
			return nil
		},
	}
}

func newPopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pop",
		Short: "Remove the highest-priority task and start on it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			t, ok := a.Store.PopNext()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.FormatCurrent(t))
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	var asTable bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the queue in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			queue := a.Store.Tasks()
			out := cmd.OutOrStdout()
			if len(queue) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}
			if asTable {
				fmt.Fprintln(out, render.Table(queue, render.Colorize(out)))
				return nil
			}
			return render.WriteQueue(out, queue)
		},
	}

	cmd.Flags().BoolVar(&asTable, "table", false, "render as a table")
	return cmd
}

func newImportCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "import <file...>",
		Short: "Import tasks from text files or JSON exports",
		Long: "Each file is read concurrently and applied as soon as its read completes. " +
			"A JSON export replaces the queue, so with several exports the last one to finish wins.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			q := jobs.NewQueue(jobs.WithLimit(limit))
			for _, path := range args {
				q.Enqueue(cmd.Context(), path, func(context.Context) ([]byte, error) {
					return os.ReadFile(path)
				})
			}
			q.Close()
			a.Logger.Debug().Int("jobs", q.Count()).Int("pending", q.Pending()).Msg("import reads started")

			out := cmd.OutOrStdout()
			var failed int
			for r := range q.Results() {
				if r.Err != nil {
					failed++
					a.Logger.Warn().Err(r.Err).Str("path", r.Job.Source).Msg("import read failed")
					fmt.Fprintf(out, "%s: %v\n", r.Job.Source, r.Err)
					continue
				}
				res := a.Store.Import(r.Data)
				fmt.Fprintf(out, "%s: %d task(s) added (%s)\n", filepath.Base(r.Job.Source), res.Added, res.Mode)
			}
			fmt.Fprintf(out, "%d task(s) queued\n", a.Store.Len())

			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) could not be read", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "parallel", 4, "maximum files read at once")
	return cmd
}

func newExportCmd() *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the queue to tasks-<date>.json in the export directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			snap := a.Store.ExportSnapshot()
			if toStdout {
				data, err := export.Encode(snap)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			path, err := a.Exporter.Export(snap)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) to %s\n", len(snap.Tasks), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&toStdout, "stdout", false, "write the export to stdout instead of a file")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue size, pop count and storage location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tasks:      %d\n", a.Store.Len())
			fmt.Fprintf(out, "Popped:     %d\n", a.Store.PopCount())
			fmt.Fprintf(out, "Backend:    %s\n", a.Config.StoreBackend)
			fmt.Fprintf(out, "Data dir:   %s\n", a.Config.DataDir)
			fmt.Fprintf(out, "Export dir: %s\n", a.Exporter.Dir())
			return nil
		},
	}
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Logs go to a file so they never draw over the screen
			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			logFile, err := os.OpenFile(cfg.LogFile(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer logFile.Close()
			obs.InitLoggerTo(cfg.LogLevel, logFile)

			a, err := app.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			return tui.Run(a.Store, a.Exporter, obs.Logger("tui"))
		},
	}
}
