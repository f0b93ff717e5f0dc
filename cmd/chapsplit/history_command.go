package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chapsplit/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent split runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil || store == nil {
				if err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				}
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeStructured(cmd.OutOrStdout(), "json", runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					string(run.Status),
					fmt.Sprintf("%d/%d", run.Succeeded, run.ChapterCount),
					humanize.Bytes(uint64(run.BytesWritten)),
					run.Duration().Round(time.Millisecond).String(),
					run.InputPath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Started", "Status", "Chapters", "Written", "Took", "Input"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx), newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return usageError("--keep must be >= 0, got %d", keep)
			}
			store, err := openHistory(ctx)
			if err != nil || store == nil {
				if err == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				}
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s), kept up to %d\n", removed, keep)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 50, "Number of newest runs to keep")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the chapters of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("no runs recorded")
			}
			defer store.Close()

			run, err := findRun(cmd, store, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if asJSON {
				return writeStructured(cmd.OutOrStdout(), "json", run)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.Status)
			fmt.Fprintf(out, "Input:  %s\nOutput: %s\n", run.InputPath, run.OutputDir)
			if run.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:  %s\n", run.ErrorMessage)
			}
			rows := make([][]string, 0, len(run.Chapters))
			for _, ch := range run.Chapters {
				rows = append(rows, []string{
					fmt.Sprintf("%d", ch.Number),
					ch.Status,
					humanize.Bytes(uint64(ch.BytesWritten)),
					ch.OutputPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Status", "Size", "Output"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// openHistory opens the journal, returning nil without error when it has
// never been written.
func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.History.Path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return history.Open(cfg.History.Path)
}

// findRun resolves a full run ID or a unique prefix of one.
func findRun(cmd *cobra.Command, store *history.Store, id string) (*history.Run, error) {
	run, err := store.Get(cmd.Context(), id)
	if err != nil || run != nil {
		return run, err
	}
	runs, err := store.Recent(cmd.Context(), 1000)
	if err != nil {
		return nil, err
	}
	var match string
	for _, r := range runs {
		if id != "" && strings.HasPrefix(r.ID, id) {
			if match != "" {
				return nil, usageError("run id %q is ambiguous", id)
			}
			match = r.ID
		}
	}
	if match == "" {
		return nil, fmt.Errorf("run %q not found", id)
	}
	return store.Get(cmd.Context(), match)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
