package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chapsplit/internal/chapters"
	"chapsplit/internal/config"
	"chapsplit/internal/history"
	"chapsplit/internal/logging"
	"chapsplit/internal/split"
)

type splitFlags struct {
	input        string
	outputDir    string
	jobs         int
	list         bool
	dryRun       bool
	noTitleNames bool
	noTitleMeta  bool
	ext          string
	format       string
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var debugFlag bool
	var flags splitFlags

	ctx := newCommandContext(&configFlag, &debugFlag)

	rootCmd := &cobra.Command{
		Use:   "chapsplit [flags] [INPUT]",
		Short: "Split a media file into one file per chapter",
		Long: `chapsplit reads the chapter list of INPUT with ffprobe and extracts every
chapter with ffmpeg in stream-copy mode. Outputs are named
"<NN> - <chapter title>.<ext>" and written next to the input unless
--output-dir is given. Existing files are never overwritten.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return usageError("expected at most one input file, got %d", len(args))
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, ctx, flags, args)
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Debug logging, raw ffprobe output, and live ffmpeg stderr")

	f := rootCmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "Input media file (alternative to the positional argument)")
	f.StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory for chapter files (default: the input's directory)")
	f.IntVarP(&flags.jobs, "jobs", "j", 0, "Maximum parallel ffmpeg processes (0 = one per CPU)")
	f.BoolVarP(&flags.list, "list", "l", false, "List chapters and exit")
	f.BoolVarP(&flags.dryRun, "dry-run", "n", false, "Print ffmpeg commands without running them")
	f.BoolVar(&flags.dryRun, "show-commands", false, "Alias for --dry-run")
	f.BoolVar(&flags.noTitleNames, "no-title-names", false, "Name outputs after the input file instead of chapter titles")
	f.BoolVar(&flags.noTitleMeta, "no-title-meta", false, "Do not write chapter titles into output metadata")
	f.StringVarP(&flags.ext, "ext", "e", "", "Output extension (default: the input's extension)")
	f.StringVar(&flags.format, "format", "table", "Chapter list format: table, json, or yaml")

	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}

func runSplit(cmd *cobra.Command, ctx *commandContext, flags splitFlags, args []string) error {
	input := strings.TrimSpace(flags.input)
	if len(args) == 1 {
		if input != "" && input != args[0] {
			return usageError("input given twice (%q and %q)", input, args[0])
		}
		input = args[0]
	}
	if input == "" {
		return usageError("an input file is required (pass it as an argument or with --input)")
	}
	format := strings.ToLower(strings.TrimSpace(flags.format))
	if !validListFormat(format) {
		return usageError("unsupported --format %q (want table, json, or yaml)", flags.format)
	}

	base, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg := applyFlagOverrides(cmd, *base, flags)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := ctx.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	req := split.Request{
		InputPath: input,
		OutputDir: strings.TrimSpace(flags.outputDir),
		Settings: chapters.Settings{
			UseTitleAsName:  cfg.Split.UseTitleAsName,
			UseTitleInMeta:  cfg.Split.UseTitleInMeta,
			SanitizeTitles:  cfg.Split.SanitizeTitles,
			OutputExtension: cfg.Split.OutputExtension,
		},
	}
	switch {
	case flags.list:
		req.Mode = split.ModeList
	case flags.dryRun:
		req.Mode = split.ModeDryRun
	}
	if ctx.debug() {
		req.Debug = cmd.ErrOrStderr()
	}

	var recorder split.Recorder
	if req.Mode == split.ModeSplit && cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not appear in chapsplit history"),
				logging.String(logging.FieldErrorHint, "check history.path or set history.enabled = false"),
			)
		} else {
			defer store.Close()
			recorder = store
		}
	}

	pipeline := split.NewPipeline(&cfg, logger, recorder)
	if progress := progressFor(cmd.ErrOrStderr(), ctx.debug()); progress != nil {
		pipeline.Progress = progress
	}
	summary, err := pipeline.Run(cmd.Context(), req)

	out := cmd.OutOrStdout()
	switch req.Mode {
	case split.ModeList:
		if err != nil {
			return err
		}
		if renderErr := renderChapterList(cmd, format, summary.Chapters); renderErr != nil {
			return renderErr
		}
		if len(summary.Chapters) == 0 {
			return fmt.Errorf("%s: %w", input, chapters.ErrNoChapters)
		}
		return nil
	case split.ModeDryRun:
		if err != nil {
			return err
		}
		for _, line := range split.CommandLines(summary.Jobs) {
			fmt.Fprintln(out, line)
		}
		return nil
	}

	if len(summary.Report.Results) > 0 {
		fmt.Fprintln(out, summary.Report.Summary())
	}
	return err
}

// applyFlagOverrides returns cfg with explicitly set flags applied.
func applyFlagOverrides(cmd *cobra.Command, cfg config.Config, flags splitFlags) config.Config {
	if cmd.Flags().Changed("jobs") {
		cfg.Split.Jobs = flags.jobs
	}
	if cmd.Flags().Changed("ext") {
		cfg.Split.OutputExtension = config.NormalizeExtension(flags.ext)
	}
	if flags.noTitleNames {
		cfg.Split.UseTitleAsName = false
	}
	if flags.noTitleMeta {
		cfg.Split.UseTitleInMeta = false
	}
	return cfg
}
